package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizen-careers/internal/application"
	"trizen-careers/internal/auth"
	"trizen-careers/internal/backend"
	"trizen-careers/internal/model"
	"trizen-careers/internal/storage"
)

type noAccounts struct{}

func (noAccounts) Register(context.Context, backend.RegisterRequest) (backend.Result, error) {
	return backend.Result{}, nil
}
func (noAccounts) VerifyEmail(context.Context, string, string) (backend.Result, error) {
	return backend.Result{}, nil
}
func (noAccounts) ResendCode(context.Context, string) (backend.Result, error) {
	return backend.Result{}, nil
}
func (noAccounts) Login(context.Context, string, string) (backend.LoginResult, error) {
	return backend.LoginResult{}, nil
}

var job = model.Job{ID: "eng-001", Title: "Software Engineering Intern", Category: "Engineering"}

func TestGetIsStable(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore(), noAccounts{})
	ctx := context.Background()

	a := r.Get(ctx, "p1")
	assert.Same(t, a, r.Get(ctx, "p1"))
	assert.NotSame(t, a, r.Get(ctx, "p2"))
	assert.Equal(t, 2, r.Len())
}

func TestProfileRehydratesPersistedState(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	r := NewRegistry(store, noAccounts{})
	p := r.Get(ctx, "p1")
	require.NoError(t, p.Session.Login(ctx, "jwt", model.User{ID: "u", Email: "asha@example.com"}))
	require.NoError(t, p.Applied.MarkApplied(ctx, "eng-001"))

	// a new process sees the same state
	r2 := NewRegistry(store, noAccounts{})
	p2 := r2.Get(ctx, "p1")
	assert.True(t, p2.Session.IsAuthenticated())
	assert.True(t, p2.Applied.IsApplied("eng-001"))
	assert.Equal(t, auth.StateAuthenticated, p2.Auth.State())
}

func TestOpenFormPrefillsEmailAndReplacesDraft(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore(), noAccounts{})
	p := r.Get(ctx, "p1")
	require.NoError(t, p.Session.Login(ctx, "jwt", model.User{ID: "u", Email: "asha@example.com"}))

	f := p.OpenForm(job)
	assert.Equal(t, "asha@example.com", f.State().Values["email"])
	require.NoError(t, f.Set("fullName", "Asha"))

	got, ok := p.Form(job.ID)
	require.True(t, ok)
	assert.Same(t, f, got)

	fresh := p.OpenForm(job)
	assert.NotSame(t, f, fresh)
	assert.Equal(t, "", fresh.State().Values["fullName"])
}

func TestDiscardForm(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore(), noAccounts{})
	p := r.Get(context.Background(), "p1")

	p.OpenForm(job)
	assert.True(t, p.DiscardForm(job.ID))
	assert.False(t, p.DiscardForm(job.ID))
	_, ok := p.Form(job.ID)
	assert.False(t, ok)
}

func TestEvict(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore(), noAccounts{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.Get(ctx, "old")

	now = now.Add(2 * time.Hour)
	r.Get(ctx, "recent")

	assert.Equal(t, 1, r.Evict(time.Hour))
	assert.Equal(t, 1, r.Len())

	p := r.Get(ctx, "recent")
	assert.Equal(t, "recent", p.ID)
}

type heldIntake struct {
	started chan struct{}
	release chan struct{}
}

func (h *heldIntake) SubmitApplication(context.Context, string, model.ApplicationDraft) (backend.Result, error) {
	close(h.started)
	<-h.release
	return backend.Result{Success: true}, nil
}

func TestEvictKeepsProfileWhileSubmitting(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	r := NewRegistry(store, noAccounts{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	p := r.Get(ctx, "p1")
	require.NoError(t, p.Session.Login(ctx, "jwt", model.User{ID: "u", Email: "asha@example.com"}))
	f := p.OpenForm(job)
	for k, v := range map[string]string{
		application.FieldFullName:        "Asha Rao",
		application.FieldPhone:           "+91 98765 43210",
		application.FieldLocation:        "Hyderabad",
		application.FieldPortfolioURL:    "https://asha.dev",
		application.FieldLinkedInProfile: "https://www.linkedin.com/in/asha-rao",
		application.FieldResumeLink:      "https://drive.example.com/resume.pdf",
		application.FieldEducationStatus: "bachelor",
		application.FieldDuration:        "3-months",
		application.FieldMotivation:      "I want to learn how real products are built.",
	} {
		require.NoError(t, f.Set(k, v))
	}

	intake := &heldIntake{started: make(chan struct{}), release: make(chan struct{})}
	sub := &application.Submitter{Intake: intake}
	done := make(chan error, 1)
	go func() {
		_, err := sub.Submit(ctx, f, p.Session, p.Applied)
		done <- err
	}()
	<-intake.started

	now = now.Add(48 * time.Hour)
	assert.True(t, p.Submitting())
	assert.Equal(t, 0, r.Evict(time.Hour))

	close(intake.release)
	require.NoError(t, <-done)
	assert.False(t, p.Submitting())

	// the mark made after the eviction check is what a reload sees
	assert.Equal(t, 1, r.Evict(time.Hour))
	assert.True(t, r.Get(ctx, "p1").Applied.IsApplied(job.ID))
}

func TestEvictDropsUnreturnedProfilesSooner(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore(), noAccounts{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Issue(ctx, "once")
	r.Issue(ctx, "back")
	r.Get(ctx, "back")

	now = now.Add(FreshMaxIdle + time.Minute)
	assert.Equal(t, 1, r.Evict(24*time.Hour))
	assert.Equal(t, 1, r.Len())

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 1, r.Evict(24*time.Hour))
	assert.Equal(t, 0, r.Len())
}
