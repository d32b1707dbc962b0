// Package profile keeps the per visitor state: session, applied jobs, auth flow and open
// application forms.
package profile

import (
	"context"
	"sync"
	"time"

	"trizen-careers/internal/application"
	"trizen-careers/internal/applied"
	"trizen-careers/internal/auth"
	"trizen-careers/internal/model"
	"trizen-careers/internal/session"
	"trizen-careers/internal/storage"
)

// Profile is the state of one visitor. Session and applied jobs are persisted; the auth flow
// and drafts live in memory only.
type Profile struct {
	ID      string
	Session *session.Store
	Applied *applied.Tracker
	Auth    *auth.Flow

	mu       sync.Mutex
	forms    map[string]*application.Form
	lastSeen time.Time
	// fresh is set until the visitor comes back with the issued token
	fresh bool
}

// OpenForm starts a fresh application for job, replacing any previous draft for it.
// The email field is pre-filled from the signed in user.
func (p *Profile) OpenForm(job model.Job) *application.Form {
	var email string
	if u, ok := p.Session.User(); ok {
		email = u.Email
	}
	f := application.NewForm(job, email)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.forms[job.ID] = f
	return f
}

// Form returns the open application for jobID.
func (p *Profile) Form(jobID string) (*application.Form, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.forms[jobID]
	return f, ok
}

// DiscardForm drops the application for jobID.
func (p *Profile) DiscardForm(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.forms[jobID]
	delete(p.forms, jobID)
	return ok
}

// Submitting reports whether any application of the profile is being submitted.
func (p *Profile) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.forms {
		if f.State().InFlight {
			return true
		}
	}
	return false
}

func (p *Profile) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

func (p *Profile) idleSince() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen, p.fresh
}

func (p *Profile) busy() bool {
	return p.Auth.Snapshot().InFlight || p.Submitting()
}

// FreshMaxIdle bounds how long a profile whose token was never presented back is kept.
const FreshMaxIdle = 10 * time.Minute

// Registry lazily builds profiles, rehydrating persisted state on first access.
type Registry struct {
	store    storage.Store
	accounts auth.Accounts
	flowOpts []auth.Option

	mu       sync.Mutex
	profiles map[string]*Profile
	now      func() time.Time
}

// NewRegistry creates a Registry persisting to store.
func NewRegistry(store storage.Store, accounts auth.Accounts, flowOpts ...auth.Option) *Registry {
	return &Registry{
		store:    store,
		accounts: accounts,
		flowOpts: flowOpts,
		profiles: make(map[string]*Profile),
		now:      time.Now,
	}
}

// Get returns the profile id, loading it from storage when not in memory.
func (r *Registry) Get(ctx context.Context, id string) *Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		p = r.load(ctx, id)
		r.profiles[id] = p
	} else {
		p.mu.Lock()
		p.fresh = false
		p.mu.Unlock()
	}
	p.touch(r.now())
	return p
}

// Issue registers the profile for a newly issued token. Until the token is presented again
// the profile is evicted after FreshMaxIdle.
func (r *Registry) Issue(ctx context.Context, id string) *Profile {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.load(ctx, id)
	p.fresh = true
	p.touch(r.now())
	r.profiles[id] = p
	return p
}

func (r *Registry) load(ctx context.Context, id string) *Profile {
	sess := session.Load(ctx, r.store, storage.SessionKey(id))
	return &Profile{
		ID:      id,
		Session: sess,
		Applied: applied.Load(ctx, r.store, storage.AppliedJobsKey(id)),
		Auth:    auth.NewFlow(r.accounts, sess, r.flowOpts...),
		forms:   make(map[string]*application.Form),
	}
}

// Len is the number of profiles held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// Evict drops profiles idle for longer than maxIdle, or FreshMaxIdle for profiles never seen
// again after Issue. Profiles with an auth call or a submission running are kept.
// Persisted state is reloaded on next access.
func (r *Registry) Evict(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for id, p := range r.profiles {
		lastSeen, fresh := p.idleSince()
		limit := maxIdle
		if fresh && FreshMaxIdle < limit {
			limit = FreshMaxIdle
		}
		if lastSeen.Before(now.Add(-limit)) && !p.busy() {
			delete(r.profiles, id)
			evicted++
		}
	}
	return evicted
}

// PeriodicallyEvict runs Evict every interval until ctx is done.
func (r *Registry) PeriodicallyEvict(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(maxIdle)
		}
	}
}
