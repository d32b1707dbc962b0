package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trizen-careers/internal/model"
	"trizen-careers/internal/storage"
)

var testUser = model.User{
	ID:        "u-1",
	FirstName: "Asha",
	LastName:  "Rao",
	Email:     "asha@example.com",
}

// failingStore rejects every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (failingStore) Set(context.Context, string, string) error   { return errors.New("disk gone") }
func (failingStore) Delete(context.Context, string) error        { return errors.New("disk gone") }

func TestFreshSessionIsSignedOut(t *testing.T) {
	s := Load(context.Background(), storage.NewMemoryStore(), storage.SessionKey("p"))

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Equal(t, model.SessionResponse{}, s.Snapshot())
}

func TestLoginPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	key := storage.SessionKey("p")

	s := Load(ctx, backend, key)
	require.NoError(t, s.Login(ctx, "tok-123", testUser))
	assert.True(t, s.IsAuthenticated())

	reloaded := Load(ctx, backend, key)
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok-123", reloaded.Token())
	u, ok := reloaded.User()
	require.True(t, ok)
	assert.Equal(t, testUser, u)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, storage.NewMemoryStore(), "k")

	assert.ErrorIs(t, s.Login(ctx, "", testUser), ErrEmptyToken)
	assert.False(t, s.IsAuthenticated())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestLogoutClearsPersistedSession(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	key := storage.SessionKey("p")

	s := Load(ctx, backend, key)
	require.NoError(t, s.Login(ctx, "tok", testUser))
	s.Logout(ctx)

	assert.False(t, s.IsAuthenticated())
	_, err := backend.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, Load(ctx, backend, key).IsAuthenticated())
}

func TestCorruptDataFallsBackToSignedOut(t *testing.T) {
	ctx := context.Background()
	key := storage.SessionKey("p")

	cases := map[string]string{
		"not json":       "{{{",
		"token only":     `{"token":"abc"}`,
		"user only":      `{"user":{"id":"u-1"}}`,
		"wrong type":     `{"token":42}`,
		"empty document": `{}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backend := storage.NewMemoryStore()
			require.NoError(t, backend.Set(ctx, key, raw))

			s := Load(ctx, backend, key)
			assert.False(t, s.IsAuthenticated())
			_, ok := s.User()
			assert.False(t, ok)
		})
	}
}

func TestStorageFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, failingStore{}, "k")
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(ctx, "tok", testUser))
	assert.True(t, s.IsAuthenticated())

	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
}

func TestUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, storage.NewMemoryStore(), "k")
	require.NoError(t, s.Login(ctx, "tok", testUser))

	u, _ := s.User()
	u.Email = "changed@example.com"

	again, _ := s.User()
	assert.Equal(t, testUser.Email, again.Email)
}

// gatedStore holds the first Set until release is closed.
type gatedStore struct {
	*storage.MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Set(ctx context.Context, key, value string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.MemoryStore.Set(ctx, key, value)
}

func TestLogoutDuringSlowLoginPersistsSignedOut(t *testing.T) {
	ctx := context.Background()
	backend := &gatedStore{
		MemoryStore: storage.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	key := storage.SessionKey("p")
	s := Load(ctx, backend, key)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Login(ctx, "jwt", testUser))
	}()
	<-backend.entered

	go func() {
		defer wg.Done()
		s.Logout(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	close(backend.release)
	wg.Wait()

	assert.False(t, s.IsAuthenticated())
	assert.False(t, Load(ctx, backend, key).IsAuthenticated())
}
