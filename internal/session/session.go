// Package session holds the authentication state of one visitor profile and persists it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"trizen-careers/internal/model"
	"trizen-careers/internal/storage"
)

// ErrEmptyToken is returned by Login when no token is given.
var ErrEmptyToken = errors.New("token must not be empty")

// persisted is the serialized form of a session.
type persisted struct {
	Token string      `json:"token,omitempty"`
	User  *model.User `json:"user,omitempty"`
}

// Store is the session of one profile. A session is authenticated iff both token and user are set.
type Store struct {
	backend storage.Store
	key     string

	// writeMu is held from the state change until it is persisted
	writeMu sync.Mutex

	mu    sync.RWMutex
	token string
	user  *model.User
}

// Load rehydrates the session stored under key.
// Missing, unreadable or inconsistent data yields an unauthenticated session.
func Load(ctx context.Context, backend storage.Store, key string) *Store {
	s := &Store{backend: backend, key: key}

	raw, err := backend.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s
	case err != nil:
		log.Printf("session %s: load failed, starting signed out: %v", key, err)
		return s
	}

	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("session %s: corrupt data, starting signed out: %v", key, err)
		return s
	}
	if p.Token == "" || p.User == nil {
		return s
	}

	s.token = p.Token
	s.user = p.User
	return s
}

// Login replaces the session with token and user in one step.
func (s *Store) Login(ctx context.Context, token string, user model.User) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.token = token
	s.user = &user
	p := persisted{Token: token, User: &user}
	s.mu.Unlock()

	s.persist(ctx, p)
	return nil
}

// Logout clears the session.
func (s *Store) Logout(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.persist(ctx, persisted{})
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed in user.
func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Snapshot returns the session as exposed to clients. The token is never included.
func (s *Store) Snapshot() model.SessionResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := model.SessionResponse{Authenticated: s.token != ""}
	if s.user != nil {
		u := *s.user
		resp.User = &u
	}
	return resp
}

func (s *Store) persist(ctx context.Context, p persisted) {
	if p.Token == "" {
		if err := s.backend.Delete(ctx, s.key); err != nil {
			log.Printf("session %s: failed to persist logout: %v", s.key, err)
		}
		return
	}

	b, err := json.Marshal(p)
	if err != nil {
		log.Printf("session %s: failed to encode: %v", s.key, err)
		return
	}
	if err := s.backend.Set(ctx, s.key, string(b)); err != nil {
		log.Printf("session %s: failed to persist: %v", s.key, err)
	}
}
