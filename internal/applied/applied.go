// Package applied tracks the jobs a visitor profile has successfully applied to.
package applied

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"

	"trizen-careers/internal/storage"
)

// Tracker is the persisted set of applied job ids of one profile.
type Tracker struct {
	backend storage.Store
	key     string

	// writeMu orders writes to the backend so a newer snapshot is never overwritten by an older one
	writeMu sync.Mutex

	mu   sync.RWMutex
	jobs map[string]struct{}
}

// Load rehydrates the tracker stored under key, starting empty on missing or corrupt data.
func Load(ctx context.Context, backend storage.Store, key string) *Tracker {
	t := &Tracker{
		backend: backend,
		key:     key,
		jobs:    make(map[string]struct{}),
	}

	raw, err := backend.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return t
	case err != nil:
		log.Printf("applied jobs %s: load failed, starting empty: %v", key, err)
		return t
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Printf("applied jobs %s: corrupt data, starting empty: %v", key, err)
		return t
	}
	for _, id := range ids {
		if id != "" {
			t.jobs[id] = struct{}{}
		}
	}
	return t
}

// MarkApplied adds jobID to the set and persists it. Marking twice is a no-op.
// The in-memory set is authoritative; a persistence failure is returned but does not undo the mark.
func (t *Tracker) MarkApplied(ctx context.Context, jobID string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	if _, ok := t.jobs[jobID]; ok {
		t.mu.Unlock()
		return nil
	}
	t.jobs[jobID] = struct{}{}
	ids := t.sortedLocked()
	t.mu.Unlock()

	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := t.backend.Set(ctx, t.key, string(b)); err != nil {
		log.Printf("applied jobs %s: failed to persist: %v", t.key, err)
		return err
	}
	return nil
}

// IsApplied reports whether jobID is in the set.
func (t *Tracker) IsApplied(jobID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.jobs[jobID]
	return ok
}

// Jobs returns the applied job ids, sorted.
func (t *Tracker) Jobs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedLocked()
}

func (t *Tracker) sortedLocked() []string {
	ids := make([]string, 0, len(t.jobs))
	for id := range t.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
