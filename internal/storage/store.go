// Package storage persists client state (session, applied jobs) as opaque string records.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record is stored under the key.
var ErrNotFound = errors.New("record not found")

// Store is durable key/value storage for serialized client state.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by stores that can drop every record at once.
type Purger interface {
	Purge(ctx context.Context) error
}

// HealthReporter is implemented by stores backed by a database connection.
type HealthReporter interface {
	Health() map[string]string
}

// SessionKey is the record key of a profile's session.
func SessionKey(profileID string) string {
	return "session:" + profileID
}

// AppliedJobsKey is the record key of a profile's applied jobs set.
func AppliedJobsKey(profileID string) string {
	return "appliedJobs:" + profileID
}
