package store

import (
	"context"
	"os"
)

// ErrNotFound is returned when a named checkpoint blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for persisting small, immutable checkpoint blobs.
//
// Checkpoints are written whole and read whole; there is no streaming or
// random access. Put must be atomic: a concurrent Get observes either the
// previous blob or the new one, never a torn write.
type Store interface {
	// Put writes a blob atomically, replacing any existing blob of the same
	// name.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a blob. Returns ErrNotFound if the name does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
