// Package store provides storage abstraction for tunego's checkpoint blobs.
//
// Store is the interface for persisting small, immutable checkpoint blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory, for tests and ephemeral runs
//   - LocalStore: Local filesystem with atomic temp-and-rename writes
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and S3-compatible object storage
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error          // Atomic write
//	    Get(ctx, name) ([]byte, error)      // Whole-blob read
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Checkpoints are written whole and read whole; streaming and range reads
// are deliberately out of scope.
package store
