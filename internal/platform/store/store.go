// Package store provides the key-value substrate the application keeps its
// collections in: every key holds one JSON-serialized array of records.
// The substrate offers no locking, versioning, or compare-and-swap;
// atomicity is layered on top cooperatively via UnitOfWork.
package store

import "context"

// Store is the key-value port. Get returns nil with no error when the key
// is absent; callers treat an absent collection as empty.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
