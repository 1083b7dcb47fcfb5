package store

import (
	"context"
	"fmt"
)

// UnitOfWork captures the serialized contents of a set of keys before an
// operation mutates them, so the operation can be unwound with Rollback.
//
// This is cooperative, advisory atomicity only: the substrate has no
// isolation, so a rollback rewrites each captured key wholesale. If another
// writer touched the same keys between Begin and Rollback, the restore is
// last-write-wins and clobbers those changes. Accepted limitation.
type UnitOfWork struct {
	store    Store
	captured map[string][]byte
	absent   map[string]bool
	done     bool
}

// Begin snapshots the current value of every key the operation may mutate.
func Begin(ctx context.Context, s Store, keys ...string) (*UnitOfWork, error) {
	u := &UnitOfWork{
		store:    s,
		captured: make(map[string][]byte, len(keys)),
		absent:   make(map[string]bool, len(keys)),
	}
	for _, key := range keys {
		raw, err := s.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("store: snapshot %s: %w", key, err)
		}
		if raw == nil {
			u.absent[key] = true
			continue
		}
		u.captured[key] = raw
	}
	return u, nil
}

// Rollback rewrites every snapshotted key to its captured value and removes
// keys that did not exist at Begin time. Safe to call more than once; only
// the first call does work.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u == nil || u.done {
		return nil
	}
	u.done = true
	var firstErr error
	for key, raw := range u.captured {
		if err := u.store.Set(ctx, key, raw); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: restore %s: %w", key, err)
		}
	}
	for key := range u.absent {
		if err := u.store.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: restore %s: %w", key, err)
		}
	}
	return firstErr
}

// Commit discards the snapshot. Writes were applied as they happened, so
// there is nothing to flush.
func (u *UnitOfWork) Commit() {
	if u != nil {
		u.done = true
	}
}
