// Package ledger persists validated performance records to an append-only
// store. Existing rows are never rewritten or reordered.
package ledger

import (
	"context"
	"fmt"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// Store is the append-only ledger contract. Append must only be called
// with records that passed model validation.
type Store interface {
	// Append writes one record durably. Rows are never torn: a failed
	// append leaves prior rows untouched.
	Append(ctx context.Context, rec model.PerformanceRecord) error
	// Exists reports whether a record with the key is already in the ledger.
	Exists(ctx context.Context, key model.Key) (bool, error)
	// Keys returns the identity of every record in the ledger, used to
	// preload duplicate checks once per evaluation run.
	Keys(ctx context.Context) (map[model.Key]bool, error)
	Close() error
}

// PersistenceError is a storage I/O failure. It is terminal for the record
// being written; the run continues unless the store itself is unavailable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// MirroredStore writes every record to a primary store and then to a
// mirror. The primary is authoritative: reads and duplicate checks come
// from it, and a mirror failure does not fail the append.
type MirroredStore struct {
	Primary Store
	Mirror  Store
}

func (m *MirroredStore) Append(ctx context.Context, rec model.PerformanceRecord) error {
	if err := m.Primary.Append(ctx, rec); err != nil {
		return err
	}
	// Mirror lag is recoverable by replaying the CSV, so a mirror error
	// only surfaces through the returned wrapped error's log site.
	if err := m.Mirror.Append(ctx, rec); err != nil {
		return &MirrorError{Err: err}
	}
	return nil
}

func (m *MirroredStore) Exists(ctx context.Context, key model.Key) (bool, error) {
	return m.Primary.Exists(ctx, key)
}

func (m *MirroredStore) Keys(ctx context.Context) (map[model.Key]bool, error) {
	return m.Primary.Keys(ctx)
}

func (m *MirroredStore) Close() error {
	err := m.Primary.Close()
	if merr := m.Mirror.Close(); err == nil {
		err = merr
	}
	return err
}

// MirrorError wraps a failure on the mirror store after the primary append
// already succeeded. Callers treat it as a warning, not a lost record.
type MirrorError struct {
	Err error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("ledger mirror: %v", e.Err)
}

func (e *MirrorError) Unwrap() error {
	return e.Err
}
