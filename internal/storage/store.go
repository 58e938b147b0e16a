// Package storage persists the reconciliation state that survives a process
// restart: the enabled flag, the active base-identifier snapshot from the
// last successful sync, and the last-sync timestamp.
package storage

import (
	"context"
	"time"
)

// SyncState is the durable reconciliation record. A nil Snapshot means
// "unknown" (never synced, or the stored data was unreadable) and is
// distinct from an empty slice; the suppression policy fails open on it.
type SyncState struct {
	Enabled    bool
	Snapshot   []string
	LastSyncAt *time.Time
}

// Store is the durable key-value record behind the reconciler.
// Load never fails: storage corruption gates a cosmetic decision, so it is
// absorbed into the unknown state instead of propagated.
type Store interface {
	Load(ctx context.Context) SyncState
	SaveSnapshot(ctx context.Context, baseIDs []string, syncedAt time.Time) error
	SetEnabled(ctx context.Context, enabled bool) error
	ClearSnapshot(ctx context.Context) error
}
