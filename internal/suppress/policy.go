// Package suppress answers the host's display-decision callback: should a
// notification that is about to fire while the process is running still be
// shown? The server's idea of what is wanted can change between scheduling
// and firing, so the decision is made against the persisted snapshot from
// the last successful sync.
package suppress

import (
	"context"
	"sync"

	"github.com/sandeepkv93/remindd/internal/ident"
	"github.com/sandeepkv93/remindd/internal/storage"
)

// Loader is the read side of the persisted reconciliation state.
type Loader interface {
	Load(ctx context.Context) storage.SyncState
}

// Policy caches the snapshot after one load per process lifetime. Display
// time decisions are pure lookups; no scheduler or network I/O happens here.
type Policy struct {
	mu       sync.Mutex
	loader   Loader
	loaded   bool
	known    bool
	snapshot map[string]struct{}
}

func New(loader Loader) *Policy {
	return &Policy{loader: loader}
}

// ShouldDisplay reports whether the notification with the given scheduling
// identifier is still wanted. Unknown state (nothing ever synced, or the
// store was unreadable) fails open: suppressing a real reminder is worse
// than showing a stale one.
func (p *Policy) ShouldDisplay(ctx context.Context, schedulingID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		p.loadLocked(ctx)
	}
	if !p.known {
		return true
	}
	_, ok := p.snapshot[ident.BaseOf(schedulingID)]
	return ok
}

// Invalidate drops the cached snapshot so the next decision reloads it.
// Long-lived hosts call this after a sync or a disable; without it the
// cache would be stale for the rest of the process lifetime.
func (p *Policy) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
	p.known = false
	p.snapshot = nil
}

func (p *Policy) loadLocked(ctx context.Context) {
	state := p.loader.Load(ctx)
	p.loaded = true
	if state.Snapshot == nil {
		p.known = false
		return
	}
	p.known = true
	p.snapshot = make(map[string]struct{}, len(state.Snapshot))
	for _, base := range state.Snapshot {
		p.snapshot[base] = struct{}{}
	}
}
