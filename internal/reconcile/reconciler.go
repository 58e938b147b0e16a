// Package reconcile converges the local notification scheduler to the
// server-authoritative desired reminder list: it computes the minimal
// cancel/add diff per sync cycle, clamps to the platform scheduling
// capacity, and persists the active-identifier snapshot the suppression
// policy reads at display time.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/remindd/internal/ident"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/sched"
	"github.com/sandeepkv93/remindd/internal/storage"
)

// Config holds the collaborators and policy knobs for an Engine.
type Config struct {
	Adapter sched.Adapter
	Store   storage.Store
	// Capacity is the platform scheduling limit; zero or negative means
	// unbounded. The clamp keeps the soonest-firing entries.
	Capacity int
	Logger   *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// SyncResult reports how many reminders the sync considered wanted after
// the clamp, not how many adapter calls were issued.
type SyncResult struct {
	ScheduledCount int
}

// Engine serializes sync cycles against the scheduler adapter and the
// persisted state. The host may trigger Sync from independent event sources
// (foreground resume, periodic timer); the mutex guarantees their cancel
// and add calls never interleave.
type Engine struct {
	mu         sync.Mutex
	adapter    sched.Adapter
	store      storage.Store
	capacity   int
	log        *slog.Logger
	now        func() time.Time
	enabled    bool
	lastSyncAt *time.Time
}

func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Adapter == nil {
		return nil, errors.New("reconcile: nil adapter")
	}
	if cfg.Store == nil {
		return nil, errors.New("reconcile: nil store")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	state := cfg.Store.Load(ctx)
	return &Engine{
		adapter:    cfg.Adapter,
		store:      cfg.Store,
		capacity:   cfg.Capacity,
		log:        log,
		now:        now,
		enabled:    state.Enabled,
		lastSyncAt: state.LastSyncAt,
	}, nil
}

type desiredEntry struct {
	base string
	n    sched.Notification
}

// Sync converges the scheduler to the desired list. Disabled reminders and
// missing permission are silent no-ops, not errors; the permission check is
// non-interactive and never prompts. Individual schedule or cancel failures
// are logged and skipped; a failure to read the scheduler or persist the
// snapshot aborts the cycle and leaves the previous snapshot intact.
func (e *Engine) Sync(ctx context.Context, desired []model.DesiredReminder) (SyncResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return SyncResult{}, nil
	}
	if !e.adapter.HasPermission(ctx) {
		e.log.Debug("skipping sync, notification permission not granted")
		return SyncResult{}, nil
	}

	now := e.now()
	entries := make([]desiredEntry, 0, len(desired))
	for i, r := range desired {
		if r.FireAt.IsZero() || r.FireAt.Before(now) {
			continue
		}
		entries = append(entries, desiredEntry{
			base: ident.Base(r, i),
			n: sched.Notification{
				Title:  r.Title,
				Body:   r.Body(),
				FireAt: r.FireAt,
			},
		})
	}

	// Soonest first; the clamp below keeps the front of this order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].n.FireAt.Before(entries[j].n.FireAt)
	})
	if e.capacity > 0 && len(entries) > e.capacity {
		entries = entries[:e.capacity]
	}

	desiredByID := make(map[string]desiredEntry, len(entries))
	baseIDs := make([]string, 0, len(entries))
	seenBase := make(map[string]struct{}, len(entries))
	for i := range entries {
		entries[i].n.ID = ident.Scheduling(entries[i].base, entries[i].n.FireAt)
		desiredByID[entries[i].n.ID] = entries[i]
		if _, ok := seenBase[entries[i].base]; !ok {
			seenBase[entries[i].base] = struct{}{}
			baseIDs = append(baseIDs, entries[i].base)
		}
	}

	existing, err := e.adapter.ListScheduled(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list scheduled: %w", err)
	}
	existingIDs := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		existingIDs[n.ID] = struct{}{}
	}

	// Cancels run before adds so the stale entries free capacity for the
	// new ones even when the scheduler is already full.
	for _, n := range existing {
		if _, wanted := desiredByID[n.ID]; wanted {
			continue
		}
		if err := e.adapter.Cancel(ctx, n.ID); err != nil {
			e.log.Warn("cancel failed", "id", n.ID, "error", err)
		}
	}
	for _, entry := range entries {
		if _, present := existingIDs[entry.n.ID]; present {
			continue
		}
		if err := e.adapter.ScheduleAt(ctx, entry.n); err != nil {
			e.log.Warn("schedule failed", "id", entry.n.ID, "error", err)
		}
	}

	if err := e.store.SaveSnapshot(ctx, baseIDs, now); err != nil {
		return SyncResult{}, fmt.Errorf("persist snapshot: %w", err)
	}
	e.lastSyncAt = &now

	return SyncResult{ScheduledCount: len(entries)}, nil
}

// SetRemindersEnabled toggles the feature. Disabling cancels everything the
// scheduler holds and clears the persisted snapshot back to unknown, so a
// stale snapshot cannot be reused after a later re-enable. Enabling only
// persists the flag; the caller decides when to sync again.
func (e *Engine) SetRemindersEnabled(ctx context.Context, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !enabled {
		if err := e.adapter.CancelAll(ctx); err != nil {
			return fmt.Errorf("cancel all: %w", err)
		}
		if err := e.store.ClearSnapshot(ctx); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}
	if err := e.store.SetEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("persist enabled flag: %w", err)
	}
	e.enabled = enabled
	return nil
}

func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// LastSyncTime returns when the most recent successful sync finished, or
// nil before the first one.
func (e *Engine) LastSyncTime() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastSyncAt == nil {
		return nil
	}
	at := *e.lastSyncAt
	return &at
}

// ScheduledCount reports the scheduler's current pending total, for the
// settings and diagnostics surface.
func (e *Engine) ScheduledCount(ctx context.Context) (int, error) {
	list, err := e.adapter.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("list scheduled: %w", err)
	}
	return len(list), nil
}
