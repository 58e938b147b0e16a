// Package sched wraps the host's local notification scheduler behind a small
// capability interface. The reconciler only ever talks to Adapter; Engine is
// the in-process implementation used on desktop hosts.
package sched

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidFireTime = errors.New("sched: invalid fire time")
	ErrNoPermission    = errors.New("sched: notification permission not granted")
)

// Notification is one pending entry in the local scheduler, keyed by the
// scheduling identifier.
type Notification struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
}

// Adapter is the capability surface the reconciler depends on.
// HasPermission must be non-interactive; RequestPermission may prompt the
// user and is never called during an automatic sync.
type Adapter interface {
	ScheduleAt(ctx context.Context, n Notification) error
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) error
	ListScheduled(ctx context.Context) ([]Notification, error)
	HasPermission(ctx context.Context) bool
	RequestPermission(ctx context.Context) (bool, error)
}
