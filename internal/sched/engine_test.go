package sched

import (
	"context"
	"testing"
	"time"
)

func TestEngineEmitsInFireOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()
	ctx := context.Background()

	now := time.Now().UTC()
	if err := engine.ScheduleAt(ctx, Notification{ID: "later", FireAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.ScheduleAt(ctx, Notification{ID: "sooner", FireAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitNotification(t, engine.C(), time.Second)
	second := waitNotification(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestCancelledNotificationNeverFires(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()
	ctx := context.Background()

	now := time.Now().UTC()
	if err := engine.ScheduleAt(ctx, Notification{ID: "cancelled", FireAt: now.Add(30 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := engine.ScheduleAt(ctx, Notification{ID: "kept", FireAt: now.Add(60 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := engine.Cancel(ctx, "cancelled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got := waitNotification(t, engine.C(), time.Second)
	if got.ID != "kept" {
		t.Fatalf("expected kept to fire first, got %s", got.ID)
	}
}

func TestListScheduledSortedAndCancelAll(t *testing.T) {
	engine := NewEngine(1)
	ctx := context.Background()
	base := time.Date(2099, 2, 9, 12, 0, 0, 0, time.UTC)

	for _, n := range []Notification{
		{ID: "b", FireAt: base.Add(2 * time.Hour)},
		{ID: "a", FireAt: base.Add(time.Hour)},
		{ID: "c", FireAt: base.Add(3 * time.Hour)},
	} {
		if err := engine.ScheduleAt(ctx, n); err != nil {
			t.Fatalf("schedule %s: %v", n.ID, err)
		}
	}

	list, err := engine.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("unexpected scheduled order: %#v", list)
	}

	if err := engine.CancelAll(ctx); err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	list, err = engine.ListScheduled(ctx)
	if err != nil {
		t.Fatalf("list after cancel all: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty schedule, got %#v", list)
	}
}

func TestScheduleValidatesInput(t *testing.T) {
	engine := NewEngine(1)
	ctx := context.Background()
	if err := engine.ScheduleAt(ctx, Notification{ID: "bad"}); err != ErrInvalidFireTime {
		t.Fatalf("expected ErrInvalidFireTime, got %v", err)
	}
	if err := engine.ScheduleAt(ctx, Notification{FireAt: time.Now().UTC()}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestScheduleRequiresPermission(t *testing.T) {
	engine := NewEngine(1)
	ctx := context.Background()
	engine.SetPermission(false)

	if engine.HasPermission(ctx) {
		t.Fatal("expected permission denied")
	}
	err := engine.ScheduleAt(ctx, Notification{ID: "n", FireAt: time.Now().UTC().Add(time.Hour)})
	if err != ErrNoPermission {
		t.Fatalf("expected ErrNoPermission, got %v", err)
	}

	granted, err := engine.RequestPermission(ctx)
	if err != nil || !granted {
		t.Fatalf("expected grant, got granted=%v err=%v", granted, err)
	}
	if !engine.HasPermission(ctx) {
		t.Fatal("expected permission granted after request")
	}
}

func waitNotification(t *testing.T, ch <-chan Notification, timeout time.Duration) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for notification")
		return Notification{}
	}
}
