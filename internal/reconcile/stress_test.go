package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/sched"
)

// slowAdapter counts how many sync bodies are inside the adapter at once.
// Overlapping cancel/add sequences from concurrent Sync calls would push
// the gauge above one.
type slowAdapter struct {
	*fakeAdapter
	inFlight int32
	maxSeen  int32
}

func (s *slowAdapter) enter() {
	cur := atomic.AddInt32(&s.inFlight, 1)
	for {
		max := atomic.LoadInt32(&s.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxSeen, max, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)
}

func (s *slowAdapter) leave() {
	atomic.AddInt32(&s.inFlight, -1)
}

func (s *slowAdapter) ListScheduled(ctx context.Context) ([]sched.Notification, error) {
	s.enter()
	defer s.leave()
	return s.fakeAdapter.ListScheduled(ctx)
}

func (s *slowAdapter) ScheduleAt(ctx context.Context, n sched.Notification) error {
	s.enter()
	defer s.leave()
	return s.fakeAdapter.ScheduleAt(ctx, n)
}

func (s *slowAdapter) Cancel(ctx context.Context, id string) error {
	s.enter()
	defer s.leave()
	return s.fakeAdapter.Cancel(ctx, id)
}

func TestConcurrentSyncsNeverInterleave(t *testing.T) {
	adapter := &slowAdapter{fakeAdapter: newFakeAdapter()}
	store := newMemStore()
	engine := setupEngine(t, adapter, store, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			desired := []model.DesiredReminder{
				reminderAt("task-a", testNow.Add(time.Duration(offset+1)*time.Hour)),
				reminderAt("task-b", testNow.Add(time.Duration(offset+2)*time.Hour)),
			}
			if _, err := engine.Sync(ctx, desired); err != nil {
				t.Errorf("sync: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if max := atomic.LoadInt32(&adapter.maxSeen); max > 1 {
		t.Fatalf("expected serialized sync bodies, saw %d concurrent adapter calls", max)
	}
}
