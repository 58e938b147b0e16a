package sched

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type queueItem struct {
	n Notification
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].n.FireAt.Before(pq[j].n.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine is the desktop implementation of Adapter: a timer loop over a
// min-heap of pending notifications. Cancellation removes an entry from the
// pending map; stale heap entries are skipped lazily when they surface.
// Fired notifications are emitted non-blocking on C; slow consumers lose
// events rather than stalling the loop.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	pending map[string]Notification
	granted bool
	out     chan Notification
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:   make(priorityQueue, 0),
		pending: make(map[string]Notification),
		granted: true,
		out:     make(chan Notification, bufferSize),
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// C delivers notifications at their fire time. The host display path
// consumes this channel.
func (e *Engine) C() <-chan Notification {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) ScheduleAt(_ context.Context, n Notification) error {
	if n.FireAt.IsZero() {
		return ErrInvalidFireTime
	}
	if n.ID == "" {
		return errors.New("sched: notification id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("sched: engine stopped")
	}
	if !e.granted {
		return ErrNoPermission
	}

	e.pending[n.ID] = n
	heap.Push(&e.queue, queueItem{n: n})
	e.signalWakeup()
	return nil
}

// Cancel is idempotent; cancelling an unknown identifier is a no-op.
func (e *Engine) Cancel(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)
	e.signalWakeup()
	return nil
}

func (e *Engine) CancelAll(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = make(map[string]Notification)
	e.signalWakeup()
	return nil
}

func (e *Engine) ListScheduled(_ context.Context) ([]Notification, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Notification, 0, len(e.pending))
	for _, n := range e.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out, nil
}

func (e *Engine) HasPermission(_ context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.granted
}

// RequestPermission is the interactive grant path. The desktop host has no
// prompt, so the request always succeeds.
func (e *Engine) RequestPermission(_ context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.granted = true
	return true, nil
}

// SetPermission forces the grant state; used by hosts that surface a
// settings toggle and by tests.
func (e *Engine) SetPermission(granted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.granted = granted
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, n := range due {
				select {
				case e.out <- n:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the soonest live heap entry, discarding cancelled or
// superseded entries on the way.
func (e *Engine) peek() (Notification, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		head := e.queue[0].n
		live, ok := e.pending[head.ID]
		if ok && live.FireAt.Equal(head.FireAt) {
			return head, true
		}
		heap.Pop(&e.queue)
	}
	return Notification{}, false
}

func (e *Engine) popDue(now time.Time) []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Notification, 0)
	for len(e.queue) > 0 {
		head := e.queue[0].n
		if head.FireAt.After(now) {
			break
		}
		heap.Pop(&e.queue)
		live, ok := e.pending[head.ID]
		if !ok || !live.FireAt.Equal(head.FireAt) {
			continue
		}
		delete(e.pending, head.ID)
		out = append(out, head)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
