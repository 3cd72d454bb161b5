package crawler

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// sentinelTask is the singleton pass-through value used to unblock a
// worker waiting on Dequeue during shutdown. It is compared by identity
// (pointer equality), never by value, so no real Task can ever be
// mistaken for it. Grounded on the original icio/crul scrape.py's
// SlowQueue, whose get() special-cases a passthru value by identity (is)
// to skip the token bucket entirely.
type sentinelTask struct{}

var theSentinel = &sentinelTask{}

// PendingQueue is the rate-limited FIFO of pending Tasks shared by every
// worker. Enqueue is never gated; Dequeue blocks on the token bucket
// before returning a real Task, but a sentinel is handed back
// immediately, bypassing the limiter — this lets shutdown proceed at
// full speed even when the crawl itself is throttled to one request
// every several seconds.
//
// Join/TaskDone mirror Python's Queue.join()/task_done(): Join blocks
// until every Task that has been Enqueue'd has had a matching TaskDone.
// Sentinels are tracked by the WaitGroup too (see EnqueueSentinel), but
// they are only added after the real work has drained, so they never
// hold up the Join that detects end of crawl.
type PendingQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []any
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// NewPendingQueue builds a PendingQueue. A zero delay disables rate
// limiting entirely — Dequeue never blocks on the bucket.
func NewPendingQueue(delay float64) *PendingQueue {
	q := &PendingQueue{}
	q.cond = sync.NewCond(&q.mu)
	if delay > 0 {
		q.limiter = rate.NewLimiter(rate.Limit(1/delay), 1)
	}
	return q
}

// Enqueue appends task to the queue and marks one unit of outstanding
// work for Join to wait on.
func (q *PendingQueue) Enqueue(task Task) {
	q.wg.Add(1)
	q.mu.Lock()
	q.items = append(q.items, task)
	q.mu.Unlock()
	q.cond.Signal()
}

// EnqueueSentinel appends a pass-through shutdown marker. It still
// counts as one unit of outstanding work — the caller must call
// TaskDone after receiving it from Dequeue, same as a real Task — but
// runSentinel only ever calls this after Join has already returned, so
// it never affects an in-progress join.
func (q *PendingQueue) EnqueueSentinel() {
	q.wg.Add(1)
	q.mu.Lock()
	q.items = append(q.items, theSentinel)
	q.mu.Unlock()
	q.cond.Signal()
}

// Dequeue blocks until an item is available, then returns it. ok is
// false if the item is the shutdown sentinel, in which case the returned
// Task is the zero value; the caller must still call TaskDone exactly
// once before exiting, per spec step 4.7.2. A real Task first waits on
// the rate limiter (if ctx is cancelled while waiting, err is non-nil —
// the caller must still call TaskDone).
func (q *PendingQueue) Dequeue(ctx context.Context) (task Task, ok bool, err error) {
	q.mu.Lock()
	for len(q.items) == 0 {
		q.cond.Wait()
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()

	if item == any(theSentinel) {
		return Task{}, false, nil
	}

	if q.limiter != nil {
		if waitErr := q.limiter.Wait(ctx); waitErr != nil {
			return item.(Task), true, waitErr
		}
	}
	return item.(Task), true, nil
}

// TaskDone marks one previously Enqueue'd Task as complete. Must be
// called exactly once per Task returned by Dequeue with ok=true,
// regardless of whether processing succeeded.
func (q *PendingQueue) TaskDone() {
	q.wg.Done()
}

// Join blocks until every Enqueue'd Task has had a matching TaskDone.
func (q *PendingQueue) Join() {
	q.wg.Wait()
}
