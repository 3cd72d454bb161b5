package crawler

import (
	"context"
	"testing"
	"time"
)

func TestPendingQueue_FIFO(t *testing.T) {
	q := NewPendingQueue(0)
	q.Enqueue(Task{URL: "a"})
	q.Enqueue(Task{URL: "b"})

	ctx := context.Background()
	got1, ok, err := q.Dequeue(ctx)
	if err != nil || !ok || got1.URL != "a" {
		t.Fatalf("first dequeue = %+v, ok=%v, err=%v", got1, ok, err)
	}
	got2, ok, err := q.Dequeue(ctx)
	if err != nil || !ok || got2.URL != "b" {
		t.Fatalf("second dequeue = %+v, ok=%v, err=%v", got2, ok, err)
	}
}

func TestPendingQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewPendingQueue(0)
	done := make(chan Task, 1)
	go func() {
		task, ok, err := q.Dequeue(context.Background())
		if err != nil || !ok {
			t.Errorf("unexpected ok=%v err=%v", ok, err)
		}
		done <- task
	}()

	select {
	case <-done:
		t.Fatal("Dequeue returned before anything was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	q.Enqueue(Task{URL: "late"})
	select {
	case task := <-done:
		if task.URL != "late" {
			t.Errorf("task.URL = %q, want late", task.URL)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue never returned after Enqueue")
	}
}

func TestPendingQueue_SentinelPassesThrough(t *testing.T) {
	q := NewPendingQueue(0)
	q.EnqueueSentinel()

	task, ok, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for sentinel")
	}
	if task != (Task{}) {
		t.Errorf("expected zero-value Task for sentinel, got %+v", task)
	}
}

func TestPendingQueue_JoinWaitsForTaskDone(t *testing.T) {
	q := NewPendingQueue(0)
	q.Enqueue(Task{URL: "a"})

	joined := make(chan struct{})
	go func() {
		q.Join()
		close(joined)
	}()

	select {
	case <-joined:
		t.Fatal("Join returned before TaskDone was called")
	case <-time.After(20 * time.Millisecond):
	}

	_, _, _ = q.Dequeue(context.Background())
	q.TaskDone()

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join never returned after TaskDone")
	}
}

func TestPendingQueue_SentinelCountsTowardJoin(t *testing.T) {
	q := NewPendingQueue(0)
	q.Enqueue(Task{URL: "a"})
	_, _, _ = q.Dequeue(context.Background())
	q.TaskDone()
	q.Join() // returns: real task drained

	q.EnqueueSentinel()
	joined := make(chan struct{})
	go func() {
		q.Join()
		close(joined)
	}()

	select {
	case <-joined:
		t.Fatal("second Join returned before sentinel's TaskDone")
	case <-time.After(20 * time.Millisecond):
	}

	_, ok, _ := q.Dequeue(context.Background())
	if ok {
		t.Fatal("expected sentinel dequeue")
	}
	q.TaskDone()

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join never returned after sentinel's TaskDone")
	}
}

func TestPendingQueue_RateLimiterAppliesToRealTasksOnly(t *testing.T) {
	q := NewPendingQueue(0.05) // 50ms between real tasks
	q.Enqueue(Task{URL: "a"})
	q.Enqueue(Task{URL: "b"})
	q.EnqueueSentinel()

	ctx := context.Background()
	start := time.Now()
	_, _, _ = q.Dequeue(ctx) // first real task: limiter has a burst token, returns fast
	_, _, _ = q.Dequeue(ctx) // second real task: should wait ~50ms
	elapsed := time.Since(start)
	if elapsed < 20*time.Millisecond {
		t.Errorf("expected rate limiting to introduce delay, elapsed=%v", elapsed)
	}

	sentinelStart := time.Now()
	_, ok, _ := q.Dequeue(ctx)
	if ok {
		t.Fatal("expected sentinel")
	}
	if time.Since(sentinelStart) > 10*time.Millisecond {
		t.Error("sentinel dequeue should bypass the rate limiter")
	}
}
