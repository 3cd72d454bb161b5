package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/rehttp"
	"golang.org/x/sync/errgroup"
)

// Event is one item on the crawl's output stream: either a fetched Page,
// or a terminal error from a worker that is about to exit. Exactly one
// of Page/Err is set.
type Event struct {
	Page Page
	Err  error
}

// NewRetryingClient wraps base's Transport (http.DefaultTransport if
// base.Transport is nil) in a rehttp retry policy that retries a request
// exactly once, and only when the failure is a temporary transport-level
// error (e.g. a connection error) — spec.md §4.7b. Non-200 status codes
// are never retried; they aren't errors at the transport layer.
func NewRetryingClient(base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	client := *base
	client.Transport = rehttp.NewTransport(
		rt,
		rehttp.RetryAll(rehttp.RetryMaxRetries(1), rehttp.RetryTemporaryErr()),
		rehttp.ConstDelay(0),
	)
	return &client
}

// Worker dequeues and processes Tasks until it receives a sentinel or a
// fatal error, per spec.md §4.7.
type Worker struct {
	ID        int
	Client    *http.Client
	Traverser *Traverser
	Pending   *PendingQueue
	UserAgent string
	Logger    *slog.Logger
}

// Run executes the worker loop, sending a Page Event for every Task
// successfully fetched and parsed, and at most one error Event (its last)
// before returning. Run returns when the queue hands it a sentinel or
// when it suffers a fatal per-task error — matching spec.md §4.7's "a
// worker's abnormal exit reduces the pool but does not abort the crawl."
func (w *Worker) Run(ctx context.Context, out chan<- Event) {
	logger := loggerOrDefault(w.Logger).With("worker", w.ID)
	logger.DebugContext(ctx, "worker started")
	defer logger.DebugContext(ctx, "worker stopped")

	for {
		task, ok, err := w.Pending.Dequeue(ctx)
		if err != nil {
			w.Pending.TaskDone()
			out <- Event{Err: fmt.Errorf("worker %d: dequeue: %w", w.ID, err)}
			return
		}
		if !ok {
			w.Pending.TaskDone()
			return
		}

		page, ferr := w.process(ctx, task)
		if ferr != nil {
			logger.ErrorContext(ctx, "worker errored processing task", "url", task.URL, "error", ferr)
			w.Pending.TaskDone()
			out <- Event{Err: fmt.Errorf("worker %d: %s: %w", w.ID, task.URL, ferr)}
			return
		}

		w.Traverser.Follow(ctx, w.Pending, page)
		out <- Event{Page: page}
		w.Pending.TaskDone()
	}
}

func (w *Worker) process(ctx context.Context, task Task) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	if w.UserAgent != "" {
		req.Header.Set("User-Agent", w.UserAgent)
	}
	if task.Referrer != "" {
		// The spec-mandated header is the literal (misspelled) "Referrer",
		// not the HTTP-standard "Referer" — preserved deliberately, see
		// DESIGN.md's Open Question decision.
		req.Header.Set("Referrer", task.Referrer)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	return ParsePage(resp, task.Depth), nil
}

// Pool runs a fixed-size set of Workers over a shared PendingQueue and
// returns the Event stream, closing it once every worker has exited and
// the Sentinel confirms the queue is drained. Grounded on the teacher's
// worker-pool orchestration in crawler/crawler.go, adapted to this
// spec's dequeue/follow/emit flow.
type Pool struct {
	Workers []*Worker
	Pending *PendingQueue
	Logger  *slog.Logger
}

// Run starts every worker and the sentinel, returning a channel of
// Events that closes once the crawl has fully drained.
func (p *Pool) Run(ctx context.Context) <-chan Event {
	out := make(chan Event, len(p.Workers))

	var eg errgroup.Group
	for _, worker := range p.Workers {
		w := worker
		eg.Go(func() error {
			w.Run(ctx, out)
			return nil
		})
	}

	go runSentinel(ctx, p.Pending, len(p.Workers), p.Logger, func() {
		_ = eg.Wait()
		close(out)
	})

	return out
}
