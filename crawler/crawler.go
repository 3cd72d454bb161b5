package crawler

import (
	"context"
	"fmt"

	"github.com/arcbound/siteprowl/urlutil"
)

// Crawler ties every component together: robots policy, SeenSet,
// Traverser, PendingQueue and Worker Pool. Construct with New, then call
// Run once.
type Crawler struct {
	cfg Config
}

// New validates cfg and returns a ready-to-run Crawler.
func New(cfg Config) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Crawler{cfg: cfg}, nil
}

// Run starts the crawl and returns a channel of Events. The channel is
// closed once the frontier is exhausted (or ctx is cancelled and the
// queue fully drains). Per spec.md §5, cancelling ctx does not abort
// in-flight requests abruptly: it stops new Dequeues from proceeding
// past the rate limiter and lets the Sentinel drain the queue once
// workers finish what they're holding.
func (c *Crawler) Run(ctx context.Context) (<-chan Event, error) {
	client := NewRetryingClient(c.cfg.Client)

	var robotsPolicy RobotsPolicy
	if !c.cfg.SkipRobots {
		robotsPolicy = FetchRobotsPolicy(ctx, client, c.cfg.SeedURL, c.cfg.UserAgent, c.cfg.Logger)
	}

	delay := robotsPolicy.CrawlDelay
	if c.cfg.Delay != nil {
		delay = *c.cfg.Delay
	}

	disallowPaths := append(append([]string{}, robotsPolicy.DisallowPaths...), c.cfg.Disallow...)
	disallow := urlutil.NewDisallowMatcher(disallowPaths)

	seen, err := NewSeenSet()
	if err != nil {
		return nil, fmt.Errorf("crawler: %w", err)
	}

	pending := NewPendingQueue(delay)
	traverser := NewTraverser(seen, disallow, c.cfg.MaxDepth, c.cfg.AllowExternal, c.cfg.Logger)
	traverser.Enqueue(ctx, pending, c.cfg.SeedURL, 0, "")

	workers := make([]*Worker, c.cfg.NumWorkers)
	for i := range workers {
		workers[i] = &Worker{
			ID:        i,
			Client:    client,
			Traverser: traverser,
			Pending:   pending,
			UserAgent: c.cfg.UserAgent,
			Logger:    c.cfg.Logger,
		}
	}

	pool := &Pool{Workers: workers, Pending: pending, Logger: c.cfg.Logger}
	out := pool.Run(ctx)

	closed := make(chan Event)
	go func() {
		defer close(closed)
		defer seen.Close()
		for ev := range out {
			closed <- ev
		}
	}()

	return closed, nil
}
