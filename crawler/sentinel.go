package crawler

import (
	"context"
	"log/slog"
)

// runSentinel waits for every enqueued Task to be drained and marked
// done, then appends one shutdown sentinel per worker so each worker's
// next Dequeue returns immediately instead of blocking forever, and
// finally invokes onDrained to let the caller close its output channel.
// Grounded on the original icio/crul scrape.py's worker_sentinel
// goroutine/thread.
func runSentinel(ctx context.Context, pending *PendingQueue, numWorkers int, logger *slog.Logger, onDrained func()) {
	logger = loggerOrDefault(logger)

	logger.DebugContext(ctx, "sentinel: awaiting all work to complete")
	pending.Join()

	logger.DebugContext(ctx, "sentinel: sending kill signals", "workers", numWorkers)
	for i := 0; i < numWorkers; i++ {
		pending.EnqueueSentinel()
	}

	onDrained()
	logger.DebugContext(ctx, "sentinel: kill signals sent")
}
