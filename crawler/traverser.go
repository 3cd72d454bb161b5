package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/arcbound/siteprowl/urlutil"
)

// ignoreSuffixes lists path suffixes the traverser never follows,
// regardless of depth or disallow rules — binary assets a crawler has no
// business re-fetching and re-parsing as HTML. Matches the original
// icio/crul PageTraverser.ignore_suffixes exactly.
var ignoreSuffixes = []string{
	".png", ".svg", ".pdf", ".jpg", ".gif", ".jpeg", ".mp4", ".wav",
}

// Enqueuer is the subset of PendingQueue the Traverser depends on, kept
// as an interface so traverser tests don't need a live rate limiter.
type Enqueuer interface {
	Enqueue(Task)
}

// Traverser is the link-discovery policy layer: given a freshly parsed
// Page, it decides which of its links are worth fetching and enqueues
// them, applying the seed's max depth, the external-link policy, the
// disallow list, and one-time-only enqueue via SeenSet. Grounded on the
// original icio/crul PageTraverser.
type Traverser struct {
	Seen          *SeenSet
	Disallow      *urlutil.DisallowMatcher
	MaxDepth      int
	AllowExternal bool
	Logger        *slog.Logger
}

// NewTraverser builds a Traverser over the given SeenSet and disallow
// rules.
func NewTraverser(seen *SeenSet, disallow *urlutil.DisallowMatcher, maxDepth int, allowExternal bool, logger *slog.Logger) *Traverser {
	return &Traverser{
		Seen:          seen,
		Disallow:      disallow,
		MaxDepth:      maxDepth,
		AllowExternal: allowExternal,
		Logger:        loggerOrDefault(logger),
	}
}

// Enqueue sanitizes url, and if it has not already been queued, pushes a
// Task for it onto pending. Used both for the seed URL and internally by
// Follow.
func (t *Traverser) Enqueue(ctx context.Context, pending Enqueuer, rawURL string, depth int, referrer string) {
	sanitized := urlutil.Sanitize(rawURL)
	if !t.Seen.TestAndSet(sanitized) {
		t.Logger.DebugContext(ctx, "skipping link: already queued", "url", rawURL, "referrer", referrer)
		return
	}
	t.Logger.DebugContext(ctx, "queueing link", "url", rawURL, "referrer", referrer)
	pending.Enqueue(Task{URL: rawURL, Depth: depth, Referrer: referrer})
}

// Follow evaluates every link discovered on page and enqueues the ones
// that pass every filter: http(s) scheme, not marked nofollow, internal
// (unless AllowExternal), within MaxDepth, not an ignored binary suffix,
// and not robots-disallowed. The page's own canonical URL is marked seen
// first so a page reachable by two different URLs is only ever queued
// once.
func (t *Traverser) Follow(ctx context.Context, pending Enqueuer, page Page) {
	if page.CanonicalURL != "" {
		t.Seen.Add(urlutil.Sanitize(page.CanonicalURL))
	}

	for _, link := range page.Links {
		if !t.shouldFollow(ctx, link) {
			continue
		}
		t.Enqueue(ctx, pending, link.Href, link.Depth, link.Referrer)
	}
}

func (t *Traverser) shouldFollow(ctx context.Context, link Link) bool {
	if !urlutil.IsHTTPScheme(link.Href) {
		t.Logger.DebugContext(ctx, "skipping link: non-http(s) scheme", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	if link.NoFollow {
		t.Logger.DebugContext(ctx, "skipping link: marked nofollow", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	if !t.AllowExternal && link.External {
		t.Logger.DebugContext(ctx, "skipping link: external", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	if link.Depth > t.MaxDepth {
		t.Logger.DebugContext(ctx, "skipping link: beyond max depth", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	if hasIgnoredSuffix(link.Href) {
		t.Logger.DebugContext(ctx, "skipping link: ignored suffix", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	if t.Disallow != nil && t.Disallow.Disallowed(linkPath(link.Href)) {
		t.Logger.DebugContext(ctx, "skipping link: disallowed", "url", link.Href, "referrer", link.Referrer)
		return false
	}
	return true
}

func hasIgnoredSuffix(rawURL string) bool {
	path := strings.ToLower(linkPath(rawURL))
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func linkPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return parsed.Path
}
