package crawler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// defaultUserAgent is sent on every request (including the robots.txt
// fetch) unless Config.UserAgent overrides it.
const defaultUserAgent = "siteprowl/1.0 (+https://github.com/arcbound/siteprowl)"

// Config configures a single run of the crawler. Zero-value fields are
// filled in with defaults by Validate, matching the teacher's
// New()-zero-value-fills-defaults idiom.
type Config struct {
	// SeedURL is the first page fetched; every other fetched page must
	// share its scheme+host unless AllowExternal is set.
	SeedURL string

	// NumWorkers is the size of the worker pool. Must be >= 1.
	NumWorkers int

	// MaxDepth bounds how many hops from the seed a link may be before
	// the Traverser stops following it.
	MaxDepth int

	// Delay is the minimum number of seconds between the start times of
	// any two HTTP GETs. A value of 0 disables rate limiting. nil means
	// "not supplied by the caller": if a robots.txt Crawl-Delay was
	// fetched, the robots-derived value is used instead — see
	// Crawler.Run. A non-nil Delay (including an explicit 0) always wins
	// over robots.txt, per spec.md §4.3.
	Delay *float64

	// UserAgent identifies this crawler to the remote server and to
	// robots.txt.
	UserAgent string

	// Disallow lists extra path fragments to treat as robots.txt
	// Disallow: entries, merged with whatever robots.txt itself returns.
	Disallow []string

	// AllowExternal permits following links that leave the seed's host.
	AllowExternal bool

	// SkipRobots skips the robots.txt fetch entirely (the --yolo flag).
	SkipRobots bool

	// RequestTimeout bounds each individual HTTP request.
	RequestTimeout time.Duration

	// Client is the underlying HTTP client to wrap in the retry
	// transport. If nil, a client with RequestTimeout is used.
	Client *http.Client

	// Logger receives structured debug/warn events. Defaults to
	// slog.Default() if nil.
	Logger *slog.Logger
}

// Validate fills in defaults and rejects an unusable Config.
// NumWorkers < 1 is rejected before Run spawns anything, per spec.md
// §4.7/§7.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return fmt.Errorf("crawler: SeedURL must not be empty")
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("crawler: NumWorkers must be >= 1, got %d", c.NumWorkers)
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 100
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.RequestTimeout}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}
