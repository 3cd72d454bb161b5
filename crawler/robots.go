package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// disallowLineRE matches every Disallow: line in a robots.txt body,
// regardless of which User-agent: section it sits under. Per-agent
// grouping is intentionally ignored — spec.md §4.3 and §9 document this
// as the contract, not a bug: it's simpler and matches the original
// icio/crul implementation's re.findall(r'^Disallow:\s*(\S+)', ...).
var disallowLineRE = regexp.MustCompile(`(?im)^Disallow:\s*(\S+)`)

// crawlDelayRE matches the first Crawl-Delay: value in a robots.txt body.
// It captures a leading run of digits/dots so that "1.5sdf" parses as
// 1.5 — lenient float-prefix parsing, matching the original's
// re.search(r'^\s*Crawl-Delay:\s*([\d.]+)', ...).
var crawlDelayRE = regexp.MustCompile(`(?im)^\s*Crawl-Delay:\s*([\d.]+)`)

// RobotsPolicy is the parsed result of a robots.txt fetch: the set of
// Disallow: paths (unioned across all User-agent: sections) and the
// crawl delay in seconds (0 if absent or unparseable).
type RobotsPolicy struct {
	DisallowPaths []string
	CrawlDelay    float64
}

// ParseRobotsPolicy extracts a RobotsPolicy from the raw text of a
// robots.txt file per spec.md §4.3. The userAgent parameter is accepted
// for interface symmetry with a per-agent implementation but is not
// consulted — see the disallowLineRE doc comment.
func ParseRobotsPolicy(body string, userAgent string) RobotsPolicy {
	_ = userAgent

	var paths []string
	for _, m := range disallowLineRE.FindAllStringSubmatch(body, -1) {
		paths = append(paths, m[1])
	}

	delay := 0.0
	if m := crawlDelayRE.FindStringSubmatch(body); m != nil {
		if parsed, err := strconv.ParseFloat(m[1], 64); err == nil && parsed > 0 {
			delay = parsed
		}
	}

	return RobotsPolicy{DisallowPaths: paths, CrawlDelay: delay}
}

// FetchRobotsPolicy fetches and parses the robots.txt for the host of
// seedURL. If the fetch fails for any reason, it returns a zero-value
// policy (empty disallow, zero delay) and logs at debug — per spec.md
// §4.3/§7, robots.txt unavailability fails open, it never aborts the
// crawl.
func FetchRobotsPolicy(ctx context.Context, client *http.Client, seedURL, userAgent string, logger *slog.Logger) RobotsPolicy {
	logger = loggerOrDefault(logger)

	parsed, err := url.Parse(seedURL)
	if err != nil {
		logger.DebugContext(ctx, "robots.txt: invalid seed URL", "url", seedURL, "error", err)
		return RobotsPolicy{}
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		logger.DebugContext(ctx, "robots.txt: build request failed", "url", robotsURL, "error", err)
		return RobotsPolicy{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "robots.txt: fetch failed", "url", robotsURL, "error", err)
		return RobotsPolicy{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.DebugContext(ctx, "robots.txt: non-200 response", "url", robotsURL, "status", resp.StatusCode)
		return RobotsPolicy{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.DebugContext(ctx, "robots.txt: read body failed", "url", robotsURL, "error", err)
		return RobotsPolicy{}
	}

	return ParseRobotsPolicy(string(body), userAgent)
}
