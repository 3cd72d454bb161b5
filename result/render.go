package result

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"strings"

	"github.com/arcbound/siteprowl/crawler"
)

// RenderText writes a human-readable summary of each Page as it arrives,
// matching the layout of original_source/crul/output.py's output_text.
func RenderText(w io.Writer, events <-chan crawler.Event) error {
	bw := bufio.NewWriter(w)
	n := 0
	for ev := range events {
		if ev.Err != nil {
			_ = bw.Flush()
			return ev.Err
		}
		page := ev.Page
		title := ""
		if page.Title != nil {
			title = *page.Title
		}
		url := page.URL
		if url == "" {
			url = page.CanonicalURL
		}

		fmt.Fprintf(bw, "#%d: %s\n", n, url)
		fmt.Fprintf(bw, "  Title: %s\n", title)
		fmt.Fprintf(bw, "  Depth: %d\n", page.Depth)
		fmt.Fprintln(bw, "  Links:")
		for _, l := range page.Links {
			fmt.Fprintf(bw, "    - %s\n", l.Href)
		}
		fmt.Fprintln(bw, "  Assets:")
		for _, a := range page.Assets {
			fmt.Fprintf(bw, "    - %s: %s\n", a.Type, a.Href)
		}
		n++
	}
	return bw.Flush()
}

const sitemapHeader = `<?xml version="1.0" encoding="utf-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
   xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
   xsi:schemaLocation="http://www.sitemaps.org/schemas/sitemap/0.9 http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd">`

// RenderSitemap writes a sitemaps.org 0.9 XML sitemap over the Page
// stream, one <url><loc>canonical URL</loc></url> per page, escaping
// each <loc> with html.EscapeString, per spec.md §6.
func RenderSitemap(w io.Writer, events <-chan crawler.Event) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, sitemapHeader)
	for ev := range events {
		if ev.Err != nil {
			return ev.Err
		}
		fmt.Fprintf(bw, "  <url><loc>%s</loc></url>\n", html.EscapeString(ev.Page.CanonicalURL))
	}
	fmt.Fprintln(bw, "</urlset>")
	return bw.Flush()
}

// FetchErrorCategory buckets a Worker fetch error for the end-of-crawl
// summary, so the TUI can group a long error list into something
// actionable instead of a wall of text.
type FetchErrorCategory string

const (
	FetchErrorTimeout           FetchErrorCategory = "timeout"
	FetchErrorDNSFailure        FetchErrorCategory = "dns_failure"
	FetchErrorConnectionRefused FetchErrorCategory = "connection_refused"
	FetchErrorClient4xx         FetchErrorCategory = "4xx"
	FetchErrorServer5xx         FetchErrorCategory = "5xx"
	FetchErrorUnknown           FetchErrorCategory = "unknown"
)

// CategoryOrder is the display order for FetchErrorCategory groups, most
// to least actionable: a 4xx usually means a bad link worth fixing, a
// timeout or refused connection usually means the remote host, not the
// crawl, is at fault.
var CategoryOrder = []FetchErrorCategory{
	FetchErrorClient4xx,
	FetchErrorServer5xx,
	FetchErrorTimeout,
	FetchErrorDNSFailure,
	FetchErrorConnectionRefused,
	FetchErrorUnknown,
}

// ClassifyFetchError buckets err (as returned on an Event from
// crawler.Worker) by cause. statusCode is the HTTP response status when
// one was received, or 0 if the request never got a response at all.
func ClassifyFetchError(err error, statusCode int) FetchErrorCategory {
	if statusCode >= 400 && statusCode <= 499 {
		return FetchErrorClient4xx
	}
	if statusCode >= 500 {
		return FetchErrorServer5xx
	}
	if err == nil {
		return FetchErrorUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FetchErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FetchErrorDNSFailure
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" && strings.Contains(opErr.Error(), "connection refused") {
			return FetchErrorConnectionRefused
		}
		if opErr.Timeout() {
			return FetchErrorTimeout
		}
	}

	return FetchErrorUnknown
}

// FormatFetchErrorCategory returns a human-readable label for a
// FetchErrorCategory, used as a section heading in RenderSummary-style
// output.
func FormatFetchErrorCategory(cat FetchErrorCategory) string {
	switch cat {
	case FetchErrorTimeout:
		return "Timeouts"
	case FetchErrorDNSFailure:
		return "DNS Failures"
	case FetchErrorConnectionRefused:
		return "Connection Refused"
	case FetchErrorClient4xx:
		return "Client Errors (4xx)"
	case FetchErrorServer5xx:
		return "Server Errors (5xx)"
	default:
		return "Other Errors"
	}
}
