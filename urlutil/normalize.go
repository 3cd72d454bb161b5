// Package urlutil provides URL canonicalization for the crawl engine:
// sanitizing a URL down to its SeenSet key, resolving relative references
// against a base, and classifying a link as external to the page that
// contains it.
package urlutil

import (
	"net/url"
	"strings"
)

// Sanitize strips the fragment and a trailing "/" from the path component
// of rawURL, returning the string used as the SeenSet key.
//
// This is lossy by design: "/a" and "/a/" collide. That's a deliberate
// choice to treat slash-variant URLs as the same resource, not a bug —
// see DESIGN.md's note on trailing-slash canonicalization.
func Sanitize(rawURL string) string {
	trimmed := trimFragment(rawURL)
	if idx := strings.IndexByte(trimmed, '?'); idx != -1 {
		return strings.TrimSuffix(trimmed[:idx], "/") + trimmed[idx:]
	}
	return strings.TrimSuffix(trimmed, "/")
}

func trimFragment(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '#'); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}

// Resolve resolves href against base using RFC 3986 relative-to-absolute
// resolution. base is typically the <base href> tag value if present,
// else the response's request URL.
func Resolve(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}

// IsExternal reports whether linkURL is external to pageURL: true iff the
// scheme differs or the netloc (host:port) differs. Netloc comparison is
// case-sensitive, matching spec.md §4.1.
func IsExternal(pageURL, linkURL string) bool {
	page, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	link, err := url.Parse(linkURL)
	if err != nil {
		return true
	}
	return page.Scheme != link.Scheme || page.Host != link.Host
}

// IsHTTPScheme reports whether rawURL has an http or https scheme.
func IsHTTPScheme(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}
