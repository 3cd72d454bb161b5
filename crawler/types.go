// Package crawler implements the bounded, politeness-aware concurrent
// fetch pipeline at the heart of the site crawler: a worker pool drawing
// from a rate-limited work queue, fed by link discovery and URL
// normalization, with duplicate suppression and deterministic
// termination.
package crawler

import (
	"net/http"
	"strings"
)

// LinkType classifies a discovered Link by the HTML construct it came
// from.
type LinkType string

const (
	LinkAnchor LinkType = "anchor"
	LinkScript LinkType = "script"
	LinkImg    LinkType = "img"
	LinkEmbed  LinkType = "embed"
	LinkAudio  LinkType = "audio"
	LinkVideo  LinkType = "video"
	LinkIframe LinkType = "iframe"
	LinkObject LinkType = "object"
)

// Task is a unit of pending work: a URL to fetch, its depth in the crawl,
// and the page that referred to it (empty for the seed). Immutable once
// enqueued.
type Task struct {
	URL      string
	Depth    int
	Referrer string
}

// Link is a reference discovered inside a Page.
type Link struct {
	Type     LinkType `json:"type"`
	Href     string   `json:"href"`
	NoFollow bool     `json:"no_follow,omitempty"`
	External bool     `json:"external,omitempty"`
	Depth    int      `json:"depth"`
	Referrer string   `json:"referrer,omitempty"`
}

// Page is the result of fetching one URL. Immutable once produced.
//
// Headers is a flat string-to-string map, per spec.md §6's serialized
// shape: multi-valued response headers are collapsed by joining with
// ", ", matching how Python's requests library (and its
// CaseInsensitiveDict) presents headers to the original implementation.
type Page struct {
	URL          string            `json:"url"`
	CanonicalURL string            `json:"canonical_url"`
	Fetched      bool              `json:"fetched"`
	Headers      map[string]string `json:"headers,omitempty"`
	NoIndex      bool              `json:"no_index,omitempty"`
	Title        *string           `json:"title,omitempty"`
	Links        []Link            `json:"links,omitempty"`
	Assets       []Link            `json:"assets,omitempty"`
	Depth        int               `json:"depth"`
}

// FlattenHeaders collapses an http.Header's multi-value lists into a
// flat map, joining repeated values with ", " in the order they were
// sent. Returns nil for an empty header set, matching Page.Headers'
// omitempty tag.
func FlattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	flat := make(map[string]string, len(h))
	for k, v := range h {
		flat[k] = strings.Join(v, ", ")
	}
	return flat
}
