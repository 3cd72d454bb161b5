package crawler

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func newHTMLResponse(t *testing.T, requestURL, body string, headers http.Header) *http.Response {
	t.Helper()
	if headers == nil {
		headers = http.Header{}
	}
	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "text/html; charset=utf-8")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     headers,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: mustParseURL(t, requestURL)},
	}
}

func TestParsePage_NonHTML(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/pdf"}},
		Body:       io.NopCloser(strings.NewReader("%PDF-1.4")),
		Request:    &http.Request{URL: mustParseURL(t, "http://example.com/doc.pdf")},
	}
	page := ParsePage(resp, 0)

	if !page.Fetched || !page.NoIndex {
		t.Errorf("non-HTML page should be fetched=true noindex=true, got %+v", page)
	}
	if page.CanonicalURL != "http://example.com/doc.pdf" {
		t.Errorf("CanonicalURL = %q, want request URL", page.CanonicalURL)
	}
	if len(page.Links) != 0 || len(page.Assets) != 0 {
		t.Error("non-HTML page should have no links/assets")
	}
	if page.Title != nil {
		t.Error("non-HTML page should have nil title")
	}
}

func TestParsePage_NonHTML_Non200(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader("<html></html>")),
		Request:    &http.Request{URL: mustParseURL(t, "http://example.com/missing")},
	}
	page := ParsePage(resp, 0)
	if !page.NoIndex {
		t.Error("404 response should be treated as non-HTML (noindex)")
	}
}

func TestParsePage_Title(t *testing.T) {
	resp := newHTMLResponse(t, "http://t/", "<html><head><title>Hi</title></head></html>", nil)
	page := ParsePage(resp, 0)
	if page.Title == nil || *page.Title != "Hi" {
		t.Errorf("Title = %v, want Hi", page.Title)
	}
}

func TestParsePage_TitleAbsent(t *testing.T) {
	resp := newHTMLResponse(t, "http://t/", "<html><body>no title here</body></html>", nil)
	page := ParsePage(resp, 0)
	if page.Title != nil {
		t.Errorf("Title = %v, want nil", *page.Title)
	}
}

func TestParsePage_CanonicalFromHeader(t *testing.T) {
	headers := http.Header{"Link": []string{`<http://t/canonical>; rel="canonical"`}}
	resp := newHTMLResponse(t, "http://t/page", "<html></html>", headers)
	page := ParsePage(resp, 0)
	if page.CanonicalURL != "http://t/canonical" {
		t.Errorf("CanonicalURL = %q, want http://t/canonical", page.CanonicalURL)
	}
}

func TestParsePage_CanonicalFromTag(t *testing.T) {
	body := `<html><head><link rel="canonical" href="/c"></head></html>`
	resp := newHTMLResponse(t, "http://t/page", body, nil)
	page := ParsePage(resp, 0)
	if page.CanonicalURL != "http://t/c" {
		t.Errorf("CanonicalURL = %q, want http://t/c", page.CanonicalURL)
	}
}

func TestParsePage_CanonicalFallsBackToRequestURL(t *testing.T) {
	resp := newHTMLResponse(t, "http://t/page", "<html></html>", nil)
	page := ParsePage(resp, 0)
	if page.CanonicalURL != "http://t/page" {
		t.Errorf("CanonicalURL = %q, want http://t/page", page.CanonicalURL)
	}
}

func TestParsePage_NoIndexFromMeta(t *testing.T) {
	body := `<html><head><meta name="robots" content="noindex, nofollow"></head></html>`
	resp := newHTMLResponse(t, "http://t/", body, nil)
	page := ParsePage(resp, 0)
	if !page.NoIndex {
		t.Error("expected NoIndex=true from meta tag")
	}
}

func TestParsePage_NoIndexFromHeader(t *testing.T) {
	headers := http.Header{"X-Robots-Tag": []string{"noindex"}}
	resp := newHTMLResponse(t, "http://t/", "<html></html>", headers)
	page := ParsePage(resp, 0)
	if !page.NoIndex {
		t.Error("expected NoIndex=true from X-Robots-Tag header")
	}
}

func TestParsePage_PageLevelNoFollowTaintsLinks(t *testing.T) {
	body := `<html><head><meta name="robots" content="nofollow"></head>
<body><a href="/a">a</a></body></html>`
	resp := newHTMLResponse(t, "http://t/", body, nil)
	page := ParsePage(resp, 0)
	if len(page.Links) != 1 || !page.Links[0].NoFollow {
		t.Errorf("expected single nofollow-tainted link, got %+v", page.Links)
	}
}

func TestParsePage_Links(t *testing.T) {
	body := `<html><body>
<a href="/a">a</a>
<a href="http://other.com/x">external</a>
<a href="/a">dup</a>
<a href="/b" rel="nofollow">b</a>
</body></html>`
	resp := newHTMLResponse(t, "http://t/", body, nil)
	page := ParsePage(resp, 2)

	if len(page.Links) != 3 {
		t.Fatalf("expected 3 deduplicated links, got %d: %+v", len(page.Links), page.Links)
	}

	byHref := map[string]Link{}
	for _, l := range page.Links {
		byHref[l.Href] = l
	}

	a := byHref["http://t/a"]
	if a.External || a.NoFollow || a.Type != LinkAnchor || a.Depth != 3 || a.Referrer != "http://t/" {
		t.Errorf("link /a = %+v, unexpected", a)
	}

	ext := byHref["http://other.com/x"]
	if !ext.External {
		t.Error("external link should have External=true")
	}

	b := byHref["http://t/b"]
	if !b.NoFollow {
		t.Error("rel=nofollow link should have NoFollow=true")
	}
}

func TestParsePage_EmptyHrefUsesBase(t *testing.T) {
	body := `<html><body><a href="">self</a></body></html>`
	resp := newHTMLResponse(t, "http://t/page", body, nil)
	page := ParsePage(resp, 0)
	if len(page.Links) != 1 || page.Links[0].Href != "http://t/page" {
		t.Errorf("expected link resolved to request URL, got %+v", page.Links)
	}
}

func TestParsePage_BaseHrefTag(t *testing.T) {
	body := `<html><head><base href="http://other.com/dir/"></head>
<body><a href="x">x</a></body></html>`
	resp := newHTMLResponse(t, "http://t/page", body, nil)
	page := ParsePage(resp, 0)
	if len(page.Links) != 1 || page.Links[0].Href != "http://other.com/dir/x" {
		t.Errorf("expected link resolved against <base>, got %+v", page.Links)
	}
}

func TestParsePage_AssetsDedupedAndSorted(t *testing.T) {
	body := `<html><head>
<link rel="stylesheet" href="/s.css">
</head><body>
<img src="/b.png">
<img src="/a.png">
<img src="/a.png">
<script src="/app.js"></script>
</body></html>`
	resp := newHTMLResponse(t, "http://t/", body, nil)
	page := ParsePage(resp, 0)

	if len(page.Assets) != 4 {
		t.Fatalf("expected 4 deduplicated assets, got %d: %+v", len(page.Assets), page.Assets)
	}

	for i := 1; i < len(page.Assets); i++ {
		prev, cur := page.Assets[i-1], page.Assets[i]
		lessOrEqual := prev.Type < cur.Type || (prev.Type == cur.Type && prev.Href <= cur.Href)
		if !lessOrEqual {
			t.Errorf("assets not sorted at index %d: %+v then %+v", i, prev, cur)
		}
	}
}

func TestParsePage_AssetTypes(t *testing.T) {
	body := `<html><body>
<embed src="/e">
<audio src="/au"></audio>
<video src="/v"></video>
<iframe src="/i"></iframe>
<object data="/o"></object>
</body></html>`
	resp := newHTMLResponse(t, "http://t/", body, nil)
	page := ParsePage(resp, 0)

	types := map[LinkType]bool{}
	for _, a := range page.Assets {
		types[a.Type] = true
	}
	for _, want := range []LinkType{LinkEmbed, LinkAudio, LinkVideo, LinkIframe, LinkObject} {
		if !types[want] {
			t.Errorf("missing asset of type %q in %+v", want, page.Assets)
		}
	}
}
