package crawler

import (
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arcbound/siteprowl/urlutil"
)

// canonicalLinkHeaderRE matches a Link: <url>; rel="canonical" response
// header, per spec.md §4.4 step 4.
var canonicalLinkHeaderRE = regexp.MustCompile(`<([^>]+)>;\s*rel="canonical"`)

// ParsePage turns an HTTP response into a Page, per spec.md §4.4. depth
// is the depth of the request that produced the response. Any per-field
// tokenization failure is swallowed and yields the default (nil/empty)
// for that field only — the Page is still produced.
func ParsePage(resp *http.Response, depth int) Page {
	requestURL := resp.Request.URL.String()

	if !looksLikeHTML(resp) {
		return Page{
			URL:          requestURL,
			CanonicalURL: requestURL,
			Fetched:      true,
			Headers:      FlattenHeaders(resp.Header),
			NoIndex:      true,
			Depth:        depth,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// Tokenization failed entirely: still produce a Page, with every
		// HTML-derived field at its default.
		return Page{
			URL:          requestURL,
			CanonicalURL: requestURL,
			Fetched:      true,
			Headers:      FlattenHeaders(resp.Header),
			NoIndex:      true,
			Depth:        depth,
		}
	}

	base := parseBaseURL(doc, requestURL)
	title := parseTitle(doc)
	canonical := parseCanonicalURL(resp.Header, doc, base, requestURL)
	noIndex := parseNoIndex(resp.Header, doc)
	noFollowPage := parseNoFollowPage(resp.Header, doc)
	links := parseLinks(doc, base, requestURL, noFollowPage, depth+1)
	assets := parseAssets(doc, base, requestURL, depth+1)

	return Page{
		URL:          requestURL,
		CanonicalURL: canonical,
		Fetched:      true,
		Headers:      FlattenHeaders(resp.Header),
		NoIndex:      noIndex,
		Title:        title,
		Links:        links,
		Assets:       assets,
		Depth:        depth,
	}
}

// looksLikeHTML classifies a response as HTML iff status == 200 AND the
// Content-Type header contains the substring "html" — spec.md §4.4.
func looksLikeHTML(resp *http.Response) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "html")
}

func parseBaseURL(doc *goquery.Document, requestURL string) string {
	href, ok := doc.Find("base").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return requestURL
	}
	resolved, err := urlutil.Resolve(requestURL, href)
	if err != nil {
		return requestURL
	}
	return resolved
}

func parseTitle(doc *goquery.Document) *string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}
	text := sel.Text()
	return &text
}

func parseCanonicalURL(headers http.Header, doc *goquery.Document, base, requestURL string) string {
	if link := headers.Get("Link"); link != "" {
		if m := canonicalLinkHeaderRE.FindStringSubmatch(link); m != nil {
			if resolved, err := urlutil.Resolve(base, m[1]); err == nil {
				return resolved
			}
		}
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		if resolved, err := urlutil.Resolve(base, href); err == nil {
			return resolved
		}
	}

	resolved, err := urlutil.Resolve(base, requestURL)
	if err != nil {
		return requestURL
	}
	return resolved
}

func robotsMetaContent(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[name="robots"]`).First().Attr("content")
	return content
}

func parseNoIndex(headers http.Header, doc *goquery.Document) bool {
	meta := strings.ToLower(robotsMetaContent(doc))
	header := strings.ToLower(headers.Get("X-Robots-Tag"))
	return strings.Contains(meta, "noindex") || strings.Contains(header, "noindex")
}

func parseNoFollowPage(headers http.Header, doc *goquery.Document) bool {
	meta := strings.ToLower(robotsMetaContent(doc))
	header := strings.ToLower(headers.Get("X-Robots-Tag"))
	return strings.Contains(meta, "nofollow") || strings.Contains(header, "nofollow")
}

func parseLinks(doc *goquery.Document, base, requestURL string, pageNoFollow bool, depth int) []Link {
	type key struct {
		href     string
		noFollow bool
		external bool
	}
	seen := make(map[key]bool)
	var links []Link

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved, err := urlutil.Resolve(base, href)
		if err != nil {
			return
		}
		rel, _ := sel.Attr("rel")
		noFollow := pageNoFollow || strings.Contains(strings.ToLower(rel), "nofollow")
		link := Link{
			Type:     LinkAnchor,
			Href:     resolved,
			NoFollow: noFollow,
			External: urlutil.IsExternal(requestURL, resolved),
			Depth:    depth,
			Referrer: requestURL,
		}
		k := key{link.Href, link.NoFollow, link.External}
		if seen[k] {
			return
		}
		seen[k] = true
		links = append(links, link)
	})

	return links
}

// assetSelector pairs a CSS selector with the LinkType and attribute it
// yields, matching spec.md §4.4 step 8's tag list.
type assetSelector struct {
	selector string
	linkType LinkType
	attr     string
}

var assetSelectors = []assetSelector{
	{"script[src]", LinkScript, "src"},
	{"img[src]", LinkImg, "src"},
	{"embed[src]", LinkEmbed, "src"},
	{"audio[src]", LinkAudio, "src"},
	{"video[src]", LinkVideo, "src"},
	{"iframe[src]", LinkIframe, "src"},
	{"object[data]", LinkObject, "data"},
}

func parseAssets(doc *goquery.Document, base, requestURL string, depth int) []Link {
	type key struct {
		typ  LinkType
		href string
	}
	seen := make(map[key]bool)
	var assets []Link

	add := func(typ LinkType, rawHref string) {
		resolved, err := urlutil.Resolve(base, rawHref)
		if err != nil {
			return
		}
		k := key{typ, resolved}
		if seen[k] {
			return
		}
		seen[k] = true
		assets = append(assets, Link{
			Type:     typ,
			Href:     resolved,
			External: urlutil.IsExternal(requestURL, resolved),
			Depth:    depth,
			Referrer: requestURL,
		})
	}

	for _, as := range assetSelectors {
		doc.Find(as.selector).Each(func(_ int, sel *goquery.Selection) {
			if v, ok := sel.Attr(as.attr); ok {
				add(as.linkType, v)
			}
		})
	}

	doc.Find("link[rel][href]").Each(func(_ int, sel *goquery.Selection) {
		rel, _ := sel.Attr("rel")
		href, _ := sel.Attr("href")
		if rel == "" || href == "" {
			return
		}
		// rel may be space-separated (multi-valued); join with "," per
		// spec.md §4.4 step 8.
		relType := LinkType(strings.Join(strings.Fields(rel), ","))
		add(relType, href)
	})

	sort.Slice(assets, func(i, j int) bool {
		a, b := assets[i], assets[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Href != b.Href {
			return a.Href < b.Href
		}
		if a.External != b.External {
			return !a.External && b.External
		}
		return a.Depth < b.Depth
	})

	return assets
}
