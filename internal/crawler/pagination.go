package crawler

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/pflanzencrawler/helpers"
)

// paginationLabels are anchor texts that advance a listing, compared lowercased
var paginationLabels = map[string]struct{}{
	"weiter":  {},
	"next":    {},
	"nächste": {},
	"›":       {},
	"»":       {},
}

var rePageNumber = regexp.MustCompile(`^\d{1,3}$`)

// DiscoverPagination returns the listing URLs a listing page links to: rel=next
// links, anchors labelled like pagination controls or page numbers, and links
// carrying a page query parameter. Only URLs whose path contains the category
// segment are kept. The result is sorted and free of duplicates.
func DiscoverPagination(doc *goquery.Document, current *url.URL, categorySegment string) []string {
	found := make(map[string]struct{})
	segment := strings.ToLower(categorySegment)

	add := func(s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, ok := resolveListingURL(current, href)
		if !ok {
			return
		}
		if !strings.Contains(strings.ToLower(resolved.Path), segment) {
			return
		}
		found[resolved.String()] = struct{}{}
	}

	// (a) explicit next relation
	doc.Find(`a[rel~="next"], link[rel~="next"]`).Each(func(_ int, s *goquery.Selection) {
		add(s)
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		// (b) pagination vocabulary or a page number
		label := strings.ToLower(helpers.CollapseSpaces(s.Text()))
		if _, ok := paginationLabels[label]; ok || rePageNumber.MatchString(label) {
			add(s)
			return
		}

		// (c) page query parameter
		href, _ := s.Attr("href")
		if resolved, ok := resolveListingURL(current, href); ok && resolved.Query().Has("page") {
			add(s)
		}
	})

	out := make([]string, 0, len(found))
	for u := range found {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// resolveListingURL resolves href against the current page, keeping only http(s) targets
func resolveListingURL(current *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	resolved := current.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, false
	}
	resolved.Fragment = ""
	return resolved, true
}
