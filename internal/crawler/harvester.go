package crawler

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/pflanzencrawler/pkg/errors"
)

// productPathSegment marks links to product detail pages
const productPathSegment = "/product-page/"

// similarProductsMarkers start the recommendation widgets, whose links look
// exactly like category members
var similarProductsMarkers = []string{"ähnliche produkte", "&auml;hnliche produkte"}

// ProductLink is a product detail URL found on a listing page
type ProductLink struct {
	URL  string
	Path string
	// Text is the anchor text, used to name the product if its page fails
	Text string
}

// HarvestProductLinks returns the product links of a listing page in document
// order, one per resolved path. Markup after the similar-products marker is ignored.
func HarvestProductLinks(rawHTML string, base *url.URL) ([]ProductLink, error) {
	content := truncateAtSimilarProducts(rawHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, errors.NewParsing(base.String(), "listing HTML parsing failed", err)
	}

	var links []ProductLink
	seen := make(map[string]struct{})

	doc.Find(`a[href*="` + productPathSegment + `"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		if _, dup := seen[resolved.Path]; dup {
			return
		}
		seen[resolved.Path] = struct{}{}

		links = append(links, ProductLink{
			URL:  resolved.String(),
			Path: resolved.Path,
			Text: visibleText(s),
		})
	})

	return links, nil
}

// truncateAtSimilarProducts cuts the markup at the earliest marker occurrence
func truncateAtSimilarProducts(rawHTML string) string {
	cut := -1
	for _, marker := range similarProductsMarkers {
		if i := indexFold(rawHTML, marker); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return rawHTML
	}
	return rawHTML[:cut]
}

// indexFold is a case-insensitive strings.Index returning a byte offset into s
func indexFold(s, substr string) int {
	sub := []rune(substr)
	if len(sub) == 0 {
		return 0
	}
	for i := range s {
		j, k := i, 0
		for k < len(sub) && j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if unicode.ToLower(r) != unicode.ToLower(sub[k]) {
				break
			}
			j += size
			k++
		}
		if k == len(sub) {
			return i
		}
	}
	return -1
}
