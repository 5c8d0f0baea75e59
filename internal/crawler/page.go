package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sjsage522/pflanzencrawler/helpers"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// ProductPage is a parsed product detail page
type ProductPage struct {
	URL string
	Doc *goquery.Document

	fields  *structuredFields
	heading *goquery.Selection
}

// NewProductPage parses a product page body
func NewProductPage(rawURL string, body []byte) (*ProductPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewParsing(rawURL, "HTML parsing failed", err)
	}
	return &ProductPage{URL: rawURL, Doc: doc}, nil
}

// structuredData returns the page's decoded structured data, decoding it on first use
func (p *ProductPage) structuredData() *structuredFields {
	if p.fields == nil {
		p.fields = extractStructuredData(p.Doc, p.URL)
	}
	return p.fields
}

// Heading returns the first h1 or h2 in document order (possibly empty)
func (p *ProductPage) Heading() *goquery.Selection {
	if p.heading == nil {
		p.heading = p.Doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			name := goquery.NodeName(s)
			return name == "h1" || name == "h2"
		}).First()
	}
	return p.heading
}

// skipTextOf lists elements whose content never counts as visible text
var skipTextOf = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// visibleText joins the trimmed text nodes under the selection with single
// spaces, skipping script-like elements.
func visibleText(sel *goquery.Selection) string {
	return nodeText(sel.Nodes...)
}

func nodeText(nodes ...*html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if skipTextOf[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return helpers.CollapseSpaces(strings.Join(parts, " "))
}

// paragraphLike are the elements a description may live in
var paragraphLike = map[string]bool{"p": true, "div": true, "span": true, "section": true}

// nextParagraph returns the first paragraph-like element with visible text that
// follows the selection in document order, outside the selection's own subtree.
func nextParagraph(sel *goquery.Selection) *html.Node {
	if sel.Length() == 0 {
		return nil
	}

	var search func(n *html.Node) *html.Node
	search = func(n *html.Node) *html.Node {
		if n.Type != html.ElementNode || skipTextOf[n.Data] {
			return nil
		}
		if paragraphLike[n.Data] && nodeText(n) != "" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := search(c); found != nil {
				return found
			}
		}
		return nil
	}

	for n := sel.Nodes[0]; n != nil; n = n.Parent {
		for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
			if found := search(sib); found != nil {
				return found
			}
		}
	}
	return nil
}
