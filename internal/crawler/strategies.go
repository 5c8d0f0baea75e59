package crawler

import (
	"regexp"
	"strings"

	"sjsage522/pflanzencrawler/helpers"
)

// fieldStrategy tries to recover one field from a product page
type fieldStrategy func(p *ProductPage) (string, bool)

// strategyChain is a ranked list of strategies; the first present value wins
type strategyChain []fieldStrategy

// resolve applies the strategies in order
func (c strategyChain) resolve(p *ProductPage) (string, bool) {
	for _, strategy := range c {
		if strategy == nil {
			continue
		}
		if v, ok := strategy(p); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

var (
	rePriceFrom = regexp.MustCompile(`(?i)Preis\s*ab[^\d€]*€?\s*([0-9][\d.,]*)`)
	reEuroPrice = regexp.MustCompile(`€\s*([0-9][\d.,]*)`)
	rePriceWord = regexp.MustCompile(`(?i)preis`)
)

const minAboutLen = 12

func structuredName(p *ProductPage) (string, bool) {
	name := p.structuredData().Name
	return name, name != ""
}

func structuredDescription(p *ProductPage) (string, bool) {
	about := p.structuredData().Description
	return about, about != ""
}

func structuredPrice(p *ProductPage) (string, bool) {
	price := p.structuredData().MinPrice
	return price, price != ""
}

func headingName(p *ProductPage) (string, bool) {
	h := p.Heading()
	if h.Length() == 0 {
		return "", false
	}
	name := visibleText(h)
	return name, name != ""
}

// proximityPrice looks for "Preis ab €N" and then a bare "€N", first in the
// heading's container and then in the whole page.
func proximityPrice(p *ProductPage) (string, bool) {
	var texts []string
	if h := p.Heading(); h.Length() > 0 {
		texts = append(texts, visibleText(h.Parent()))
	}
	texts = append(texts, visibleText(p.Doc.Selection))

	for _, text := range texts {
		if price := priceFromText(text); price != DefaultPrice {
			return price, true
		}
	}
	return "", false
}

// priceFromText extracts the first "Preis ab" amount, else the first euro amount
func priceFromText(text string) string {
	m := rePriceFrom.FindStringSubmatch(text)
	if m == nil {
		m = reEuroPrice.FindStringSubmatch(text)
	}
	if m == nil {
		return DefaultPrice
	}
	return NormalizePrice(m[1])
}

// proximityDescription picks the shortest acceptable text next to the heading
func proximityDescription(p *ProductPage) (string, bool) {
	h := p.Heading()
	if h.Length() == 0 {
		return "", false
	}

	candidates := []string{visibleText(h.Parent())}
	if next := nextParagraph(h); next != nil {
		candidates = append(candidates, nodeText(next))
	}

	best := ""
	for _, c := range candidates {
		if !acceptableAbout(c) {
			continue
		}
		if best == "" || helpers.RuneLen(c) < helpers.RuneLen(best) {
			best = c
		}
	}
	return best, best != ""
}

// acceptableAbout rejects price blurbs, page dumps and uninformative snippets
func acceptableAbout(text string) bool {
	n := helpers.RuneLen(text)
	if n < minAboutLen || n > maxAboutLen {
		return false
	}
	return !rePriceWord.MatchString(text)
}

// finishAbout collapses whitespace and shortens long descriptions to 217
// characters plus an ellipsis
func finishAbout(about string) string {
	about = helpers.CollapseSpaces(about)
	if helpers.RuneLen(about) > maxAboutLen {
		return helpers.Ellipsize(about, 218)
	}
	return about
}

// stripPriceLabel cuts listing anchor text before a "Preis ab" label
func stripPriceLabel(text string) string {
	if loc := rePriceLabel.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

var rePriceLabel = regexp.MustCompile(`(?i)Preis\s*ab`)
