package crawler

import (
	"encoding/json"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/pflanzencrawler/helpers"
	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// structuredFields holds what the page's ld+json Product blocks say about the product
type structuredFields struct {
	Name        string
	Description string
	// MinPrice is the lowest normalized offer price over all Product blocks, or ""
	MinPrice string
}

// extractStructuredData decodes every application/ld+json block of the page.
// A block that does not decode is skipped; it never affects the other blocks.
func extractStructuredData(doc *goquery.Document, pageURL string) *structuredFields {
	out := &structuredFields{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var block interface{}
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			logger.Debug("%v", errors.NewParsing(pageURL, "skipping ld+json block "+strconv.Itoa(i), err))
			return
		}

		for _, product := range collectProducts(block) {
			out.merge(product)
		}
	})

	return out
}

// merge folds one Product object into the accumulated fields.
// Name and description come from the first block that has them; price is the minimum.
func (f *structuredFields) merge(product map[string]interface{}) {
	if f.Name == "" {
		f.Name = cleanJSONText(product["name"])
	}
	if f.Description == "" {
		f.Description = cleanJSONText(product["description"])
	}
	for _, price := range offerPrices(product["offers"]) {
		if f.MinPrice == "" || priceLess(price, f.MinPrice) {
			f.MinPrice = price
		}
	}
}

// collectProducts walks a decoded block and returns every object typed Product,
// including ones nested in @graph, arrays or other entities.
func collectProducts(v interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch t := v.(type) {
		case []interface{}:
			for _, item := range t {
				walk(item)
			}
		case map[string]interface{}:
			if hasType(t, "Product") {
				out = append(out, t)
			}
			keys := make([]string, 0, len(t))
			for key := range t {
				if key != "offers" {
					keys = append(keys, key)
				}
			}
			sort.Strings(keys)
			for _, key := range keys {
				walk(t[key])
			}
		}
	}
	walk(v)
	return out
}

// hasType reports whether the object's @type is, or lists, typeName
func hasType(obj map[string]interface{}, typeName string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.EqualFold(t, typeName)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, typeName) {
				return true
			}
		}
	}
	return false
}

// offerPrices returns the normalized prices of an offers value, which may be a
// single Offer/AggregateOffer or an array of them. lowPrice wins over price.
func offerPrices(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			out = append(out, offerPrices(item)...)
		}
	case map[string]interface{}:
		for _, key := range []string{"lowPrice", "price"} {
			if price, ok := jsonPrice(t[key]); ok {
				out = append(out, price)
				return out
			}
		}
		if spec, ok := t["priceSpecification"]; ok {
			out = append(out, offerPrices(spec)...)
		}
	}
	return out
}

// jsonPrice normalizes a price given as a JSON number or string.
// Zero and unparsable values are treated as absent.
func jsonPrice(v interface{}) (string, bool) {
	var price string
	switch t := v.(type) {
	case float64:
		price = NormalizePrice(strconv.FormatFloat(t, 'f', -1, 64))
	case string:
		price = NormalizePrice(t)
	default:
		return "", false
	}
	if price == DefaultPrice {
		return "", false
	}
	return price, true
}

// cleanJSONText unescapes HTML entities and collapses whitespace of a string value
func cleanJSONText(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return helpers.CollapseSpaces(html.UnescapeString(s))
}
