package crawler

import "context"

// Fixed values of the exported record
const (
	// ProductType is the category every crawled product belongs to
	ProductType = "Pflanzen"
	// UnknownName is used when neither structured data nor a heading names the product
	UnknownName = "Unbekannt"
	// DefaultAbout is used when no description candidate survives screening
	DefaultAbout = "siehe Foto"
	// DefaultPrice is the sentinel for unresolved or unparsable prices
	DefaultPrice = "0.00"

	maxAboutLen = 220
)

// ProductRecord is one exported product. Records are immutable once built.
type ProductRecord struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	About     string `json:"about"`
	PriceFrom string `json:"price_from"`
}

// FallbackRecord is emitted for a product whose page could not be fetched or parsed
func FallbackRecord() ProductRecord {
	return ProductRecord{
		Type:      ProductType,
		Name:      UnknownName,
		About:     DefaultAbout,
		PriceFrom: DefaultPrice,
	}
}

// NumberedRecord is a ProductRecord with its 1-based export id
type NumberedRecord struct {
	ID int `json:"id"`
	ProductRecord
}

// Number assigns sequential ids in insertion order
func Number(records []ProductRecord) []NumberedRecord {
	out := make([]NumberedRecord, len(records))
	for i, r := range records {
		out[i] = NumberedRecord{ID: i + 1, ProductRecord: r}
	}
	return out
}

// Fetcher retrieves the raw body of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f(ctx, url)
func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
