package crawler

// ProductResult is the outcome of the per-product pipeline (fetch, parse, extract)
type ProductResult struct {
	URL    string
	Record ProductRecord
	Err    error
}

// Succeeded wraps an extracted record
func Succeeded(url string, record ProductRecord) ProductResult {
	return ProductResult{URL: url, Record: record}
}

// Failed records why a product could not be extracted
func Failed(url string, err error) ProductResult {
	return ProductResult{URL: url, Err: err}
}

// OK reports whether the pipeline produced a record
func (r ProductResult) OK() bool {
	return r.Err == nil
}

// RecordOr returns the extracted record, or fallback when the pipeline failed
func (r ProductResult) RecordOr(fallback ProductRecord) ProductRecord {
	if r.OK() {
		return r.Record
	}
	return fallback
}
