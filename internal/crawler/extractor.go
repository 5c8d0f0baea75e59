package crawler

import (
	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

var (
	nameStrategies  = strategyChain{structuredName, headingName}
	aboutStrategies = strategyChain{structuredDescription, proximityDescription}
	priceStrategies = strategyChain{structuredPrice, proximityPrice}
)

// ExtractProduct builds the record for a parsed product page. It never fails:
// every field that no strategy resolves takes its fixed default.
func ExtractProduct(page *ProductPage) ProductRecord {
	return ProductRecord{
		Type:      ProductType,
		Name:      resolveField(page, "name", nameStrategies, UnknownName),
		About:     finishAbout(resolveField(page, "about", aboutStrategies, DefaultAbout)),
		PriceFrom: resolveField(page, "price_from", priceStrategies, DefaultPrice),
	}
}

func resolveField(page *ProductPage, field string, chain strategyChain, fallback string) string {
	if v, ok := chain.resolve(page); ok {
		return v
	}
	if logger.IsDebugEnabled() {
		logger.Debug("%v", errors.NewFieldNotFound(page.URL, field))
	}
	return fallback
}
