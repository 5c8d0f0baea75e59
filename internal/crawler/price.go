package crawler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// "5,-" and "5.–" are German shorthand for whole euro amounts
var wholeAmountSuffix = regexp.MustCompile(`[.,]?\s*[-–—]+$`)

// NormalizePrice converts a raw amount in European (1.234,56) or US (1,234.56)
// notation, or a bare decimal, into a two-decimal string. Anything that does not
// parse yields DefaultPrice.
func NormalizePrice(raw string) string {
	s := strings.TrimSpace(raw)
	s = wholeAmountSuffix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".,")
	if s == "" {
		return DefaultPrice
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// 1.234,56 -> 1234.56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// 1,234.56 -> 1234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return DefaultPrice
	}
	if v == 0 {
		// avoids "-0.00"
		return DefaultPrice
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// priceLess reports whether canonical price a is lower than b
func priceLess(a, b string) bool {
	av, aerr := strconv.ParseFloat(a, 64)
	bv, berr := strconv.ParseFloat(b, 64)
	if aerr != nil || berr != nil {
		return aerr == nil
	}
	return av < bv
}
