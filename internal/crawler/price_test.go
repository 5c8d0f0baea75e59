package crawler

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"european decimal comma", "25,00", "25.00"},
		{"european thousands", "1.234,56", "1234.56"},
		{"us thousands", "1,234.56", "1234.56"},
		{"bare decimal", "12.5", "12.50"},
		{"integer", "8", "8.00"},
		{"surrounding spaces", "  19,90 ", "19.90"},
		{"whole euro dash", "5,-", "5.00"},
		{"whole euro en dash", "5.–", "5.00"},
		{"trailing separator", "25,", "25.00"},
		{"empty", "", "0.00"},
		{"letters", "abc", "0.00"},
		{"multiple commas", "1,234,567", "0.00"},
		{"negative", "-3,00", "0.00"},
		{"zero", "0,00", "0.00"},
		{"infinity", "inf", "0.00"},
		{"not a number", "NaN", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePrice(tt.input))
		})
	}
}

func TestNormalizePriceCanonicalAndIdempotent(t *testing.T) {
	canonical := regexp.MustCompile(`^\d+\.\d{2}$`)
	inputs := []string{"25,00", "1.234,56", "1,234.56", "0.5", "99", "12.345", "", "x", "1.000.000,99"}

	for _, in := range inputs {
		out := NormalizePrice(in)
		assert.Regexp(t, canonical, out, "input %q", in)
		assert.Equal(t, out, NormalizePrice(out), "input %q", in)
	}
}

func TestPriceLess(t *testing.T) {
	assert.True(t, priceLess("8.00", "12.50"))
	assert.False(t, priceLess("12.50", "8.00"))
	assert.False(t, priceLess("8.00", "8.00"))
	assert.True(t, priceLess("8.00", "bogus"))
}
