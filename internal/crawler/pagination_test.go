package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPagination(t *testing.T) {
	html := `<html><head><link rel="next" href="/pflanzenonlineshop?page=2"></head><body>
		<nav class="pagination">
			<a href="/pflanzenonlineshop?page=2">2</a>
			<a href="/pflanzenonlineshop?page=3#top">3</a>
			<a href="/Pflanzenonlineshop/seite/4">Weiter</a>
			<a href="/pflanzenonlineshop?page=5" rel="nofollow next">»</a>
			<a href="/pflanzenonlineshop?sort=price&page=6">mehr</a>
		</nav>
		<a href="/blumen?page=2">Nächste</a>
		<a href="/pflanzenonlineshop/product-page/ficus">Ficus</a>
		<a href="mailto:info@example.com">12</a>
		<a href="/pflanzenonlineshop/1234">1234</a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	got := DiscoverPagination(doc, mustURL(t, "https://shop.example.com/pflanzenonlineshop"), "pflanzenonlineshop")
	assert.Equal(t, []string{
		"https://shop.example.com/Pflanzenonlineshop/seite/4",
		"https://shop.example.com/pflanzenonlineshop?page=2",
		"https://shop.example.com/pflanzenonlineshop?page=3",
		"https://shop.example.com/pflanzenonlineshop?page=5",
		"https://shop.example.com/pflanzenonlineshop?sort=price&page=6",
	}, got)
}

func TestDiscoverPaginationNone(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<a href="/pflanzenonlineshop/product-page/x">X</a>`))
	require.NoError(t, err)

	got := DiscoverPagination(doc, mustURL(t, "https://shop.example.com/pflanzenonlineshop"), "pflanzenonlineshop")
	assert.Empty(t, got)
}
