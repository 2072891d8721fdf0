package scrape

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const landingHTML = `
<html><body>
<div class="side_categories">
  <ul class="nav">
    <li>
      <a href="catalogue/category/books_1/index.html">Books</a>
      <ul>
        <li><a href="catalogue/category/books/poetry_23/index.html"> Poetry </a></li>
        <li><a href="catalogue/category/books/fiction_10/index.html">Fiction</a></li>
      </ul>
    </li>
  </ul>
</div>
</body></html>`

const listingHTML = `
<html><body>
<section>
  <ol class="row">
    <li>
      <article class="product_pod">
        <div class="image_container">
          <a href="../../../a-light-in-the-attic_1000/index.html">
            <img src="../../../../media/cache/fe/72/attic.jpg" alt="A Light in the Attic" class="thumbnail">
          </a>
        </div>
        <p class="star-rating Three"></p>
        <h3><a href="../../../a-light-in-the-attic_1000/index.html" title="A Light in the Attic">A Light in the ...</a></h3>
        <div class="product_price">
          <p class="price_color">£51.77</p>
          <p class="instock availability">
            <i class="icon-ok"></i>
            In stock
          </p>
        </div>
      </article>
    </li>
    <li>
      <article class="product_pod">
        <p class="star-rating Five"></p>
        <h3><a href="../../../olio_984/index.html" title="Olio">Olio</a></h3>
        <div class="product_price">
          <p class="price_color">£23.88</p>
          <p class="instock availability">In stock</p>
        </div>
      </article>
    </li>
  </ol>
  <ul class="pager">
    <li class="next"><a href="page-2.html">next</a></li>
  </ul>
</section>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestParseCategories(t *testing.T) {
	doc := parseDoc(t, landingHTML)
	base := mustParseURL(t, "https://books.toscrape.com/")

	cats := ParseCategories(doc, base)
	require.Len(t, cats, 2)
	assert.Equal(t, "Poetry", cats[0].Name)
	assert.Equal(t, "https://books.toscrape.com/catalogue/category/books/poetry_23/index.html", cats[0].URL)
	assert.Equal(t, "Fiction", cats[1].Name)
}

func TestParseBookCards(t *testing.T) {
	doc := parseDoc(t, listingHTML)
	pageURL := mustParseURL(t, "https://books.toscrape.com/catalogue/category/books/poetry_23/index.html")

	cards := ParseBookCards(doc, pageURL, "Poetry")
	require.Len(t, cards, 2)

	first := cards[0]
	assert.Equal(t, "A Light in the Attic", first.Title)
	assert.Equal(t, "£51.77", first.Price)
	assert.Equal(t, "Three", first.Rating)
	assert.Equal(t, "Poetry", first.Category)
	assert.Equal(t, "In stock", first.Availability)
	assert.Equal(t, "https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html", first.ProductURL)
	assert.Equal(t, "https://books.toscrape.com/media/cache/fe/72/attic.jpg", first.ImageURL)

	second := cards[1]
	assert.Equal(t, "Olio", second.Title)
	assert.Equal(t, "Five", second.Rating)
	assert.Empty(t, second.ImageURL)
}

func TestParseNextURL(t *testing.T) {
	pageURL := mustParseURL(t, "https://books.toscrape.com/catalogue/category/books/poetry_23/index.html")

	t.Run("has next", func(t *testing.T) {
		doc := parseDoc(t, listingHTML)
		next := ParseNextURL(doc, pageURL)
		assert.Equal(t, "https://books.toscrape.com/catalogue/category/books/poetry_23/page-2.html", next)
	})

	t.Run("last page", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><ul class="pager"></ul></body></html>`)
		assert.Empty(t, ParseNextURL(doc, pageURL))
	})
}
