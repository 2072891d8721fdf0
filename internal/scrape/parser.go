package scrape

import (
	"net/url"
	"strings"

	"bookcatalog/internal/book"

	"github.com/PuerkitoBio/goquery"
)

// CategoryRef points at the first listing page of one category.
type CategoryRef struct {
	Name string
	URL  string
}

// starRatings are the CSS class names the site uses on p.star-rating.
var starRatings = map[string]bool{
	"One":   true,
	"Two":   true,
	"Three": true,
	"Four":  true,
	"Five":  true,
}

// ParseCategories extracts the sidebar category links from the landing page.
func ParseCategories(doc *goquery.Document, pageURL *url.URL) []CategoryRef {
	var cats []CategoryRef
	doc.Find("div.side_categories ul li ul li a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if name == "" || !ok {
			return
		}
		cats = append(cats, CategoryRef{Name: name, URL: resolveURL(pageURL, href)})
	})
	return cats
}

// ParseBookCards extracts the product cards from one listing page. The
// records stay raw; the normalizer owns all interpretation.
func ParseBookCards(doc *goquery.Document, pageURL *url.URL, category string) []book.RawBook {
	var out []book.RawBook
	doc.Find("article.product_pod").Each(func(_ int, card *goquery.Selection) {
		a := card.Find("h3 a")
		raw := book.RawBook{
			Title:        strings.TrimSpace(a.AttrOr("title", "")),
			Price:        strings.TrimSpace(card.Find("p.price_color").Text()),
			Availability: strings.TrimSpace(card.Find("p.instock.availability").Text()),
			Category:     category,
		}

		if href, ok := a.Attr("href"); ok {
			raw.ProductURL = resolveURL(pageURL, href)
		}
		if src, ok := card.Find("div.image_container img").Attr("src"); ok {
			raw.ImageURL = resolveURL(pageURL, src)
		}

		if classes, ok := card.Find("p.star-rating").Attr("class"); ok {
			for _, cls := range strings.Fields(classes) {
				if starRatings[cls] {
					raw.Rating = cls
					break
				}
			}
		}

		out = append(out, raw)
	})
	return out
}

// ParseNextURL returns the absolute URL of the next listing page, or ""
// on the last page.
func ParseNextURL(doc *goquery.Document, pageURL *url.URL) string {
	href, ok := doc.Find("li.next > a").Attr("href")
	if !ok {
		return ""
	}
	return resolveURL(pageURL, href)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
