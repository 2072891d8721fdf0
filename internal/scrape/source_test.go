package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidebarPage(links string) string {
	return fmt.Sprintf(`<html><body>
<div class="side_categories"><ul><li><a href="#">Books</a><ul>%s</ul></li></ul></div>
</body></html>`, links)
}

func cardHTML(title, price, rating string) string {
	return fmt.Sprintf(`
<article class="product_pod">
  <p class="star-rating %s"></p>
  <h3><a href="book.html" title="%s">%s</a></h3>
  <div class="product_price">
    <p class="price_color">%s</p>
    <p class="instock availability">In stock</p>
  </div>
</article>`, rating, title, title, price)
}

func drainSource(t *testing.T, src *Source) ([]book.RawBook, error) {
	t.Helper()
	var out []book.RawBook
	for {
		item, err := src.Next(context.Background())
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
}

func TestSourceCrawl(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sidebarPage(
			`<li><a href="/poetry/index.html">Poetry</a></li>
<li><a href="/travel/index.html">Travel</a></li>`))
	})
	mux.HandleFunc("/poetry/index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>`+
			cardHTML("Olio", "£23.88", "One")+
			cardHTML("The Black Maria", "£52.15", "Two")+
			`<ul class="pager"><li class="next"><a href="page-2.html"></a></li></ul></body></html>`)
	})
	mux.HandleFunc("/poetry/page-2.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>`+cardHTML("Shakespeare's Sonnets", "£20.66", "Four")+`</body></html>`)
	})
	mux.HandleFunc("/travel/index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>`+cardHTML("It's Only the Himalayas", "£45.17", "Two")+`</body></html>`)
	})

	client := NewClient(srv.URL+"/", "bookcatalog-test", 100, 0)
	items, err := drainSource(t, NewSource(client))
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "Olio", items[0].Title)
	assert.Equal(t, "Poetry", items[0].Category)
	assert.Equal(t, "£23.88", items[0].Price)

	assert.Equal(t, "Shakespeare's Sonnets", items[2].Title)
	assert.Equal(t, "Poetry", items[2].Category)

	assert.Equal(t, "It's Only the Himalayas", items[3].Title)
	assert.Equal(t, "Travel", items[3].Category)
}

func TestSourceLandingPageDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "bookcatalog-test", 100, 0)
	_, err := NewSource(client).Next(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestSourceFailsMidCrawl(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sidebarPage(`<li><a href="/poetry/index.html">Poetry</a></li>`))
	})
	mux.HandleFunc("/poetry/index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>`+
			cardHTML("Olio", "£23.88", "One")+
			`<ul class="pager"><li class="next"><a href="page-2.html"></a></li></ul></body></html>`)
	})
	mux.HandleFunc("/poetry/page-2.html", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	client := NewClient(srv.URL+"/", "bookcatalog-test", 100, 0)
	items, err := drainSource(t, NewSource(client))

	require.Error(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Olio", items[0].Title)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bookcatalog-test", 100, 3)
	_, err := client.FetchDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClientGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bookcatalog-test", 100, 1)
	_, err := client.FetchDocument(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
}
