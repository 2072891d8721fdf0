package scrape

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"bookcatalog/internal/book"
)

// Source crawls the site lazily, one listing page at a time, and yields
// raw book records. Pages are only fetched as the consumer drains the
// current buffer, so a failure partway through the crawl surfaces as a
// mid-stream error rather than an up-front one.
type Source struct {
	client  *Client
	started bool
	queue   []CategoryRef
	buf     []book.RawBook
	nextURL string
	curCat  string
}

func NewSource(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) Next(ctx context.Context) (book.RawBook, error) {
	for {
		if len(s.buf) > 0 {
			item := s.buf[0]
			s.buf = s.buf[1:]
			return item, nil
		}

		if !s.started {
			if err := s.discoverCategories(ctx); err != nil {
				return book.RawBook{}, err
			}
			s.started = true
			continue
		}

		if s.nextURL != "" {
			if err := s.fetchPage(ctx); err != nil {
				return book.RawBook{}, err
			}
			continue
		}

		if len(s.queue) > 0 {
			cat := s.queue[0]
			s.queue = s.queue[1:]
			s.nextURL = cat.URL
			s.curCat = cat.Name
			continue
		}

		return book.RawBook{}, io.EOF
	}
}

func (s *Source) discoverCategories(ctx context.Context) error {
	doc, err := s.client.FetchDocument(ctx, s.client.BaseURL())
	if err != nil {
		return fmt.Errorf("discover categories: %w", err)
	}
	base, err := url.Parse(s.client.BaseURL())
	if err != nil {
		return fmt.Errorf("discover categories: %w", err)
	}
	s.queue = ParseCategories(doc, base)
	return nil
}

func (s *Source) fetchPage(ctx context.Context) error {
	pageURL, err := url.Parse(s.nextURL)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", s.curCat, err)
	}
	doc, err := s.client.FetchDocument(ctx, s.nextURL)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", s.curCat, err)
	}
	s.buf = ParseBookCards(doc, pageURL, s.curCat)
	s.nextURL = ParseNextURL(doc, pageURL)
	return nil
}
