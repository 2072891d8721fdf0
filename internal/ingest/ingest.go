package ingest

import (
	"context"
	"errors"
	"io"
	"time"

	"bookcatalog/internal/book"
)

// ErrSourceUnavailable is returned when the source fails before yielding
// any items. The run produced no result and is safe to retry later.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source yields raw scraped records one at a time. Next returns io.EOF
// when the stream is exhausted; any other error means the stream broke.
type Source interface {
	Next(ctx context.Context) (book.RawBook, error)
}

// FailedItem records one raw record that could not be normalized.
type FailedItem struct {
	Raw    book.RawBook `json:"raw_item"`
	Reason string       `json:"reason"`
}

// Result summarizes one ingestion run. It is returned to the caller and
// never persisted.
type Result struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Fetched    int          `json:"fetched_count"`
	Inserted   int          `json:"inserted_count"`
	Updated    int          `json:"updated_count"`
	Skipped    int          `json:"skipped_count"`
	Failed     []FailedItem `json:"failed_items"`
	// Truncated is set when the source broke mid-stream or the run was
	// cancelled; progress already committed to the store is kept.
	Truncated bool `json:"truncated"`
}

// SliceSource serves a fixed set of records, for seeds and tests.
type SliceSource struct {
	items []book.RawBook
	pos   int
}

func NewSliceSource(items ...book.RawBook) *SliceSource {
	return &SliceSource{items: items}
}

func (s *SliceSource) Next(ctx context.Context) (book.RawBook, error) {
	if err := ctx.Err(); err != nil {
		return book.RawBook{}, err
	}
	if s.pos >= len(s.items) {
		return book.RawBook{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}
