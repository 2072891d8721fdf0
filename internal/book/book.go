package book

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidArgument is returned for malformed query parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable is returned when the catalog store cannot serve
	// the operation, including when conflict retries are exhausted.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Book represents one deduplicated catalog item.
type Book struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Rating       int       `json:"rating"`
	Availability string    `json:"availability"`
	ProductURL   string    `json:"product_url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	IdentityKey  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RawBook is a loosely-typed scraped record. Fields may be missing or
// malformed; only Normalize is allowed to interpret them.
type RawBook struct {
	Title        string `json:"title"`
	Price        string `json:"price"`
	Rating       string `json:"rating"`
	Category     string `json:"category"`
	Availability string `json:"availability"`
	ProductURL   string `json:"product_url"`
	ImageURL     string `json:"image_url"`
}

// IdentityKey derives the deduplication key for a title/category pair.
// Two records with the same key are the same logical book.
func IdentityKey(title, category string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(category))
}

// UpsertOutcome reports what an upsert did to the catalog.
type UpsertOutcome int

const (
	OutcomeInserted UpsertOutcome = iota
	OutcomeUpdated
	OutcomeUnchanged
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// attrsEqual reports whether the refreshable attributes of two records
// match. ID, identity key and timestamps are excluded.
func attrsEqual(a, b *Book) bool {
	return a.Title == b.Title &&
		a.Category == b.Category &&
		a.Price == b.Price &&
		a.Rating == b.Rating &&
		a.Availability == b.Availability &&
		a.ProductURL == b.ProductURL &&
		a.ImageURL == b.ImageURL
}
