package book

import (
	"context"
)

// Store defines the contract for the catalog persistence backend.
// Upsert must be atomic per identity key: concurrent calls for the same
// key never produce two rows.
type Store interface {
	// Upsert inserts b or refreshes the existing record with the same
	// identity key. It populates b.ID in all outcomes.
	Upsert(ctx context.Context, b *Book) (UpsertOutcome, error)
	// Insert stores a new record and assigns its ID.
	Insert(ctx context.Context, b *Book) error
	// UpdateByID refreshes the pass-through attributes of an existing record.
	UpdateByID(ctx context.Context, id int64, b *Book) error
	FindByID(ctx context.Context, id int64) (Book, error)
	FindByIdentityKey(ctx context.Context, key string) (Book, error)
	// FindByFilter matches titleSubstr case-insensitively as a substring
	// and category case-insensitively as an exact value. Empty filters
	// are ignored.
	FindByFilter(ctx context.Context, titleSubstr, category string) ([]Book, error)
	// List returns a page ordered by ID ascending plus the total count.
	List(ctx context.Context, offset, limit int) ([]Book, int, error)
	// ListCategories returns the distinct, lower-cased, non-empty
	// categories currently present.
	ListCategories(ctx context.Context) ([]string, error)
}
