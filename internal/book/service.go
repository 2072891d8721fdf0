package book

import (
	"context"
	"fmt"
	"strings"
)

// MaxPageSize caps the page size for list queries.
const MaxPageSize = 100

// Service provides read access to the catalog.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns one page of the catalog ordered by ID ascending, plus the
// total number of books. Page sizes above MaxPageSize are clamped.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]Book, int, error) {
	if page <= 0 {
		return nil, 0, fmt.Errorf("%w: page must be positive", ErrInvalidArgument)
	}
	if pageSize <= 0 {
		return nil, 0, fmt.Errorf("%w: page_size must be positive", ErrInvalidArgument)
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.store.List(ctx, (page-1)*pageSize, pageSize)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Book, error) {
	return s.store.FindByID(ctx, id)
}

// Search filters the catalog by title substring and/or exact category,
// both case-insensitive. At least one filter is required; combining them
// narrows the result. An empty result set is not an error.
func (s *Service) Search(ctx context.Context, title, category string) ([]Book, error) {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)
	if title == "" && category == "" {
		return nil, fmt.Errorf("%w: at least one of title or category is required", ErrInvalidArgument)
	}
	return s.store.FindByFilter(ctx, title, category)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}
