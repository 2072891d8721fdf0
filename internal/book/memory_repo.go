package book

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Store. A single mutex around the
// lookup-then-write keeps upserts atomic per identity key, matching the
// guarantee the Postgres repo gets from its uniqueness constraint.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[int64]*Book
	byKey  map[string]*Book
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[int64]*Book),
		byKey:  make(map[string]*Book),
		nextID: 1,
	}
}

func (r *MemoryRepo) Upsert(ctx context.Context, b *Book) (UpsertOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byKey[b.IdentityKey]
	if !ok {
		stored := *b
		stored.ID = r.nextID
		r.nextID++
		now := time.Now()
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.byID[stored.ID] = &stored
		r.byKey[stored.IdentityKey] = &stored
		b.ID = stored.ID
		return OutcomeInserted, nil
	}

	b.ID = existing.ID
	if attrsEqual(existing, b) {
		return OutcomeUnchanged, nil
	}

	existing.Title = b.Title
	existing.Category = b.Category
	existing.Price = b.Price
	existing.Rating = b.Rating
	existing.Availability = b.Availability
	existing.ProductURL = b.ProductURL
	existing.ImageURL = b.ImageURL
	existing.UpdatedAt = time.Now()
	return OutcomeUpdated, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *b
	stored.ID = r.nextID
	r.nextID++
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.byID[stored.ID] = &stored
	r.byKey[stored.IdentityKey] = &stored
	b.ID = stored.ID
	return nil
}

func (r *MemoryRepo) UpdateByID(ctx context.Context, id int64, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	existing.Title = b.Title
	existing.Category = b.Category
	existing.Price = b.Price
	existing.Rating = b.Rating
	existing.Availability = b.Availability
	existing.ProductURL = b.ProductURL
	existing.ImageURL = b.ImageURL
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return *b, nil
}

func (r *MemoryRepo) FindByIdentityKey(ctx context.Context, key string) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byKey[key]
	if !ok {
		return Book{}, ErrNotFound
	}
	return *b, nil
}

func (r *MemoryRepo) FindByFilter(ctx context.Context, titleSubstr, category string) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	titleSubstr = strings.ToLower(titleSubstr)
	category = strings.ToLower(category)

	var out []Book
	for _, b := range r.sortedLocked() {
		if titleSubstr != "" && !strings.Contains(strings.ToLower(b.Title), titleSubstr) {
			continue
		}
		if category != "" && strings.ToLower(b.Category) != category {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context, offset, limit int) ([]Book, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedLocked()
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]Book, 0, end-offset)
	for _, b := range all[offset:end] {
		out = append(out, *b)
	}
	return out, total, nil
}

func (r *MemoryRepo) ListCategories(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, b := range r.byID {
		c := strings.ToLower(b.Category)
		if c != "" {
			seen[c] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) sortedLocked() []*Book {
	all := make([]*Book, 0, len(r.byID))
	for _, b := range r.byID {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
