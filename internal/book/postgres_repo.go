package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// upsertAttempts bounds the retries on transient conflicts before the
// error surfaces as ErrStoreUnavailable.
const upsertAttempts = 3

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `id, identity_key, title, category, price, rating, availability, product_url, image_url, created_at, updated_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.IdentityKey, &b.Title, &b.Category, &b.Price, &b.Rating,
		&b.Availability, &b.ProductURL, &b.ImageURL, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Upsert is a single-statement insert-or-refresh keyed on identity_key.
// The DO UPDATE clause is skipped when nothing changed, so no row comes
// back for the unchanged case; xmax = 0 distinguishes insert from update.
func (r *PostgresRepo) Upsert(ctx context.Context, b *Book) (UpsertOutcome, error) {
	const sql = `
		INSERT INTO books (identity_key, title, category, price, rating, availability, product_url, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (identity_key) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			availability = EXCLUDED.availability,
			product_url = EXCLUDED.product_url,
			image_url = EXCLUDED.image_url,
			updated_at = now()
		WHERE (books.title, books.category, books.price, books.rating, books.availability, books.product_url, books.image_url)
			IS DISTINCT FROM
			(EXCLUDED.title, EXCLUDED.category, EXCLUDED.price, EXCLUDED.rating, EXCLUDED.availability, EXCLUDED.product_url, EXCLUDED.image_url)
		RETURNING id, (xmax = 0) AS inserted`

	var lastErr error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		timeoutCtx, cancel := r.withTimeout(ctx)
		var inserted bool
		err := r.db.QueryRow(timeoutCtx, sql,
			b.IdentityKey, b.Title, b.Category, b.Price, b.Rating,
			b.Availability, b.ProductURL, b.ImageURL,
		).Scan(&b.ID, &inserted)
		cancel()

		switch {
		case err == nil:
			if inserted {
				return OutcomeInserted, nil
			}
			return OutcomeUpdated, nil
		case errors.Is(err, pgx.ErrNoRows):
			// Conflict target matched but nothing differed. Resolve the
			// existing ID so callers always see it populated.
			existing, findErr := r.FindByIdentityKey(ctx, b.IdentityKey)
			if findErr != nil {
				lastErr = findErr
				continue
			}
			b.ID = existing.ID
			return OutcomeUnchanged, nil
		case isTransient(err):
			lastErr = err
			continue
		default:
			return 0, fmt.Errorf("upsert book %q: %w", b.IdentityKey, err)
		}
	}
	return 0, fmt.Errorf("upsert book %q after %d attempts: %w: %v", b.IdentityKey, upsertAttempts, ErrStoreUnavailable, lastErr)
}

// isTransient reports whether the error is a retryable conflict:
// unique violation, serialization failure or deadlock.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "23505", "40001", "40P01":
		return true
	}
	return false
}

func (r *PostgresRepo) Insert(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (identity_key, title, category, price, rating, availability, product_url, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, sql,
		b.IdentityKey, b.Title, b.Category, b.Price, b.Rating,
		b.Availability, b.ProductURL, b.ImageURL,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PostgresRepo) UpdateByID(ctx context.Context, id int64, b *Book) error {
	const sql = `
		UPDATE books
		SET title = $2, category = $3, price = $4, rating = $5, availability = $6, product_url = $7, image_url = $8, updated_at = now()
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, id,
		b.Title, b.Category, b.Price, b.Rating, b.Availability, b.ProductURL, b.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByIdentityKey(ctx context.Context, key string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx,
		`SELECT `+bookColumns+` FROM books WHERE identity_key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) FindByFilter(ctx context.Context, titleSubstr, category string) ([]Book, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if titleSubstr != "" {
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", argn))
		args = append(args, "%"+titleSubstr+"%")
		argn++
	}
	if category != "" {
		clauses = append(clauses, fmt.Sprintf("lower(category) = lower($%d)", argn))
		args = append(args, category)
		argn++
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM books WHERE %s ORDER BY id ASC`,
		bookColumns, strings.Join(clauses, " AND "))

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) List(ctx context.Context, offset, limit int) ([]Book, int, error) {
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, err
	}

	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2,
		`SELECT `+bookColumns+` FROM books ORDER BY id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) ListCategories(ctx context.Context) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx,
		`SELECT DISTINCT lower(category) FROM books WHERE category <> '' ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
