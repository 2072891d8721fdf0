package book

import (
	"fmt"
	"strconv"
	"strings"
)

// UncategorizedCategory is assigned when the source provides no category.
const UncategorizedCategory = "uncategorized"

type NormalizeReason string

const (
	ReasonMissingTitle   NormalizeReason = "missing_title"
	ReasonInvalidNumeric NormalizeReason = "invalid_numeric"
)

// NormalizationError marks a single raw record as unusable. It never
// aborts a batch; the pipeline records it and moves on.
type NormalizationError struct {
	Reason NormalizeReason
	Field  string
}

func (e *NormalizationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize: %s (%s)", e.Reason, e.Field)
	}
	return fmt.Sprintf("normalize: %s", e.Reason)
}

// ratingWords maps the site's star-rating class names to numeric values.
var ratingWords = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// Normalize converts a raw scraped record into a canonical Book.
// It is a pure function: no I/O, deterministic for identical input.
func Normalize(raw RawBook) (Book, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Book{}, &NormalizationError{Reason: ReasonMissingTitle, Field: "title"}
	}

	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = UncategorizedCategory
	}

	price, err := parsePrice(raw.Price)
	if err != nil {
		return Book{}, &NormalizationError{Reason: ReasonInvalidNumeric, Field: "price"}
	}

	rating, err := parseRating(raw.Rating)
	if err != nil {
		return Book{}, &NormalizationError{Reason: ReasonInvalidNumeric, Field: "rating"}
	}

	return Book{
		Title:        title,
		Category:     category,
		Price:        price,
		Rating:       rating,
		Availability: strings.TrimSpace(raw.Availability),
		ProductURL:   strings.TrimSpace(raw.ProductURL),
		ImageURL:     strings.TrimSpace(raw.ImageURL),
		IdentityKey:  IdentityKey(title, category),
	}, nil
}

// parsePrice coerces price text like "£51.77" or "$12.50" to a float.
// An absent price is stored as zero.
func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != '-'
	})
	return strconv.ParseFloat(s, 64)
}

// parseRating accepts either the site's word form ("Three") or digits.
func parseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, ok := ratingWords[strings.ToLower(s)]; ok {
		return n, nil
	}
	return strconv.Atoi(s)
}
