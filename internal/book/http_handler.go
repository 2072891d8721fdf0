package book

import (
	"errors"
	"net/http"
	"strconv"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /api/v1/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if v := query.Get("page"); v != "" {
		page, _ = strconv.Atoi(v)
	}
	pageSize := 20
	if v := query.Get("page_size"); v != "" {
		pageSize, _ = strconv.Atoi(v)
	}

	books, total, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if books == nil {
		books = []Book{}
	}
	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// GetByID handles GET /api/v1/books/{id}
func (h *HTTPHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "Book ID must be an integer", nil)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Search handles GET /api/v1/books/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	books, err := h.service.Search(r.Context(), query.Get("title"), query.Get("category"))
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	if books == nil {
		books = []Book{}
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// Categories handles GET /api/v1/categories
func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	httpx.JSONSuccess(w, r, map[string]any{"categories": categories}, nil)
}
