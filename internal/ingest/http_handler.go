package ingest

import (
	"errors"
	"net/http"

	"bookcatalog/internal/httpx"
)

// SourceFactory builds a fresh source for each triggered run.
type SourceFactory func() Source

type HTTPHandler struct {
	pipeline  *Pipeline
	newSource SourceFactory
}

func NewHTTPHandler(pipeline *Pipeline, newSource SourceFactory) *HTTPHandler {
	return &HTTPHandler{pipeline: pipeline, newSource: newSource}
}

// Trigger handles POST /api/v1/ingestion/trigger
func (h *HTTPHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Run(r.Context(), h.newSource())
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			httpx.JSONError(w, r, http.StatusBadGateway, "SOURCE_UNAVAILABLE", "Could not reach the book source", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ingestion run failed", nil)
		return
	}

	httpx.JSONSuccess(w, r, res, map[string]any{
		"total_processed": res.Fetched,
	})
}
