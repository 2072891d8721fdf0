package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline pulls raw items from a source, normalizes them and upserts
// the survivors into the catalog store.
type Pipeline struct {
	store   book.Store
	workers int
	logger  *slog.Logger
}

func NewPipeline(store book.Store, workers int, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, workers: workers, logger: logger}
}

// Run executes one ingestion over src. Per-item normalization failures
// are recorded and skipped, never aborting the batch. If the source
// fails before yielding anything, Run returns ErrSourceUnavailable and
// no result. If it breaks mid-stream or ctx is cancelled between items,
// Run returns the partial result with Truncated set. A store failure
// beyond the upsert retry bound aborts the run; the partial result is
// still returned alongside the error.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Failed:    []FailedItem{},
	}
	log := p.logger.With("run_id", res.RunID)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	yielded := false
loop:
	for {
		select {
		case <-gctx.Done():
			// Cancelled between items, or a worker hit a fatal store
			// error. Committed progress stays committed.
			res.Truncated = true
			break loop
		default:
		}

		raw, err := src.Next(gctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !yielded {
				_ = g.Wait()
				return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
			}
			log.Warn("source failed mid-stream", "error", err, "fetched", res.Fetched)
			res.Truncated = true
			break
		}
		yielded = true

		mu.Lock()
		res.Fetched++
		mu.Unlock()

		g.Go(func() error {
			return p.process(gctx, raw, res, &mu)
		})
	}

	err := g.Wait()
	res.FinishedAt = time.Now()
	if err != nil && !errors.Is(err, context.Canceled) {
		res.Truncated = true
		return res, err
	}

	log.Info("ingestion run finished",
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"failed", len(res.Failed),
		"truncated", res.Truncated,
	)
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, raw book.RawBook, res *Result, mu *sync.Mutex) error {
	b, err := book.Normalize(raw)
	if err != nil {
		mu.Lock()
		res.Failed = append(res.Failed, FailedItem{Raw: raw, Reason: err.Error()})
		mu.Unlock()
		return nil
	}

	outcome, err := p.store.Upsert(ctx, &b)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", b.Title, err)
	}

	mu.Lock()
	defer mu.Unlock()
	switch outcome {
	case book.OutcomeInserted:
		res.Inserted++
	case book.OutcomeUpdated:
		res.Updated++
	case book.OutcomeUnchanged:
		res.Skipped++
	}
	return nil
}
