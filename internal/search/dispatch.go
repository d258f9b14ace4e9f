package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markusc/posescout/internal/database"
)

// Dispatcher runs one keyword search batch: the least recently
// processed keywords are searched, the discovered URLs recorded, and
// the keywords' counters updated.
type Dispatcher struct {
	searcher       VideoSearcher
	keywords       *database.KeywordRepo
	videos         *database.VideoRepo
	keywordsPerRun int
	maxResults     int64
	logger         *slog.Logger
}

func NewDispatcher(searcher VideoSearcher, keywords *database.KeywordRepo, videos *database.VideoRepo, keywordsPerRun int, maxResults int64, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		searcher:       searcher,
		keywords:       keywords,
		videos:         videos,
		keywordsPerRun: keywordsPerRun,
		maxResults:     maxResults,
		logger:         logger,
	}
}

// Run dispatches one batch. A search failure aborts the remaining
// batch, since the common case is an exhausted daily quota and retrying
// the rest is pointless. Everything dispatched before the failure
// keeps its updates. URLs already on record are skipped by the exact-
// match deduplication in the video repository.
func (d *Dispatcher) Run(ctx context.Context) error {
	keywords, err := d.keywords.ListForDispatch(ctx, d.keywordsPerRun)
	if err != nil {
		return fmt.Errorf("listing keywords for dispatch: %w", err)
	}

	for _, kw := range keywords {
		if err := ctx.Err(); err != nil {
			return err
		}

		urls, err := d.searcher.SearchVideoURLs(ctx, kw.Text, d.maxResults)
		if err != nil {
			if IsQuotaError(err) {
				d.logger.Warn("search quota exhausted, aborting batch", "keyword", kw.Text)
			}
			return fmt.Errorf("search for %q: %w", kw.Text, err)
		}

		added, err := d.videos.InsertURLs(ctx, urls, kw.Text)
		if err != nil {
			return fmt.Errorf("recording urls for %q: %w", kw.Text, err)
		}

		if err := d.keywords.MarkUsed(ctx, kw.Text); err != nil {
			return fmt.Errorf("marking %q used: %w", kw.Text, err)
		}

		d.logger.Info("keyword dispatched", "keyword", kw.Text, "found", len(urls), "new", added)
	}
	return nil
}
