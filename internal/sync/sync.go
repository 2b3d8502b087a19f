// Package sync implements the synchronization orchestrator: for every
// requested interval it categorizes tickers, batch-fetches the Resume
// and FullHistory sets, runs the dividend heuristic, merges or replaces
// on-disk history, and persists through the enhancement engine, per
// spec.md §4.3.
package sync

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/enhance"
	"github.com/quanhua92/aipriceaction-sub000/internal/fetcher"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// fullHistoryBatchSize is deliberately smaller than the resume batch:
// full downloads move far more data per ticker.
const fullHistoryBatchSize = 2

// Stats accumulates per-run counters. Per-ticker failures never abort
// the batch; per-interval failures abort only that interval.
type Stats struct {
	mu sync.Mutex

	Synced        int
	DividendFound int
	Failed        int
	Skipped       int // Stale tickers excluded from this pass
	FailedTickers []string
}

func (s *Stats) incSynced() {
	s.mu.Lock()
	s.Synced++
	s.mu.Unlock()
}

func (s *Stats) incDividend() {
	s.mu.Lock()
	s.DividendFound++
	s.mu.Unlock()
}

func (s *Stats) incFailed(ticker string) {
	s.mu.Lock()
	s.Failed++
	s.FailedTickers = append(s.FailedTickers, ticker)
	s.mu.Unlock()
}

func (s *Stats) incSkipped() {
	s.mu.Lock()
	s.Skipped++
	s.mu.Unlock()
}

// Orchestrator ties a Fetcher to the on-disk tree it writes through the
// enhancement engine.
type Orchestrator struct {
	fetcher  *fetcher.Fetcher
	dataRoot string
	log      zerolog.Logger
}

// New builds an Orchestrator over dataRoot (market_data or crypto_data).
func New(f *fetcher.Fetcher, dataRoot string, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:  f,
		dataRoot: dataRoot,
		log:      log.With().Str("component", "sync").Logger(),
	}
}

func (o *Orchestrator) tickerPath(ticker string, iv models.Interval) string {
	return filepath.Join(o.dataRoot, ticker, iv.Filename())
}

// Run executes one synchronization pass over every interval in cfg for
// the given tickers, returning accumulated stats. An error is returned
// only for interval-level failures (e.g. categorization itself failing
// catastrophically): a failed interval does not stop the remaining ones,
// and the first such error is returned once all have run. Per-ticker
// failures are recorded in Stats instead.
func (o *Orchestrator) Run(ctx context.Context, tickers []string, cfg models.SyncConfig) (*Stats, error) {
	stats := &Stats{}

	var firstErr error
	for _, iv := range cfg.Intervals {
		if err := o.syncInterval(ctx, tickers, iv, cfg, stats); err != nil {
			o.log.Error().Err(err).Str("interval", iv.Wire()).Msg("interval sync aborted")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return stats, firstErr
}

func (o *Orchestrator) syncInterval(ctx context.Context, tickers []string, iv models.Interval, cfg models.SyncConfig, stats *Stats) error {
	categories := o.fetcher.Categorize(tickers, iv)

	var resumeTickers, fullHistoryTickers, partialHistoryTickers []string
	for _, t := range tickers {
		cat := categories[t]
		switch cat.Kind {
		case models.CategoryStale:
			stats.incSkipped()
		case models.CategoryResume:
			if cfg.ForceFull {
				fullHistoryTickers = append(fullHistoryTickers, t)
			} else {
				resumeTickers = append(resumeTickers, t)
			}
		case models.CategoryPartialHistory:
			if cfg.ForceFull {
				fullHistoryTickers = append(fullHistoryTickers, t)
			} else {
				// Large-gap tickers are fetched individually from their
				// own last date, not through the batch endpoint (spec.md
				// "Partial-history crossover" scenario); left out of
				// batchResults so processTicker's per-ticker fallback
				// fetch handles them.
				partialHistoryTickers = append(partialHistoryTickers, t)
			}
		default: // FullHistory
			fullHistoryTickers = append(fullHistoryTickers, t)
		}
	}
	o.log.Debug().Str("interval", iv.Wire()).
		Int("resume", len(resumeTickers)).
		Int("partial", len(partialHistoryTickers)).
		Int("full", len(fullHistoryTickers)).
		Msg("categorized tickers")

	resumeBatchSize := cfg.BatchSize
	if resumeBatchSize <= 0 {
		resumeBatchSize = 20
	}
	concurrency := cfg.ConcurrentBatches
	if concurrency <= 0 {
		concurrency = 1
	}

	batchResults := make(map[string][]models.OHLCV, len(tickers))

	if len(resumeTickers) > 0 {
		fetchStart := minLastDate(categories, resumeTickers)
		if fetchStart.IsZero() {
			fetchStart = time.Now().UTC().AddDate(0, 0, -resumeDays(cfg, iv))
		}

		res, err := o.fetcher.BatchFetch(ctx, resumeTickers, fetchStart, cfg.EndDate, iv, resumeBatchSize, concurrency)
		if err != nil {
			return err
		}
		for k, v := range res {
			batchResults[k] = v
		}
	}

	if len(fullHistoryTickers) > 0 {
		res, err := o.fetcher.BatchFetch(ctx, fullHistoryTickers, cfg.StartDate, cfg.EndDate, iv, fullHistoryBatchSize, concurrency)
		if err != nil {
			return err
		}
		for k, v := range res {
			batchResults[k] = v
		}
	}

	for _, ticker := range tickers {
		cat := categories[ticker]
		if cat.Kind == models.CategoryStale {
			continue
		}

		if err := o.processTicker(ctx, ticker, iv, cat, batchResults[ticker], cfg, stats); err != nil {
			o.log.Warn().Err(err).Str("ticker", ticker).Str("interval", iv.Wire()).Msg("ticker sync failed")
			stats.incFailed(ticker)
			continue
		}
		stats.incSynced()
	}

	return nil
}

func (o *Orchestrator) processTicker(ctx context.Context, ticker string, iv models.Interval, cat models.Category, fetched []models.OHLCV, cfg models.SyncConfig, stats *Stats) error {
	// Resume and PartialHistory tickers both go through the
	// dividend-check-or-merge path, seeded at the ticker's own last known
	// date; only true FullHistory tickers (or a forced full resync) take
	// the unconditional full-rewrite path.
	mergeEligible := !cfg.ForceFull && (cat.Kind == models.CategoryResume || cat.Kind == models.CategoryPartialHistory)

	if len(fetched) == 0 {
		// No batch result: fall back to an individual fetch. PartialHistory
		// tickers always land here since they are never batch-fetched.
		var start time.Time
		if mergeEligible {
			start = cat.LastDate
		} else {
			start = cfg.StartDate
		}
		data, err := o.fetcher.FetchFullHistory(ctx, ticker, start, cfg.EndDate, iv)
		if err != nil {
			return err
		}
		fetched = data
	}

	if len(fetched) == 0 {
		return nil // nothing fetched, nothing to do
	}

	path := o.tickerPath(ticker, iv)

	if !mergeEligible {
		return enhance.Run(path, iv, fetched, time.Time{}, true)
	}

	existingRecords, err := csvstore.ReadFile(path)
	if err != nil {
		return err
	}
	existing := enhance.ToOHLCV(existingRecords)

	if fetcher.DetectDividend(ticker, existing, fetched) {
		stats.incDividend()
		full, err := o.fetcher.FetchFullHistory(ctx, ticker, cfg.StartDate, cfg.EndDate, iv)
		if err != nil {
			return err
		}
		return enhance.Run(path, iv, full, time.Time{}, true)
	}

	merged := enhance.Merge(existing, fetched)
	cutoff := latestTime(existing)
	return enhance.Run(path, iv, merged, cutoff, false)
}

func minLastDate(categories map[string]models.Category, tickers []string) time.Time {
	var min time.Time
	for _, t := range tickers {
		last := categories[t].LastDate
		if last.IsZero() {
			continue
		}
		if min.IsZero() || last.Before(min) {
			min = last
		}
	}
	return min
}

func resumeDays(cfg models.SyncConfig, iv models.Interval) int {
	if cfg.ResumeDays > 0 {
		return cfg.ResumeDays
	}
	switch iv {
	case models.Daily:
		return 14
	case models.Hourly:
		return 7
	default:
		return 3
	}
}

func latestTime(rows []models.OHLCV) time.Time {
	var latest time.Time
	for _, r := range rows {
		if r.Time.After(latest) {
			latest = r.Time
		}
	}
	return latest
}
