package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	syncpkg "github.com/quanhua92/aipriceaction-sub000/internal/sync"
)

// cadence is a trading-hours-aware sleep duration pair.
type cadence struct {
	trading, offHours time.Duration
}

// vnHistoryStart is the earliest date a FullHistory/PartialHistory
// ticker is backfilled from, matching the original implementation's
// configured default for VN equities.
var vnHistoryStart = time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC)

// intervalLoop is the loop body shared by the daily worker and each of
// the slow worker's two sibling tasks: validate-and-repair, sync,
// update health stats, write a compact log line, sleep.
type intervalLoop struct {
	name        string
	interval    models.Interval
	dataRoot    string
	tickers     func() []string
	orch        *syncpkg.Orchestrator
	historyStart time.Time // full-history backfill floor; zero defaults to vnHistoryStart
	resumeDays  int        // 0 lets the sync package apply its own per-interval default
	cadence     cadence
	log         *CompactLog
	onIteration func(time.Time)
	logger      zerolog.Logger
}

func (l *intervalLoop) run(ctx context.Context) {
	iteration := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		iteration++
		tickers := l.tickers()
		trading := IsTradingHours(time.Now())

		l.logger.Info().
			Str("worker", l.name).
			Int("iteration", iteration).
			Bool("is_trading_hours", trading).
			Int("tickers", len(tickers)).
			Msg("starting sync")

		repairTree(l.dataRoot, tickers, l.interval, l.logger)

		start := time.Now().UTC()
		historyStart := l.historyStart
		if historyStart.IsZero() {
			historyStart = vnHistoryStart
		}
		cfg := models.SyncConfig{
			StartDate:         historyStart,
			EndDate:           start,
			ResumeDays:        l.resumeDays,
			Intervals:         []models.Interval{l.interval},
			ConcurrentBatches: 4,
		}

		stats, err := l.orch.Run(ctx, tickers, cfg)
		end := time.Now().UTC()

		status := "OK"
		if err != nil {
			status = "FAIL"
			l.logger.Error().Err(err).Str("worker", l.name).Int("iteration", iteration).Msg("sync failed")
		}

		if stats != nil {
			summary := IterationSummary{
				Interval: l.interval.Wire(),
				Status:   status,
				Ok:       stats.Synced,
				Failed:   stats.Failed,
				Skipped:  stats.Skipped,
				Updated:  stats.DividendFound,
			}
			if logErr := l.log.Write(start, end, summary); logErr != nil {
				l.logger.Warn().Err(logErr).Msg("compact log write failed")
			}
		}

		if l.onIteration != nil {
			l.onIteration(end)
		}

		sleepFor := l.cadence.offHours
		if trading {
			sleepFor = l.cadence.trading
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleepFor):
		}
	}
}
