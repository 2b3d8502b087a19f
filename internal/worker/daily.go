package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	syncpkg "github.com/quanhua92/aipriceaction-sub000/internal/sync"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

const (
	dailyTradingInterval   = 15 * time.Second
	dailyOffHoursInterval  = 300 * time.Second
	dailyResumeDays        = 5 // wide enough to catch dividend-driven restatements
)

// DailyWorker runs the daily-bar sync/enhance loop.
type DailyWorker struct {
	loop   *intervalLoop
	health *HealthStats
}

func NewDailyWorker(orch *syncpkg.Orchestrator, dataRoot string, tickers func() []string, health *HealthStats, log zerolog.Logger) *DailyWorker {
	w := &DailyWorker{health: health}
	w.loop = &intervalLoop{
		name:       "daily",
		interval:   models.Daily,
		dataRoot:   dataRoot,
		tickers:    tickers,
		orch:       orch,
		resumeDays: dailyResumeDays,
		cadence:    cadence{trading: dailyTradingInterval, offHours: dailyOffHoursInterval},
		log:        NewCompactLog(dataRoot, "fast_worker.log"),
		onIteration: health.UpdateDaily,
		logger:     log.With().Str("component", "daily_worker").Logger(),
	}
	return w
}

func (w *DailyWorker) Run(ctx context.Context) {
	w.loop.run(ctx)
}
