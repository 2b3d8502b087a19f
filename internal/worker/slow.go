package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	syncpkg "github.com/quanhua92/aipriceaction-sub000/internal/sync"
)

const (
	hourlyTradingInterval  = 60 * time.Second
	hourlyOffHoursInterval = 1800 * time.Second
	minuteTradingInterval  = 300 * time.Second
	minuteOffHoursInterval = 1800 * time.Second
)

// SlowWorker spawns two independent sibling loops, one per intraday
// interval, each with its own trading-hours cadence.
type SlowWorker struct {
	hourly *intervalLoop
	minute *intervalLoop
}

func NewSlowWorker(orch *syncpkg.Orchestrator, dataRoot string, tickers func() []string, health *HealthStats, log zerolog.Logger) *SlowWorker {
	base := log.With().Str("component", "slow_worker").Logger()

	return &SlowWorker{
		hourly: &intervalLoop{
			name:        "hourly",
			interval:    models.Hourly,
			dataRoot:    dataRoot,
			tickers:     tickers,
			orch:        orch,
			cadence:     cadence{trading: hourlyTradingInterval, offHours: hourlyOffHoursInterval},
			log:         NewCompactLog(dataRoot, "slow_worker.log"),
			onIteration: health.UpdateHourly,
			logger:      base.With().Str("interval", "1H").Logger(),
		},
		minute: &intervalLoop{
			name:        "minute",
			interval:    models.Minute,
			dataRoot:    dataRoot,
			tickers:     tickers,
			orch:        orch,
			cadence:     cadence{trading: minuteTradingInterval, offHours: minuteOffHoursInterval},
			log:         NewCompactLog(dataRoot, "slow_worker.log"),
			onIteration: health.UpdateMinute,
			logger:      base.With().Str("interval", "1m").Logger(),
		},
	}
}

// Run blocks until ctx is cancelled, running both sibling loops
// concurrently.
func (w *SlowWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); w.hourly.run(ctx) }()
	go func() { defer wg.Done(); w.minute.run(ctx) }()
	wg.Wait()
}
