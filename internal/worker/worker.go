package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Runner owns the three long-lived ingestion loops and the maintenance
// cron job, and starts/stops them together.
type Runner struct {
	Daily   *DailyWorker
	Slow    *SlowWorker
	Crypto  *CryptoWorker
	Maint   *Maintenance
	Health  *HealthStats
	log     zerolog.Logger

	done chan struct{}
}

func NewRunner(daily *DailyWorker, slow *SlowWorker, crypto *CryptoWorker, maint *Maintenance, health *HealthStats, log zerolog.Logger) *Runner {
	return &Runner{
		Daily: daily, Slow: slow, Crypto: crypto, Maint: maint, Health: health,
		log:  log.With().Str("component", "worker_runner").Logger(),
		done: make(chan struct{}),
	}
}

// Start launches every loop as its own goroutine and the maintenance
// cron job, then returns immediately. Every loop exits once ctx is
// cancelled; the maintenance scheduler stops once they all have.
func (r *Runner) Start(ctx context.Context) {
	if r.Maint != nil {
		if err := r.Maint.Start(); err != nil {
			r.log.Error().Err(err).Msg("failed to start maintenance scheduler")
		}
	}

	var wg sync.WaitGroup

	if r.Daily != nil {
		wg.Add(1)
		go func() { defer wg.Done(); r.Daily.Run(ctx) }()
	}
	if r.Slow != nil {
		wg.Add(1)
		go func() { defer wg.Done(); r.Slow.Run(ctx) }()
	}
	if r.Crypto != nil {
		wg.Add(1)
		go func() { defer wg.Done(); r.Crypto.Run(ctx) }()
	}

	go func() {
		wg.Wait()
		if r.Maint != nil {
			r.Maint.Stop()
		}
		r.log.Info().Msg("all worker loops stopped")
		close(r.done)
	}()
}

// Wait blocks until every loop started by Start has exited (i.e. ctx
// was cancelled and shutdown completed). Used by the process entry
// point to bound graceful shutdown.
func (r *Runner) Wait() <-chan struct{} {
	return r.done
}
