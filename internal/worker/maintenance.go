package worker

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/sqlitestore"
)

// maintenanceSchedule runs every 10 minutes: a fixed housekeeping
// cadence layered alongside the three trading-hours-aware loops, which
// can't express this kind of uniform pacing themselves.
const maintenanceSchedule = "0 */10 * * * *"

// Maintenance wraps the periodic SQLite WAL checkpoint sweep and the
// upstream proxy reprobe into a single cron-scheduled job.
type Maintenance struct {
	cron *cron.Cron
	log  zerolog.Logger
	dbs  []*sqlitestore.DB
	pool *httpclient.Pool
}

// NewMaintenance builds the maintenance scheduler. dbs is every open
// SQLite handle worth checkpointing (may be empty when running on the
// CSV backend); pool may be nil when no proxy egress is configured.
func NewMaintenance(dbs []*sqlitestore.DB, pool *httpclient.Pool, log zerolog.Logger) *Maintenance {
	return &Maintenance{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "maintenance").Logger(),
		dbs:  dbs,
		pool: pool,
	}
}

// Start registers and starts the maintenance job; it runs in the
// cron library's own goroutine, so Start returns immediately.
func (m *Maintenance) Start() error {
	_, err := m.cron.AddFunc(maintenanceSchedule, m.run)
	if err != nil {
		return err
	}
	m.cron.Start()
	m.log.Info().Str("schedule", maintenanceSchedule).Msg("maintenance scheduler started")
	return nil
}

// Stop blocks until any in-flight run completes.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) run() {
	for _, db := range m.dbs {
		if db == nil {
			continue
		}
		if err := db.WALCheckpoint("PASSIVE"); err != nil {
			m.log.Warn().Err(err).Str("db", db.Path()).Msg("WAL checkpoint failed")
		}
	}

	if m.pool != nil {
		m.pool.Reprobe()
	}
}
