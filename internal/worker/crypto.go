package worker

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	syncpkg "github.com/quanhua92/aipriceaction-sub000/internal/sync"
)

const (
	cryptoLoopInterval = 15 * time.Minute

	regularDailyGate  = 1 * time.Hour
	regularHourlyGate = 3 * time.Hour
	regularMinuteGate = 6 * time.Hour
)

// priorityCryptos always sync every iteration, regardless of the
// regular tier's elapsed-time gates.
var priorityCryptos = []string{"BTC", "ETH", "XRP"}

// cryptoHistoryStart is BTC's listing date, the full-history backfill
// floor shared by every crypto symbol.
var cryptoHistoryStart = time.Date(2010, 7, 17, 0, 0, 0, 0, time.UTC)

// CryptoWorker runs the two-tier crypto sync loop: a priority tier
// synced every iteration across all intervals, and a regular tier whose
// intervals are gated by independent elapsed-time thresholds.
type CryptoWorker struct {
	orch         *syncpkg.Orchestrator
	dataRoot     string
	symbolsPath  string
	ignoreList   []string
	health       *HealthStats
	gate         *TierGate
	log          *CompactLog
	logger       zerolog.Logger
}

func NewCryptoWorker(orch *syncpkg.Orchestrator, dataRoot, symbolsPath string, ignoreList []string, health *HealthStats, log zerolog.Logger) *CryptoWorker {
	return &CryptoWorker{
		orch:        orch,
		dataRoot:    dataRoot,
		symbolsPath: symbolsPath,
		ignoreList:  ignoreList,
		health:      health,
		gate:        NewTierGate(dataRoot),
		log:         NewCompactLog(dataRoot, "crypto_worker.log"),
		logger:      log.With().Str("component", "crypto_worker").Logger(),
	}
}

func (w *CryptoWorker) Run(ctx context.Context) {
	iteration := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		iteration++

		symbols, err := loadCryptoSymbols(w.symbolsPath)
		if err != nil {
			w.logger.Error().Err(err).Msg("failed to load crypto symbol list, skipping iteration")
			w.sleepOrDone(ctx, cryptoLoopInterval)
			continue
		}

		priority, regular := splitTiers(symbols, priorityCryptos, w.ignoreList)
		w.logger.Info().Int("iteration", iteration).Int("priority", len(priority)).Int("regular", len(regular)).Msg("starting crypto sync cycle")

		if len(priority) > 0 {
			for _, iv := range []models.Interval{models.Daily, models.Hourly, models.Minute} {
				w.syncAndLog(ctx, iv, priority, "priority")
			}
		}

		if len(regular) > 0 {
			if w.gate.Due(models.Daily, regularDailyGate) {
				if w.syncAndLog(ctx, models.Daily, regular, "regular") {
					w.gate.MarkSynced(models.Daily, time.Now().UTC())
				}
			}
			if w.gate.Due(models.Hourly, regularHourlyGate) {
				if w.syncAndLog(ctx, models.Hourly, regular, "regular") {
					w.gate.MarkSynced(models.Hourly, time.Now().UTC())
				}
			}
			if w.gate.Due(models.Minute, regularMinuteGate) {
				if w.syncAndLog(ctx, models.Minute, regular, "regular") {
					w.gate.MarkSynced(models.Minute, time.Now().UTC())
				}
			}
		}

		w.health.UpdateCrypto(time.Now().UTC())
		w.sleepOrDone(ctx, cryptoLoopInterval)
	}
}

// syncAndLog syncs one interval for one tier's symbol set and writes a
// compact log line. Returns whether the sync succeeded.
func (w *CryptoWorker) syncAndLog(ctx context.Context, iv models.Interval, symbols []string, tier string) bool {
	start := time.Now().UTC()
	cfg := models.SyncConfig{
		StartDate:         cryptoHistoryStart,
		EndDate:           start,
		Intervals:         []models.Interval{iv},
		ConcurrentBatches: 4,
	}

	_, err := w.orch.Run(ctx, symbols, cfg)
	end := time.Now().UTC()

	status := "OK"
	if err != nil {
		status = "FAIL"
		w.logger.Error().Err(err).Str("tier", tier).Str("interval", iv.Wire()).Msg("crypto sync failed")
	}

	if logErr := w.log.WriteCrypto(start, end, iv.Wire(), tier, status, len(symbols)); logErr != nil {
		w.logger.Warn().Err(logErr).Msg("compact log write failed")
	}

	return err == nil
}

func (w *CryptoWorker) sleepOrDone(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func defaultCryptoSymbolsPath(cryptoDataDir string) string {
	return filepath.Join(cryptoDataDir, "crypto_symbols.json")
}
