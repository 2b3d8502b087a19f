// Command server is the process entry point: it loads configuration,
// wires the upstream clients, the sync orchestrators, the three worker
// loops, and the HTTP query API, then serves until an interrupt signal
// arrives.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/config"
	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	"github.com/quanhua92/aipriceaction-sub000/internal/fetcher"
	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/logging"
	"github.com/quanhua92/aipriceaction-sub000/internal/ratelimit"
	"github.com/quanhua92/aipriceaction-sub000/internal/server"
	"github.com/quanhua92/aipriceaction-sub000/internal/sqlitestore"
	syncpkg "github.com/quanhua92/aipriceaction-sub000/internal/sync"
	"github.com/quanhua92/aipriceaction-sub000/internal/tickergroups"
	"github.com/quanhua92/aipriceaction-sub000/internal/upstream"
	"github.com/quanhua92/aipriceaction-sub000/internal/upstream/cryptocompare"
	"github.com/quanhua92/aipriceaction-sub000/internal/upstream/siblingproxy"
	"github.com/quanhua92/aipriceaction-sub000/internal/upstream/vci"
	"github.com/quanhua92/aipriceaction-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logging.SetGlobal(log)

	log.Info().Msg("starting aipriceaction-sub000")

	stockPool := httpclient.NewPool(
		cfg.DirectEgressEnabled, cfg.HTTPProxies, "https://trading.vietcap.com.vn",
		ratelimit.New(cfg.StockRateLimitPerMin, time.Minute), log,
	)
	cryptoPool := httpclient.NewPool(
		cfg.DirectEgressEnabled, cfg.HTTPProxies, "https://min-api.cryptocompare.com",
		ratelimit.New(cfg.CryptoRateLimitPerSec, time.Second), log,
	)

	groups, err := tickergroups.Load(filepath.Join(cfg.MarketDataDir, "ticker_group.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load ticker groups")
	}

	marketStore, err := datastore.New(datastore.Options{
		CSVRoot:      cfg.MarketDataDir,
		SQLitePath:   cfg.SQLitePath,
		StartBackend: cfg.DataStoreBackend,
		KeyTickers:   []string{"VNINDEX", "VN30"},
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize market data store")
	}

	cryptoSQLitePath := ""
	if cfg.DataStoreBackend == "sqlite" {
		cryptoSQLitePath = filepath.Join(cfg.CryptoDataDir, "crypto.db")
	}
	cryptoStore, err := datastore.New(datastore.Options{
		CSVRoot:      cfg.CryptoDataDir,
		SQLitePath:   cryptoSQLitePath,
		StartBackend: cfg.DataStoreBackend,
		KeyTickers:   []string{"BTC", "ETH"},
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize crypto data store")
	}

	vciClient := vci.New(stockPool, log)
	stockFetcher := fetcher.New(vciClient, cfg.MarketDataDir, cfg.DisablePartialHistory, log)
	stockOrch := syncpkg.New(stockFetcher, cfg.MarketDataDir, log)

	var cryptoSource *upstream.CryptoSource
	ccClient := cryptocompare.New(cryptoPool, log)
	if cfg.CryptoWorkerTargetURL != "" {
		sp := siblingproxy.New(cfg.CryptoWorkerTargetURL, cfg.CryptoWorkerTargetHost, stockPool, log)
		cryptoSource = upstream.NewCryptoSource(sp, ccClient, log)
	} else {
		cryptoSource = upstream.NewCryptoSource(nil, ccClient, log)
	}
	cryptoFetcher := fetcher.New(cryptoSource, cfg.CryptoDataDir, true, log)
	cryptoOrch := syncpkg.New(cryptoFetcher, cfg.CryptoDataDir, log)

	health := worker.NewHealthStats()

	tickerList := func() []string { return groups.Tickers }

	dailyWorker := worker.NewDailyWorker(stockOrch, cfg.MarketDataDir, tickerList, health, log)
	slowWorker := worker.NewSlowWorker(stockOrch, cfg.MarketDataDir, tickerList, health, log)
	cryptoWorker := worker.NewCryptoWorker(cryptoOrch, cfg.CryptoDataDir, "", cfg.IgnoredCryptoSymbols, health, log)

	// The handles are read once, here: a store that starts on the CSV
	// backend contributes nil, which Maintenance.run skips, so a store
	// promoted to sqlite later in the run is not checkpointed by this job.
	maint := worker.NewMaintenance([]*sqlitestore.DB{marketStore.SQLiteHandle(), cryptoStore.SQLiteHandle()}, stockPool, log)

	runner := worker.NewRunner(dailyWorker, slowWorker, cryptoWorker, maint, health, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Start(ctx)

	srv := server.New(server.Options{
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		MarketStore:    marketStore,
		CryptoStore:    cryptoStore,
		Groups:         groups,
		Health:         health,
		RateLimitRPS:   cfg.APIRateLimitRPS,
		RateLimitBurst: cfg.APIRateLimitBurst,
		Log:            log,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	select {
	case <-runner.Wait():
	case <-time.After(10 * time.Second):
		log.Warn().Msg("worker loops did not stop within the shutdown grace period")
	}

	log.Info().Msg("stopped")
}
