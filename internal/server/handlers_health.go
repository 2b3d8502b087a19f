package server

import (
	"net/http"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	"github.com/quanhua92/aipriceaction-sub000/internal/sysstats"
)

type healthResponse struct {
	Status          string            `json:"status"`
	Now             time.Time         `json:"now"`
	MarketBackend   string            `json:"market_backend"`
	CryptoBackend   string            `json:"crypto_backend"`
	DailyLastSync   time.Time         `json:"daily_last_sync"`
	DailyIteration  int               `json:"daily_iteration"`
	HourlyLastSync  time.Time         `json:"hourly_last_sync"`
	HourlyIteration int               `json:"hourly_iteration"`
	MinuteLastSync  time.Time         `json:"minute_last_sync"`
	MinuteIteration int               `json:"minute_iteration"`
	CryptoLastSync  time.Time         `json:"crypto_last_sync"`
	CryptoIteration int               `json:"crypto_iteration"`
	IsTradingHours  bool              `json:"is_trading_hours"`
	System          sysstats.Snapshot `json:"system"`
}

func backendName(b datastore.Backend) string {
	if b == datastore.BackendSQLite {
		return "sqlite"
	}
	return "csv"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Snapshot()

	resp := healthResponse{
		Status:          "ok",
		Now:             time.Now().UTC(),
		DailyLastSync:   snap.DailyLastSync,
		DailyIteration:  snap.DailyIteration,
		HourlyLastSync:  snap.HourlyLastSync,
		HourlyIteration: snap.HourlyIteration,
		MinuteLastSync:  snap.MinuteLastSync,
		MinuteIteration: snap.MinuteIteration,
		CryptoLastSync:  snap.CryptoLastSync,
		CryptoIteration: snap.CryptoIteration,
		IsTradingHours:  snap.IsTradingHours,
		System:          sysstats.Sample(),
	}
	if s.marketStore != nil {
		resp.MarketBackend = backendName(s.marketStore.CurrentBackend())
	}
	if s.cryptoStore != nil {
		resp.CryptoBackend = backendName(s.cryptoStore.CurrentBackend())
	}

	writeJSON(w, http.StatusOK, resp)
}
