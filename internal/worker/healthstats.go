package worker

import (
	"sync"
	"time"
)

// HealthStats is the shared health/progress snapshot every worker loop
// updates at the end of its iteration, and the /health endpoint reads.
// Updates and reads both take the write lock: the snapshot read by the
// HTTP handler must never observe a half-written iteration.
type HealthStats struct {
	mu sync.Mutex

	DailyLastSync  time.Time
	DailyIteration int

	HourlyLastSync  time.Time
	HourlyIteration int

	MinuteLastSync  time.Time
	MinuteIteration int

	CryptoLastSync  time.Time
	CryptoIteration int

	IsTradingHours bool
}

// Snapshot is an immutable copy of HealthStats safe to hand to a JSON
// encoder without holding the lock.
type Snapshot struct {
	DailyLastSync   time.Time `json:"daily_last_sync"`
	DailyIteration  int       `json:"daily_iteration"`
	HourlyLastSync  time.Time `json:"hourly_last_sync"`
	HourlyIteration int       `json:"hourly_iteration"`
	MinuteLastSync  time.Time `json:"minute_last_sync"`
	MinuteIteration int       `json:"minute_iteration"`
	CryptoLastSync  time.Time `json:"crypto_last_sync"`
	CryptoIteration int       `json:"crypto_iteration"`
	IsTradingHours  bool      `json:"is_trading_hours"`
}

func NewHealthStats() *HealthStats {
	return &HealthStats{}
}

func (h *HealthStats) UpdateDaily(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.DailyLastSync = at
	h.DailyIteration++
	h.IsTradingHours = IsTradingHours(at)
}

func (h *HealthStats) UpdateHourly(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.HourlyLastSync = at
	h.HourlyIteration++
	h.IsTradingHours = IsTradingHours(at)
}

func (h *HealthStats) UpdateMinute(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.MinuteLastSync = at
	h.MinuteIteration++
	h.IsTradingHours = IsTradingHours(at)
}

func (h *HealthStats) UpdateCrypto(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.CryptoLastSync = at
	h.CryptoIteration++
}

func (h *HealthStats) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		DailyLastSync:   h.DailyLastSync,
		DailyIteration:  h.DailyIteration,
		HourlyLastSync:  h.HourlyLastSync,
		HourlyIteration: h.HourlyIteration,
		MinuteLastSync:  h.MinuteLastSync,
		MinuteIteration: h.MinuteIteration,
		CryptoLastSync:  h.CryptoLastSync,
		CryptoIteration: h.CryptoIteration,
		IsTradingHours:  h.IsTradingHours,
	}
}
