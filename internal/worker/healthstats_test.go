package worker

import (
	"testing"
	"time"
)

func TestHealthStatsUpdateDailyIncrementsIterationAndTime(t *testing.T) {
	h := NewHealthStats()
	now := time.Now().UTC()

	h.UpdateDaily(now)
	h.UpdateDaily(now.Add(time.Minute))

	snap := h.Snapshot()
	if snap.DailyIteration != 2 {
		t.Fatalf("expected iteration 2, got %d", snap.DailyIteration)
	}
	if !snap.DailyLastSync.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected last sync to be the most recent update")
	}
}

func TestHealthStatsTracksEachWorkerIndependently(t *testing.T) {
	h := NewHealthStats()
	now := time.Now().UTC()

	h.UpdateDaily(now)
	h.UpdateHourly(now)
	h.UpdateMinute(now)
	h.UpdateCrypto(now)

	snap := h.Snapshot()
	if snap.DailyIteration != 1 || snap.HourlyIteration != 1 || snap.MinuteIteration != 1 || snap.CryptoIteration != 1 {
		t.Fatalf("expected each worker's iteration count to be independently 1, got %+v", snap)
	}
}
