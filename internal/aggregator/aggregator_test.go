package aggregator

import (
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func mkMinute(t *testing.T, ts string, o, h, l, c float64, v uint64) *models.Enhanced {
	t.Helper()
	tm, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		t.Fatal(err)
	}
	return &models.Enhanced{OHLCV: models.OHLCV{
		Symbol: "VCB", Time: tm, Open: o, High: h, Low: l, Close: c, Volume: v,
	}}
}

func TestAggregateMinuteInto5mBucket(t *testing.T) {
	series := []*models.Enhanced{
		mkMinute(t, "2024-06-03 09:00:00", 10, 11, 9, 10.5, 100),
		mkMinute(t, "2024-06-03 09:01:00", 10.5, 12, 10, 11, 200),
		mkMinute(t, "2024-06-03 09:04:00", 11, 11.5, 10.8, 11.2, 50),
		mkMinute(t, "2024-06-03 09:05:00", 11.2, 11.3, 11, 11.1, 75),
	}

	out := AggregateMinute(series, models.Agg5m)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets (09:00 and 09:05), got %d", len(out))
	}

	first := out[0]
	if first.Open != 10 {
		t.Fatalf("expected bucket open=first record's open (10), got %v", first.Open)
	}
	if first.Close != 11.2 {
		t.Fatalf("expected bucket close=last record's close (11.2), got %v", first.Close)
	}
	if first.High != 12 {
		t.Fatalf("expected bucket high=max(high) (12), got %v", first.High)
	}
	if first.Low != 9 {
		t.Fatalf("expected bucket low=min(low) (9), got %v", first.Low)
	}
	if first.Volume != 350 {
		t.Fatalf("expected bucket volume=sum (350), got %v", first.Volume)
	}
}

func TestAggregateDailyWeekBucket(t *testing.T) {
	mon, _ := time.Parse("2006-01-02", "2024-06-03") // Monday
	wed, _ := time.Parse("2006-01-02", "2024-06-05")
	nextMon, _ := time.Parse("2006-01-02", "2024-06-10")

	series := []*models.Enhanced{
		{OHLCV: models.OHLCV{Symbol: "VCB", Time: mon, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}},
		{OHLCV: models.OHLCV{Symbol: "VCB", Time: wed, Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20}},
		{OHLCV: models.OHLCV{Symbol: "VCB", Time: nextMon, Open: 2.5, High: 2.6, Low: 2, Close: 2.2, Volume: 5}},
	}

	out := AggregateDaily(series, models.Agg1W)
	if len(out) != 2 {
		t.Fatalf("expected 2 weekly buckets, got %d", len(out))
	}
	if !out[0].Time.Equal(mon) {
		t.Fatalf("expected first bucket to key on Monday %v, got %v", mon, out[0].Time)
	}
	if out[0].Volume != 30 {
		t.Fatalf("expected week1 volume sum 30, got %v", out[0].Volume)
	}
}

func TestAggregateUnsupportedIntervalReturnsUnchanged(t *testing.T) {
	series := []*models.Enhanced{mkMinute(t, "2024-06-03 09:00:00", 1, 1, 1, 1, 1)}
	out := AggregateMinute(series, models.Agg1W)
	if len(out) != 1 || out[0] != series[0] {
		t.Fatal("expected series unchanged for unsupported interval")
	}
}
