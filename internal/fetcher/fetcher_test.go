package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

type stubClient struct {
	fn func(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error)
}

func (s *stubClient) FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
	return s.fn(ctx, symbols, start, end, iv)
}

func writeDailyCSV(t *testing.T, root, ticker, lastDate string) {
	t.Helper()
	dir := filepath.Join(root, ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	tm, _ := time.Parse("2006-01-02", lastDate)
	rec := &models.Enhanced{OHLCV: models.OHLCV{Time: tm, Close: 10, Symbol: ticker}}
	if err := csvstore.WriteCutoff(filepath.Join(dir, models.Daily.Filename()), models.Daily, []*models.Enhanced{rec}, time.Time{}, true); err != nil {
		t.Fatal(err)
	}
}

func TestCategorizeFullHistoryWhenMissing(t *testing.T) {
	root := t.TempDir()
	f := New(&stubClient{}, root, false, zerolog.Nop())
	cats := f.Categorize([]string{"VCB"}, models.Daily)
	if cats["VCB"].Kind != models.CategoryFullHistory {
		t.Fatalf("expected FullHistory for missing file, got %v", cats["VCB"].Kind)
	}
}

func TestCategorizeResumeWithinThreshold(t *testing.T) {
	root := t.TempDir()
	lastDate := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	writeDailyCSV(t, root, "VCB", lastDate)

	f := New(&stubClient{}, root, false, zerolog.Nop())
	cats := f.Categorize([]string{"VCB"}, models.Daily)
	if cats["VCB"].Kind != models.CategoryResume {
		t.Fatalf("expected Resume for 5-day gap, got %v", cats["VCB"].Kind)
	}
}

func TestCategorizePartialHistoryBeyondThreshold(t *testing.T) {
	root := t.TempDir()
	lastDate := time.Now().AddDate(0, 0, -91).Format("2006-01-02")
	writeDailyCSV(t, root, "VCB", lastDate)

	f := New(&stubClient{}, root, false, zerolog.Nop())
	cats := f.Categorize([]string{"VCB"}, models.Daily)
	if cats["VCB"].Kind != models.CategoryPartialHistory {
		t.Fatalf("expected PartialHistory for 91-day gap, got %v", cats["VCB"].Kind)
	}
}

func TestBatchFetchMapsUnknownSymbolsToNil(t *testing.T) {
	client := &stubClient{fn: func(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
		out := map[string][]models.OHLCV{}
		for _, s := range symbols {
			if s == "KNOWN" {
				out[s] = []models.OHLCV{{Time: time.Now(), Close: 1}}
			}
		}
		return out, nil
	}}
	f := New(client, t.TempDir(), false, zerolog.Nop())
	res, err := f.BatchFetch(context.Background(), []string{"KNOWN", "UNKNOWN"}, time.Time{}, time.Time{}, models.Daily, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res["KNOWN"] == nil {
		t.Fatal("expected KNOWN to have data")
	}
	if res["UNKNOWN"] != nil {
		t.Fatalf("expected UNKNOWN mapped to nil, got %v", res["UNKNOWN"])
	}
}

func TestFetchFullHistoryChunksByMonthForMinute(t *testing.T) {
	var calls int
	client := &stubClient{fn: func(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
		calls++
		return map[string][]models.OHLCV{symbols[0]: {{Time: start, Close: float64(calls)}}}, nil
	}}
	f := New(client, t.TempDir(), false, zerolog.Nop())

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows, err := f.FetchFullHistory(context.Background(), "VCB", start, end, models.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 monthly chunks (Jan, Feb, Mar), got %d", calls)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows after merge, got %d", len(rows))
	}
}

func TestDetectDividendExcludesMostRecentDay(t *testing.T) {
	d1, _ := time.Parse("2006-01-02", "2024-02-01")
	d2, _ := time.Parse("2006-01-02", "2024-02-02")
	existing := []models.OHLCV{{Time: d1, Close: 100.0}}
	fresh := []models.OHLCV{{Time: d1, Close: 95.0}, {Time: d2, Close: 50.0}}

	if !DetectDividend("VCB", existing, fresh) {
		t.Fatal("expected dividend detection on 2024-02-01 ratio > 1.02")
	}
}

func TestDetectDividendExemptForIndices(t *testing.T) {
	d1, _ := time.Parse("2006-01-02", "2024-02-01")
	existing := []models.OHLCV{{Time: d1, Close: 100.0}}
	fresh := []models.OHLCV{{Time: d1, Close: 1.0}}
	if DetectDividend("VNINDEX", existing, fresh) {
		t.Fatal("expected indices to be exempt from dividend heuristic")
	}
}
