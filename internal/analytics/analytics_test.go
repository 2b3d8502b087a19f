package analytics

import (
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func TestTickSizeVNStockTiers(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{5_000, 10},
		{20_000, 50},
		{80_000, 100},
	}
	for _, c := range cases {
		if got := TickSize(MarketVN, "VCB", c.price); got != c.want {
			t.Errorf("TickSize(%v) = %v, want %v", c.price, got, c.want)
		}
	}
}

func TestTickSizeVNIndexAlwaysFine(t *testing.T) {
	if got := TickSize(MarketVN, "VNINDEX", 1_500_000); got != 0.01 {
		t.Fatalf("expected index tick size 0.01, got %v", got)
	}
}

func TestBuildVolumeProfileFindsPOCAndValueArea(t *testing.T) {
	tm := time.Now()
	candles := []*models.Enhanced{
		{OHLCV: models.OHLCV{Time: tm, Low: 10, High: 10, Close: 10, Volume: 100}},  // doji, all volume at 10
		{OHLCV: models.OHLCV{Time: tm, Low: 10, High: 12, Close: 11, Volume: 90}},   // spread over 10,11,12
		{OHLCV: models.OHLCV{Time: tm, Low: 0, High: 0, Close: 0, Volume: 0}},       // zero-volume skipped
	}

	profile := BuildVolumeProfile("VCB", candles, 1.0, 0, 70)
	if profile.TotalVolume != 190 {
		t.Fatalf("expected total volume 190 (zero-vol candle excluded), got %d", profile.TotalVolume)
	}
	if profile.POC.Price != 10 {
		t.Fatalf("expected POC at price 10 (100+30=130 volume), got %v", profile.POC.Price)
	}
	if profile.ValueArea.Volume <= 0 {
		t.Fatal("expected a non-trivial value area")
	}
}

func TestTopPerformersExcludesIndicesAndSortsDescending(t *testing.T) {
	up, down := 5.0, -3.0
	latest := map[string]*models.Enhanced{
		"VCB":     {OHLCV: models.OHLCV{Volume: 1000}, CloseChanged: &up},
		"VNM":     {OHLCV: models.OHLCV{Volume: 1000}, CloseChanged: &down},
		"VNINDEX": {OHLCV: models.OHLCV{Volume: 1000}, CloseChanged: &up},
	}

	top, bottom := TopPerformers(latest, nil, TopPerformersQuery{TopN: 1})
	if len(top) != 1 || top[0].Symbol != "VCB" {
		t.Fatalf("expected VCB as sole top performer, got %+v", top)
	}
	if len(bottom) != 1 || bottom[0].Symbol != "VNM" {
		t.Fatalf("expected VNM as bottom performer, got %+v", bottom)
	}
}

func TestMAScoresBySectorAveragesAndCaps(t *testing.T) {
	scores := map[string]float64{"VCB": 10, "BID": 5, "CTG": -2}
	sectors := map[string]string{"VCB": "banking", "BID": "banking", "CTG": "banking"}

	lookup := func(symbol string) *float64 {
		v, ok := scores[symbol]
		if !ok {
			return nil
		}
		return &v
	}

	summaries := MAScoresBySector(sectors, lookup, 2)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 sector, got %d", len(summaries))
	}
	banking := summaries[0]
	if len(banking.Tickers) != 2 {
		t.Fatalf("expected cap to top 2, got %d", len(banking.Tickers))
	}
	if banking.Tickers[0].Symbol != "VCB" {
		t.Fatalf("expected VCB ranked first (score 10), got %s", banking.Tickers[0].Symbol)
	}
	wantAvg := (10.0 + 5.0 - 2.0) / 3
	if banking.AverageScore != wantAvg {
		t.Fatalf("expected average over all 3 tickers %v, got %v", wantAvg, banking.AverageScore)
	}
}
