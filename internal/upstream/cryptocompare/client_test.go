package cryptocompare

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	"github.com/quanhua92/aipriceaction-sub000/internal/ratelimit"
)

func TestFetchBatchDailySkipsZeroVolumeCandles(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "allData=true") {
			t.Errorf("expected allData=true for daily interval, got query %q", r.URL.RawQuery)
		}
		resp := histoResponse{Response: "Success"}
		resp.Data.Data = []candle{
			{Time: start.Unix(), Open: 100, High: 110, Low: 90, Close: 105, VolumeFrom: 0, VolumeTo: 0},
			{Time: start.AddDate(0, 0, 1).Unix(), Open: 105, High: 115, Low: 95, Close: 108, VolumeFrom: 10, VolumeTo: 1000},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()
	baseURL = srv.URL

	pool := httpclient.NewPool(true, nil, "", ratelimit.New(1000, time.Second), zerolog.Nop())
	client := New(pool, zerolog.Nop())

	out, err := client.FetchBatch(context.Background(), []string{"BTC"}, start, start.AddDate(0, 0, 5), models.Daily)
	if err != nil {
		t.Fatalf("FetchBatch: %v", err)
	}
	if len(out["BTC"]) != 1 {
		t.Fatalf("expected the zero-volume candle dropped, got %d rows", len(out["BTC"]))
	}
}

func TestFetchBatchProviderErrorSkipsSymbolWithoutFailingBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(histoResponse{Response: "Error", Message: "invalid symbol"})
	}))
	defer srv.Close()
	baseURL = srv.URL

	pool := httpclient.NewPool(true, nil, "", ratelimit.New(1000, time.Second), zerolog.Nop())
	client := New(pool, zerolog.Nop())

	out, err := client.FetchBatch(context.Background(), []string{"NOTACOIN"}, time.Now().AddDate(-1, 0, 0), time.Now(), models.Daily)
	if err != nil {
		t.Fatalf("FetchBatch should not return a batch-level error: %v", err)
	}
	if _, ok := out["NOTACOIN"]; ok {
		t.Fatalf("symbol with a provider error must be absent from the result map")
	}
}
