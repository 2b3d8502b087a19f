package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	"github.com/quanhua92/aipriceaction-sub000/internal/tickergroups"
	"github.com/quanhua92/aipriceaction-sub000/internal/worker"
)

func writeDaily(t *testing.T, root, ticker string, recs []*models.Enhanced) {
	t.Helper()
	dir := filepath.Join(root, ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, models.Daily.Filename())
	if err := csvstore.WriteCutoff(path, models.Daily, recs, time.Time{}, true); err != nil {
		t.Fatal(err)
	}
}

func changed(v float64) *float64 { return &v }

func dailyRec(day int, close float64, closeChanged *float64, symbol string) *models.Enhanced {
	tm := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	return &models.Enhanced{
		OHLCV:        models.OHLCV{Time: tm, Close: close, Volume: 1000, Symbol: symbol},
		CloseChanged: closeChanged,
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	writeDaily(t, root, "VNINDEX", []*models.Enhanced{dailyRec(1, 1000, nil, "VNINDEX"), dailyRec(2, 1010, changed(1.0), "VNINDEX")})
	writeDaily(t, root, "VCB", []*models.Enhanced{dailyRec(1, 90000, nil, "VCB"), dailyRec(2, 95000, changed(5.5), "VCB")})
	writeDaily(t, root, "FPT", []*models.Enhanced{dailyRec(1, 80000, nil, "FPT"), dailyRec(2, 79000, changed(-1.25), "FPT")})

	store, err := datastore.New(datastore.Options{CSVRoot: root, StartBackend: "csv", Log: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}

	groups := tickergroups.Groups{
		Tickers: []string{"VNINDEX", "VCB", "FPT"},
		Sectors: map[string]string{"VCB": "Banking", "FPT": "Technology"},
	}

	health := worker.NewHealthStats()
	health.UpdateDaily(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))

	return New(Options{
		Port:           0,
		DevMode:        true,
		MarketStore:    store,
		CryptoStore:    nil,
		Groups:         groups,
		Health:         health,
		RateLimitRPS:   5000,
		RateLimitBurst: 10000,
		Log:            zerolog.Nop(),
	})
}

func TestHandleHealthReportsWorkerSnapshot(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DailyIteration != 1 {
		t.Fatalf("expected daily iteration 1, got %d", resp.DailyIteration)
	}
	if resp.MarketBackend != "csv" {
		t.Fatalf("expected csv backend, got %q", resp.MarketBackend)
	}
}

func TestHandleTickersReturnsSeriesForRequestedSymbol(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickers?symbol=VCB&interval=1D", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out map[string][]tickerRecord
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	rows := out["VCB"]
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Close != 95000 {
		t.Fatalf("expected last close 95000, got %v", rows[1].Close)
	}
}

func TestHandleTickersLegacyScaleDividesNonIndexPrices(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickers?symbol=VCB&symbol=VNINDEX&legacy=true", nil))

	var out map[string][]tickerRecord
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["VCB"][0].Close != 90 {
		t.Fatalf("expected VCB close scaled to 90, got %v", out["VCB"][0].Close)
	}
	if out["VNINDEX"][0].Close != 1000 {
		t.Fatalf("expected VNINDEX close left unscaled, got %v", out["VNINDEX"][0].Close)
	}
}

func TestHandleTickersRequiresAtLeastOneSymbol(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickers", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleTickerGroupsReturnsSectorMap(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickers/group", nil))

	var out struct {
		Groups map[string][]string `json:"groups"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Groups["Banking"]) != 1 || out.Groups["Banking"][0] != "VCB" {
		t.Fatalf("expected Banking sector to contain VCB, got %+v", out.Groups)
	}
}

func TestHandleTopPerformersDefaultsDateToLatestVNINDEXAndExcludesIndices(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis/top-performers?top_n=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Date string `json:"date"`
		Top  []struct {
			Symbol string  `json:"Symbol"`
			Value  float64 `json:"Value"`
		} `json:"top"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Date != "2026-01-02" {
		t.Fatalf("expected default date to be VNINDEX's latest (2026-01-02), got %q", out.Date)
	}
	for _, p := range out.Top {
		if p.Symbol == "VNINDEX" {
			t.Fatalf("expected VNINDEX to be excluded from top performers, got %+v", out.Top)
		}
	}
	if len(out.Top) != 2 || out.Top[0].Symbol != "VCB" {
		t.Fatalf("expected VCB ranked first by close_changed, got %+v", out.Top)
	}
}

func TestHandleVolumeProfileRequiresSymbolAndDate(t *testing.T) {
	s := testServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis/volume-profile", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without symbol, got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	s.router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/analysis/volume-profile?symbol=VCB", nil))
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", w2.Code)
	}
}
