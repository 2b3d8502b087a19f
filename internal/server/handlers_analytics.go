package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/analytics"
	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// analysisDate resolves the date query param, defaulting to the latest
// date available for VNINDEX, per §4.8's "top performers ... on a given
// date (defaulted to latest available for VNINDEX)".
func (s *Server) analysisDate(store *datastore.Store, dateParam string) (time.Time, error) {
	if dateParam != "" {
		return time.Parse("2006-01-02", dateParam)
	}

	data, err := store.GetDataWithCache(datastore.Query{
		Tickers:  []string{"VNINDEX"},
		Interval: models.Daily,
		UseCache: true,
	})
	if err != nil {
		return time.Time{}, err
	}
	series := data["VNINDEX"]
	if len(series) == 0 {
		return time.Time{}, fmt.Errorf("no VNINDEX history to infer an analysis date from")
	}
	return series[len(series)-1].Time, nil
}

// recordAt returns the record in series whose date matches date
// exactly, or nil if no such record exists.
func recordAt(series []*models.Enhanced, date time.Time) *models.Enhanced {
	target := date.UTC().Format("2006-01-02")
	for _, rec := range series {
		if rec.Time.UTC().Format("2006-01-02") == target {
			return rec
		}
	}
	return nil
}

func (s *Server) latestByTicker(date time.Time) (map[string]*models.Enhanced, error) {
	data, err := s.marketStore.GetDataWithCache(datastore.Query{
		Tickers:  s.groups.Tickers,
		Interval: models.Daily,
		UseCache: true,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]*models.Enhanced, len(data))
	for ticker, series := range data {
		out[ticker] = recordAt(series, date)
	}
	return out, nil
}

func (s *Server) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := s.analysisDate(s.marketStore, q.Get("date"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	latest, err := s.latestByTicker(date)
	if err != nil {
		internalError(w, err.Error())
		return
	}

	metric := analytics.MetricCloseChanged
	if q.Get("metric") == "volume_changed" {
		metric = analytics.MetricVolumeChanged
	}

	var minVolume uint64
	if v := q.Get("min_volume"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			badRequest(w, "invalid min_volume")
			return
		}
		minVolume = n
	}

	topN := 10
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "invalid top_n")
			return
		}
		topN = n
	}

	top, bottom := analytics.TopPerformers(latest, s.groups.Sectors, analytics.TopPerformersQuery{
		Sector:    q.Get("sector"),
		MinVolume: minVolume,
		Metric:    metric,
		TopN:      topN,
	})

	writeJSON(w, http.StatusOK, struct {
		Date   string                 `json:"date"`
		Top    []analytics.Performer  `json:"top"`
		Bottom []analytics.Performer  `json:"bottom"`
	}{Date: date.UTC().Format("2006-01-02"), Top: top, Bottom: bottom})
}

func (s *Server) handleMAScoresBySector(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := s.analysisDate(s.marketStore, q.Get("date"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	window := 50
	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid window")
			return
		}
		window = n
	}

	topPerSector := 5
	if v := q.Get("top_per_sector"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "invalid top_per_sector")
			return
		}
		topPerSector = n
	}

	latest, err := s.latestByTicker(date)
	if err != nil {
		internalError(w, err.Error())
		return
	}

	lookup := func(symbol string) *float64 {
		rec := latest[symbol]
		if rec == nil {
			return nil
		}
		ptr := rec.ScoreFor(window)
		if ptr == nil {
			return nil
		}
		return *ptr
	}

	summaries := analytics.MAScoresBySector(s.groups.Sectors, lookup, topPerSector)
	writeJSON(w, http.StatusOK, struct {
		Date     string                   `json:"date"`
		Window   int                      `json:"window"`
		Sectors  []analytics.SectorSummary `json:"sectors"`
	}{Date: date.UTC().Format("2006-01-02"), Window: window, Sectors: summaries})
}

func (s *Server) handleVolumeProfile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		badRequest(w, "symbol is required")
		return
	}

	mode := q.Get("mode")
	market := analytics.MarketVN
	store := s.marketStore
	if mode == "crypto" {
		market = analytics.MarketCrypto
		store = s.cryptoStore
	}
	if store == nil {
		internalError(w, "requested data store is not configured")
		return
	}

	dateStr := q.Get("date")
	if dateStr == "" {
		badRequest(w, "date is required")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		badRequest(w, "invalid date, expected YYYY-MM-DD")
		return
	}

	bins := 0
	if v := q.Get("bins"); v != "" {
		bins, err = strconv.Atoi(v)
		if err != nil || bins < 0 {
			badRequest(w, "invalid bins")
			return
		}
	}

	valueAreaPct := 70.0
	if v := q.Get("value_area_pct"); v != "" {
		valueAreaPct, err = strconv.ParseFloat(v, 64)
		if err != nil || valueAreaPct <= 0 || valueAreaPct > 100 {
			badRequest(w, "invalid value_area_pct")
			return
		}
	}

	dayEnd := date.Add(24*time.Hour - time.Nanosecond)
	data, err := store.GetDataWithCache(datastore.Query{
		Tickers:  []string{symbol},
		Interval: models.Minute,
		Start:    date,
		End:      dayEnd,
		UseCache: true,
	})
	if err != nil {
		internalError(w, err.Error())
		return
	}

	candles := data[symbol]
	if len(candles) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no minute candles for %s on %s", symbol, dateStr))
		return
	}

	avgPrice := averageClose(candles)
	tickSize := analytics.TickSize(market, symbol, avgPrice)

	profile := analytics.BuildVolumeProfile(symbol, candles, tickSize, bins, valueAreaPct)
	writeJSON(w, http.StatusOK, profile)
}

func averageClose(candles []*models.Enhanced) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}
