package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/analytics"
	"github.com/quanhua92/aipriceaction-sub000/internal/datastore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// tickerRecord is the wire shape of one OHLCV(+indicators) row, per
// §6.1: time, the raw fields, then every optional indicator.
type tickerRecord struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume uint64  `json:"volume"`
	Symbol string  `json:"symbol"`

	MA10  *float64 `json:"ma10,omitempty"`
	MA20  *float64 `json:"ma20,omitempty"`
	MA50  *float64 `json:"ma50,omitempty"`
	MA100 *float64 `json:"ma100,omitempty"`
	MA200 *float64 `json:"ma200,omitempty"`

	MA10Score  *float64 `json:"ma10_score,omitempty"`
	MA20Score  *float64 `json:"ma20_score,omitempty"`
	MA50Score  *float64 `json:"ma50_score,omitempty"`
	MA100Score *float64 `json:"ma100_score,omitempty"`
	MA200Score *float64 `json:"ma200_score,omitempty"`

	CloseChanged      *float64 `json:"close_changed,omitempty"`
	VolumeChanged     *float64 `json:"volume_changed,omitempty"`
	TotalMoneyChanged *float64 `json:"total_money_changed,omitempty"`
}

const legacyScale = 1000.0

func wireTime(t time.Time, iv models.Interval) string {
	if iv == models.Daily {
		return t.UTC().Format("2006-01-02")
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func scaleDown(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f / legacyScale
	return &v
}

func toTickerRecord(rec *models.Enhanced, iv models.Interval, legacy bool) tickerRecord {
	out := tickerRecord{
		Time:   wireTime(rec.Time, iv),
		Open:   rec.Open,
		High:   rec.High,
		Low:    rec.Low,
		Close:  rec.Close,
		Volume: rec.Volume,
		Symbol: rec.Symbol,

		MA10: rec.MA10, MA20: rec.MA20, MA50: rec.MA50, MA100: rec.MA100, MA200: rec.MA200,

		MA10Score: rec.MA10Score, MA20Score: rec.MA20Score, MA50Score: rec.MA50Score,
		MA100Score: rec.MA100Score, MA200Score: rec.MA200Score,

		CloseChanged:      rec.CloseChanged,
		VolumeChanged:     rec.VolumeChanged,
		TotalMoneyChanged: rec.TotalMoneyChanged,
	}

	if legacy && !analytics.IsIndex(rec.Symbol) {
		out.Open /= legacyScale
		out.High /= legacyScale
		out.Low /= legacyScale
		out.Close /= legacyScale
		out.MA10, out.MA20, out.MA50, out.MA100, out.MA200 =
			scaleDown(rec.MA10), scaleDown(rec.MA20), scaleDown(rec.MA50), scaleDown(rec.MA100), scaleDown(rec.MA200)
		out.TotalMoneyChanged = scaleDown(rec.TotalMoneyChanged)
	}

	return out
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols := q["symbol"]
	if len(symbols) == 0 {
		badRequest(w, "at least one symbol is required")
		return
	}

	iv, err := models.ParseInterval(q.Get("interval"))
	if err != nil {
		if q.Get("interval") == "" {
			iv = models.Daily
		} else {
			badRequest(w, fmt.Sprintf("invalid interval: %v", err))
			return
		}
	}

	var start, end time.Time
	if v := q.Get("start_date"); v != "" {
		start, err = time.Parse("2006-01-02", v)
		if err != nil {
			badRequest(w, "invalid start_date, expected YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("end_date"); v != "" {
		end, err = time.Parse("2006-01-02", v)
		if err != nil {
			badRequest(w, "invalid end_date, expected YYYY-MM-DD")
			return
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(w, "invalid limit")
			return
		}
	}

	legacy, _ := strconv.ParseBool(q.Get("legacy"))
	useCache := true
	if v := q.Get("cache"); v != "" {
		useCache, _ = strconv.ParseBool(v)
	}
	format := q.Get("format")
	if format == "" {
		format = "json"
	}

	store := s.storeFor(q.Get("mode"))
	if store == nil {
		internalError(w, "requested data store is not configured")
		return
	}

	data, err := store.GetDataWithCache(datastore.Query{
		Tickers:  symbols,
		Interval: iv,
		Start:    start,
		End:      end,
		Limit:    limit,
		UseCache: useCache,
	})
	if err != nil {
		internalError(w, err.Error())
		return
	}

	out := make(map[string][]tickerRecord, len(data))
	for symbol, series := range data {
		rows := make([]tickerRecord, 0, len(series))
		for _, rec := range series {
			rows = append(rows, toTickerRecord(rec, iv, legacy))
		}
		out[symbol] = rows
	}

	if strings.EqualFold(format, "csv") {
		writeTickersCSV(w, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeTickersCSV(w http.ResponseWriter, data map[string][]tickerRecord) {
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintln(w, "symbol,time,open,high,low,close,volume,ma10,ma20,ma50,ma100,ma200,"+
		"ma10_score,ma20_score,ma50_score,ma100_score,ma200_score,close_changed,volume_changed,total_money_changed")

	for symbol, rows := range data {
		for _, rec := range rows {
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
				symbol, rec.Time,
				formatFloat(rec.Open), formatFloat(rec.High), formatFloat(rec.Low), formatFloat(rec.Close), rec.Volume,
				formatNullable(rec.MA10), formatNullable(rec.MA20), formatNullable(rec.MA50), formatNullable(rec.MA100), formatNullable(rec.MA200),
				formatNullable(rec.MA10Score), formatNullable(rec.MA20Score), formatNullable(rec.MA50Score), formatNullable(rec.MA100Score), formatNullable(rec.MA200Score),
				formatNullable(rec.CloseChanged), formatNullable(rec.VolumeChanged), formatNullable(rec.TotalMoneyChanged),
			)
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatNullable(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
