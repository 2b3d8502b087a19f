// Package vci implements the brokerage gateway client: batch OHLC history
// over the egress pool's shuffle/retry/backoff request algorithm.
package vci

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/apperr"
	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// baseURL is the gateway endpoint; overridable in tests.
var baseURL = "https://trading.vietcap.com.vn/api/chart/OHLCChart/gap-chart"

// countBackBuffer pads the business-day count so the gateway reliably
// returns the full requested range.
const countBackBuffer = 100

var timeFrameByInterval = map[models.Interval]string{
	models.Daily:  "ONE_DAY",
	models.Hourly: "ONE_HOUR",
	models.Minute: "ONE_MINUTE",
}

// Client implements fetcher.Client against the brokerage gateway.
type Client struct {
	pool *httpclient.Pool
	log  zerolog.Logger
}

// New builds a Client. pool is the shared egress pool (direct + proxies)
// already wired with the stock-tier rate limiter.
func New(pool *httpclient.Pool, log zerolog.Logger) *Client {
	return &Client{pool: pool, log: log.With().Str("component", "vci").Logger()}
}

type ohlcChartResponse struct {
	Symbol string        `json:"symbol"`
	Ticker string        `json:"ticker"`
	Open   []float64     `json:"o"`
	High   []float64     `json:"h"`
	Low    []float64     `json:"l"`
	Close  []float64     `json:"c"`
	Volume []float64     `json:"v"`
	Time   []interface{} `json:"t"`
}

type chartRequestBody struct {
	TimeFrame string   `json:"timeFrame"`
	Symbols   []string `json:"symbols"`
	To        int64    `json:"to"`
	CountBack int      `json:"countBack"`
}

// FetchBatch requests OHLC history for every symbol in one gateway call.
// countBack is doubled relative to the single-symbol calculation to work
// around a known gateway bug where multi-symbol batches under-return.
func (c *Client) FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
	if len(symbols) == 0 {
		return map[string][]models.OHLCV{}, nil
	}

	timeFrame, ok := timeFrameByInterval[iv]
	if !ok {
		return nil, fmt.Errorf("vci: unsupported interval %v: %w", iv, apperr.ErrInvalidInput)
	}

	countBack := countBackFor(start, end, iv) * 2
	req := httpclient.Request{
		Method: "POST",
		URL:    baseURL,
		Body: chartRequestBody{
			TimeFrame: timeFrame,
			Symbols:   symbols,
			To:        end.Unix(),
			CountBack: countBack,
		},
	}

	var raw []ohlcChartResponse
	if err := c.pool.Do(ctx, req, &raw); err != nil {
		return nil, fmt.Errorf("vci fetch batch: %w", err)
	}

	bySymbol := make(map[string]ohlcChartResponse, len(raw))
	for _, item := range raw {
		sym := strings.ToUpper(item.Symbol)
		if sym == "" {
			sym = strings.ToUpper(item.Ticker)
		}
		if sym != "" {
			bySymbol[sym] = item
		}
	}

	out := make(map[string][]models.OHLCV, len(symbols))
	for _, symbol := range symbols {
		item, ok := bySymbol[strings.ToUpper(symbol)]
		if !ok {
			continue
		}
		rows, err := toOHLCV(item, symbol, start)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("dropping malformed gateway record")
			continue
		}
		if len(rows) > 0 {
			out[symbol] = rows
		}
	}

	return out, nil
}

func toOHLCV(item ohlcChartResponse, symbol string, start time.Time) ([]models.OHLCV, error) {
	n := len(item.Time)
	if len(item.Open) != n || len(item.High) != n || len(item.Low) != n || len(item.Close) != n || len(item.Volume) != n {
		return nil, fmt.Errorf("inconsistent array lengths: %w", apperr.ErrProtocol)
	}

	rows := make([]models.OHLCV, 0, n)
	for i := 0; i < n; i++ {
		ts, err := parseUnixLike(item.Time[i])
		if err != nil {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		if t.Before(start) {
			continue
		}
		rows = append(rows, models.OHLCV{
			Time:   t,
			Open:   item.Open[i],
			High:   item.High[i],
			Low:    item.Low[i],
			Close:  item.Close[i],
			Volume: uint64(item.Volume[i]),
			Symbol: symbol,
		})
	}
	return rows, nil
}

// parseUnixLike accepts the gateway's timestamp either as a JSON number
// or, occasionally, as a numeric string.
func parseUnixLike(v interface{}) (int64, error) {
	switch ts := v.(type) {
	case float64:
		return int64(ts), nil
	case string:
		var n int64
		if _, err := fmt.Sscanf(ts, "%d", &n); err != nil {
			return 0, err
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unrecognized timestamp type %T", v)
	}
}

// countBackFor mirrors the original implementation's business-day
// estimate, padded per interval so the gateway's record cap never
// truncates the requested range.
func countBackFor(start, end time.Time, iv models.Interval) int {
	days := businessDays(start, end)
	switch iv {
	case models.Hourly:
		return int(float64(days)*6.5) + countBackBuffer
	case models.Minute:
		return int(float64(days)*6.5*60) + countBackBuffer
	default:
		return days + countBackBuffer
	}
}

func businessDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
