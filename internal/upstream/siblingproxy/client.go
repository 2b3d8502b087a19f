// Package siblingproxy implements the crypto-data fallback/primary source
// that proxies through another instance of this same query API, used when
// the CryptoCompare provider is blocked from the deployment's network.
package siblingproxy

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// targetRecordCount bounds the estimated payload per call; symbol sets
// expected to exceed it are split into multiple batched calls.
const targetRecordCount = 5000

type wireRecord struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Client implements fetcher.Client against a sibling instance's /tickers
// endpoint in crypto mode.
type Client struct {
	baseURL    string
	hostHeader string
	pool       *httpclient.Pool
	log        zerolog.Logger
}

// New builds a Client. baseURL is the sibling instance's origin (no
// trailing slash required); hostHeader, if set, overrides the Host header
// sent with every request (useful to bypass a CDN/proxy in front of the
// sibling).
func New(baseURL, hostHeader string, pool *httpclient.Pool, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		hostHeader: hostHeader,
		pool:       pool,
		log:        log.With().Str("component", "siblingproxy").Logger(),
	}
}

// FetchBatch estimates the payload size and splits into multiple calls
// when the estimate exceeds targetRecordCount.
func (c *Client) FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
	if len(symbols) == 0 {
		return map[string][]models.OHLCV{}, nil
	}

	limit := estimateLimit(start, end, iv)
	perCall := symbolsPerCall(limit, len(symbols))

	out := make(map[string][]models.OHLCV, len(symbols))
	for i := 0; i < len(symbols); i += perCall {
		end := i + perCall
		if end > len(symbols) {
			end = len(symbols)
		}
		chunk := symbols[i:end]

		data, err := c.fetchChunk(ctx, chunk, start, iv, limit)
		if err != nil {
			c.log.Warn().Err(err).Int("chunk_size", len(chunk)).Msg("sibling proxy chunk failed")
			continue
		}
		for sym, rows := range data {
			out[sym] = rows
		}
	}
	return out, nil
}

func (c *Client) fetchChunk(ctx context.Context, symbols []string, start time.Time, iv models.Interval, limit int) (map[string][]models.OHLCV, error) {
	q := url.Values{}
	q.Set("mode", "crypto")
	q.Set("interval", iv.Wire())
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("limit", fmt.Sprintf("%d", limit))
	for _, s := range symbols {
		q.Add("symbol", s)
	}

	reqURL := fmt.Sprintf("%s/tickers?%s", c.baseURL, q.Encode())
	req := httpclient.Request{Method: "GET", URL: reqURL}
	if c.hostHeader != "" {
		req.Headers = map[string]string{"Host": c.hostHeader}
	}

	var resp map[string][]wireRecord
	if err := c.pool.Do(ctx, req, &resp); err != nil {
		return nil, err
	}

	out := make(map[string][]models.OHLCV, len(resp))
	for symbol, records := range resp {
		rows := make([]models.OHLCV, 0, len(records))
		for _, rec := range records {
			t, err := parseWireTime(rec.Time, iv)
			if err != nil {
				continue
			}
			rows = append(rows, models.OHLCV{
				Time:   t,
				Open:   rec.Open,
				High:   rec.High,
				Low:    rec.Low,
				Close:  rec.Close,
				Volume: uint64(rec.Volume),
				Symbol: symbol,
			})
		}
		if len(rows) > 0 {
			out[symbol] = rows
		}
	}
	return out, nil
}

func parseWireTime(s string, iv models.Interval) (time.Time, error) {
	if iv == models.Daily {
		return time.Parse("2006-01-02", s)
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func estimateLimit(start, end time.Time, iv models.Interval) int {
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	switch iv {
	case models.Hourly:
		return days * 24
	case models.Minute:
		return days * 24 * 60
	default:
		return days
	}
}

func symbolsPerCall(limit, totalSymbols int) int {
	if limit <= 0 {
		limit = 1
	}
	perCall := targetRecordCount / limit
	if perCall < 1 {
		perCall = 1
	}
	if perCall > totalSymbols {
		perCall = totalSymbols
	}
	return perCall
}
