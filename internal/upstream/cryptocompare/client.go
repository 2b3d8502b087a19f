// Package cryptocompare implements the crypto provider client: one
// histoday/histohour/histominute call per symbol, paginated via toTs for
// intraday intervals, over the shared egress pool.
package cryptocompare

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/quanhua92/aipriceaction-sub000/internal/httpclient"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// baseURL is the provider endpoint; overridable in tests.
var baseURL = "https://min-api.cryptocompare.com"

const (
	// pageLimit is the provider's max records per call.
	pageLimit = 2000

	// fetchConcurrency bounds how many symbols are paginated at once.
	fetchConcurrency = 4
)

var endpointByInterval = map[models.Interval]string{
	models.Daily:  "/data/v2/histoday",
	models.Hourly: "/data/v2/histohour",
	models.Minute: "/data/v2/histominute",
}

// Client implements fetcher.Client against the CryptoCompare free-tier
// history API.
type Client struct {
	pool *httpclient.Pool
	log  zerolog.Logger
}

func New(pool *httpclient.Pool, log zerolog.Logger) *Client {
	return &Client{pool: pool, log: log.With().Str("component", "cryptocompare").Logger()}
}

type histoResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []candle `json:"Data"`
	} `json:"Data"`
}

type candle struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	VolumeFrom float64 `json:"volumefrom"`
	VolumeTo   float64 `json:"volumeto"`
}

// FetchBatch fetches each symbol independently (the provider has no
// multi-symbol endpoint) and paginates intraday intervals with toTs until
// the window before start is covered or the provider returns a short page.
func (c *Client) FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error) {
	endpoint, ok := endpointByInterval[iv]
	if !ok {
		return nil, fmt.Errorf("cryptocompare: unsupported interval %v", iv)
	}

	var mu sync.Mutex
	out := make(map[string][]models.OHLCV, len(symbols))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			rows, err := c.fetchSymbol(gCtx, symbol, endpoint, start, iv)
			if err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("cryptocompare fetch failed, skipping symbol")
				return nil
			}
			mu.Lock()
			if len(rows) > 0 {
				out[symbol] = rows
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchSymbol(ctx context.Context, symbol, endpoint string, start time.Time, iv models.Interval) ([]models.OHLCV, error) {
	var all []models.OHLCV
	var toTs int64

	for {
		url := fmt.Sprintf("%s%s?fsym=%s&tsym=USD&limit=%d", baseURL, endpoint, symbol, pageLimit)
		if iv == models.Daily {
			url += "&allData=true"
		}
		if toTs > 0 {
			url += fmt.Sprintf("&toTs=%d", toTs)
		}

		var resp histoResponse
		if err := c.pool.Do(ctx, httpclient.Request{Method: "GET", URL: url}, &resp); err != nil {
			return nil, err
		}
		if resp.Response == "Error" {
			return nil, fmt.Errorf("cryptocompare error: %s", resp.Message)
		}

		page := resp.Data.Data
		if len(page) == 0 {
			break
		}

		for _, cd := range page {
			if cd.VolumeFrom == 0 && cd.VolumeTo == 0 {
				continue
			}
			t := time.Unix(cd.Time, 0).UTC()
			if t.Before(start) {
				continue
			}
			all = append(all, models.OHLCV{
				Time:   t,
				Open:   cd.Open,
				High:   cd.High,
				Low:    cd.Low,
				Close:  cd.Close,
				Volume: uint64(cd.VolumeFrom),
				Symbol: symbol,
			})
		}

		if iv == models.Daily {
			break // allData=true returns full history in one call
		}

		oldest := page[0].Time
		if toTs == oldest {
			break // provider stopped advancing, avoid an infinite loop
		}
		toTs = oldest

		if time.Unix(oldest, 0).UTC().Before(start) || len(page) < pageLimit {
			break
		}
	}

	return dedupeSorted(all), nil
}

// dedupeSorted sorts ascending by time and collapses duplicate timestamps
// left by overlapping pagination pages, keeping the last-seen candle.
func dedupeSorted(rows []models.OHLCV) []models.OHLCV {
	if len(rows) == 0 {
		return rows
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	out := rows[:1]
	for _, r := range rows[1:] {
		if r.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}
