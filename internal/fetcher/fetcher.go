// Package fetcher implements the ticker fetcher: categorization of
// on-disk state, concurrency-bounded batch fetching, interval-aware
// chunked full-history fetching, and the dividend-restatement heuristic.
package fetcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Client is the upstream contract every fetcher call goes through. A
// single call may answer for multiple symbols at once (server-side
// batching); symbols absent from the returned map are unknown to the
// upstream.
type Client interface {
	FetchBatch(ctx context.Context, symbols []string, start, end time.Time, iv models.Interval) (map[string][]models.OHLCV, error)
}

// indexTickers are exempt from the dividend heuristic; Categorize treats
// them like any other ticker.
var indexTickers = map[string]bool{
	"VNINDEX": true, "VN30": true, "HNX": true, "UPCOM": true,
}

// Fetcher ties a Client to the on-disk tree it categorizes against.
type Fetcher struct {
	client                Client
	dataRoot              string
	disablePartialHistory bool
	log                   zerolog.Logger
}

// New builds a Fetcher. dataRoot is the CSV tree root the categorizer
// inspects (market_data or crypto_data).
func New(client Client, dataRoot string, disablePartialHistory bool, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:                client,
		dataRoot:              dataRoot,
		disablePartialHistory: disablePartialHistory,
		log:                   log.With().Str("component", "fetcher").Logger(),
	}
}

func (f *Fetcher) tickerPath(ticker string, iv models.Interval) string {
	return filepath.Join(f.dataRoot, ticker, iv.Filename())
}
