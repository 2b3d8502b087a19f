package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// BatchFetch splits tickers into chunks of batchSize and processes
// chunks in groups of concurrency in parallel; each chunk is one
// upstream call answering for every symbol in the chunk. Symbols the
// upstream doesn't recognize are mapped to nil. Progress is logged only
// for the first and last chunk, per spec.md §4.2.2.
func (f *Fetcher) BatchFetch(ctx context.Context, tickers []string, start, end time.Time, iv models.Interval, batchSize, concurrency int) (map[string][]models.OHLCV, error) {
	if batchSize <= 0 {
		batchSize = len(tickers)
		if batchSize == 0 {
			batchSize = 1
		}
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	chunks := chunkStrings(tickers, batchSize)
	results := make(map[string][]models.OHLCV, len(tickers))
	var mu chunkResultGuard

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if i == 0 || i == len(chunks)-1 {
				f.log.Info().Int("chunk", i+1).Int("of", len(chunks)).Int("symbols", len(chunk)).Msg("batch fetch chunk")
			}

			data, err := f.client.FetchBatch(gCtx, chunk, start, end, iv)
			if err != nil {
				f.log.Warn().Err(err).Int("chunk", i+1).Msg("batch fetch chunk failed")
				mu.set(chunk, nil)
				return nil // per-ticker failure accumulates, never aborts the batch
			}

			for _, symbol := range chunk {
				mu.setOne(symbol, data[symbol])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	mu.copyInto(results)
	return results, nil
}

func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// chunkResultGuard serializes writes from concurrent chunk goroutines
// into a shared map without requiring every caller to juggle a mutex.
type chunkResultGuard struct {
	mu   sync.Mutex
	data map[string][]models.OHLCV
}

func (g *chunkResultGuard) setOne(symbol string, rows []models.OHLCV) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.data == nil {
		g.data = make(map[string][]models.OHLCV)
	}
	g.data[symbol] = rows
}

func (g *chunkResultGuard) set(symbols []string, rows []models.OHLCV) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.data == nil {
		g.data = make(map[string][]models.OHLCV)
	}
	for _, s := range symbols {
		g.data[s] = rows
	}
}

func (g *chunkResultGuard) copyInto(dst map[string][]models.OHLCV) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k, v := range g.data {
		dst[k] = v
	}
}
