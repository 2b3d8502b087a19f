package fetcher

import (
	"context"
	"sort"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// interChunkSleep is purely for log readability; the rate limiter inside
// the client pool is what actually enforces correctness.
const interChunkSleep = 50 * time.Millisecond

// FetchFullHistory fetches a single ticker's complete history over
// [start, end], chunked by interval per spec.md §4.2.3: Daily is a
// single call; Hourly chunks by calendar year; Minute chunks by calendar
// month. Results are concatenated, sorted by time, and deduplicated.
func (f *Fetcher) FetchFullHistory(ctx context.Context, ticker string, start, end time.Time, iv models.Interval) ([]models.OHLCV, error) {
	ranges := chunkRanges(start, end, iv)

	var all []models.OHLCV
	for i, r := range ranges {
		data, err := f.client.FetchBatch(ctx, []string{ticker}, r.start, r.end, iv)
		if err != nil {
			return nil, err
		}
		all = append(all, data[ticker]...)

		if i < len(ranges)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interChunkSleep):
			}
		}
	}

	return sortAndDedupOHLCV(all), nil
}

type dateRange struct{ start, end time.Time }

func chunkRanges(start, end time.Time, iv models.Interval) []dateRange {
	switch iv {
	case models.Daily:
		return []dateRange{{start, end}}
	case models.Hourly:
		return chunkByYear(start, end)
	default:
		return chunkByMonth(start, end)
	}
}

func chunkByYear(start, end time.Time) []dateRange {
	var out []dateRange
	yearStart := time.Date(start.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	for cursor := yearStart; !cursor.After(end); cursor = cursor.AddDate(1, 0, 0) {
		rangeStart := cursor
		if rangeStart.Before(start) {
			rangeStart = start
		}
		rangeEnd := cursor.AddDate(1, 0, 0).Add(-time.Second)
		if rangeEnd.After(end) {
			rangeEnd = end
		}
		out = append(out, dateRange{rangeStart, rangeEnd})
	}
	return out
}

func chunkByMonth(start, end time.Time) []dateRange {
	var out []dateRange
	monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for cursor := monthStart; !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		rangeStart := cursor
		if rangeStart.Before(start) {
			rangeStart = start
		}
		rangeEnd := cursor.AddDate(0, 1, 0).Add(-time.Second)
		if rangeEnd.After(end) {
			rangeEnd = end
		}
		out = append(out, dateRange{rangeStart, rangeEnd})
	}
	return out
}

func sortAndDedupOHLCV(rows []models.OHLCV) []models.OHLCV {
	if len(rows) == 0 {
		return rows
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })

	out := rows[:1]
	for _, r := range rows[1:] {
		if r.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = r // last writer wins at the boundary
			continue
		}
		out = append(out, r)
	}
	return out
}
