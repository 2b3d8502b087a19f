// Package aggregator rolls up a base OHLCV series into derived buckets
// (5m/15m/30m minute buckets, and 1W/2W/1M daily buckets), recomputing
// indicators over the aggregated series afterward, per spec.md §4.7.
package aggregator

import (
	"sort"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/indicators"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// bucketMinutes returns the minute-bucket width for a minute-based
// AggInterval, or (0, false) if agg isn't a minute bucket.
func bucketMinutes(agg models.AggInterval) (int, bool) {
	switch agg {
	case models.Agg5m:
		return 5, true
	case models.Agg15m:
		return 15, true
	case models.Agg30m:
		return 30, true
	default:
		return 0, false
	}
}

// AggregateMinute buckets a 1-minute series into 5m/15m/30m candles.
// series must be sorted ascending by time and belong to a single
// symbol; unsupported agg values return series unchanged.
func AggregateMinute(series []*models.Enhanced, agg models.AggInterval) []*models.Enhanced {
	width, ok := bucketMinutes(agg)
	if !ok || len(series) == 0 {
		return series
	}
	return aggregateBuckets(series, func(t time.Time) time.Time {
		return bucketMinute(t, width)
	})
}

// AggregateDaily buckets a daily series into 1W/2W/1M candles. series
// must be sorted ascending by time and belong to a single symbol;
// unsupported agg values return series unchanged.
func AggregateDaily(series []*models.Enhanced, agg models.AggInterval) []*models.Enhanced {
	if len(series) == 0 {
		return series
	}
	var keyFn func(time.Time) time.Time
	switch agg {
	case models.Agg1W:
		keyFn = bucketWeek
	case models.Agg2W:
		keyFn = bucket2Week
	case models.Agg1M:
		keyFn = bucketMonth
	default:
		return series
	}
	return aggregateBuckets(series, keyFn)
}

func aggregateBuckets(series []*models.Enhanced, keyFn func(time.Time) time.Time) []*models.Enhanced {
	buckets := make(map[time.Time][]*models.Enhanced)
	var order []time.Time
	for _, rec := range series {
		key := keyFn(rec.Time)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], rec)
	}

	out := make([]*models.Enhanced, 0, len(order))
	for _, key := range order {
		out = append(out, aggregateOHLCV(buckets[key], key))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	// Indicators reflect the aggregated series, not the stale per-row
	// values carried over from the base interval.
	indicators.Compute(out)

	return out
}

// aggregateOHLCV folds one bucket's records into a single candle: open
// is the first record's open, close is the last record's close, high
// and low are the bucket extremes, volume sums.
func aggregateOHLCV(records []*models.Enhanced, bucketTime time.Time) *models.Enhanced {
	sort.Slice(records, func(i, j int) bool { return records[i].Time.Before(records[j].Time) })

	first := records[0]
	last := records[len(records)-1]

	high := first.High
	low := first.Low
	var volume uint64
	for _, r := range records {
		if r.High > high {
			high = r.High
		}
		if r.Low < low {
			low = r.Low
		}
		volume += r.Volume
	}

	return &models.Enhanced{OHLCV: models.OHLCV{
		Symbol: first.Symbol,
		Time:   bucketTime,
		Open:   first.Open,
		High:   high,
		Low:    low,
		Close:  last.Close,
		Volume: volume,
	}}
}

func bucketMinute(t time.Time, width int) time.Time {
	bucketMin := (t.Minute() / width) * width
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), bucketMin, 0, 0, t.Location())
}

// bucketWeek returns the Monday 00:00:00 of t's ISO week.
func bucketWeek(t time.Time) time.Time {
	daysFromMonday := int(t.Weekday()+6) % 7 // Monday=0 ... Sunday=6
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -daysFromMonday)
}

// bucket2Week normalizes to even ISO weeks: odd weeks fold back to the
// previous week's Monday, per the original biweekly grouping rule.
func bucket2Week(t time.Time) time.Time {
	weekStart := bucketWeek(t)
	_, isoWeek := t.ISOWeek()
	if isoWeek%2 == 0 {
		return weekStart
	}
	return weekStart.AddDate(0, 0, -7)
}

func bucketMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
