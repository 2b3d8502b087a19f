package datastore

import (
	"fmt"
	"sort"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Query describes one call to GetDataWithCache.
type Query struct {
	Tickers  []string
	Interval models.Interval
	Start    time.Time // zero means unbounded
	End      time.Time // zero means unbounded
	Limit    int       // 0 means unbounded
	UseCache bool
}

// GetDataWithCache implements the query contract of spec.md §4.5.4:
// load each ticker's slice under the current backend, apply [start, end],
// then apply limit (only when no start date was given, keeping the last
// Limit rows of the range-filtered series), then dedup by the
// interval-appropriate key, keeping the last occurrence per key. Each call
// first gives the (rate-limited) promotion probe a chance to run.
func (s *Store) GetDataWithCache(q Query) (map[string][]*models.Enhanced, error) {
	s.MaybePromote()

	out := make(map[string][]*models.Enhanced, len(q.Tickers))

	for _, ticker := range q.Tickers {
		series, err := s.load(ticker, q.Interval, q.UseCache)
		if err != nil {
			return nil, fmt.Errorf("load %s/%s: %w", ticker, q.Interval.Wire(), err)
		}

		series = filterRange(series, q.Start, q.End)

		if q.Limit > 0 && q.Start.IsZero() {
			if len(series) > q.Limit {
				series = series[len(series)-q.Limit:]
			}
		}

		series = dedupByIntervalKey(series, q.Interval)

		out[ticker] = series
	}
	return out, nil
}

// load returns the cached (ticker, interval) slice, lazily materializing
// it from the canonical backend on a cache miss. The cache is a
// derivable projection; file/SQLite storage is canonical.
func (s *Store) load(ticker string, iv models.Interval, useCache bool) ([]*models.Enhanced, error) {
	if useCache {
		s.mu.RLock()
		if byInterval, ok := s.cache[ticker]; ok {
			if series, ok := byInterval[iv]; ok {
				cp := append([]*models.Enhanced(nil), series...)
				s.mu.RUnlock()
				return cp, nil
			}
		}
		s.mu.RUnlock()
	}

	series, err := s.loadCanonical(ticker, iv)
	if err != nil {
		return nil, err
	}
	series = applyRetention(series)

	if useCache {
		s.mu.Lock()
		if s.cache[ticker] == nil {
			s.cache[ticker] = make(map[models.Interval][]*models.Enhanced)
		}
		s.cache[ticker][iv] = series
		s.cacheLastUpdated = time.Now()
		s.mu.Unlock()
	}

	cp := append([]*models.Enhanced(nil), series...)
	return cp, nil
}

func (s *Store) loadCanonical(ticker string, iv models.Interval) ([]*models.Enhanced, error) {
	s.mu.RLock()
	backend := s.backend
	sqlite := s.sqlite
	s.mu.RUnlock()

	if backend == BackendSQLite && sqlite != nil {
		return sqlite.Query(ticker, iv, time.Time{}, time.Time{})
	}
	return csvstore.ReadFile(s.tickerPath(ticker, iv))
}

func applyRetention(series []*models.Enhanced) []*models.Enhanced {
	cutoff := time.Now().Add(-Retention)
	i := sort.Search(len(series), func(i int) bool { return !series[i].Time.Before(cutoff) })
	return series[i:]
}

func filterRange(series []*models.Enhanced, start, end time.Time) []*models.Enhanced {
	out := series
	if !start.IsZero() {
		i := sort.Search(len(out), func(i int) bool { return !out[i].Time.Before(start) })
		out = out[i:]
	}
	if !end.IsZero() {
		i := sort.Search(len(out), func(i int) bool { return out[i].Time.After(end) })
		out = out[:i]
	}
	return out
}

// InvalidateCache drops every cached series, forcing the next query to
// repopulate from the canonical backend. Called after backend promotion.
func (s *Store) InvalidateCache() {
	s.mu.Lock()
	s.cache = make(map[string]map[models.Interval][]*models.Enhanced)
	s.mu.Unlock()
}
