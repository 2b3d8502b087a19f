package datastore

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// snapshotEntry is the msgpack-serializable shape of one cached series;
// models.Interval is an int and survives msgpack round-tripping as-is.
type snapshotEntry struct {
	Ticker   string
	Interval models.Interval
	Records  []*models.Enhanced
}

// SaveSnapshot persists the current in-memory cache to path in msgpack
// form, a warm-start optimization: on the next process start,
// LoadSnapshot repopulates the cache without waiting for the first query
// per ticker to hit the canonical backend. Safe to call during graceful
// shutdown; a failure here is logged by the caller, never fatal.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.RLock()
	entries := make([]snapshotEntry, 0, len(s.cache))
	for ticker, byInterval := range s.cache {
		for iv, records := range byInterval {
			entries = append(entries, snapshotEntry{Ticker: ticker, Interval: iv, Records: records})
		}
	}
	s.mu.RUnlock()

	data, err := msgpack.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot repopulates the cache from a file written by SaveSnapshot.
// A missing file is not an error.
func (s *Store) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var entries []snapshotEntry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal snapshot %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if s.cache[e.Ticker] == nil {
			s.cache[e.Ticker] = make(map[models.Interval][]*models.Enhanced)
		}
		s.cache[e.Ticker][e.Interval] = e.Records
	}
	return nil
}
