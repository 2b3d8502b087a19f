package datastore

import (
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/sqlitestore"
)

const (
	promotionMinRows    = 10000
	promotionRecentSpan = 7 * 24 * time.Hour
)

// runBackgroundMigration performs the one-shot CSV-to-SQLite migration.
// It runs exactly once per process lifetime; errors are logged by the
// underlying migration routine and never terminate the serving path.
func (s *Store) runBackgroundMigration() {
	db, err := sqlitestore.Open(s.sqlitePath, sqlitestore.ProfileStandard)
	if err != nil {
		s.log.Error().Err(err).Msg("background migration: failed to open sqlite target")
		return
	}
	defer func() {
		s.mu.RLock()
		promoted := s.backend == BackendSQLite
		s.mu.RUnlock()
		if !promoted {
			_ = db.Close()
		}
	}()

	s.log.Info().Str("root", s.csvRoot).Msg("background migration: starting")
	if err := db.MigrateTree(s.csvRoot, s.log); err != nil {
		s.log.Error().Err(err).Msg("background migration: failed")
		return
	}
	s.log.Info().Msg("background migration: complete, sqlite eligible for promotion")
}

// MaybePromote probes the SQLite file, at most once per
// promotionCheckInterval, and atomically swaps the backend to SQLite
// when it is "caught up" per spec.md §4.5.3. Returns true if a
// promotion happened on this call.
func (s *Store) MaybePromote() bool {
	s.mu.Lock()
	if s.backend == BackendSQLite {
		s.mu.Unlock()
		return false
	}
	if time.Since(s.lastSQLiteProbe) < promotionCheckInterval {
		s.mu.Unlock()
		return false
	}
	s.lastSQLiteProbe = time.Now()
	sqlitePath := s.sqlitePath
	s.mu.Unlock()

	if sqlitePath == "" || !sqlitestore.Exists(sqlitePath) {
		return false
	}

	db, err := sqlitestore.Open(sqlitePath, sqlitestore.ProfileStandard)
	if err != nil {
		s.log.Warn().Err(err).Msg("promotion probe: failed to open sqlite")
		return false
	}

	caughtUp, err := s.isCaughtUp(db)
	if err != nil {
		s.log.Warn().Err(err).Msg("promotion probe: failed")
		_ = db.Close()
		return false
	}
	if !caughtUp {
		_ = db.Close()
		return false
	}

	s.mu.Lock()
	if s.backend == BackendSQLite {
		s.mu.Unlock()
		_ = db.Close()
		return false
	}
	s.sqlite = db
	s.backend = BackendSQLite
	s.mu.Unlock()
	s.InvalidateCache()

	s.log.Info().Msg("promotion: switched backend to sqlite")
	return true
}

func (s *Store) isCaughtUp(db *sqlitestore.DB) (bool, error) {
	n, err := db.RowCount()
	if err != nil {
		return false, err
	}
	if n < promotionMinRows {
		return false, nil
	}

	hasRecent, err := db.HasRowNewerThan(time.Now().Add(-promotionRecentSpan))
	if err != nil {
		return false, err
	}
	if !hasRecent {
		return false, nil
	}

	for _, ticker := range s.keyTickers {
		has, err := db.HasAnyRowFor(ticker)
		if err != nil {
			return false, err
		}
		if !has {
			return false, nil
		}
	}
	return true, nil
}
