// Package datastore implements the hybrid data store: an in-memory cache
// backed by either the CSV tree or a SQLite handle, switchable at runtime
// when a background migration completes (§4.5 of the platform design).
package datastore

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	"github.com/quanhua92/aipriceaction-sub000/internal/sqlitestore"
)

// Backend tags which storage the store currently serves reads from. This
// mirrors the source design's tagged-variant dispatch rather than an
// interface with virtual calls: the promotion routine swaps the tag (and
// the SQLite handle) in place under the same lock that guards reads.
type Backend int

const (
	BackendCSV Backend = iota
	BackendSQLite
)

// Retention is the in-memory cache's horizon: records older than this are
// never loaded, per spec.md §3.
const Retention = 365 * 24 * time.Hour

// promotionCheckInterval bounds how often the promotion probe runs.
const promotionCheckInterval = 30 * time.Second

// Store is the shared, concurrency-safe hybrid data store. It is held by
// the HTTP server and every worker; lifetime is the longest holder.
type Store struct {
	mu sync.RWMutex

	backend  Backend
	sqlite   *sqlitestore.DB
	csvRoot  string
	sqlitePath string

	cache map[string]map[models.Interval][]*models.Enhanced

	cacheLastUpdated time.Time
	lastSQLiteProbe  time.Time

	keyTickers []string // promotion probe's "fixed set of key tickers"

	log zerolog.Logger
}

// Options configures Store construction.
type Options struct {
	CSVRoot      string
	SQLitePath   string // empty disables SQLite entirely
	StartBackend string // "csv" or "sqlite"
	KeyTickers   []string
	Log          zerolog.Logger
}

// New selects the startup backend per spec.md §4.5.2: SQLite only if the
// configured backend is "sqlite" and the database file already exists
// with rows; otherwise CSV, with a background migration kicked off when
// a SQLite path is configured.
func New(opts Options) (*Store, error) {
	s := &Store{
		csvRoot:    opts.CSVRoot,
		sqlitePath: opts.SQLitePath,
		cache:      make(map[string]map[models.Interval][]*models.Enhanced),
		keyTickers: opts.KeyTickers,
		log:        opts.Log.With().Str("component", "datastore").Logger(),
		backend:    BackendCSV,
	}

	if opts.StartBackend == "sqlite" && opts.SQLitePath != "" && sqlitestore.Exists(opts.SQLitePath) {
		db, err := sqlitestore.Open(opts.SQLitePath, sqlitestore.ProfileStandard)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		n, err := db.RowCount()
		if err == nil && n > 0 {
			s.sqlite = db
			s.backend = BackendSQLite
			s.log.Info().Int64("rows", n).Msg("starting directly on sqlite backend")
			return s, nil
		}
		_ = db.Close()
	}

	if opts.SQLitePath != "" {
		go s.runBackgroundMigration()
	}
	return s, nil
}

// CurrentBackend reports the active backend, for health reporting.
func (s *Store) CurrentBackend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

// SQLiteHandle returns the store's current SQLite handle, or nil if the
// store is still serving from CSV (no migration has completed/promoted
// yet) or SQLite was never configured. Callers that need a stable handle
// for periodic maintenance (e.g. WAL checkpointing) should re-fetch this
// on each use rather than caching it, since promotion can swap it in
// place at any time.
func (s *Store) SQLiteHandle() *sqlitestore.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sqlite
}

// tickerPath returns the canonical CSV path for a (ticker, interval).
func (s *Store) tickerPath(ticker string, iv models.Interval) string {
	return filepath.Join(s.csvRoot, ticker, iv.Filename())
}
