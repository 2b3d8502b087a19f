// Package sqlitestore implements the SQLite backend of the hybrid data
// store: schema, pure-Go driver wiring, and the batched bulk-migration
// routine that ingests the CSV tree.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Profile picks a PRAGMA set tuned for this store's access pattern: the
// market-data database is append-mostly with occasional bulk rewrites
// from migration, closer to the teacher's "standard" profile than its
// ledger (maximum durability) or cache (ephemeral) profiles.
type Profile string

const (
	ProfileStandard Profile = "standard"
	ProfileCache    Profile = "cache"
)

// DB wraps a SQLite connection configured for this store's workload.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates the database directory if needed, opens a WAL-mode
// connection with profile-appropriate PRAGMAs, and applies the schema.
func Open(path string, profile Profile) (*DB, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	conn, err := sql.Open("sqlite", buildConnectionString(absPath, profile))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", absPath, err)
	}
	configureConnectionPool(conn, profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite %s: %w", absPath, err)
	}

	db := &DB{conn: conn, path: absPath}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func buildConnectionString(path string, profile Profile) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	switch profile {
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"
		connStr += "&_pragma=temp_store(MEMORY)"
	default:
		connStr += "&_pragma=synchronous(NORMAL)"
		connStr += "&_pragma=temp_store(MEMORY)"
	}
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	connStr += "&_pragma=cache_size(-64000)"
	return connStr
}

func configureConnectionPool(conn *sql.DB, profile Profile) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
	if profile == ProfileCache {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}
}

// Conn returns the underlying *sql.DB for callers that need direct
// access (e.g. the migration bulk-insert path).
func (db *DB) Conn() *sql.DB { return db.conn }

// Path returns the resolved database file path.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// WALCheckpoint forces a WAL checkpoint; the worker scheduler's cron
// maintenance job calls this periodically to bound WAL growth.
func (db *DB) WALCheckpoint(mode string) error {
	if mode == "" {
		mode = "TRUNCATE"
	}
	_, err := db.conn.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode))
	if err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Exists reports whether a non-empty SQLite file is present at path,
// the check the hybrid data store uses to decide its startup backend.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
