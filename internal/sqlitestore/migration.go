package sqlitestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

var migrationIntervals = []models.Interval{models.Daily, models.Hourly, models.Minute}

// MigrateTree walks every <ticker>/<file>.csv under root, parsing rows
// (accepting both the 7- and 20-column layouts) and bulk-inserting into
// the schema in batches of ~5000, per spec.md §4.5.2. Errors for one
// ticker/interval are logged and do not abort the rest of the tree; the
// caller is expected to run this exactly once per process lifetime.
func (db *DB) MigrateTree(root string, log zerolog.Logger) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read data root %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		symbol := entry.Name()
		for _, iv := range migrationIntervals {
			path := filepath.Join(root, symbol, iv.Filename())
			rows, err := csvstore.ReadFile(path)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Str("interval", iv.Wire()).Msg("migration: failed to read csv, skipping")
				continue
			}
			if len(rows) == 0 {
				continue
			}
			if err := db.upsertInBatches(symbol, iv, rows); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Str("interval", iv.Wire()).Msg("migration: bulk insert failed, skipping")
				continue
			}
			log.Debug().Str("symbol", symbol).Str("interval", iv.Wire()).Int("rows", len(rows)).Msg("migration: ticker migrated")
		}
	}
	return nil
}

func (db *DB) upsertInBatches(symbol string, iv models.Interval, rows []*models.Enhanced) error {
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := db.UpsertBatch(symbol, iv, rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}
