// Command migrate is a one-shot CLI wrapping internal/sqlitestore's bulk
// migration routine (spec.md §4.5.2): it walks a CSV data root and
// bulk-inserts every ticker/interval file into a fresh SQLite database.
// The hybrid data store also runs this migration automatically in the
// background on every startup that begins on the CSV backend with a
// SQLite path configured; this binary
// exists for operators who want to pre-warm the database offline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quanhua92/aipriceaction-sub000/internal/logging"
	"github.com/quanhua92/aipriceaction-sub000/internal/sqlitestore"
)

func main() {
	root := flag.String("root", "market_data", "CSV data root to migrate")
	dbPath := flag.String("db", "market_data/market.db", "destination sqlite file")
	flag.Parse()

	log := logging.New(logging.Config{Level: "info", Pretty: true})

	db, err := sqlitestore.Open(*dbPath, sqlitestore.ProfileStandard)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate: open sqlite")
	}
	defer db.Close()

	if err := db.MigrateTree(*root, log); err != nil {
		log.Fatal().Err(err).Msg("migrate: tree migration failed")
	}

	fmt.Fprintf(os.Stdout, "migrate: %s -> %s complete\n", *root, *dbPath)
}
