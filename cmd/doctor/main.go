// Command doctor is a thin CLI adapter over internal/validator: it walks a
// data root and reports (or repairs) CSV corruption per ticker/interval.
// The broader fix/doctor toolset described in spec.md §1 (company-info
// scraper, upload session store, etc.) is out of CORE scope; this binary
// only exercises the validator contract specified in §4.9.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	"github.com/quanhua92/aipriceaction-sub000/internal/validator"
)

func main() {
	root := flag.String("root", "market_data", "data root to scan")
	repair := flag.Bool("repair", false, "truncate corrupted files in place")
	flag.Parse()

	entries, err := os.ReadDir(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doctor: read data root %s: %v\n", *root, err)
		os.Exit(1)
	}

	var bad int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		symbol := entry.Name()
		for _, iv := range []models.Interval{models.Daily, models.Hourly, models.Minute} {
			path := filepath.Join(*root, symbol, iv.Filename())

			var report validator.Report
			var err error
			if *repair {
				report, err = validator.Repair(path)
			} else {
				report, err = validator.Check(path)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "doctor: %s: %v\n", path, err)
				continue
			}
			if report.RowCount == 0 && !report.HeaderValid {
				continue // file doesn't exist, nothing to report
			}
			if report.FirstBadLine == 0 {
				continue // clean
			}
			bad++
			if report.Truncated {
				fmt.Printf("%s: truncated at line %d, kept %d rows\n", path, report.FirstBadLine, report.TruncatedRows)
			} else {
				fmt.Printf("%s: corruption at line %d (rerun with -repair to truncate)\n", path, report.FirstBadLine)
			}
		}
	}

	if bad > 0 && !*repair {
		os.Exit(1)
	}
}
