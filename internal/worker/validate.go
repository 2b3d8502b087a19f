package worker

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
	"github.com/quanhua92/aipriceaction-sub000/internal/validator"
)

// repairTree runs the validator/repairer over one interval's file for
// every ticker in the tree, logging (but not failing the loop on) any
// repair. Corruption recovery is best-effort: a single bad file must
// never block the sync step that follows.
func repairTree(dataRoot string, tickers []string, iv models.Interval, log zerolog.Logger) {
	for _, ticker := range tickers {
		path := tickerPath(dataRoot, ticker, iv)
		report, err := validator.Repair(path)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("validate/repair failed")
			continue
		}
		if report.Truncated {
			log.Warn().
				Str("ticker", ticker).
				Int("first_bad_line", report.FirstBadLine).
				Int("kept_rows", report.TruncatedRows).
				Msg("repaired corrupted CSV")
		}
	}
}

func tickerPath(dataRoot, ticker string, iv models.Interval) string {
	return filepath.Join(dataRoot, ticker, iv.Filename())
}
