package fetcher

import (
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Gap thresholds per interval (spec.md §3): days_old beyond which a
// ticker with existing data moves from Resume to PartialHistory.
const (
	partialThresholdDaily  = 14
	partialThresholdHourly = 7
	partialThresholdMinute = 3

	// staleThresholdDays is minute-interval-only: beyond this gap the
	// ticker is presumed delisted/suspended rather than merely behind.
	staleThresholdDays = 30
)

func partialThreshold(iv models.Interval) int {
	switch iv {
	case models.Daily:
		return partialThresholdDaily
	case models.Hourly:
		return partialThresholdHourly
	default:
		return partialThresholdMinute
	}
}

// Categorize inspects the last valid date in each ticker's CSV and
// assigns a Category per spec.md §4.2.1.
func (f *Fetcher) Categorize(tickers []string, iv models.Interval) map[string]models.Category {
	now := time.Now().UTC()
	out := make(map[string]models.Category, len(tickers))

	for _, ticker := range tickers {
		path := f.tickerPath(ticker, iv)
		last, ok, err := csvstore.ReadLastDate(path)
		if err != nil || !ok {
			out[ticker] = models.Category{Kind: models.CategoryFullHistory}
			continue
		}

		gapDays := int(now.Sub(last).Hours() / 24)

		if iv == models.Minute && gapDays > staleThresholdDays {
			out[ticker] = models.Category{Kind: models.CategoryStale, LastDate: last, DaysOld: gapDays}
			continue
		}

		if gapDays > partialThreshold(iv) && !f.disablePartialHistory {
			out[ticker] = models.Category{Kind: models.CategoryPartialHistory, LastDate: last}
			continue
		}

		out[ticker] = models.Category{Kind: models.CategoryResume, LastDate: last}
	}

	return out
}
