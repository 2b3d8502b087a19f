package fetcher

import "github.com/quanhua92/aipriceaction-sub000/internal/models"

// dividendRatioThreshold is the 2% close-ratio rule: existing_close /
// new_close beyond this implies an unannounced restatement (typically a
// dividend or split) rather than ordinary price movement.
const dividendRatioThreshold = 1.02

// DetectDividend compares freshly fetched data against existing on-disk
// data for matching dates, excluding the most recent day in fresh (it
// may still be updating). Indices are exempt. Returns true if a
// restatement is detected, which should trigger a full re-download
// rather than an incremental merge.
func DetectDividend(ticker string, existing, fresh []models.OHLCV) bool {
	if indexTickers[ticker] {
		return false
	}
	if len(fresh) == 0 {
		return false
	}

	mostRecentDay := fresh[len(fresh)-1].Time

	existingByDate := make(map[string]float64, len(existing))
	for _, row := range existing {
		existingByDate[row.Time.Format("2006-01-02")] = row.Close
	}

	for _, row := range fresh {
		if row.Time.Equal(mostRecentDay) {
			continue
		}
		existingClose, ok := existingByDate[row.Time.Format("2006-01-02")]
		if !ok || row.Close <= 0 {
			continue
		}
		if existingClose/row.Close > dividendRatioThreshold {
			return true
		}
	}
	return false
}
