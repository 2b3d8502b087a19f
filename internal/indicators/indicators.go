// Package indicators computes the technical indicators attached to each
// enhanced record: simple moving averages, MA-score deviations, and
// period-over-period change percentages.
package indicators

import (
	"github.com/markcheno/go-talib"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Compute fills in the indicator fields of each record in series in
// place. series must already be sorted ascending by time and belong to a
// single symbol. For index i < window-1 a window's MA and score are left
// nil ("insufficient history").
func Compute(series []*models.Enhanced) {
	if len(series) == 0 {
		return
	}

	closes := make([]float64, len(series))
	for i, s := range series {
		closes[i] = s.Close
	}

	for _, window := range models.MAWindows {
		if len(closes) < window {
			continue
		}
		sma := talib.Sma(closes, window)
		for i, rec := range series {
			if i < window-1 {
				continue
			}
			ma := sma[i]
			maPtr := rec.MAFor(window)
			scorePtr := rec.ScoreFor(window)
			maCopy := ma
			*maPtr = &maCopy
			score := maScore(rec.Close, ma)
			*scorePtr = &score
		}
	}

	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		curr := series[i]

		if prev.Close > 0 {
			v := (curr.Close - prev.Close) / prev.Close * 100
			curr.CloseChanged = &v
		}
		if prev.Volume > 0 {
			v := (float64(curr.Volume) - float64(prev.Volume)) / float64(prev.Volume) * 100
			curr.VolumeChanged = &v
		}
		moneyChanged := (curr.Close - prev.Close) * float64(curr.Volume)
		curr.TotalMoneyChanged = &moneyChanged
	}
}

// maScore computes the percentage deviation of close from ma.
func maScore(close, ma float64) float64 {
	if ma == 0 {
		return 0
	}
	return (close - ma) / ma * 100
}
