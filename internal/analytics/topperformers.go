package analytics

import (
	"sort"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Metric selects which changed-field top performers are ranked by.
type Metric int

const (
	MetricCloseChanged Metric = iota
	MetricVolumeChanged
)

// Performer is one ticker's ranked snapshot for a given analysis date.
type Performer struct {
	Symbol string
	Close  float64
	Volume uint64
	Value  float64 // the metric value used for ranking
}

// TopPerformersQuery parameterizes the top-performers scan.
type TopPerformersQuery struct {
	Sector    string // "" means all sectors
	MinVolume uint64
	Metric    Metric
	TopN      int
}

// TopPerformers ranks the latest record per ticker (as of the analysis
// date, already selected by the caller) by Metric, excluding market
// indices, applying the optional sector filter and minimum-volume
// floor, and returns both the top N and bottom N.
func TopPerformers(latest map[string]*models.Enhanced, tickerSectors map[string]string, q TopPerformersQuery) (top, bottom []Performer) {
	var candidates []Performer
	for symbol, rec := range latest {
		if rec == nil || indexTickers[symbol] {
			continue
		}
		if q.Sector != "" && tickerSectors[symbol] != q.Sector {
			continue
		}
		if rec.Volume < q.MinVolume {
			continue
		}

		var value float64
		switch q.Metric {
		case MetricVolumeChanged:
			if rec.VolumeChanged != nil {
				value = *rec.VolumeChanged
			}
		default:
			if rec.CloseChanged != nil {
				value = *rec.CloseChanged
			}
		}

		candidates = append(candidates, Performer{Symbol: symbol, Close: rec.Close, Volume: rec.Volume, Value: value})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Value > candidates[j].Value })

	n := q.TopN
	if n <= 0 || n > len(candidates) {
		n = len(candidates)
	}

	top = append([]Performer(nil), candidates[:n]...)

	bottomStart := len(candidates) - n
	if bottomStart < 0 {
		bottomStart = 0
	}
	bottom = append([]Performer(nil), candidates[bottomStart:]...)
	reverse(bottom)

	return top, bottom
}

func reverse(p []Performer) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
