package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// PriceLevel is one row of the built volume profile.
type PriceLevel struct {
	Price                float64
	Volume               float64
	Percentage           float64
	CumulativePercentage float64
}

// PointOfControl is the price level with the highest volume.
type PointOfControl struct {
	Price      float64
	Volume     float64
	Percentage float64
}

// ValueArea is the smallest contiguous price range containing the
// target percentage of total volume.
type ValueArea struct {
	Low, High  float64
	Volume     float64
	Percentage float64
}

// Statistics are volume-weighted descriptive stats over price.
type Statistics struct {
	MeanPrice  float64
	MedianPrice float64
	StdDev     float64
	Skewness   float64
}

// Profile is the full volume-profile analysis result for one session.
type Profile struct {
	Symbol      string
	TotalVolume uint64
	SessionLow  float64
	SessionHigh float64
	POC         PointOfControl
	ValueArea   ValueArea
	Levels      []PriceLevel
	Stats       Statistics
}

// BuildVolumeProfile applies the uniform-distribution smearing method
// over a session's minute candles: each candle's volume is spread
// evenly across every tick-size price level it spans. Zero-volume
// candles are skipped; a doji (low == high) contributes its entire
// volume to the single level it occupies.
func BuildVolumeProfile(symbol string, candles []*models.Enhanced, tickSize float64, bins int, valueAreaPct float64) Profile {
	levelVolume := make(map[int64]float64)
	sessionLow, sessionHigh := math.MaxFloat64, -math.MaxFloat64
	var totalVolume uint64

	for _, c := range candles {
		if c.Volume == 0 {
			continue
		}
		if c.Low < sessionLow {
			sessionLow = c.Low
		}
		if c.High > sessionHigh {
			sessionHigh = c.High
		}

		lowIdx := int64(math.Round(c.Low / tickSize))
		highIdx := int64(math.Round(c.High / tickSize))
		numSteps := highIdx - lowIdx + 1
		if numSteps <= 0 {
			continue
		}

		volPerStep := float64(c.Volume) / float64(numSteps)
		for idx := lowIdx; idx <= highIdx; idx++ {
			levelVolume[idx] += volPerStep
		}
		totalVolume += c.Volume
	}

	levels := make([]PriceLevel, 0, len(levelVolume))
	for idx, vol := range levelVolume {
		levels = append(levels, PriceLevel{Price: float64(idx) * tickSize, Volume: vol})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })

	if bins > 0 {
		levels = rebin(levels, bins)
	}

	totalVol := sumVolume(levels)
	addPercentages(levels, totalVol)

	profile := Profile{
		Symbol:      symbol,
		TotalVolume: totalVolume,
		SessionLow:  sessionLow,
		SessionHigh: sessionHigh,
		Levels:      levels,
		POC:         pointOfControl(levels, totalVol),
	}
	profile.ValueArea = valueArea(levels, profile.POC.Price, totalVol, valueAreaPct)
	profile.Stats = volumeWeightedStats(levels, totalVol)
	return profile
}

func sumVolume(levels []PriceLevel) float64 {
	var total float64
	for _, l := range levels {
		total += l.Volume
	}
	return total
}

func addPercentages(levels []PriceLevel, total float64) {
	var cumulative float64
	for i := range levels {
		if total > 0 {
			levels[i].Percentage = levels[i].Volume / total * 100
		}
		cumulative += levels[i].Percentage
		levels[i].CumulativePercentage = cumulative
	}
}

func pointOfControl(levels []PriceLevel, total float64) PointOfControl {
	if len(levels) == 0 {
		return PointOfControl{}
	}
	best := levels[0]
	for _, l := range levels[1:] {
		if l.Volume > best.Volume {
			best = l
		}
	}
	poc := PointOfControl{Price: best.Price, Volume: best.Volume}
	if total > 0 {
		poc.Percentage = best.Volume / total * 100
	}
	return poc
}

// valueArea expands outward from the POC, at each step choosing the
// adjacent side with more volume, until target% of total volume is
// covered.
func valueArea(levels []PriceLevel, pocPrice, total, targetPct float64) ValueArea {
	if len(levels) == 0 || total == 0 {
		return ValueArea{}
	}

	targetVolume := total * (targetPct / 100)

	pocIdx := 0
	for i, l := range levels {
		if math.Abs(l.Price-pocPrice) < 1e-9 {
			pocIdx = i
			break
		}
	}

	lowIdx, highIdx := pocIdx, pocIdx
	accumulated := levels[pocIdx].Volume

	for accumulated < targetVolume {
		var volBelow, volAbove float64
		if lowIdx > 0 {
			volBelow = levels[lowIdx-1].Volume
		}
		if highIdx < len(levels)-1 {
			volAbove = levels[highIdx+1].Volume
		}

		if volBelow == 0 && volAbove == 0 {
			break
		}

		if volBelow > volAbove && lowIdx > 0 {
			lowIdx--
			accumulated += levels[lowIdx].Volume
		} else if highIdx < len(levels)-1 {
			highIdx++
			accumulated += levels[highIdx].Volume
		} else if lowIdx > 0 {
			lowIdx--
			accumulated += levels[lowIdx].Volume
		} else {
			break
		}
	}

	va := ValueArea{Low: levels[lowIdx].Price, High: levels[highIdx].Price, Volume: accumulated}
	if total > 0 {
		va.Percentage = accumulated / total * 100
	}
	return va
}

func volumeWeightedStats(levels []PriceLevel, total float64) Statistics {
	if len(levels) == 0 || total == 0 {
		return Statistics{}
	}

	prices := make([]float64, len(levels))
	weights := make([]float64, len(levels))
	for i, l := range levels {
		prices[i] = l.Price
		weights[i] = l.Volume
	}

	mean := stat.Mean(prices, weights)
	stddev := stat.StdDev(prices, weights)
	skew := stat.Skew(prices, weights)

	var cumulative float64
	median := levels[0].Price
	for _, l := range levels {
		cumulative += l.Volume
		if cumulative >= total/2 {
			median = l.Price
			break
		}
	}

	return Statistics{MeanPrice: mean, MedianPrice: median, StdDev: stddev, Skewness: skew}
}

// rebin aggregates a fine-grained profile into a fixed number of
// equal-width price bins for display, clamping overflow into the last
// bin and dropping empty bins.
func rebin(levels []PriceLevel, numBins int) []PriceLevel {
	if len(levels) <= numBins {
		return levels
	}

	priceMin := levels[0].Price
	priceMax := levels[len(levels)-1].Price
	binSize := (priceMax - priceMin) / float64(numBins)
	if binSize <= 0 {
		return levels
	}

	bins := make([]PriceLevel, numBins)
	for i := range bins {
		bins[i].Price = priceMin + (float64(i)+0.5)*binSize
	}

	for _, l := range levels {
		idx := int((l.Price - priceMin) / binSize)
		if idx >= numBins {
			idx = numBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Volume += l.Volume
	}

	out := bins[:0]
	for _, b := range bins {
		if b.Volume > 0 {
			out = append(out, b)
		}
	}
	return out
}
