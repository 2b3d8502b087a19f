package analytics

import "sort"

// SectorTicker is one ticker's MA-score within its sector.
type SectorTicker struct {
	Symbol string
	Score  float64
}

// SectorSummary aggregates the MA-score of a sector's tickers at a
// given window, capped to the top N within the sector.
type SectorSummary struct {
	Sector       string
	AverageScore float64
	Tickers      []SectorTicker
}

// MAScoreLookup resolves a ticker's MA-score pointer for the requested
// window at the analysis date; a nil return means insufficient history.
type MAScoreLookup func(symbol string) *float64

// MAScoresBySector groups tickerSectors by sector, resolves each
// ticker's MA-score via lookup, averages per sector, sorts tickers
// within a sector descending by score, and caps to topPerSector.
// Tickers with no resolvable score (insufficient history, or not
// covered by lookup) are excluded from both the list and the average.
func MAScoresBySector(tickerSectors map[string]string, lookup MAScoreLookup, topPerSector int) []SectorSummary {
	bySector := make(map[string][]SectorTicker)

	for symbol, sector := range tickerSectors {
		score := lookup(symbol)
		if score == nil {
			continue
		}
		bySector[sector] = append(bySector[sector], SectorTicker{Symbol: symbol, Score: *score})
	}

	summaries := make([]SectorSummary, 0, len(bySector))
	for sector, tickers := range bySector {
		sort.Slice(tickers, func(i, j int) bool { return tickers[i].Score > tickers[j].Score })

		var sum float64
		for _, t := range tickers {
			sum += t.Score
		}
		avg := sum / float64(len(tickers))

		if topPerSector > 0 && len(tickers) > topPerSector {
			tickers = tickers[:topPerSector]
		}

		summaries = append(summaries, SectorSummary{Sector: sector, AverageScore: avg, Tickers: tickers})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Sector < summaries[j].Sector })
	return summaries
}
