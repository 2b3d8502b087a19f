// Package tickergroups loads the sector-to-ticker grouping file that
// both the worker loops (which tickers to sync) and the analytics
// endpoints (which sector a ticker belongs to) depend on.
package tickergroups

import (
	"encoding/json"
	"os"
	"sort"
)

// file is a ticker_group.json document: sector name to its tickers.
type file struct {
	Groups map[string][]string `json:"groups"`
}

// Groups is the loaded, normalized view: the full ticker universe (with
// VNINDEX and VN30 listed first whenever a file was read) and the
// ticker->sector lookup derived from it.
type Groups struct {
	Tickers []string
	Sectors map[string]string
}

// Load reads and flattens a ticker_group.json file. Missing file is not
// an error: it yields a Groups with no tickers and an empty sector map.
func Load(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Groups{Sectors: map[string]string{}}, nil
	}
	if err != nil {
		return Groups{}, err
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Groups{}, err
	}

	sectors := make(map[string]string)
	seen := make(map[string]bool)

	sectorNames := make([]string, 0, len(f.Groups))
	for sector := range f.Groups {
		sectorNames = append(sectorNames, sector)
	}
	sort.Strings(sectorNames)

	tickers := []string{"VNINDEX", "VN30"}
	seen["VNINDEX"], seen["VN30"] = true, true

	for _, sector := range sectorNames {
		for _, ticker := range f.Groups[sector] {
			sectors[ticker] = sector
			if !seen[ticker] {
				seen[ticker] = true
				tickers = append(tickers, ticker)
			}
		}
	}

	return Groups{Tickers: tickers, Sectors: sectors}, nil
}
