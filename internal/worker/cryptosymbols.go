package worker

import (
	"encoding/json"
	"os"
)

// loadCryptoSymbols reads a flat JSON array of symbols (e.g.
// ["BTC","ETH","XRP","ADA"]) from path. A missing file is not an
// error: it yields no symbols, and CryptoWorker.Run then syncs nothing
// in that iteration.
func loadCryptoSymbols(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var symbols []string
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

func splitTiers(symbols, priority, ignore []string) (priorityOut, regularOut []string) {
	priSet := make(map[string]bool, len(priority))
	for _, s := range priority {
		priSet[s] = true
	}
	ignoreSet := make(map[string]bool, len(ignore))
	for _, s := range ignore {
		ignoreSet[s] = true
	}

	for _, s := range symbols {
		if ignoreSet[s] {
			continue
		}
		if priSet[s] {
			priorityOut = append(priorityOut, s)
		} else {
			regularOut = append(regularOut, s)
		}
	}
	return priorityOut, regularOut
}
