// Package enhance implements the enhancement engine: it recomputes
// technical indicators over a ticker's full OHLCV history and persists
// the result via the smart-cutoff CSV writer, per spec.md §4.4.
package enhance

import (
	"fmt"
	"sort"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
	"github.com/quanhua92/aipriceaction-sub000/internal/indicators"
	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// Run builds Enhanced records from raw, computes indicators over the
// full supplied history (so moving averages near the cutoff still see
// enough prior context), and writes the result to path using the
// smart-cutoff contract: only rows at or after cutoff are ever
// rewritten on disk, unless rewriteAll forces a full rewrite (e.g. a
// dividend restatement).
func Run(path string, iv models.Interval, raw []models.OHLCV, cutoff time.Time, rewriteAll bool) error {
	if len(raw) == 0 {
		return nil
	}

	sorted := append([]models.OHLCV(nil), raw...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	records := make([]*models.Enhanced, len(sorted))
	for i, row := range sorted {
		records[i] = &models.Enhanced{OHLCV: row}
	}

	indicators.Compute(records)

	if err := csvstore.WriteCutoff(path, iv, records, cutoff, rewriteAll); err != nil {
		return fmt.Errorf("enhance write %s: %w", path, err)
	}
	return nil
}

// Merge implements the sync orchestrator's merge contract: keep
// existing rows strictly older than the latest existing timestamp,
// append every fresh row at or after that instant ("last writer wins
// at the overlap boundary"). An empty existing slice returns fresh
// unchanged; an empty fresh slice returns existing unchanged.
func Merge(existing, fresh []models.OHLCV) []models.OHLCV {
	if len(existing) == 0 {
		return append([]models.OHLCV(nil), fresh...)
	}
	if len(fresh) == 0 {
		return append([]models.OHLCV(nil), existing...)
	}

	latest := existing[0].Time
	for _, e := range existing {
		if e.Time.After(latest) {
			latest = e.Time
		}
	}

	merged := make([]models.OHLCV, 0, len(existing)+len(fresh))
	for _, e := range existing {
		if e.Time.Before(latest) {
			merged = append(merged, e)
		}
	}
	for _, f := range fresh {
		if !f.Time.Before(latest) {
			merged = append(merged, f)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	return merged
}

// ToOHLCV strips indicator fields, returning the bare series. Useful
// when existing on-disk records (possibly enhanced) need to feed back
// into Merge, which operates on raw OHLCV.
func ToOHLCV(records []*models.Enhanced) []models.OHLCV {
	out := make([]models.OHLCV, len(records))
	for i, r := range records {
		out[i] = r.OHLCV
	}
	return out
}
