package datastore

import "github.com/quanhua92/aipriceaction-sub000/internal/models"

// dedupByIntervalKey collapses series to one record per interval-
// appropriate key, keeping the last occurrence (latest write wins). This
// is the corrections-aware policy of spec.md §4.5.4 — NOT the simpler
// daily-key-over-everything shape flagged as buggy in one upstream
// pagination helper (spec.md §9); key granularity always matches the
// series' own interval.
func dedupByIntervalKey(series []*models.Enhanced, iv models.Interval) []*models.Enhanced {
	if len(series) == 0 {
		return series
	}

	type slot struct {
		rec *models.Enhanced
		pos int
	}
	order := make([]string, 0, len(series))
	byKey := make(map[string]slot, len(series))

	for i, rec := range series {
		key := intervalKey(rec, iv)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = slot{rec: rec, pos: i}
	}

	out := make([]*models.Enhanced, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key].rec)
	}
	return out
}

func intervalKey(rec *models.Enhanced, iv models.Interval) string {
	t := rec.Time.UTC()
	switch iv {
	case models.Daily:
		return t.Format("2006-01-02")
	case models.Hourly:
		return t.Format("2006-01-02T15")
	default: // Minute
		return t.Format("2006-01-02T15:04:05")
	}
}
