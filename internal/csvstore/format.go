// Package csvstore implements the CSV file format: the tolerant
// raw/enhanced reader, the tail-seek last-date reader, and the
// smart-cutoff writer with advisory file locking.
package csvstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

const (
	RawColumns      = 7
	EnhancedColumns = 20

	dailyTimeLayout = "2006-01-02"
	isoTimeLayout   = "2006-01-02T15:04:05"
	legacyTimeLayout = "2006-01-02 15:04:05"
)

var header20 = []string{
	"ticker", "time", "open", "high", "low", "close", "volume",
	"ma10", "ma20", "ma50", "ma100", "ma200",
	"ma10_score", "ma20_score", "ma50_score", "ma100_score", "ma200_score",
	"close_changed", "volume_changed", "total_money_changed",
}

// FormatTime renders a timestamp the way this interval's CSV rows do:
// plain date for Daily, ISO-8601 'T'-separated for intraday.
func FormatTime(t time.Time, iv models.Interval) string {
	if iv == models.Daily {
		return t.UTC().Format(dailyTimeLayout)
	}
	return t.UTC().Format(isoTimeLayout)
}

// ParseTime parses a CSV time field, tolerating the legacy
// space-separated intraday layout on read in addition to the canonical
// ISO-8601 and plain-date layouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{isoTimeLayout, legacyTimeLayout, dailyTimeLayout, time.RFC3339}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q: %w", s, lastErr)
}

// hasParseableDatePrefix reports whether line begins with a ticker
// column followed by a 10-character ISO date, the fast check the
// tail-seek last-date reader uses to find candidate rows.
func hasParseableDatePrefix(line string) (time.Time, bool) {
	fields := strings.SplitN(line, ",", 3)
	if len(fields) < 2 {
		return time.Time{}, false
	}
	dateField := fields[1]
	if len(dateField) < 10 {
		return time.Time{}, false
	}
	t, err := ParseTime(dateField)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatNullableFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func parseNullableFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
