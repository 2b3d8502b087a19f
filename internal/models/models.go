// Package models defines the data types shared across the ingestion and
// serving pipeline: OHLCV records, enhanced (indicator-bearing) records,
// the interval enums, ticker categories, and sync configuration.
package models

import (
	"fmt"
	"time"
)

// Interval is a base sampling granularity.
type Interval int

const (
	Daily Interval = iota
	Hourly
	Minute
)

// Filename returns the canonical CSV filename for the interval.
func (iv Interval) Filename() string {
	switch iv {
	case Daily:
		return "daily.csv"
	case Hourly:
		return "1h.csv"
	case Minute:
		return "1m.csv"
	default:
		return ""
	}
}

// Wire returns the interval's external wire name.
func (iv Interval) Wire() string {
	switch iv {
	case Daily:
		return "1D"
	case Hourly:
		return "1H"
	case Minute:
		return "1m"
	default:
		return ""
	}
}

// ParseInterval parses a wire name into an Interval.
func ParseInterval(s string) (Interval, error) {
	switch s {
	case "1D", "daily", "Daily":
		return Daily, nil
	case "1H", "hourly", "Hourly":
		return Hourly, nil
	case "1m", "minute", "Minute":
		return Minute, nil
	default:
		return 0, fmt.Errorf("unknown interval %q", s)
	}
}

// AggInterval is a derived, bucketed interval produced by the aggregator.
type AggInterval string

const (
	Agg5m  AggInterval = "5m"
	Agg15m AggInterval = "15m"
	Agg30m AggInterval = "30m"
	Agg1W  AggInterval = "1W"
	Agg2W  AggInterval = "2W"
	Agg1M  AggInterval = "1M"
)

// OHLCV is a raw open-high-low-close-volume record for one time bucket.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume uint64
	Symbol string
}

// Enhanced is an OHLCV record plus optional technical indicators. All
// indicator fields are nullable: nil means "insufficient history" and
// MUST serialize as an empty CSV field.
type Enhanced struct {
	OHLCV

	MA10  *float64
	MA20  *float64
	MA50  *float64
	MA100 *float64
	MA200 *float64

	MA10Score  *float64
	MA20Score  *float64
	MA50Score  *float64
	MA100Score *float64
	MA200Score *float64

	CloseChanged      *float64
	VolumeChanged     *float64
	TotalMoneyChanged *float64
}

// MAWindows lists the supported simple-moving-average window sizes, in
// the order indicator computation and CSV columns expect them.
var MAWindows = [5]int{10, 20, 50, 100, 200}

// MAFor returns the indicator's MA pointer for a given window, or nil if
// the window isn't one of MAWindows.
func (e *Enhanced) MAFor(window int) **float64 {
	switch window {
	case 10:
		return &e.MA10
	case 20:
		return &e.MA20
	case 50:
		return &e.MA50
	case 100:
		return &e.MA100
	case 200:
		return &e.MA200
	default:
		return nil
	}
}

// ScoreFor returns the indicator's MA-score pointer for a given window.
func (e *Enhanced) ScoreFor(window int) **float64 {
	switch window {
	case 10:
		return &e.MA10Score
	case 20:
		return &e.MA20Score
	case 50:
		return &e.MA50Score
	case 100:
		return &e.MA100Score
	case 200:
		return &e.MA200Score
	default:
		return nil
	}
}

// CategoryKind distinguishes how a ticker's on-disk history relates to
// "now" for a given interval.
type CategoryKind int

const (
	CategoryResume CategoryKind = iota
	CategoryPartialHistory
	CategoryFullHistory
	CategoryStale
)

// Category is the categorizer's verdict for one (ticker, interval) pair.
type Category struct {
	Kind     CategoryKind
	LastDate time.Time // zero for FullHistory
	DaysOld  int        // only meaningful for CategoryStale
}

// SyncConfig parameterizes one invocation of the sync orchestrator.
type SyncConfig struct {
	StartDate         time.Time
	EndDate            time.Time
	BatchSize          int
	ResumeDays         int
	Intervals          []Interval
	ForceFull          bool
	ConcurrentBatches  int
}
