package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxLogBytes is the rotation threshold: once a compact log file grows
// past this, it's renamed to a .backup sibling and a fresh file started.
const maxLogBytes = 100 * 1024 * 1024

// CompactLog appends one summary line per worker iteration to a small
// rotated log file, independent of the structured zerolog output.
type CompactLog struct {
	mu   sync.Mutex
	path string
}

func NewCompactLog(dir, name string) *CompactLog {
	return &CompactLog{path: filepath.Join(dir, name)}
}

// IterationSummary is one loop iteration's outcome, logged as a single
// pipe-delimited line for quick tailing.
type IterationSummary struct {
	Interval string
	Status   string
	Ok       int
	Failed   int
	Skipped  int
	Updated  int
	Files    int
	Records  int
}

// Write appends one line and rotates the file first if it has grown
// past maxLogBytes.
func (c *CompactLog) Write(start, end time.Time, s IterationSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rotateIfNeeded(); err != nil {
		return err
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open compact log: %w", err)
	}
	defer f.Close()

	const layout = "2006-01-02 15:04:05"
	line := fmt.Sprintf(
		"%s | %s | %ds | %s | %s | ok:%d fail:%d skip:%d upd:%d files:%d recs:%d\n",
		start.Format(layout), end.Format(layout), int(end.Sub(start).Seconds()),
		s.Interval, s.Status, s.Ok, s.Failed, s.Skipped, s.Updated, s.Files, s.Records,
	)
	_, err = f.WriteString(line)
	return err
}

// WriteCrypto appends a tiered-sync summary line in the crypto worker's
// own format (tier and symbol count rather than per-ticker counters).
func (c *CompactLog) WriteCrypto(start, end time.Time, interval, tier, status string, symbolCount int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.rotateIfNeeded(); err != nil {
		return err
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open compact log: %w", err)
	}
	defer f.Close()

	const layout = "2006-01-02 15:04:05"
	line := fmt.Sprintf(
		"%s | %s | %ds | %s | %s | %s | cryptos:%d\n",
		start.Format(layout), end.Format(layout), int(end.Sub(start).Seconds()),
		interval, tier, status, symbolCount,
	)
	_, err = f.WriteString(line)
	return err
}

func (c *CompactLog) rotateIfNeeded() error {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxLogBytes {
		return nil
	}
	return os.Rename(c.path, c.path+".backup")
}
