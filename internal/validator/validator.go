// Package validator implements the CSV corruption scan and in-place
// repair described in spec.md §4.9: header shape, field-count, and
// monotonic-time checks, truncating a file to its last known-good row
// on the first violation.
package validator

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/csvstore"
)

// Report describes the outcome of validating one file.
type Report struct {
	Path          string
	RowCount      int
	HeaderValid   bool
	FirstBadLine  int // 0 if no violation found
	Truncated     bool
	TruncatedRows int
}

// Check scans path without modifying it, reporting the first line
// number (1-indexed, counting the header) at which a violation is
// found. A missing file is reported as RowCount 0, HeaderValid false,
// no violation (nothing to repair).
func Check(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Report{Path: path}, nil
		}
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	report := Report{Path: path}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lineNo int
	var lastTime time.Time
	haveLastTime := false

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		if lineNo == 1 {
			report.HeaderValid = strings.HasPrefix(line, "ticker,") || strings.HasPrefix(line, "symbol,")
			if report.HeaderValid {
				continue
			}
			// No valid header: everything is suspect from line 1.
			report.FirstBadLine = 1
			return report, nil
		}

		fieldCount := strings.Count(line, ",") + 1
		if fieldCount != csvstore.RawColumns && fieldCount != csvstore.EnhancedColumns {
			report.FirstBadLine = lineNo
			return report, nil
		}

		fields := strings.SplitN(line, ",", 3)
		t, err := csvstore.ParseTime(fields[1])
		if err != nil {
			report.FirstBadLine = lineNo
			return report, nil
		}

		if haveLastTime && !t.After(lastTime) {
			report.FirstBadLine = lineNo
			return report, nil
		}
		lastTime = t
		haveLastTime = true
		report.RowCount++
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("scan %s: %w", path, err)
	}

	return report, nil
}

// Repair runs Check and, if a violation was found, truncates the file
// to the last known-good row (everything strictly before
// FirstBadLine). Returns the report reflecting the post-repair state.
func Repair(path string) (Report, error) {
	report, err := Check(path)
	if err != nil {
		return report, err
	}
	if report.FirstBadLine == 0 {
		return report, nil
	}

	goodLines, err := readLinesBefore(path, report.FirstBadLine)
	if err != nil {
		return report, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return report, fmt.Errorf("open %s for repair: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range goodLines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return report, fmt.Errorf("write repaired %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return report, fmt.Errorf("flush repaired %s: %w", path, err)
	}

	report.Truncated = true
	report.TruncatedRows = report.RowCount
	return report, nil
}

func readLinesBefore(path string, lineNo int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	current := 0
	for scanner.Scan() {
		current++
		if current >= lineNo {
			break
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return lines, nil
}
