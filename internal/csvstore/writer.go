package csvstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// WriteCutoff implements the smart-cutoff write contract: recent tail is
// authoritative, older history is immutable unless rewriteAll is true.
//
//   - New file, or rewriteAll=true: create/truncate, write header plus
//     every row in data (sorted ascending by time).
//   - Existing file, rewriteAll=false: scan forward to find the byte
//     offset of the first on-disk row whose timestamp >= cutoff, truncate
//     the file there, then append every row in data whose timestamp is
//     >= cutoff.
//
// The file is held under an exclusive advisory lock for the duration of
// the write so concurrent readers using the same lock protocol observe
// either the old or the new content, never a partial truncation.
func WriteCutoff(path string, iv models.Interval, data []*models.Enhanced, cutoff time.Time, rewriteAll bool) error {
	sorted := append([]*models.Enhanced(nil), data...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	if newFile || rewriteAll {
		return writeFull(path, iv, sorted)
	}
	return writeTail(path, iv, sorted, cutoff)
}

func writeFull(path string, iv models.Interval, sorted []*models.Enhanced) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for full write: %w", path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer unlock(f)

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(strings.Join(header20, ",") + "\n"); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for _, rec := range sorted {
		if _, err := w.WriteString(formatRow(rec, iv)); err != nil {
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeTail(path string, iv models.Interval, sorted []*models.Enhanced, cutoff time.Time) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for tail write: %w", path, err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer unlock(f)

	offset, err := findCutoffOffset(f, cutoff)
	if err != nil {
		return fmt.Errorf("scan %s for cutoff offset: %w", path, err)
	}

	if err := f.Truncate(offset); err != nil {
		return fmt.Errorf("truncate %s: %w", path, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range sorted {
		if rec.Time.Before(cutoff) {
			continue
		}
		if _, err := w.WriteString(formatRow(rec, iv)); err != nil {
			return fmt.Errorf("append row %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// findCutoffOffset forward-scans path line by line, tracking cumulative
// byte position, and returns the byte offset of the first row whose
// timestamp is >= cutoff. If every row is strictly before cutoff, it
// returns the file's current size (append-only, nothing truncated). The
// offset is always aligned to a row boundary, so a crash mid-truncate
// leaves a prefix that is still a valid CSV with a valid header.
func findCutoffOffset(f *os.File, cutoff time.Time) (int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	buf := make([]byte, info.Size())
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	buf = buf[:n]

	var pos int64
	lineStart := 0
	for i := 0; i <= len(buf); i++ {
		if i < len(buf) && buf[i] != '\n' {
			continue
		}
		if i == len(buf) && lineStart >= len(buf) {
			break
		}
		line := string(buf[lineStart:i])
		lineLen := int64(i - lineStart)
		if i < len(buf) {
			lineLen++ // include the newline
		}
		if isHeaderLine(line) || line == "" {
			pos += lineLen
			lineStart = i + 1
			continue
		}
		if t, ok := hasParseableDatePrefix(line); ok {
			if !t.Before(cutoff) {
				return pos, nil
			}
		}
		pos += lineLen
		lineStart = i + 1
	}
	return pos, nil
}

func formatRow(rec *models.Enhanced, iv models.Interval) string {
	cols := []string{
		rec.Symbol,
		FormatTime(rec.Time, iv),
		formatFloat(rec.Open),
		formatFloat(rec.High),
		formatFloat(rec.Low),
		formatFloat(rec.Close),
		fmt.Sprintf("%d", rec.Volume),
		formatNullableFloat(rec.MA10),
		formatNullableFloat(rec.MA20),
		formatNullableFloat(rec.MA50),
		formatNullableFloat(rec.MA100),
		formatNullableFloat(rec.MA200),
		formatNullableFloat(rec.MA10Score),
		formatNullableFloat(rec.MA20Score),
		formatNullableFloat(rec.MA50Score),
		formatNullableFloat(rec.MA100Score),
		formatNullableFloat(rec.MA200Score),
		formatNullableFloat(rec.CloseChanged),
		formatNullableFloat(rec.VolumeChanged),
		formatNullableFloat(rec.TotalMoneyChanged),
	}
	return strings.Join(cols, ",") + "\n"
}
