package csvstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

const tailSeekWindow = 8 * 1024

// ReadFile parses every data row of the CSV at path, tolerating both the
// 7-column raw layout and the 20-column enhanced layout. A missing file
// is not an error: it returns (nil, nil).
func ReadFile(path string) ([]*models.Enhanced, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	defer unlock(f)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var out []*models.Enhanced
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if first {
			first = false
			if isHeaderLine(line) {
				continue
			}
		}
		rec, err := parseRow(line)
		if err != nil {
			continue // tolerant: skip corrupt rows, validator handles repair
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return out, nil
}

func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "ticker,") || strings.HasPrefix(line, "symbol,")
}

func parseRow(line string) (*models.Enhanced, error) {
	fields := strings.Split(line, ",")
	if len(fields) != RawColumns && len(fields) != EnhancedColumns {
		return nil, fmt.Errorf("unexpected field count %d", len(fields))
	}

	t, err := ParseTime(fields[1])
	if err != nil {
		return nil, err
	}
	open, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, err
	}
	high, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, err
	}
	low, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return nil, err
	}
	cls, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, err
	}
	vol, err := strconv.ParseUint(fields[6], 10, 64)
	if err != nil {
		return nil, err
	}

	rec := &models.Enhanced{OHLCV: models.OHLCV{
		Symbol: fields[0],
		Time:   t,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: vol,
	}}

	if len(fields) == EnhancedColumns {
		rec.MA10 = parseNullableFloat(fields[7])
		rec.MA20 = parseNullableFloat(fields[8])
		rec.MA50 = parseNullableFloat(fields[9])
		rec.MA100 = parseNullableFloat(fields[10])
		rec.MA200 = parseNullableFloat(fields[11])
		rec.MA10Score = parseNullableFloat(fields[12])
		rec.MA20Score = parseNullableFloat(fields[13])
		rec.MA50Score = parseNullableFloat(fields[14])
		rec.MA100Score = parseNullableFloat(fields[15])
		rec.MA200Score = parseNullableFloat(fields[16])
		rec.CloseChanged = parseNullableFloat(fields[17])
		rec.VolumeChanged = parseNullableFloat(fields[18])
		rec.TotalMoneyChanged = parseNullableFloat(fields[19])
	}

	return rec, nil
}

// ReadLastDate efficiently finds the last valid date in a CSV file
// without reading the whole thing: it tail-seeks the last 8 KiB, scans
// lines in reverse looking for the first line with a parseable date,
// and falls back to a full forward scan if none is found in the tail
// (the tail holds only the header, blank or corrupted lines). A file
// smaller than the window is read whole by the tail pass. ok is false if the file doesn't exist or has no
// parseable data row at all.
func ReadLastDate(path string) (last time.Time, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		return time.Time{}, false, fmt.Errorf("lock %s: %w", path, err)
	}
	defer unlock(f)

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stat %s: %w", path, err)
	}

	tailStart := int64(0)
	if info.Size() > tailSeekWindow {
		tailStart = info.Size() - tailSeekWindow
	}
	if _, err := f.Seek(tailStart, io.SeekStart); err != nil {
		return time.Time{}, false, fmt.Errorf("seek %s: %w", path, err)
	}

	buf := make([]byte, info.Size()-tailStart)
	if _, err := io.ReadFull(f, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return time.Time{}, false, fmt.Errorf("read tail %s: %w", path, err)
	}

	lines := strings.Split(string(buf), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || isHeaderLine(line) {
			continue
		}
		if t, found := hasParseableDatePrefix(line); found {
			return t, true, nil
		}
	}

	// Fall back to a full forward scan: the tail window held no
	// parseable row (trailing corruption, or only a header).
	records, err := ReadFile(path)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(records) == 0 {
		return time.Time{}, false, nil
	}
	return records[len(records)-1].Time, true, nil
}
