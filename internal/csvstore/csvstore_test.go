package csvstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func rec(dateStr string, close float64) *models.Enhanced {
	t, _ := time.Parse("2006-01-02", dateStr)
	return &models.Enhanced{OHLCV: models.OHLCV{
		Symbol: "VCB", Time: t, Open: close, High: close, Low: close, Close: close, Volume: 1000,
	}}
}

func TestWriteCutoffNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily.csv")

	data := []*models.Enhanced{rec("2024-01-01", 10), rec("2024-01-02", 11), rec("2024-01-03", 12)}
	if err := WriteCutoff(path, models.Daily, data, time.Time{}, true); err != nil {
		t.Fatalf("WriteCutoff: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if !got[0].Time.Equal(data[0].Time) {
		t.Fatalf("row order mismatch")
	}
}

func TestWriteCutoffPreservesOldHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily.csv")

	initial := []*models.Enhanced{
		rec("2024-01-01", 10), rec("2024-01-02", 11), rec("2024-01-03", 12),
		rec("2024-01-04", 13), rec("2024-01-05", 14),
	}
	if err := WriteCutoff(path, models.Daily, initial, time.Time{}, true); err != nil {
		t.Fatalf("initial write: %v", err)
	}

	cutoff, _ := time.Parse("2006-01-02", "2024-01-04")
	corrected := []*models.Enhanced{rec("2024-01-04", 999), rec("2024-01-06", 16)}
	if err := WriteCutoff(path, models.Daily, corrected, cutoff, false); err != nil {
		t.Fatalf("tail write: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 rows (3 preserved + 2 new), got %d", len(got))
	}
	if got[0].Close != 10 || got[2].Close != 12 {
		t.Fatalf("expected rows before cutoff untouched, got %+v", got[:3])
	}
	if got[3].Close != 999 {
		t.Fatalf("expected corrected row at cutoff, got %v", got[3].Close)
	}
}

func TestReadLastDateTailSeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily.csv")

	data := []*models.Enhanced{rec("2024-01-01", 10), rec("2024-01-02", 11), rec("2024-06-15", 20)}
	if err := WriteCutoff(path, models.Daily, data, time.Time{}, true); err != nil {
		t.Fatalf("write: %v", err)
	}

	last, ok, err := ReadLastDate(path)
	if err != nil {
		t.Fatalf("ReadLastDate: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	want, _ := time.Parse("2006-01-02", "2024-06-15")
	if !last.Equal(want) {
		t.Fatalf("last = %v, want %v", last, want)
	}
}

func TestReadLastDateMissingFile(t *testing.T) {
	_, ok, err := ReadLastDate(filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing file")
	}
}

func TestReadFileToleratesRawAndEnhanced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.csv")
	content := "ticker,time,open,high,low,close,volume\n" +
		"VCB,2024-01-01,10,10,10,10,1000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].MA10 != nil {
		t.Fatalf("expected 1 raw row with nil indicators, got %+v", got)
	}
}
