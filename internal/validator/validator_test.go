package validator

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckValidFileReportsNoViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	writeRaw(t, path, "ticker,time,open,high,low,close,volume\n"+
		"VCB,2024-01-01,10,11,9,10.5,100\n"+
		"VCB,2024-01-02,10.5,11,10,10.8,120\n")

	report, err := Check(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.FirstBadLine != 0 {
		t.Fatalf("expected no violation, got line %d", report.FirstBadLine)
	}
	if report.RowCount != 2 {
		t.Fatalf("expected 2 rows, got %d", report.RowCount)
	}
}

func TestCheckDetectsNonMonotonicTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	writeRaw(t, path, "ticker,time,open,high,low,close,volume\n"+
		"VCB,2024-01-02,10,11,9,10.5,100\n"+
		"VCB,2024-01-01,10.5,11,10,10.8,120\n") // goes backward

	report, err := Check(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.FirstBadLine != 3 {
		t.Fatalf("expected violation at line 3, got %d", report.FirstBadLine)
	}
}

func TestCheckDetectsBadFieldCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	writeRaw(t, path, "ticker,time,open,high,low,close,volume\n"+
		"VCB,2024-01-01,10,11,9,10.5,100\n"+
		"VCB,2024-01-02,garbage\n")

	report, err := Check(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.FirstBadLine != 3 {
		t.Fatalf("expected violation at line 3, got %d", report.FirstBadLine)
	}
}

func TestRepairTruncatesFromFirstViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.csv")
	writeRaw(t, path, "ticker,time,open,high,low,close,volume\n"+
		"VCB,2024-01-01,10,11,9,10.5,100\n"+
		"VCB,2024-01-02,10.5,11,10,10.8,120\n"+
		"VCB,corrupt,row,here\n")

	report, err := Repair(path)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Truncated {
		t.Fatal("expected file to be truncated")
	}
	if report.TruncatedRows != 2 {
		t.Fatalf("expected 2 rows retained (header + 2 data lines survive, corrupt at line 4), got %d", report.TruncatedRows)
	}

	recheck, err := Check(path)
	if err != nil {
		t.Fatal(err)
	}
	if recheck.FirstBadLine != 0 {
		t.Fatalf("expected repaired file to be clean, got violation at %d", recheck.FirstBadLine)
	}
	if recheck.RowCount != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", recheck.RowCount)
	}
}

func TestCheckMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	report, err := Check(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.RowCount != 0 || report.FirstBadLine != 0 {
		t.Fatalf("expected zero-value report for missing file, got %+v", report)
	}
}
