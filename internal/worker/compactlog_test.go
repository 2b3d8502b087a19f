package worker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCompactLogWriteAppendsLine(t *testing.T) {
	dir := t.TempDir()
	log := NewCompactLog(dir, "fast_worker.log")

	start := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	end := start.Add(15 * time.Second)

	if err := log.Write(start, end, IterationSummary{Interval: "1D", Status: "OK", Ok: 100, Failed: 1, Skipped: 2, Updated: 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fast_worker.log"))
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "1D") || !strings.Contains(line, "ok:100") || !strings.Contains(line, "fail:1") {
		t.Fatalf("unexpected log line: %q", line)
	}
}

func TestCompactLogRotatesPastThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fast_worker.log")
	if err := os.WriteFile(path, make([]byte, maxLogBytes+1), 0o644); err != nil {
		t.Fatal(err)
	}

	log := NewCompactLog(dir, "fast_worker.log")
	if err := log.Write(time.Now(), time.Now(), IterationSummary{Interval: "1D", Status: "OK"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Fatalf("expected rotated backup file to exist: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 500 {
		t.Fatalf("expected fresh small log file after rotation, got size %d", info.Size())
	}
}

func TestCompactLogWriteCryptoFormat(t *testing.T) {
	dir := t.TempDir()
	log := NewCompactLog(dir, "crypto_worker.log")
	start := time.Now()
	if err := log.WriteCrypto(start, start.Add(time.Second), "1D", "priority", "OK", 3); err != nil {
		t.Fatalf("WriteCrypto: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "crypto_worker.log"))
	if !strings.Contains(string(data), "cryptos:3") || !strings.Contains(string(data), "priority") {
		t.Fatalf("unexpected crypto log line: %q", string(data))
	}
}
