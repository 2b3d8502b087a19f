package worker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func TestRepairTreeTruncatesCorruptedFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "VCB")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, models.Daily.Filename())

	body := "ticker,time,open,high,low,close,volume\n" +
		"VCB,2026-01-01 00:00:00,1,1,1,1,1\n" +
		"VCB,2026-01-02 00:00:00,1,1,1,1,1\n" +
		"VCB,2026-01-01 00:00:00,1,1,1,1,1\n" // non-monotonic
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	repairTree(root, []string{"VCB"}, models.Daily, zerolog.Nop())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 3 {
		t.Fatalf("expected header + 2 good rows after repair, got %d lines", lines)
	}
}

func TestRepairTreeSkipsMissingTickerGracefully(t *testing.T) {
	root := t.TempDir()
	repairTree(root, []string{"MISSING"}, models.Daily, zerolog.Nop())
}
