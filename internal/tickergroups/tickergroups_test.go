package tickergroups

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFlattensAndPrependsIndices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticker_group.json")
	body := `{"groups": {"banking": ["VCB", "BID"], "steel": ["HPG"]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	groups, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if groups.Tickers[0] != "VNINDEX" || groups.Tickers[1] != "VN30" {
		t.Fatalf("expected VNINDEX, VN30 first, got %v", groups.Tickers[:2])
	}
	if len(groups.Tickers) != 5 {
		t.Fatalf("expected 5 tickers (2 indices + 3 grouped tickers), got %d: %v", len(groups.Tickers), groups.Tickers)
	}
	if groups.Sectors["VCB"] != "banking" || groups.Sectors["HPG"] != "steel" {
		t.Fatalf("unexpected sector map: %+v", groups.Sectors)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	groups, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(groups.Tickers) != 0 {
		t.Fatalf("expected no tickers, got %v", groups.Tickers)
	}
}

func TestLoadDeduplicatesTickerAcrossGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticker_group.json")
	body := `{"groups": {"a": ["VIC"], "b": ["VIC"]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	groups, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	count := 0
	for _, t := range groups.Tickers {
		if t == "VIC" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected VIC exactly once, got %d", count)
	}
}
