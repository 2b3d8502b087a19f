package worker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestLoadCryptoSymbolsParsesFlatArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crypto_symbols.json")
	if err := os.WriteFile(path, []byte(`["BTC","ETH","ADA"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	symbols, err := loadCryptoSymbols(path)
	if err != nil {
		t.Fatalf("loadCryptoSymbols: %v", err)
	}
	if len(symbols) != 3 {
		t.Fatalf("expected 3 symbols, got %v", symbols)
	}
}

func TestLoadCryptoSymbolsMissingFileReturnsNil(t *testing.T) {
	symbols, err := loadCryptoSymbols(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if symbols != nil {
		t.Fatalf("expected nil, got %v", symbols)
	}
}

func TestSplitTiersSeparatesPriorityIgnoresAndRegular(t *testing.T) {
	all := []string{"BTC", "ETH", "XRP", "ADA", "DOGE"}
	priority, regular := splitTiers(all, priorityCryptos, []string{"DOGE"})

	sort.Strings(priority)
	sort.Strings(regular)

	if len(priority) != 3 || priority[0] != "BTC" || priority[1] != "ETH" || priority[2] != "XRP" {
		t.Fatalf("unexpected priority set: %v", priority)
	}
	if len(regular) != 1 || regular[0] != "ADA" {
		t.Fatalf("expected only ADA in regular tier (DOGE ignored), got %v", regular)
	}
}
