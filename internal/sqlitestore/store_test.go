package sqlitestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"), ProfileStandard)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndQueryRoundTrip(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ma := 10.5
	rows := []*models.Enhanced{
		{OHLCV: models.OHLCV{Time: base, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}, MA10: &ma},
		{OHLCV: models.OHLCV{Time: base.AddDate(0, 0, 1), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200}},
	}
	if err := db.UpsertBatch("VCB", models.Daily, rows); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, err := db.Query("VCB", models.Daily, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].MA10 == nil || *got[0].MA10 != 10.5 {
		t.Fatalf("expected MA10 round-tripped, got %v", got[0].MA10)
	}

	n, err := db.RowCount()
	if err != nil || n != 2 {
		t.Fatalf("RowCount = %d, err=%v", n, err)
	}

	has, err := db.HasAnyRowFor("VCB")
	if err != nil || !has {
		t.Fatalf("HasAnyRowFor = %v, err=%v", has, err)
	}
	has, err = db.HasAnyRowFor("UNKNOWN")
	if err != nil || has {
		t.Fatalf("expected HasAnyRowFor(UNKNOWN) = false")
	}
}

func TestUpsertConflictReplacesRow(t *testing.T) {
	db := openTestDB(t)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := db.UpsertBatch("VCB", models.Daily, []*models.Enhanced{
		{OHLCV: models.OHLCV{Time: ts, Close: 10, Volume: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertBatch("VCB", models.Daily, []*models.Enhanced{
		{OHLCV: models.OHLCV{Time: ts, Close: 99, Volume: 1}},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := db.Query("VCB", models.Daily, time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Close != 99 {
		t.Fatalf("expected single replaced row with close=99, got %+v", got)
	}
}
