package worker

import (
	"testing"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

func TestTierGateDueWhenNeverSynced(t *testing.T) {
	g := NewTierGate(t.TempDir())
	if !g.Due(models.Daily, time.Hour) {
		t.Fatal("expected a never-synced interval to be due")
	}
}

func TestTierGateNotDueUntilElapsed(t *testing.T) {
	g := NewTierGate(t.TempDir())
	g.MarkSynced(models.Daily, time.Now().UTC())
	if g.Due(models.Daily, time.Hour) {
		t.Fatal("expected interval just synced to not be due")
	}
}

func TestTierGatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	g1 := NewTierGate(dir)
	g1.MarkSynced(models.Hourly, time.Now().UTC())

	g2 := NewTierGate(dir)
	if g2.Due(models.Hourly, time.Hour) {
		t.Fatal("expected restart to load the persisted last-sync time")
	}
}
