package worker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quanhua92/aipriceaction-sub000/internal/models"
)

// TierGate persists the regular tier's per-interval last-successful-run
// timestamps to an info.log JSON file, so a process restart does not
// reset the elapsed-time clock and re-trigger every interval at once.
type TierGate struct {
	mu   sync.Mutex
	path string

	LastSync map[string]time.Time // keyed by Interval.Wire()
}

func NewTierGate(dataRoot string) *TierGate {
	g := &TierGate{path: filepath.Join(dataRoot, "info.log"), LastSync: map[string]time.Time{}}
	g.load()
	return g
}

func (g *TierGate) load() {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return
	}
	var stored map[string]time.Time
	if json.Unmarshal(data, &stored) == nil {
		g.LastSync = stored
	}
}

func (g *TierGate) save() error {
	data, err := json.MarshalIndent(g.LastSync, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(g.path, data, 0o644)
}

// Due reports whether iv's regular-tier elapsed-time gate has expired.
func (g *TierGate) Due(iv models.Interval, minElapsed time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.LastSync[iv.Wire()]
	if !ok {
		return true
	}
	return time.Since(last) >= minElapsed
}

// MarkSynced records a successful sync for iv and persists the gate.
func (g *TierGate) MarkSynced(iv models.Interval, at time.Time) {
	g.mu.Lock()
	g.LastSync[iv.Wire()] = at
	g.mu.Unlock()
	_ = g.save()
}
