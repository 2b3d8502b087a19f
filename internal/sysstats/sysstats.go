// Package sysstats reports process-host CPU and memory utilization for
// the /health endpoint, grounded on the teacher's getSystemStats helper.
package sysstats

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// sampleWindow is deliberately short: /health is polled frequently and
// must not block the request for a full second just to average CPU load.
const sampleWindow = 100 * time.Millisecond

// Snapshot is the instantaneous CPU/RAM reading reported alongside the
// sync health counters.
type Snapshot struct {
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
}

// Sample reads current CPU (averaged across all cores over sampleWindow)
// and RAM usage. Errors from either gopsutil call degrade to a zero
// reading rather than failing the health response.
func Sample() Snapshot {
	var snap Snapshot

	if pct, err := cpu.Percent(sampleWindow, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.RAMPercent = vm.UsedPercent
	}

	return snap
}
