package supervise

import (
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/ladrtools/proverd/internal/run"
)

// sampleUsage captures a best-effort resource snapshot for a live pid.
// Individual probes may fail on some platforms; fields they would fill
// are left zero. An error is returned only when the process is gone.
func sampleUsage(pid int) (*run.ResourceUsage, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}
	u := &run.ResourceUsage{SampledAt: time.Now()}
	if v, err := p.CPUPercent(); err == nil {
		u.CPUPercent = v
	}
	if v, err := p.MemoryPercent(); err == nil {
		u.MemoryPercent = v
	}
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		u.MemoryRSS = mi.RSS
		u.MemoryVMS = mi.VMS
	}
	if v, err := p.NumThreads(); err == nil {
		u.NumThreads = v
	}
	if st, err := p.Status(); err == nil && len(st) > 0 {
		u.Status = st[0]
	}
	return u, nil
}
