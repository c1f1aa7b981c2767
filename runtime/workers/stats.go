package workers

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"sync"
	"time"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

// ProcessStats is a point-in-time snapshot of the server process.
type ProcessStats struct {
	PID        int32     `json:"pid"`
	Status     string    `json:"status"`
	CpuPercent float64   `json:"cpuPercent"`
	RamPercent float32   `json:"ramPercent"`
	Goroutines int       `json:"goroutines"`
	SampledAt  time.Time `json:"sampledAt"`
}

// StatsWorker samples the server's own process on a ticker and keeps the
// latest snapshot for the debug endpoint.
type StatsWorker struct {
	mu       sync.RWMutex
	log      *slog.Logger
	interval time.Duration
	latest   ProcessStats
}

func NewStatsWorker(log *slog.Logger, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		w.log.Error("Error while retrieving own process", "pid", pid, "err", err)
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats sampling")
			return nil
		case <-ticker.C:
			w.sample(pid, p)
		}
	}
}

func (w *StatsWorker) sample(pid int32, p *process.Process) {
	status, err := p.Status()
	if err != nil {
		w.log.Error("Error while finding process status", "err", err)
		return
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "err", err)
		return
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		w.log.Error("Error while finding process ram usage", "err", err)
		return
	}

	w.mu.Lock()
	w.latest = ProcessStats{
		PID:        pid,
		Status:     status,
		CpuPercent: cpu,
		RamPercent: ram,
		Goroutines: goruntime.NumGoroutine(),
		SampledAt:  time.Now().UTC(),
	}
	w.mu.Unlock()
}

// Latest returns the last sampled snapshot; the zero value before the
// first tick.
func (w *StatsWorker) Latest() ProcessStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}
