// Package budget keeps speculative work polite. When the process is already
// burning CPU (image decoding, rendering), look-ahead hydration for items the
// user has not reached yet is deferred; hydration of the visible item is
// never gated.
package budget

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/lumikids/lumi/internal/logging"
)

// Gate samples process CPU usage and reports whether prefetch work should
// run now. A nil *Gate always allows.
type Gate struct {
	mu   sync.Mutex
	proc *process.Process
	busy bool

	pollInterval  time.Duration
	busyThreshold float64 // CPU % above which prefetch is deferred

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewGate creates a CPU gate for the current process
func NewGate() (*Gate, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Gate{
		proc:          proc,
		pollInterval:  2 * time.Second,
		busyThreshold: 75.0,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins CPU sampling
func (g *Gate) Start() {
	go g.loop()
}

// Stop halts sampling. Safe to call more than once.
func (g *Gate) Stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
}

func (g *Gate) loop() {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			cpu, err := g.proc.CPUPercent()
			if err != nil {
				continue
			}
			g.mu.Lock()
			wasBusy := g.busy
			g.busy = cpu > g.busyThreshold
			if g.busy != wasBusy {
				logging.Debug("budget", "cpu %.1f%%, prefetch %s", cpu, map[bool]string{true: "deferred", false: "allowed"}[g.busy])
			}
			g.mu.Unlock()
		}
	}
}

// AllowPrefetch reports whether speculative hydration should run now
func (g *Gate) AllowPrefetch() bool {
	if g == nil {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.busy
}
