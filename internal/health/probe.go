package health

import (
	"context"
	"sync"
	"time"
)

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// ProbeRunner runs named readiness probes with a shared per-probe timeout.
// Results are cached for the configured interval so a scrape storm cannot
// hammer the database.
type ProbeRunner struct {
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	probes  []namedProbe
	cached  []CheckResult
	ready   bool
	checked time.Time
}

type namedProbe struct {
	name  string
	probe Probe
}

func NewProbeRunner(interval, timeout time.Duration) *ProbeRunner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{interval: interval, timeout: timeout}
}

func (pr *ProbeRunner) Register(name string, probe Probe) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.probes = append(pr.probes, namedProbe{name: name, probe: probe})
	pr.checked = time.Time{}
}

func (pr *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if !pr.checked.IsZero() && time.Since(pr.checked) < pr.interval {
		return pr.ready, pr.cached
	}

	results := make([]CheckResult, 0, len(pr.probes))
	ready := true
	for _, np := range pr.probes {
		probeCtx, cancel := context.WithTimeout(ctx, pr.timeout)
		err := np.probe(probeCtx)
		cancel()
		res := CheckResult{Name: np.name, Healthy: err == nil}
		if err != nil {
			res.Error = err.Error()
			ready = false
		}
		results = append(results, res)
	}
	pr.ready = ready
	pr.cached = results
	pr.checked = time.Now()
	return ready, results
}
