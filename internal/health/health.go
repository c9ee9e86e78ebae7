package health

import (
	"context"
	"sync"
	"time"
)

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

type CheckFunc func(ctx context.Context) CheckResult

func (f CheckFunc) Check(ctx context.Context) CheckResult { return f(ctx) }

// ProbeRunner fans a readiness probe out to its registered checkers, each
// bounded by its own timeout.
type ProbeRunner struct {
	mu              sync.RWMutex
	checkers        []Checker
	overallTimeout  time.Duration
	perCheckTimeout time.Duration
}

func NewProbeRunner(overallTimeout, perCheckTimeout time.Duration) *ProbeRunner {
	return &ProbeRunner{overallTimeout: overallTimeout, perCheckTimeout: perCheckTimeout}
}

func (p *ProbeRunner) Register(c Checker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkers = append(p.checkers, c)
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	p.mu.RLock()
	checkers := make([]Checker, len(p.checkers))
	copy(checkers, p.checkers)
	p.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, p.overallTimeout)
	defer cancel()

	ready := true
	results := make([]CheckResult, 0, len(checkers))
	for _, c := range checkers {
		checkCtx, checkCancel := context.WithTimeout(ctx, p.perCheckTimeout)
		result := c.Check(checkCtx)
		checkCancel()
		if !result.Healthy {
			ready = false
		}
		results = append(results, result)
	}
	return ready, results
}
