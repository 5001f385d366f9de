// Package health serves liveness and readiness checks.
//
// Every check runs on its own ticker. A check turns unhealthy only after
// failureThreshold consecutive failures and healthy again after
// successThreshold consecutive successes.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc reports the health of one dependency.
type CheckFunc func(ctx context.Context) error

// Endpoint selects the endpoint a check contributes to.
type Endpoint int

const (
	// Liveness checks decide whether the process should be restarted.
	Liveness Endpoint = iota
	// Readiness checks decide whether the process should receive traffic.
	Readiness
)

// Option tunes a registered check.
type Option func(*check)

// Thresholds overrides the default failure (3) and success (1) thresholds.
func Thresholds(failure, success int) Option {
	return func(c *check) {
		if failure > 0 {
			c.failureThreshold = failure
		}
		if success > 0 {
			c.successThreshold = success
		}
	}
}

// check is observed from a single goroutine; healthy and lastErr are read
// concurrently by the endpoints.
type check struct {
	name             string
	timeout          time.Duration
	fn               CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (c *check) observe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.lastErr.Store(&err)
	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= c.failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= c.successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() (string, bool) {
	if c.healthy.Load() {
		return "", false
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Health tracks the checks of a service. It starts not ready.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks map[Endpoint][]*check
	cancel context.CancelFunc
}

// New creates a Health with no checks.
func New() *Health {
	return &Health{checks: map[Endpoint][]*check{}}
}

// Add registers a check on endpoint. Checks start healthy.
func (h *Health) Add(endpoint Endpoint, name string, timeout time.Duration, fn CheckFunc, opts ...Option) {
	c := &check{
		name:             name,
		timeout:          timeout,
		fn:               fn,
		failureThreshold: 3,
		successThreshold: 1,
	}
	for _, o := range opts {
		o(c)
	}
	c.healthy.Store(true)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[endpoint] = append(h.checks[endpoint], c)
}

// Start runs every registered check each interval until ctx is done or Stop
// is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	var all []*check
	for _, list := range h.checks {
		all = append(all, list...)
	}
	h.mu.Unlock()

	for _, c := range all {
		go loop(ctx, c, interval)
	}
}

func loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.observe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.observe(ctx)
		}
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady marks the service ready or draining.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return len(h.failures(Readiness)) == 0
}

// failures maps unhealthy check names to their last error.
func (h *Health) failures(endpoint Endpoint) map[string]string {
	h.mu.RLock()
	list := h.checks[endpoint]
	h.mu.RUnlock()

	out := map[string]string{}
	for _, c := range list {
		if msg, failed := c.failure(); failed {
			out[c.name] = msg
		}
	}
	if endpoint == Readiness && !h.ready.Load() {
		out["_readiness"] = "service is not ready"
	}
	return out
}
