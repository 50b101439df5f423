// Package observability provides metrics collection and tracing for the
// session subsystem and CLI operations.
package observability

import (
	"sync"
	"time"
)

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime time.Time
	EndTime   time.Time

	TotalRequests int
	Replays       int // requests resent after a successful refresh

	RefreshCalls     int // refresh HTTP calls actually issued
	RefreshCoalesced int // callers attached to an already in-flight refresh
	RefreshFailures  int

	BootstrapChecks int
	Navigations     int // navigate-to-login intents emitted

	TotalLatency time.Duration
}

// Collector accumulates metrics across a CLI session. It is safe for
// concurrent use; a nil *Collector is a no-op.
type Collector struct {
	mu sync.Mutex

	startTime        time.Time
	totalRequests    int
	replays          int
	refreshCalls     int
	refreshCoalesced int
	refreshFailures  int
	bootstrapChecks  int
	navigations      int
	totalLatency     time.Duration
}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordRequest records one gateway request and its duration.
func (c *Collector) RecordRequest(d time.Duration, replay bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += d
	if replay {
		c.replays++
	}
}

// RecordRefresh records a settled refresh episode. issued reports whether this
// caller triggered the HTTP call or merely attached to one in flight.
func (c *Collector) RecordRefresh(issued, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if issued {
		c.refreshCalls++
	} else {
		c.refreshCoalesced++
	}
	if failed {
		c.refreshFailures++
	}
}

// RecordBootstrap records one bootstrap gate evaluation.
func (c *Collector) RecordBootstrap() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bootstrapChecks++
}

// RecordNavigation records a navigate-to-login intent.
func (c *Collector) RecordNavigation() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigations++
}

// Snapshot returns the metrics collected so far.
func (c *Collector) Snapshot() SessionMetrics {
	if c == nil {
		return SessionMetrics{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return SessionMetrics{
		StartTime:        c.startTime,
		EndTime:          time.Now(),
		TotalRequests:    c.totalRequests,
		Replays:          c.replays,
		RefreshCalls:     c.refreshCalls,
		RefreshCoalesced: c.refreshCoalesced,
		RefreshFailures:  c.refreshFailures,
		BootstrapChecks:  c.bootstrapChecks,
		Navigations:      c.navigations,
		TotalLatency:     c.totalLatency,
	}
}
