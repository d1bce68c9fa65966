// Package metrics provides cheap counters for tracking session
// activity.
package metrics

import "sync/atomic"

// A Metric can be adjusted and read concurrently.
type Metric interface {
	Adjust(int64)
	Value() int64
}

// Counter is a monotonically adjusted metric.
type Counter struct {
	v atomic.Int64
}

func (c *Counter) Adjust(delta int64) { c.v.Add(delta) }
func (c *Counter) Value() int64       { return c.v.Load() }

// Gauge is a metric adjusted by signed deltas.
type Gauge struct {
	v atomic.Int64
}

func (g *Gauge) Adjust(delta int64) { g.v.Add(delta) }
func (g *Gauge) Value() int64       { return g.v.Load() }
