// Package pulse counts asynchronous hardware pulses. Counters are the only
// state shared between the event handlers and the control loop; the drain is
// a single atomic swap, so a pulse landing during a drain is counted either
// in the value returned or in the next cycle, never lost or doubled.
package pulse

import "sync/atomic"

// Counter is a monotonic pulse counter, safe to increment from an event
// handler while the control loop drains it.
type Counter struct {
	n atomic.Uint32
}

// Increment adds one pulse. Called from the edge-event handler.
func (c *Counter) Increment() {
	c.n.Add(1)
}

// Drain atomically returns the accumulated count and resets it to zero.
// Called exactly once per control cycle.
func (c *Counter) Drain() uint32 {
	return c.n.Swap(0)
}

// Load returns the current count without resetting it. For status display
// only; the control loop must use Drain.
func (c *Counter) Load() uint32 {
	return c.n.Load()
}
