//go:build linux

package pulse

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Default BCM pin numbers for the pulse inputs.
const (
	DefaultPinFlow  = 17 // water-flow meter
	DefaultPinBoost = 27 // booster energy meter
)

// Watcher owns the GPIO lines whose rising edges increment the counters. The
// gpiocdev event goroutine plays the role of the interrupt handler: it only
// ever calls Counter.Increment.
type Watcher struct {
	lines []*gpiocdev.Line
}

// NewWatcher requests the flow and boost pins with rising-edge detection
// wired to the given counters.
func NewWatcher(chip string, pinFlow, pinBoost int, flow, boost *Counter) (*Watcher, error) {
	w := &Watcher{}

	flowLine, err := gpiocdev.RequestLine(chip, pinFlow,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { flow.Increment() }))
	if err != nil {
		return nil, fmt.Errorf("request flow pin %d: %w", pinFlow, err)
	}
	w.lines = append(w.lines, flowLine)

	boostLine, err := gpiocdev.RequestLine(chip, pinBoost,
		gpiocdev.WithPullUp,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { boost.Increment() }))
	if err != nil {
		flowLine.Close()
		return nil, fmt.Errorf("request boost pin %d: %w", pinBoost, err)
	}
	w.lines = append(w.lines, boostLine)

	return w, nil
}

// Close releases the GPIO lines.
func (w *Watcher) Close() error {
	var firstErr error
	for _, l := range w.lines {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
