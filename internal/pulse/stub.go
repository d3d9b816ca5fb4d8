//go:build !linux

package pulse

import "errors"

// Default BCM pin numbers for the pulse inputs.
const (
	DefaultPinFlow  = 17
	DefaultPinBoost = 27
)

// Watcher is not available on non-Linux platforms.
type Watcher struct{}

// NewWatcher returns an error on non-Linux platforms.
func NewWatcher(chip string, pinFlow, pinBoost int, flow, boost *Counter) (*Watcher, error) {
	return nil, errors.New("pulse: not supported on this platform (requires Linux)")
}

// Close is not implemented on non-Linux platforms.
func (w *Watcher) Close() error {
	return nil
}
