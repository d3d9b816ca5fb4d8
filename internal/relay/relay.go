// Package relay drives the booster-heater relay output. The real
// implementation uses the Linux GPIO character device; the fake records
// writes for tests. Writes are edge-triggered: the control loop only calls
// Set when the boost state actually changed.
package relay

// Driver switches the relay.
type Driver interface {
	// Set energizes (true) or releases (false) the relay.
	Set(on bool) error

	// Close releases the output, leaving the relay de-energized.
	Close() error
}

// DefaultPin is the BCM pin number driving the relay module.
const DefaultPin = 22
