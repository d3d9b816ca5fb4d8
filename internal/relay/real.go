//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives a relay module on actual hardware via the Linux GPIO
// character device.
type RealDriver struct {
	line *gpiocdev.Line
}

// NewRealDriver requests the pin as an output, initially de-energized. The
// relay must come up in the safe (off) state after a reboot.
func NewRealDriver(chip string, pin int) (*RealDriver, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	return &RealDriver{line: line}, nil
}

// Set energizes or releases the relay.
func (r *RealDriver) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	return nil
}

// Close releases the relay before freeing the line, so a daemon restart
// never leaves the booster energized.
func (r *RealDriver) Close() error {
	if err := r.line.SetValue(0); err != nil {
		r.line.Close()
		return fmt.Errorf("release relay: %w", err)
	}
	return r.line.Close()
}
