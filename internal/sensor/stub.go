//go:build !linux

package sensor

import (
	"errors"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// OneWireBus is not available on non-Linux platforms.
type OneWireBus struct{}

// NewOneWireBus returns an error on non-Linux platforms.
func NewOneWireBus(collectorAddr, vatAddr uint64) (*OneWireBus, error) {
	return nil, errors.New("sensor: 1-wire not supported on this platform (requires Linux)")
}

// Convert is not implemented on non-Linux platforms.
func (b *OneWireBus) Convert(ch logic.Channel) error {
	return errors.New("sensor: not supported")
}

// ReadScratchpad is not implemented on non-Linux platforms.
func (b *OneWireBus) ReadScratchpad(ch logic.Channel) ([9]byte, error) {
	return [9]byte{}, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *OneWireBus) Close() error {
	return nil
}
