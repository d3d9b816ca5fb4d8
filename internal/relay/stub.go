//go:build !linux

package relay

import "errors"

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(chip string, pin int) (*RealDriver, error) {
	return nil, errors.New("relay: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (r *RealDriver) Set(on bool) error {
	return errors.New("relay: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealDriver) Close() error {
	return nil
}
