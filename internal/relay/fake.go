package relay

// FakeDriver records relay writes for test assertions.
type FakeDriver struct {
	// Writes contains every value passed to Set, in order.
	Writes []bool

	// State is the last value written.
	State bool

	// SetError, if set, is returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeDriver creates a FakeDriver with the relay released.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Set records the write.
func (f *FakeDriver) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, on)
	f.State = on
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.State = false
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeDriver) Reset() {
	f.Writes = nil
	f.State = false
	f.Closed = false
	f.SetError = nil
}
