package report

// FakeSender records sent lines for test assertions.
type FakeSender struct {
	// Lines contains every record line passed to Send.
	Lines []string

	// SystemEvents contains every event passed to PublishSystem.
	SystemEvents []SystemEvent

	// SendError, if set, is returned by Send.
	SendError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSender creates a FakeSender.
func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

// Send records the line.
func (f *FakeSender) Send(line string) error {
	if f.SendError != nil {
		return f.SendError
	}
	f.Lines = append(f.Lines, line)
	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakeSender) PublishSystem(event SystemEvent) error {
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected reports the scripted connection state.
func (f *FakeSender) IsConnected() bool {
	return f.Connected
}

// Close marks the sender as closed.
func (f *FakeSender) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded lines and events.
func (f *FakeSender) Reset() {
	f.Lines = nil
	f.SystemEvents = nil
	f.SendError = nil
	f.Connected = false
	f.Closed = false
}
