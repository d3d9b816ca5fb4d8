package report

import (
	"encoding/json"
	"log"
	"time"
)

// Sender delivers record lines to a remote collector, best effort.
type Sender interface {
	// Send transmits one record line. Returns error if delivery failed;
	// callers log and carry on.
	Send(line string) error

	// Close releases the transport.
	Close() error
}

// SystemPublisher publishes daemon lifecycle events.
type SystemPublisher interface {
	PublishSystem(SystemEvent) error
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle event (startup, shutdown, heartbeat)
// published on the MQTT system topic.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	// RawPayload, if set, is published as-is (used for full status
	// snapshots); otherwise a minimal JSON envelope is built.
	RawPayload []byte
	Retained   bool
}

// systemPayload is the minimal JSON envelope for system events.
type systemPayload struct {
	System systemPayloadInner `json:"system"`
}

type systemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload builds the wire payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(systemPayload{
		System: systemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// MultiSender fans a record line out to every configured transport. Send
// never fails: per-transport errors are logged, matching the best-effort
// contract.
type MultiSender struct {
	Senders []Sender
}

// Send transmits the line on every transport.
func (m *MultiSender) Send(line string) error {
	for _, s := range m.Senders {
		if err := s.Send(line); err != nil {
			log.Printf("report: send failed: %v", err)
		}
	}
	return nil
}

// Close closes every transport.
func (m *MultiSender) Close() error {
	var firstErr error
	for _, s := range m.Senders {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
