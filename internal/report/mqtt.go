package report

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MQTT topics for the solar monitor.
const (
	// TopicRecords carries the outbound record lines, one message per line.
	TopicRecords = "energy/solar/monitor/records"
	// TopicSystem carries daemon lifecycle events.
	TopicSystem = "energy/solar/monitor/system"
	// TopicCommand receives override commands for the booster relay.
	TopicCommand = "energy/solar/monitor/command"
)

// bufferCapacity bounds how many record lines are held while the broker is
// unreachable.
const bufferCapacity = 256

// MQTTSender bridges record lines onto an MQTT broker and feeds inbound
// override commands back to the control loop. Records go out QoS 0, matching
// the best-effort datagram contract; lines published while disconnected are
// buffered and replayed on reconnect.
type MQTTSender struct {
	client paho.Client

	mu      sync.Mutex
	offline *ringBuffer

	payloads chan string
}

// NewMQTTSender connects to the broker and subscribes to the command topic.
func NewMQTTSender(broker string) (*MQTTSender, error) {
	s := &MQTTSender{
		offline:  newRingBuffer(bufferCapacity),
		payloads: make(chan string, 16),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("solar-monitor").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(s.onConnect)

	s.client = paho.NewClient(opts)
	token := s.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return s, nil
}

// onConnect re-subscribes and replays any lines buffered while offline.
// Runs on every (re)connection.
func (s *MQTTSender) onConnect(c paho.Client) {
	token := c.Subscribe(TopicCommand, 1, s.onCommand)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("report: subscribe %s: %v", TopicCommand, token.Error())
	}

	s.mu.Lock()
	lines := s.offline.drainAll()
	s.mu.Unlock()
	if len(lines) > 0 {
		log.Printf("report: replaying %d buffered records", len(lines))
	}
	for _, line := range lines {
		c.Publish(TopicRecords, 0, false, line)
	}
}

// onCommand pushes an inbound command payload toward the control loop.
func (s *MQTTSender) onCommand(_ paho.Client, msg paho.Message) {
	select {
	case s.payloads <- string(msg.Payload()):
	default:
		log.Printf("report: command channel full, dropping message")
	}
}

// Payloads returns the channel of inbound command payloads.
func (s *MQTTSender) Payloads() <-chan string {
	return s.payloads
}

// Send publishes one record line, QoS 0. While disconnected the line is
// buffered for replay instead.
func (s *MQTTSender) Send(line string) error {
	if !s.client.IsConnected() {
		s.mu.Lock()
		s.offline.push([]byte(line))
		s.mu.Unlock()
		return nil
	}

	token := s.client.Publish(TopicRecords, 0, false, line)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishSystem sends a lifecycle event, QoS 1 so shutdown events are not
// lost.
func (s *MQTTSender) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	token := s.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (s *MQTTSender) IsConnected() bool {
	return s.client.IsConnected()
}

// Close disconnects from the broker.
func (s *MQTTSender) Close() error {
	s.client.Disconnect(1000) // 1 second timeout
	return nil
}
