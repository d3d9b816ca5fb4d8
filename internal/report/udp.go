package report

import (
	"fmt"
	"log"
	"net"
)

// UDPSender sends each record line as one datagram. Delivery is best effort
// by construction; the collector tolerates loss.
type UDPSender struct {
	conn *net.UDPConn
}

// NewUDPSender resolves the target address and opens the socket.
func NewUDPSender(target string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", target, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send transmits one record line as a single datagram.
func (s *UDPSender) Send(line string) error {
	if _, err := s.conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("udp send: %w", err)
	}
	return nil
}

// Close closes the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}

// UDPListener receives inbound override command datagrams. A reader
// goroutine feeds payloads into a buffered channel so the control loop can
// poll without blocking.
type UDPListener struct {
	conn     *net.UDPConn
	payloads chan string
}

// NewUDPListener binds the listen address and starts the reader.
func NewUDPListener(listen string) (*UDPListener, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", listen, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", listen, err)
	}

	l := &UDPListener{
		conn:     conn,
		payloads: make(chan string, 16),
	}
	go l.readLoop()
	return l, nil
}

func (l *UDPListener) readLoop() {
	buf := make([]byte, 256)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			// Closed socket ends the loop.
			close(l.payloads)
			return
		}
		select {
		case l.payloads <- string(buf[:n]):
		default:
			log.Printf("report: command channel full, dropping datagram")
		}
	}
}

// Payloads returns the channel of inbound datagram payloads. The control
// loop drains it with a non-blocking select each cycle.
func (l *UDPListener) Payloads() <-chan string {
	return l.payloads
}

// Close closes the socket, ending the reader goroutine.
func (l *UDPListener) Close() error {
	return l.conn.Close()
}
