// Package sensor reads DS18B20-class 1-wire temperature sensors with
// integrity verification and bounded retry. The real implementation drives a
// periph.io 1-wire bus; the fake implementation allows testing without
// hardware.
package sensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// Bus abstracts the 1-wire transactions the reader needs. Implementations
// address the physical device for the given channel themselves.
type Bus interface {
	// Convert starts a temperature conversion on the channel's device.
	Convert(ch logic.Channel) error

	// ReadScratchpad reads the device's 9-byte scratchpad. The last byte is
	// the CRC over the first eight.
	ReadScratchpad(ch logic.Channel) ([9]byte, error)

	// Close releases the bus.
	Close() error
}

// ErrReadFailed is returned once every read attempt for a cycle has been
// exhausted. The caller reuses the previous good value for the channel; a
// failed read is never fatal.
var ErrReadFailed = errors.New("sensor: read failed")

const (
	maxAttempts = 5
	// 12-bit conversion time per the DS18B20 datasheet.
	conversionLatency = 750 * time.Millisecond
	retryBackoff      = 50 * time.Millisecond
)

// Reader acquires verified temperature readings from a Bus.
type Reader struct {
	bus Bus

	// wait is time.Sleep, injectable so tests run instantly.
	wait func(time.Duration)
}

// NewReader creates a Reader over the given bus.
func NewReader(bus Bus) *Reader {
	return &Reader{bus: bus, wait: time.Sleep}
}

// NewReaderWithWait is NewReader with an injectable sleep so tests can skip
// the conversion latency.
func NewReaderWithWait(bus Bus, wait func(time.Duration)) *Reader {
	return &Reader{bus: bus, wait: wait}
}

// ReadTemperature acquires one verified reading for the channel, retrying up
// to 5 attempts on integrity or range failures. On exhaustion it returns
// ErrReadFailed (wrapped with the last cause).
func (r *Reader) ReadTemperature(ch logic.Channel) (logic.Centidegrees, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			r.wait(retryBackoff)
		}
		v, err := r.readOnce(ch)
		if err != nil {
			lastErr = err
			continue
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w (%s): %v", ErrReadFailed, ch, lastErr)
}

func (r *Reader) readOnce(ch logic.Channel) (logic.Centidegrees, error) {
	if err := r.bus.Convert(ch); err != nil {
		return 0, fmt.Errorf("convert: %w", err)
	}
	r.wait(conversionLatency)

	frame, err := r.bus.ReadScratchpad(ch)
	if err != nil {
		return 0, fmt.Errorf("read scratchpad: %w", err)
	}
	if got := CRC8(frame[:8]); got != frame[8] {
		return 0, fmt.Errorf("crc mismatch: computed %#02x, frame %#02x", got, frame[8])
	}

	v := Decode(frame[0], frame[1])
	if v < logic.MinValidTemperature || v > logic.MaxValidTemperature {
		return 0, fmt.Errorf("reading %d out of range", v)
	}
	return v, nil
}

// Decode converts the scratchpad's two's-complement 16-bit raw value
// (lsb first, 1/16 degree per count) to centidegrees, truncating toward zero.
func Decode(lsb, msb byte) logic.Centidegrees {
	raw := int16(uint16(lsb) | uint16(msb)<<8)
	return logic.Centidegrees(int32(raw) * 25 / 4)
}

// CRC8 computes the Dallas/Maxim CRC-8 (polynomial x^8+x^5+x^4+1, reflected)
// used by the DS18B20 scratchpad.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0x8c
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
