package sensor

import (
	"errors"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// FakeBus is a test double that returns scripted scratchpad frames per
// channel. Each ReadScratchpad consumes the next frame; the last frame
// repeats once the script is exhausted.
type FakeBus struct {
	// Frames holds the scripted scratchpads per channel.
	Frames map[logic.Channel][][9]byte

	// ConvertError, if set, is returned by Convert.
	ConvertError error

	// ReadError, if set, is returned by ReadScratchpad.
	ReadError error

	// Converts counts Convert calls per channel.
	Converts map[logic.Channel]int

	// Closed tracks if Close was called.
	Closed bool

	index map[logic.Channel]int
}

// NewFakeBus creates an empty FakeBus. Script frames with Push.
func NewFakeBus() *FakeBus {
	return &FakeBus{
		Frames:   make(map[logic.Channel][][9]byte),
		Converts: make(map[logic.Channel]int),
		index:    make(map[logic.Channel]int),
	}
}

// Push appends a scripted frame for the channel.
func (f *FakeBus) Push(ch logic.Channel, frame [9]byte) {
	f.Frames[ch] = append(f.Frames[ch], frame)
}

// PushTemperature appends a well-formed frame encoding the given temperature.
func (f *FakeBus) PushTemperature(ch logic.Channel, v logic.Centidegrees) {
	f.Push(ch, FrameFor(v))
}

// PushCorrupt appends a frame whose CRC byte is wrong.
func (f *FakeBus) PushCorrupt(ch logic.Channel, v logic.Centidegrees) {
	frame := FrameFor(v)
	frame[8] ^= 0xff
	f.Push(ch, frame)
}

// Convert records the conversion request.
func (f *FakeBus) Convert(ch logic.Channel) error {
	if f.ConvertError != nil {
		return f.ConvertError
	}
	f.Converts[ch]++
	return nil
}

// ReadScratchpad returns the next scripted frame for the channel.
func (f *FakeBus) ReadScratchpad(ch logic.Channel) ([9]byte, error) {
	if f.ReadError != nil {
		return [9]byte{}, f.ReadError
	}
	frames := f.Frames[ch]
	if len(frames) == 0 {
		return [9]byte{}, errors.New("no frames scripted")
	}
	frame := frames[f.index[ch]]
	if f.index[ch] < len(frames)-1 {
		f.index[ch]++
	}
	return frame, nil
}

// Close marks the bus as closed.
func (f *FakeBus) Close() error {
	f.Closed = true
	return nil
}

// FrameFor builds a valid scratchpad frame encoding the given centidegree
// temperature at 1/16 degree resolution (truncating toward zero).
func FrameFor(v logic.Centidegrees) [9]byte {
	raw := int16(int32(v) * 4 / 25)
	var frame [9]byte
	frame[0] = byte(uint16(raw))
	frame[1] = byte(uint16(raw) >> 8)
	// Remaining scratchpad bytes: TH/TL alarm registers, config, reserved.
	frame[4] = 0x7f
	frame[8] = CRC8(frame[:8])
	return frame
}
