// Package logic contains the pure measurement-filtering and control-decision
// core for the solar hot-water monitor. This package has NO external
// dependencies (no 1-wire, GPIO, network, OS, or time.Sleep). Time-of-day and
// elapsed durations are always passed in by the caller.
package logic

// Centidegrees is a temperature in hundredths of a degree Celsius.
// Integer storage avoids accumulating float error in the averaging buffers.
type Centidegrees int

// Valid temperature range for a decoded sensor reading (-5.00C..100.00C).
const (
	MinValidTemperature Centidegrees = -500
	MaxValidTemperature Centidegrees = 10000
)

// Channel identifies a physical temperature sensor channel.
type Channel int

const (
	ChannelCollector Channel = iota
	ChannelVat
	numChannels
)

// String returns the channel name for logs and records.
func (c Channel) String() string {
	switch c {
	case ChannelCollector:
		return "collector"
	case ChannelVat:
		return "vat"
	}
	return "unknown"
}

// BoostState represents the booster relay state.
type BoostState string

const (
	BoostOff BoostState = "OFF"
	BoostOn  BoostState = "ON"
)

// BoostCode is the numeric state encoding used in outbound records.
type BoostCode int

const (
	CodeOff        BoostCode = 0
	CodeOn         BoostCode = 1
	CodeOverrideOn BoostCode = 2
)

// Command is a remote override command for the booster relay.
type Command string

const (
	CommandBoostOn  Command = "BOOST_ON"
	CommandBoostOff Command = "BOOST_OFF"
)
