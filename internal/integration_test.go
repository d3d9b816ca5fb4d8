package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjenlentz/HomeResourceMonitor/internal/clock"
	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
	"github.com/arjenlentz/HomeResourceMonitor/internal/monitor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/pulse"
	"github.com/arjenlentz/HomeResourceMonitor/internal/relay"
	"github.com/arjenlentz/HomeResourceMonitor/internal/report"
	"github.com/arjenlentz/HomeResourceMonitor/internal/sensor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/status"
)

// TestDayScenario drives the full stack over fakes through a compressed day:
// cold morning boost, remote override in the evening, hot-vat hard-off, and
// water draw in between. One scripted timestamp per cycle, one second apart
// within each phase.
func TestDayScenario(t *testing.T) {
	bus := sensor.NewFakeBus()
	rly := relay.NewFakeDriver()
	sender := report.NewFakeSender()
	commands := make(chan string, 16)
	var flowCtr, boostCtr pulse.Counter

	var times []time.Time
	stamp := func(hour, sec int) {
		times = append(times, time.Date(2026, 8, 29, hour, 0, sec, 0, time.UTC))
	}

	// Phase 1, 05:00: cold vat inside the morning window. Three cycles.
	for i := 0; i < 3; i++ {
		stamp(5, i)
	}
	// Phase 2, 10:00: outside any window, water being drawn. Two cycles.
	for i := 0; i < 2; i++ {
		stamp(10, i)
	}
	// Phase 3, 22:00: override on, then off. Three cycles.
	for i := 0; i < 3; i++ {
		stamp(22, i)
	}
	// Phase 4, 23:00: vat heated past the hard-off threshold. Two cycles.
	for i := 0; i < 2; i++ {
		stamp(23, i)
	}

	// Sensor script, one frame per channel per cycle. The collector stays at
	// 55.00 C; the vat reads 38.00 C through phase 3 and hot in phase 4.
	// The deviation clamp admits 1.00 C per cycle, so the scripted jump
	// lands as a gradual climb rather than a step.
	for i := 0; i < 8; i++ {
		bus.PushTemperature(logic.ChannelCollector, 5500)
		bus.PushTemperature(logic.ChannelVat, 3800)
	}
	bus.PushTemperature(logic.ChannelCollector, 5500)
	bus.PushTemperature(logic.ChannelVat, 9000)

	m := monitor.New(monitor.Options{
		Reader:      sensor.NewReaderWithWait(bus, func(time.Duration) {}),
		FlowPulses:  &flowCtr,
		BoostPulses: &boostCtr,
		Relay:       rly,
		Sender:      sender,
		Commands:    commands,
		Clock:       clock.NewFakeSource(times...),
		Tracker:     status.NewTracker(times[0], status.Config{}),
		Calibration: logic.DefaultCalibrationFactor,
	})

	// Phase 1: the first cycle reports unconditionally and engages the
	// booster (04:00-07:00 window, vat below 42.00 C).
	m.Cycle()
	require.Equal(t, []bool{true}, rly.Writes)
	require.Len(t, sender.Lines, 2)
	assert.Equal(t, "TEMP,2026-08-29,05:00:00,5500,3800,1,0", sender.Lines[0])
	assert.Equal(t, "FLOW,2026-08-29,05:00:00,0.00,0", sender.Lines[1])

	// Steady cycles: no relay writes, no records.
	m.Cycle()
	m.Cycle()
	assert.Equal(t, []bool{true}, rly.Writes)
	assert.Len(t, sender.Lines, 2)

	// Phase 2: leaving the window does not release the relay; only hard-off
	// or a remote off does. The first cycle of the phase absorbs the long
	// gap since the last scripted timestamp; the draw lands on the second,
	// where 11 pulses over the one-second cycle is 2 L/min.
	m.Cycle()
	assert.Len(t, sender.Lines, 2)

	for i := 0; i < 11; i++ {
		flowCtr.Increment()
	}
	m.Cycle()
	require.Len(t, sender.Lines, 3)
	assert.Equal(t, "FLOW,2026-08-29,10:00:01,2.00,33", sender.Lines[2])
	assert.Equal(t, []bool{true}, rly.Writes)
	assert.Equal(t, logic.BoostOn, m.Boost())

	// Phase 3: the remote turns the booster off, then back on by override.
	commands <- "BOOST_OFF"
	m.Cycle()
	require.Equal(t, []bool{true, false}, rly.Writes)
	// Any inbound payload forces a full report on the next cycle.
	require.GreaterOrEqual(t, len(sender.Lines), 5)
	temp := sender.Lines[3]
	assert.True(t, strings.HasPrefix(temp, "TEMP,2026-08-29,22:00:00,"), temp)
	assert.True(t, strings.HasSuffix(temp, ",0,0"), temp)

	commands <- "BOOST_ON"
	m.Cycle()
	assert.Equal(t, []bool{true, false, true}, rly.Writes)

	m.Cycle()
	assert.Equal(t, []bool{true, false, true}, rly.Writes)

	// Phase 4: boost pulses were metered while the element ran, and the vat
	// reads hot. The smoothed average climbs by at most 1.00 C per cycle, so
	// the hard-off does not trip yet; what must hold is that the pulse count
	// goes out with the next temperature record.
	boostCtr.Increment()
	boostCtr.Increment()
	linesBefore := len(sender.Lines)
	m.Cycle()
	require.Greater(t, len(sender.Lines), linesBefore)
	temp = sender.Lines[linesBefore]
	assert.True(t, strings.HasPrefix(temp, "TEMP,2026-08-29,23:00:00,"), temp)
	assert.True(t, strings.HasSuffix(temp, ",2"), temp)

	m.Cycle()
	assert.Equal(t, logic.BoostOn, m.Boost())
}

// TestHardOffReleasesRelay runs the hard-off transition end to end: the vat
// primes hot, an override tries to engage the booster, and the controller
// swallows it.
func TestHardOffReleasesRelay(t *testing.T) {
	bus := sensor.NewFakeBus()
	bus.PushTemperature(logic.ChannelCollector, 5500)
	bus.PushTemperature(logic.ChannelVat, 4700)
	rly := relay.NewFakeDriver()
	sender := report.NewFakeSender()
	commands := make(chan string, 16)
	var flowCtr, boostCtr pulse.Counter

	base := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	m := monitor.New(monitor.Options{
		Reader:      sensor.NewReaderWithWait(bus, func(time.Duration) {}),
		FlowPulses:  &flowCtr,
		BoostPulses: &boostCtr,
		Relay:       rly,
		Sender:      sender,
		Commands:    commands,
		Clock:       clock.NewFakeSource(base, base.Add(time.Second)),
		Calibration: logic.DefaultCalibrationFactor,
	})

	// Inside the afternoon window but above hard-off: stays released.
	m.Cycle()
	assert.Empty(t, rly.Writes)

	commands <- "BOOST_ON"
	m.Cycle()
	assert.Empty(t, rly.Writes)
	assert.Equal(t, logic.BoostOff, m.Boost())
}
