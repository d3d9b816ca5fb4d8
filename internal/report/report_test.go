package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

var ts = time.Date(2026, 8, 29, 14, 3, 22, 0, time.UTC)

func tempRecord(collector, vat logic.Centidegrees, code logic.BoostCode, pulses uint32) TemperatureRecord {
	return TemperatureRecord{
		Timestamp:   ts,
		Collector:   collector,
		Vat:         vat,
		BoostCode:   code,
		BoostPulses: pulses,
	}
}

func TestTemperatureRecordFormat(t *testing.T) {
	r := tempRecord(6025, 4187, logic.CodeOn, 3)
	assert.Equal(t, "TEMP,2026-08-29,14:03:22,6025,4187,1,3", r.Format())

	// Negative collector temperature on a frosty morning.
	r = tempRecord(-125, 3500, logic.CodeOff, 0)
	r.Timestamp = time.Date(2026, 6, 21, 6, 0, 5, 0, time.UTC)
	assert.Equal(t, "TEMP,2026-06-21,06:00:05,-125,3500,0,0", r.Format())
}

func TestFlowRecordFormat(t *testing.T) {
	r := FlowRecord{Timestamp: ts, Rate: 10.0, VolumeML: 166}
	assert.Equal(t, "FLOW,2026-08-29,14:03:22,10.00,166", r.Format())

	r = FlowRecord{Timestamp: ts, Rate: 0.1818, VolumeML: 3}
	assert.Equal(t, "FLOW,2026-08-29,14:03:22,0.18,3", r.Format())
}

func TestReporterFirstCycleAlwaysReports(t *testing.T) {
	rep := NewReporter()
	lines := rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	// Both records go out on the first cycle, even with zero flow.
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TEMP,")
	assert.Contains(t, lines[1], "FLOW,")
}

func TestReporterSuppressesUnchangedCycle(t *testing.T) {
	rep := NewReporter()
	rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	// Identical averages, state, zero boost pulses, zero flow: nothing.
	lines := rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})
	assert.Empty(t, lines)
}

func TestReporterEmitsOnChange(t *testing.T) {
	rep := NewReporter()
	rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	cases := []struct {
		name string
		tr   TemperatureRecord
	}{
		{"collector average moved", tempRecord(2001, 4000, logic.CodeOff, 0)},
		{"vat average moved", tempRecord(2000, 4010, logic.CodeOff, 0)},
		{"boost state changed", tempRecord(2000, 4000, logic.CodeOn, 0)},
		{"boost pulses metered", tempRecord(2000, 4000, logic.CodeOff, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReporter()
			r.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})
			lines := r.Cycle(tc.tr, FlowRecord{Timestamp: ts})
			require.Len(t, lines, 1)
			assert.Contains(t, lines[0], "TEMP,")
		})
	}
}

func TestReporterChangeReferenceIsLastEmitted(t *testing.T) {
	rep := NewReporter()
	rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	// Boost pulses force an emit without changing the averages; the
	// reference record is updated so the following quiet cycle is suppressed.
	lines := rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 5), FlowRecord{Timestamp: ts})
	require.Len(t, lines, 1)

	lines = rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})
	assert.Empty(t, lines)
}

func TestReporterFlowOnlyWhenMoving(t *testing.T) {
	rep := NewReporter()
	rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	lines := rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0),
		FlowRecord{Timestamp: ts, Rate: 2.5, VolumeML: 41})
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "FLOW,")
}

func TestReporterForceAfterCommand(t *testing.T) {
	rep := NewReporter()
	rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})

	// A quiet cycle after Force still reports everything.
	rep.Force()
	lines := rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})
	require.Len(t, lines, 2)

	// Force is one-shot.
	lines = rep.Cycle(tempRecord(2000, 4000, logic.CodeOff, 0), FlowRecord{Timestamp: ts})
	assert.Empty(t, lines)
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("BOOST_ON")
	assert.True(t, ok)
	assert.Equal(t, logic.CommandBoostOn, cmd)

	cmd, ok = ParseCommand("BOOST_OFF")
	assert.True(t, ok)
	assert.Equal(t, logic.CommandBoostOff, cmd)

	for _, bad := range []string{"", "boost_on", "BOOST_ON ", " BOOST_OFF", "BOOST_ON\n", "RESET", "BOOST"} {
		_, ok := ParseCommand(bad)
		assert.False(t, ok, "payload %q", bad)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	data, err := FormatSystemPayload(SystemEvent{
		Timestamp: ts,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"system":{"timestamp":"2026-08-29T14:03:22Z","event":"SHUTDOWN","reason":"SIGTERM"}}`,
		string(data))

	// RawPayload passes through untouched.
	raw := []byte(`{"status":{}}`)
	data, err = FormatSystemPayload(SystemEvent{RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}
