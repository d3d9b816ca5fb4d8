package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjenlentz/HomeResourceMonitor/internal/clock"
	"github.com/arjenlentz/HomeResourceMonitor/internal/config"
	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
	"github.com/arjenlentz/HomeResourceMonitor/internal/monitor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/pulse"
	"github.com/arjenlentz/HomeResourceMonitor/internal/relay"
	"github.com/arjenlentz/HomeResourceMonitor/internal/report"
	"github.com/arjenlentz/HomeResourceMonitor/internal/sensor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/status"
)

func testMonitor(t *testing.T, sender *report.FakeSender, times ...time.Time) (*monitor.Monitor, *status.Tracker) {
	t.Helper()
	bus := sensor.NewFakeBus()
	bus.PushTemperature(logic.ChannelCollector, 5500)
	bus.PushTemperature(logic.ChannelVat, 4500)
	var flowCtr, boostCtr pulse.Counter
	tracker := status.NewTracker(times[0], status.Config{})
	m := monitor.New(monitor.Options{
		Reader:      sensor.NewReaderWithWait(bus, func(time.Duration) {}),
		FlowPulses:  &flowCtr,
		BoostPulses: &boostCtr,
		Relay:       relay.NewFakeDriver(),
		Sender:      sender,
		Clock:       clock.NewFakeSource(times...),
		Tracker:     tracker,
		Calibration: logic.DefaultCalibrationFactor,
	})
	return m, tracker
}

// TestRunLoop feeds scripted ticks and a termination signal through the loop
// and checks cycle gating, the heartbeat, and the shutdown event.
func TestRunLoop(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	sender := report.NewFakeSender()
	sender.Connected = true
	m, tracker := testMonitor(t, sender, base.Add(time.Second), base.Add(2*time.Second))

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)

	go func() {
		done <- runLoop(m, sender, tracker, time.Second, 2*time.Second,
			func() time.Time { return base }, tick, sig)
	}()

	// First tick a full period after start: one cycle, no heartbeat yet.
	tick <- base.Add(time.Second)

	// Half a period later: gated, no cycle.
	tick <- base.Add(1500 * time.Millisecond)

	// Two seconds in: second cycle plus the first heartbeat.
	tick <- base.Add(2 * time.Second)

	sig <- syscall.SIGTERM
	require.NoError(t, <-done)

	// Cycle one reported unconditionally; cycle two had nothing new. A
	// third cycle would have sent a third timestamp.
	require.Len(t, sender.Lines, 2)
	assert.Equal(t, "TEMP,2026-08-29,12:00:01,5500,4500,0,0", sender.Lines[0])

	require.Len(t, sender.SystemEvents, 2)
	assert.Equal(t, "HEARTBEAT", sender.SystemEvents[0].Event)
	assert.Equal(t, "SHUTDOWN", sender.SystemEvents[1].Event)
	assert.Equal(t, "SIGTERM", sender.SystemEvents[1].Reason)
	assert.True(t, sender.SystemEvents[1].Retained)
	assert.True(t, tracker.Snapshot().MQTTConnected)
}

// TestRunLoopWithoutBroker runs the loop with no system publisher at all;
// shutdown still returns cleanly.
func TestRunLoopWithoutBroker(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	sender := report.NewFakeSender()
	m, tracker := testMonitor(t, sender, base.Add(time.Second))

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)

	go func() {
		done <- runLoop(m, nil, tracker, time.Second, 0,
			func() time.Time { return base.Add(time.Second) }, tick, sig)
	}()

	tick <- base.Add(time.Second)
	sig <- syscall.SIGINT
	require.NoError(t, <-done)

	assert.Len(t, sender.Lines, 2)
	assert.Empty(t, sender.SystemEvents)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := config.Default()
	t.Setenv(envBroker, "tcp://broker.example:1883")
	t.Setenv(envUDPTarget, "collector.example:5100")

	applyEnv(cfg)

	assert.Equal(t, "tcp://broker.example:1883", cfg.Report.Broker)
	assert.Equal(t, "collector.example:5100", cfg.Report.UDPTarget)
}
