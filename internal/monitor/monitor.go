// Package monitor wires the measurement and control core into one control
// cycle: drain pulse counters, read sensors, smooth, integrate flow, apply
// remote commands, drive the booster relay, and emit records. The main loop
// owns the timing; everything here is driven by explicit Cycle calls so the
// whole thing runs against fakes in tests.
package monitor

import (
	"log"
	"strings"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/clock"
	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
	"github.com/arjenlentz/HomeResourceMonitor/internal/pulse"
	"github.com/arjenlentz/HomeResourceMonitor/internal/relay"
	"github.com/arjenlentz/HomeResourceMonitor/internal/report"
	"github.com/arjenlentz/HomeResourceMonitor/internal/sensor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/status"
)

// Options collects the monitor's collaborators. Reader, Relay, Sender and
// Clock are required; Commands and Tracker may be nil.
type Options struct {
	Reader      *sensor.Reader
	FlowPulses  *pulse.Counter
	BoostPulses *pulse.Counter
	Relay       relay.Driver
	Sender      report.Sender
	Commands    <-chan string
	Clock       clock.Source
	Tracker     *status.Tracker
	Calibration float64
}

// Monitor runs the per-cycle control sequence.
type Monitor struct {
	reader      *sensor.Reader
	flowPulses  *pulse.Counter
	boostPulses *pulse.Counter
	relay       relay.Driver
	sender      report.Sender
	commands    <-chan string
	clk         clock.Source
	tracker     *status.Tracker

	smoother   *logic.Smoother
	integrator *logic.Integrator
	controller *logic.Controller
	reporter   *report.Reporter

	// last good raw reading per channel, reused when a read fails
	lastRaw [2]logic.Centidegrees
	haveRaw [2]bool

	lastCycle time.Time
}

// New creates a Monitor. The booster relay starts released.
func New(o Options) *Monitor {
	return &Monitor{
		reader:      o.Reader,
		flowPulses:  o.FlowPulses,
		boostPulses: o.BoostPulses,
		relay:       o.Relay,
		sender:      o.Sender,
		commands:    o.Commands,
		clk:         o.Clock,
		tracker:     o.Tracker,
		smoother:    logic.NewSmoother(),
		integrator:  logic.NewIntegrator(o.Calibration),
		controller:  logic.NewController(),
		reporter:    report.NewReporter(),
	}
}

// Cycle runs one control cycle. It never fails: degraded inputs are logged
// and the previous known-good values carry the cycle.
func (m *Monitor) Cycle() {
	now := m.clk.Now()
	elapsed := now.Sub(m.lastCycle)
	if m.lastCycle.IsZero() {
		// First cycle: no previous integration point, assume the nominal
		// period.
		elapsed = time.Second
	}
	m.lastCycle = now

	var counts status.Counts

	// Drain both counters first; each drain is one atomic swap, so no pulse
	// is lost to the handlers while we do the slow work below.
	flowCount := m.flowPulses.Drain()
	boostCount := m.boostPulses.Drain()

	// Acquire temperatures. A failed read reuses the channel's previous
	// value so the averaging buffer still advances.
	for _, ch := range []logic.Channel{logic.ChannelCollector, logic.ChannelVat} {
		v, err := m.reader.ReadTemperature(ch)
		if err != nil {
			counts.ReadFailures++
			if !m.haveRaw[ch] {
				log.Printf("monitor: %v (no previous value for %s yet)", err, ch)
				continue
			}
			log.Printf("monitor: %v, reusing %d", err, m.lastRaw[ch])
			v = m.lastRaw[ch]
		} else {
			m.lastRaw[ch] = v
			m.haveRaw[ch] = true
		}
		m.smoother.Ingest(ch, v)
	}
	m.smoother.Advance()

	flow := m.integrator.Integrate(flowCount, elapsed)

	counts.Commands += m.pollCommands()

	// Until a channel has produced one valid reading its average is not a
	// measurement. The relay holds its previous (safe, off) state rather than
	// act on a vat temperature nobody measured, and no records go out; the
	// pending force flag delivers the full first report once data exists.
	if m.smoother.Primed(logic.ChannelVat) {
		state, changed := m.controller.Evaluate(m.smoother.Average(logic.ChannelVat), now.Hour())
		if changed {
			if err := m.relay.Set(state == logic.BoostOn); err != nil {
				log.Printf("monitor: relay write: %v", err)
			} else {
				log.Printf("monitor: boost %s (vat=%d hour=%d)", state, m.smoother.Average(logic.ChannelVat), now.Hour())
				counts.RelayWrites++
			}
		}
	} else {
		log.Printf("monitor: no vat reading yet, holding boost %s", m.controller.State())
	}

	if m.smoother.Primed(logic.ChannelCollector) && m.smoother.Primed(logic.ChannelVat) {
		lines := m.reporter.Cycle(
			report.TemperatureRecord{
				Timestamp:   now,
				Collector:   m.smoother.Average(logic.ChannelCollector),
				Vat:         m.smoother.Average(logic.ChannelVat),
				BoostCode:   m.controller.Code(),
				BoostPulses: boostCount,
			},
			report.FlowRecord{
				Timestamp: now,
				Rate:      flow.Rate,
				VolumeML:  flow.VolumeML,
			},
		)
		for _, line := range lines {
			if err := m.sender.Send(line); err != nil {
				log.Printf("monitor: send: %v", err)
				continue
			}
			if strings.HasPrefix(line, report.TagTemperature) {
				counts.TempRecords++
			} else {
				counts.FlowRecords++
			}
		}
	}

	if m.tracker != nil {
		m.tracker.Update(
			m.smoother.Average(logic.ChannelCollector),
			m.smoother.Average(logic.ChannelVat),
			m.smoother.Primed(logic.ChannelCollector) && m.smoother.Primed(logic.ChannelVat),
			flow,
			m.controller.State(),
			m.controller.Override(),
		)
		m.tracker.AddCounts(counts)
	}
}

// pollCommands drains any inbound payloads without blocking. Recognized
// commands drive the boost controller; everything else is logged and
// ignored. Any payload at all forces the next report.
func (m *Monitor) pollCommands() int {
	n := 0
	for m.commands != nil {
		select {
		case payload, ok := <-m.commands:
			if !ok {
				m.commands = nil
				continue
			}
			n++
			m.reporter.Force()
			cmd, ok := report.ParseCommand(payload)
			if !ok {
				log.Printf("monitor: ignoring unrecognized command %q", payload)
				continue
			}
			log.Printf("monitor: command %s", cmd)
			m.controller.Apply(cmd)
		default:
			return n
		}
	}
	return n
}

// Boost returns the controller's current relay state, for the shutdown path.
func (m *Monitor) Boost() logic.BoostState {
	return m.controller.State()
}
