// Package report is the reporting adapter: it formats cycle results into
// outbound comma-separated records, applies change-based suppression, and
// decodes inbound override commands. Transport is best-effort; a failed send
// never stops the control loop.
package report

import (
	"fmt"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// Record-type tags, the first field of every outbound line.
const (
	TagTemperature = "TEMP"
	TagFlow        = "FLOW"
)

// TemperatureRecord is one cycle's temperature and boost result.
type TemperatureRecord struct {
	Timestamp   time.Time
	Collector   logic.Centidegrees
	Vat         logic.Centidegrees
	BoostCode   logic.BoostCode
	BoostPulses uint32
}

// Format renders the record as
// TEMP,date,time,collector,vat,boost_code,boost_pulses.
func (r TemperatureRecord) Format() string {
	return fmt.Sprintf("%s,%s,%s,%d,%d,%d,%d",
		TagTemperature,
		r.Timestamp.Format("2006-01-02"),
		r.Timestamp.Format("15:04:05"),
		r.Collector, r.Vat, r.BoostCode, r.BoostPulses)
}

// FlowRecord is one cycle's flow result.
type FlowRecord struct {
	Timestamp time.Time
	Rate      float64 // litres per minute
	VolumeML  uint32
}

// Format renders the record as FLOW,date,time,flow_rate,flow_volume_ml.
func (r FlowRecord) Format() string {
	return fmt.Sprintf("%s,%s,%s,%.2f,%d",
		TagFlow,
		r.Timestamp.Format("2006-01-02"),
		r.Timestamp.Format("15:04:05"),
		r.Rate, r.VolumeML)
}

// Context controls unconditional emission of the next report. It is set at
// startup and whenever any inbound payload arrives, so a freshly connected
// remote always gets a full picture on the next cycle.
type Context struct {
	ForceNext bool
}

// Reporter applies the suppression rules and remembers the last emitted
// temperature record as the reference for change detection.
type Reporter struct {
	ctx  Context
	last TemperatureRecord
}

// NewReporter creates a Reporter that reports unconditionally on the first
// cycle.
func NewReporter() *Reporter {
	return &Reporter{ctx: Context{ForceNext: true}}
}

// Force marks the next report unconditional.
func (r *Reporter) Force() {
	r.ctx.ForceNext = true
}

// Cycle returns the record lines to emit this cycle, applying suppression:
// the temperature record goes out when forced, when either average or the
// boost code differs from the last emitted record, or when boost pulses were
// metered; the flow record goes out when forced or when water moved.
func (r *Reporter) Cycle(tr TemperatureRecord, fr FlowRecord) []string {
	force := r.ctx.ForceNext
	r.ctx.ForceNext = false

	var lines []string
	if force ||
		tr.Collector != r.last.Collector ||
		tr.Vat != r.last.Vat ||
		tr.BoostCode != r.last.BoostCode ||
		tr.BoostPulses > 0 {
		lines = append(lines, tr.Format())
		r.last = tr
	}
	if force || fr.Rate > 0 {
		lines = append(lines, fr.Format())
	}
	return lines
}

// ParseCommand decodes an inbound payload. Recognized commands are exactly
// BOOST_ON and BOOST_OFF: case-sensitive, no surrounding whitespace
// tolerated. Anything else is rejected.
func ParseCommand(payload string) (logic.Command, bool) {
	switch logic.Command(payload) {
	case logic.CommandBoostOn:
		return logic.CommandBoostOn, true
	case logic.CommandBoostOff:
		return logic.CommandBoostOff, true
	}
	return "", false
}
