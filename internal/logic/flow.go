package logic

import "time"

// DefaultCalibrationFactor is the flow sensor's pulses-per-litre-per-minute
// constant (YF-S201 class hall sensor).
const DefaultCalibrationFactor = 5.5

// FlowState holds the result of one flow integration cycle.
type FlowState struct {
	// Rate is the instantaneous flow rate in litres per minute.
	Rate float64
	// VolumeML is the volume that passed this cycle, in millilitres.
	VolumeML uint32
	// TotalML is the cumulative volume since startup, in millilitres.
	// It never resets during a run.
	TotalML uint64
}

// Integrator converts pulse counts drained once per cycle into a flow rate
// and volume totals.
type Integrator struct {
	calibration float64
	state       FlowState
}

// NewIntegrator creates an Integrator with the given calibration factor
// (pulses per litre per minute). A non-positive factor falls back to
// DefaultCalibrationFactor.
func NewIntegrator(calibration float64) *Integrator {
	if calibration <= 0 {
		calibration = DefaultCalibrationFactor
	}
	return &Integrator{calibration: calibration}
}

// Integrate computes the flow rate and cycle volume for a drained pulse count
// accumulated over the measured elapsed time. Elapsed is the wall-clock delta
// since the previous integration, which self-corrects for cycle jitter.
// Millilitre conversion truncates toward zero.
func (i *Integrator) Integrate(pulses uint32, elapsed time.Duration) FlowState {
	if pulses == 0 {
		i.state.Rate = 0
		i.state.VolumeML = 0
		return i.state
	}

	// A zero or negative delta carries no usable interval; assume the
	// nominal one-second cycle rather than dividing by it and fabricating an
	// enormous rate into the cumulative total.
	ms := float64(elapsed.Milliseconds())
	if ms < 1 {
		ms = 1000
	}

	rate := (1000.0 / ms) * float64(pulses) / i.calibration
	volume := uint32(rate / 60.0 * 1000.0)

	i.state.Rate = rate
	i.state.VolumeML = volume
	i.state.TotalML += uint64(volume)
	return i.state
}

// State returns the result of the most recent integration.
func (i *Integrator) State() FlowState {
	return i.state
}
