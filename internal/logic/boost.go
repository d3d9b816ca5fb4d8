package logic

// Booster policy thresholds, in centidegrees.
const (
	// HardOffThreshold is the vat temperature at or above which the relay is
	// forced off unconditionally, clearing any override.
	HardOffThreshold Centidegrees = 4600
	// OnThreshold is the vat temperature below which the time windows may
	// switch the relay on.
	OnThreshold Centidegrees = 4200
)

// Boost-on windows, hours of day (inclusive start, exclusive end).
const (
	MorningWindowStart   = 4
	MorningWindowEnd     = 7
	AfternoonWindowStart = 14
	AfternoonWindowEnd   = 20
)

// Controller is the booster relay state machine. It is pure: the relay write
// happens outside, driven by the changed result of Evaluate.
type Controller struct {
	state    BoostState
	override bool
	// state at the end of the previous Evaluate, for edge detection
	prev BoostState
}

// NewController creates a Controller with the relay off and no override.
func NewController() *Controller {
	return &Controller{state: BoostOff, prev: BoostOff}
}

// Apply handles a remote override command. CommandBoostOn arms the override;
// CommandBoostOff clears it and forces the relay off immediately, independent
// of temperature. Unknown commands are ignored.
func (c *Controller) Apply(cmd Command) {
	switch cmd {
	case CommandBoostOn:
		c.override = true
	case CommandBoostOff:
		c.override = false
		c.state = BoostOff
	}
}

// Evaluate runs one cycle of the transition rules against the smoothed vat
// temperature and the current hour of day. It returns the next state and
// whether it differs from the previous cycle's state (the relay write is
// edge-triggered on changed).
//
// Rule order: hard-off wins over everything; then override or either time
// window may switch on; otherwise the state holds. There is no drift toward
// OFF from merely leaving an on-window — the only ways out of ON are the
// hard-off threshold and an explicit remote off.
func (c *Controller) Evaluate(vat Centidegrees, hour int) (BoostState, bool) {
	next := c.state

	switch {
	case vat >= HardOffThreshold:
		next = BoostOff
		c.override = false
	case c.override,
		hour >= AfternoonWindowStart && hour < AfternoonWindowEnd && vat < OnThreshold,
		hour >= MorningWindowStart && hour < MorningWindowEnd && vat < OnThreshold:
		next = BoostOn
	}

	changed := next != c.prev
	c.state = next
	c.prev = next
	return next, changed
}

// State returns the current relay state.
func (c *Controller) State() BoostState {
	return c.state
}

// Override reports whether a remote override is armed.
func (c *Controller) Override() bool {
	return c.override
}

// Code returns the record encoding of the current state: 0 off, 1 on,
// 2 on-by-override.
func (c *Controller) Code() BoostCode {
	if c.state != BoostOn {
		return CodeOff
	}
	if c.override {
		return CodeOverrideOn
	}
	return CodeOn
}
