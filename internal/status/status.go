// Package status provides a thread-safe status tracker for the solar-monitor
// daemon. It is read by the HTTP status server and by the MQTT lifecycle
// events.
package status

import (
	"sync"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	CycleMs     int64
	HeartbeatMs int64
	Broker      string
	UDPTarget   string
	UDPListen   string
	HTTPAddr    string
}

// Counts tracks daemon activity since startup.
type Counts struct {
	TempRecords  int
	FlowRecords  int
	Commands     int
	ReadFailures int
	RelayWrites  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Collector logic.Centidegrees
	Vat       logic.Centidegrees
	Primed    bool
	Flow      logic.FlowState
	Boost     logic.BoostState
	Override  bool

	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Boost:     logic.BoostOff,
			Config:    cfg,
		},
	}
}

// Update sets the cycle results. Called from the control loop every cycle.
func (t *Tracker) Update(collector, vat logic.Centidegrees, primed bool, flow logic.FlowState, boost logic.BoostState, override bool) {
	t.mu.Lock()
	t.snap.Collector = collector
	t.snap.Vat = vat
	t.snap.Primed = primed
	t.snap.Flow = flow
	t.snap.Boost = boost
	t.snap.Override = override
	t.mu.Unlock()
}

// AddCounts increments the activity counters.
func (t *Tracker) AddCounts(d Counts) {
	t.mu.Lock()
	t.snap.Counts.TempRecords += d.TempRecords
	t.snap.Counts.FlowRecords += d.FlowRecords
	t.snap.Counts.Commands += d.Commands
	t.snap.Counts.ReadFailures += d.ReadFailures
	t.snap.Counts.RelayWrites += d.RelayWrites
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
