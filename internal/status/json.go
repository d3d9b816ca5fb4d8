package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string     `json:"event,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	CollectorCentiC int        `json:"collector_centic"`
	VatCentiC       int        `json:"vat_centic"`
	Collector       string     `json:"collector"`
	Vat             string     `json:"vat"`
	Ready           bool       `json:"ready"`
	Boost           string     `json:"boost"`
	Override        bool       `json:"override"`
	Flow            FlowJSON   `json:"flow"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
	StartTime       string     `json:"start_time"`
	Timestamp       string     `json:"timestamp"`
	MQTT            MQTTStatus `json:"mqtt"`
	Counts          CountsJSON `json:"counts"`
	Config          ConfigJSON `json:"config"`
}

// FlowJSON is the JSON representation of the flow state.
type FlowJSON struct {
	RateLPM  float64 `json:"rate_lpm"`
	VolumeML uint32  `json:"volume_ml"`
	TotalML  uint64  `json:"total_ml"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the activity counters.
type CountsJSON struct {
	TempRecords  int `json:"temp_records"`
	FlowRecords  int `json:"flow_records"`
	Commands     int `json:"commands"`
	ReadFailures int `json:"read_failures"`
	RelayWrites  int `json:"relay_writes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleMs     int64  `json:"cycle_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	UDPTarget   string `json:"udp_target"`
	UDPListen   string `json:"udp_listen"`
	HTTPAddr    string `json:"http_addr"`
}

// FormatCentiC renders a centidegree value as a degree string, e.g. "42.75".
func FormatCentiC(v logic.Centidegrees) string {
	whole := v / 100
	frac := v % 100
	if frac < 0 {
		frac = -frac
		if whole == 0 {
			return fmt.Sprintf("-0.%02d", frac)
		}
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		CollectorCentiC: int(snap.Collector),
		VatCentiC:       int(snap.Vat),
		Collector:       FormatCentiC(snap.Collector),
		Vat:             FormatCentiC(snap.Vat),
		Ready:           snap.Primed,
		Boost:           string(snap.Boost),
		Override:        snap.Override,
		Flow: FlowJSON{
			RateLPM:  snap.Flow.Rate,
			VolumeML: snap.Flow.VolumeML,
			TotalML:  snap.Flow.TotalML,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			TempRecords:  snap.Counts.TempRecords,
			FlowRecords:  snap.Counts.FlowRecords,
			Commands:     snap.Counts.Commands,
			ReadFailures: snap.Counts.ReadFailures,
			RelayWrites:  snap.Counts.RelayWrites,
		},
		Config: ConfigJSON{
			CycleMs:     snap.Config.CycleMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			UDPTarget:   snap.Config.UDPTarget,
			UDPListen:   snap.Config.UDPListen,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
