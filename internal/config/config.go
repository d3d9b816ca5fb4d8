// Package config loads the monitor configuration from a YAML file, falling
// back to defaults for anything missing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
	"github.com/arjenlentz/HomeResourceMonitor/internal/pulse"
	"github.com/arjenlentz/HomeResourceMonitor/internal/relay"
)

// Config represents the daemon configuration.
type Config struct {
	Cycle   CycleConfig   `yaml:"cycle"`
	Sensors SensorsConfig `yaml:"sensors"`
	Pulse   PulseConfig   `yaml:"pulse"`
	Relay   RelayConfig   `yaml:"relay"`
	Report  ReportConfig  `yaml:"report"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// CycleConfig controls the main loop timing.
type CycleConfig struct {
	// Period is the minimum time between control cycles.
	Period time.Duration `yaml:"period"`
}

// SensorsConfig binds the temperature channels to 1-wire device ROM codes.
// Empty addresses mean discover-by-search at startup.
type SensorsConfig struct {
	Collector string `yaml:"collector"` // hex ROM code, e.g. "28ff641e0f3c1a45"
	Vat       string `yaml:"vat"`
}

// PulseConfig configures the pulse inputs.
type PulseConfig struct {
	Chip        string  `yaml:"chip"`
	FlowPin     int     `yaml:"flow_pin"`
	BoostPin    int     `yaml:"boost_pin"`
	Calibration float64 `yaml:"calibration"` // flow pulses per litre per minute
}

// RelayConfig configures the booster relay output.
type RelayConfig struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// ReportConfig configures the outbound record transports and the inbound
// command listener.
type ReportConfig struct {
	// UDPTarget receives record datagrams; empty disables UDP sending.
	UDPTarget string `yaml:"udp_target"`
	// UDPListen is the local address for inbound command datagrams; empty
	// disables the listener.
	UDPListen string `yaml:"udp_listen"`
	// Broker is the MQTT broker address; empty disables the MQTT bridge.
	Broker string `yaml:"broker"`
	// Heartbeat is the system-event heartbeat interval; 0 disables it.
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// HTTPConfig configures the status page.
type HTTPConfig struct {
	// Addr is the listen address; empty disables the server.
	Addr string `yaml:"addr"`
}

// Default returns a configuration with sensible values for a Raspberry Pi
// installation.
func Default() *Config {
	return &Config{
		Cycle: CycleConfig{
			Period: time.Second,
		},
		Pulse: PulseConfig{
			Chip:        "gpiochip0",
			FlowPin:     pulse.DefaultPinFlow,
			BoostPin:    pulse.DefaultPinBoost,
			Calibration: logic.DefaultCalibrationFactor,
		},
		Relay: RelayConfig{
			Chip: "gpiochip0",
			Pin:  relay.DefaultPin,
		},
		Report: ReportConfig{
			UDPTarget: "192.168.1.200:5100",
			UDPListen: ":5101",
			Broker:    "tcp://192.168.1.200:1883",
			Heartbeat: 15 * time.Minute,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, defaults are used.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Cycle.Period < 100*time.Millisecond {
		return fmt.Errorf("cycle period %v too short", c.Cycle.Period)
	}
	if c.Pulse.Calibration <= 0 {
		return fmt.Errorf("pulse calibration must be positive, got %v", c.Pulse.Calibration)
	}
	if _, err := c.SensorAddr(c.Sensors.Collector); err != nil {
		return fmt.Errorf("sensors.collector: %w", err)
	}
	if _, err := c.SensorAddr(c.Sensors.Vat); err != nil {
		return fmt.Errorf("sensors.vat: %w", err)
	}
	return nil
}

// SensorAddr parses a hex ROM code from the config. An empty string parses
// to zero, meaning discover at startup.
func (c *Config) SensorAddr(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, nil
	}
	addr, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("bad ROM code %q: %w", s, err)
	}
	return addr, nil
}
