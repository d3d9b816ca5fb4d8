// Command solar-monitor reads the solar hot-water installation's sensors,
// drives the booster relay, and reports state over UDP and MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arjenlentz/HomeResourceMonitor/internal/clock"
	"github.com/arjenlentz/HomeResourceMonitor/internal/config"
	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
	"github.com/arjenlentz/HomeResourceMonitor/internal/monitor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/pulse"
	"github.com/arjenlentz/HomeResourceMonitor/internal/relay"
	"github.com/arjenlentz/HomeResourceMonitor/internal/report"
	"github.com/arjenlentz/HomeResourceMonitor/internal/sensor"
	"github.com/arjenlentz/HomeResourceMonitor/internal/status"
	"github.com/arjenlentz/HomeResourceMonitor/internal/web"
)

// Environment overrides, loadable from a .env file next to the binary.
const (
	envBroker    = "SOLARMON_BROKER"
	envUDPTarget = "SOLARMON_UDP_TARGET"
	envUDPListen = "SOLARMON_UDP_LISTEN"
)

func main() {
	// Optional .env for site-specific addresses; absence is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "/etc/solar-monitor.yaml", "YAML config file")
	cycle := flag.Duration("cycle", 0, "control cycle period (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	udpTarget := flag.String("udp-target", "", "UDP record collector address (overrides config)")
	udpListen := flag.String("udp-listen", "", "UDP command listen address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")
	heartbeat := flag.Duration("heartbeat", -1, "heartbeat interval, 0 disables (overrides config)")
	printTemps := flag.Bool("print-temps", false, "read both sensors once, print and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyEnv(cfg)
	if *cycle != 0 {
		cfg.Cycle.Period = *cycle
	}
	if *broker != "" {
		cfg.Report.Broker = *broker
	}
	if *udpTarget != "" {
		cfg.Report.UDPTarget = *udpTarget
	}
	if *udpListen != "" {
		cfg.Report.UDPListen = *udpListen
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if *heartbeat >= 0 {
		cfg.Report.Heartbeat = *heartbeat
	}

	if err := run(cfg, *printTemps); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyEnv overlays environment values onto the file config. Flags still win.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv(envBroker); v != "" {
		cfg.Report.Broker = v
	}
	if v := os.Getenv(envUDPTarget); v != "" {
		cfg.Report.UDPTarget = v
	}
	if v := os.Getenv(envUDPListen); v != "" {
		cfg.Report.UDPListen = v
	}
}

func run(cfg *config.Config, printTemps bool) error {
	collectorAddr, err := cfg.SensorAddr(cfg.Sensors.Collector)
	if err != nil {
		return fmt.Errorf("collector sensor address: %w", err)
	}
	vatAddr, err := cfg.SensorAddr(cfg.Sensors.Vat)
	if err != nil {
		return fmt.Errorf("vat sensor address: %w", err)
	}

	bus, err := sensor.NewOneWireBus(collectorAddr, vatAddr)
	if err != nil {
		return fmt.Errorf("init 1-wire: %w", err)
	}
	defer bus.Close()
	reader := sensor.NewReader(bus)

	if printTemps {
		for _, ch := range []logic.Channel{logic.ChannelCollector, logic.ChannelVat} {
			v, err := reader.ReadTemperature(ch)
			if err != nil {
				return fmt.Errorf("read %s: %w", ch, err)
			}
			fmt.Printf("%s: %s C\n", ch, status.FormatCentiC(v))
		}
		return nil
	}

	// Pulse inputs: the gpiocdev event goroutines increment the counters,
	// the control loop drains them.
	var flowCtr, boostCtr pulse.Counter
	watcher, err := pulse.NewWatcher(cfg.Pulse.Chip, cfg.Pulse.FlowPin, cfg.Pulse.BoostPin, &flowCtr, &boostCtr)
	if err != nil {
		return fmt.Errorf("init pulse inputs: %w", err)
	}
	defer watcher.Close()

	rly, err := relay.NewRealDriver(cfg.Relay.Chip, cfg.Relay.Pin)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}
	defer rly.Close()

	// Outbound transports and the merged inbound command stream.
	commands := make(chan string, 16)
	var senders []report.Sender
	var mqttSender *report.MQTTSender

	if cfg.Report.Broker != "" {
		mqttSender, err = report.NewMQTTSender(cfg.Report.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer mqttSender.Close()
		senders = append(senders, mqttSender)
		go forward(mqttSender.Payloads(), commands)
	}
	if cfg.Report.UDPTarget != "" {
		udp, err := report.NewUDPSender(cfg.Report.UDPTarget)
		if err != nil {
			return fmt.Errorf("init udp sender: %w", err)
		}
		defer udp.Close()
		senders = append(senders, udp)
	}
	if cfg.Report.UDPListen != "" {
		listener, err := report.NewUDPListener(cfg.Report.UDPListen)
		if err != nil {
			return fmt.Errorf("init udp listener: %w", err)
		}
		defer listener.Close()
		go forward(listener.Payloads(), commands)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		CycleMs:     cfg.Cycle.Period.Milliseconds(),
		HeartbeatMs: cfg.Report.Heartbeat.Milliseconds(),
		Broker:      cfg.Report.Broker,
		UDPTarget:   cfg.Report.UDPTarget,
		UDPListen:   cfg.Report.UDPListen,
		HTTPAddr:    cfg.HTTP.Addr,
	})

	if mqttSender != nil {
		snap := tracker.Snapshot()
		event := report.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := mqttSender.PublishSystem(event); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// Known safe state before the first cycle; later writes are
	// edge-triggered.
	if err := rly.Set(false); err != nil {
		return fmt.Errorf("release relay: %w", err)
	}

	m := monitor.New(monitor.Options{
		Reader:      reader,
		FlowPulses:  &flowCtr,
		BoostPulses: &boostCtr,
		Relay:       rly,
		Sender:      &report.MultiSender{Senders: senders},
		Commands:    commands,
		Clock:       clock.NewSystemSource(),
		Tracker:     tracker,
		Calibration: cfg.Pulse.Calibration,
	})

	log.Printf("started: cycle=%v broker=%s udp=%s listen=%s",
		cfg.Cycle.Period, cfg.Report.Broker, cfg.Report.UDPTarget, cfg.Report.UDPListen)

	// Tick faster than the cycle period; runLoop gates on elapsed wall
	// clock, not the tick itself.
	ticker := time.NewTicker(cfg.Cycle.Period / 4)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// A nil *MQTTSender must stay a nil interface inside runLoop.
	var sys report.SystemPublisher
	if mqttSender != nil {
		sys = mqttSender
	}
	return runLoop(m, sys, tracker, cfg.Cycle.Period, cfg.Report.Heartbeat, time.Now, ticker.C, sigCh)
}

// forward copies inbound payloads onto the merged command channel without
// ever blocking the transport's reader.
func forward(in <-chan string, out chan<- string) {
	for p := range in {
		select {
		case out <- p:
		default:
			log.Printf("command channel full, dropping payload")
		}
	}
}

// runLoop gates the control cycles and handles lifecycle events. Cycle gating
// and the heartbeat run off the timestamps delivered on tick; now stamps the
// lifecycle events. Everything it touches is injectable so tests can drive it
// with fakes.
func runLoop(m *monitor.Monitor, sys report.SystemPublisher, tracker *status.Tracker, period, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var lastCycle time.Time
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if sys != nil {
				tracker.SetMQTTConnected(sys.IsConnected())
				event := report.SystemEvent{
					Timestamp:  now(),
					Event:      "SHUTDOWN",
					Reason:     signalName,
					Retained:   true,
					RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName),
				}
				if err := sys.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case t := <-tick:
			if !lastCycle.IsZero() && t.Sub(lastCycle) < period {
				continue
			}
			lastCycle = t

			m.Cycle()

			if sys != nil {
				tracker.SetMQTTConnected(sys.IsConnected())

				if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
					lastHeartbeat = t
					event := report.SystemEvent{
						Timestamp:  t,
						Event:      "HEARTBEAT",
						RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", ""),
					}
					if err := sys.PublishSystem(event); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}
		}
	}
}
