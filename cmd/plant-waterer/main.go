// Command plant-waterer runs the watering control loop against real or simulated
// hardware and publishes what it does to MQTT and an HTTP status page.
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

	"github.com/sweeney/plant-waterer/internal/config"
	"github.com/sweeney/plant-waterer/internal/gpio"
	"github.com/sweeney/plant-waterer/internal/logic"
	"github.com/sweeney/plant-waterer/internal/mqtt"
	"github.com/sweeney/plant-waterer/internal/status"
	"github.com/sweeney/plant-waterer/internal/web"
)

// simPress is how long SIGUSR1 holds the simulated button down.
const simPress = 150 * time.Millisecond

func main() {
	configPath := flag.String("config", "/etc/plant-waterer/config.yaml", "YAML config file (missing file uses defaults)")
	backend := flag.String("backend", "", "I/O backend: gpio, serial or sim (overrides config)")
	broker := flag.String("broker", "", `MQTT broker address (overrides config, "off" disables)`)
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	heartbeat := flag.Duration("heartbeat", 0, "Heartbeat interval (overrides config, negative disables)")
	printState := flag.Bool("print-state", false, "Print current inputs and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyFlags(flag.CommandLine, cfg, *backend, *broker, *httpAddr, *heartbeat)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overlays the flags the user actually set onto cfg.
func applyFlags(fs *flag.FlagSet, cfg *config.Config, backend, broker, httpAddr string, heartbeat time.Duration) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.IO.Backend = backend
		case "broker":
			cfg.MQTT.Broker = offToEmpty(broker)
		case "http":
			cfg.HTTP.Addr = offToEmpty(httpAddr)
		case "heartbeat":
			if heartbeat < 0 {
				heartbeat = 0
			}
			cfg.MQTT.Heartbeat = heartbeat
		}
	})
}

func offToEmpty(s string) string {
	if s == "off" {
		return ""
	}
	return s
}

func run(cfg *config.Config, printState bool) error {
	timing, err := cfg.Timing.Logic()
	if err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	dev, sim, err := openIO(cfg)
	if err != nil {
		return fmt.Errorf("init %s backend: %w", cfg.IO.Backend, err)
	}
	// Close drives pump and clock LOW.
	defer dev.Close()

	// Print state mode
	if printState {
		button, err := dev.ReadButton()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		moisture, err := dev.ReadMoisture()
		if err != nil {
			return fmt.Errorf("read moisture: %w", err)
		}
		fmt.Printf("button: %s (%s), soil: %s (%s)\n", buttonString(button), button, soilString(moisture), moisture)
		return nil
	}

	// Initialize MQTT
	var publisher mqtt.Publisher = mqtt.Discard()
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:     cfg.MQTT.Broker,
			ClientID:   cfg.MQTT.ClientID,
			BufferSize: cfg.MQTT.Buffer,
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()
	mqttStatus, _ := publisher.(mqtt.ConnectionStatus)

	// Initialize status tracker (before STARTUP so snapshot is available)
	statusCfg := status.ConfigFromTiming(timing)
	statusCfg.HeartbeatMs = cfg.MQTT.Heartbeat.Milliseconds()
	statusCfg.Backend = cfg.IO.Backend
	statusCfg.Broker = cfg.MQTT.Broker
	statusCfg.HTTPAddr = cfg.HTTP.Addr
	tracker := status.NewTracker(time.Now(), statusCfg)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", srv.Addr())
	}

	if sim != nil {
		pressCh := make(chan os.Signal, 1)
		signal.Notify(pressCh, syscall.SIGUSR1)
		defer signal.Stop(pressCh)
		go func() {
			for range pressCh {
				sim.Press(simPress)
			}
		}()
		log.Printf("sim: send SIGUSR1 (kill -USR1 %d) to press the button", os.Getpid())
	}

	log.Printf("started: backend=%s tick=%v check=%v step=%v max_step=%d broker=%q heartbeat=%v",
		cfg.IO.Backend, timing.TickPeriod, cfg.Timing.CheckInterval, cfg.Timing.StepDuration,
		timing.MaxStep, cfg.MQTT.Broker, cfg.MQTT.Heartbeat)

	ticker := time.NewTicker(timing.TickPeriod)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctl := logic.NewController(timing)
	return runLoop(ctl, dev, publisher, mqttStatus, tracker, cfg.MQTT.Heartbeat, time.Now, ticker.C, sigCh)
}

// openIO opens the configured backend. The simulator is also returned on
// its own so the caller can wire button presses to it.
func openIO(cfg *config.Config) (gpio.IO, *gpio.SimIO, error) {
	switch cfg.IO.Backend {
	case config.BackendGPIO:
		dev, err := gpio.NewRealIO(cfg.IO.Chip, gpio.Pins{
			Button:   cfg.IO.Pins.Button,
			Moisture: cfg.IO.Pins.Moisture,
			Pump:     cfg.IO.Pins.Pump,
			Clock:    cfg.IO.Pins.Clock,
		})
		if err != nil {
			return nil, nil, err
		}
		return dev, nil, nil
	case config.BackendSerial:
		dev, err := gpio.OpenSerial(cfg.IO.Serial.Port, cfg.IO.Serial.BaudRate)
		if err != nil {
			return nil, nil, err
		}
		return dev, nil, nil
	case config.BackendSim:
		sim := gpio.NewSimIO(cfg.Sim.DryAfter, cfg.Sim.WetAfter, time.Now)
		return sim, sim, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.IO.Backend)
	}
}

func runLoop(ctl *logic.Controller, dev gpio.IO, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())
	sampler := gpio.NewSampler(dev)
	writeFailing := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := writeOutputs(dev, logic.Low, logic.Low); err != nil {
				log.Printf("failed to drive outputs low: %v", err)
			}

			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.Update(ctl.State(), ctl.Timing())
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			out := ctl.Tick(sampler)

			if err := writeOutputs(dev, out.Clock, out.Pump); err != nil {
				if !writeFailing {
					log.Printf("gpio write error: %v", err)
					writeFailing = true
				}
			} else if writeFailing {
				log.Printf("gpio write recovered")
				writeFailing = false
			}

			for _, event := range out.Events(t) {
				log.Printf("event: %s (step=%d pump=%s remaining=%d)", event.Type, event.Step, event.Pump, event.Remaining)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't stop watering on publish failure
				}
			}

			state := ctl.State()

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(state, ctl.Timing())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if hbData := hb.Check(t, heartbeat, state.Counts); hbData != nil {
				log.Printf("heartbeat: uptime=%v presses=%d checks=%d dry=%d pump_runs=%d",
					hbData.Uptime, hbData.Counts.Presses, hbData.Counts.Evaluations,
					hbData.Counts.DryReadings, hbData.Counts.PumpRuns)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
					Retained:  true,
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// writeOutputs drives both outputs, attempting the pump even if the clock fails.
func writeOutputs(w gpio.Writer, clock, pump logic.Level) error {
	clockErr := w.WriteClock(clock)
	pumpErr := w.WritePump(pump)
	if pumpErr != nil {
		return fmt.Errorf("pump: %w", pumpErr)
	}
	if clockErr != nil {
		return fmt.Errorf("clock: %w", clockErr)
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func buttonString(l logic.Level) string {
	if l == logic.Low {
		return "PRESSED"
	}
	return "RELEASED"
}

func soilString(l logic.Level) string {
	if l == logic.High {
		return "DRY"
	}
	return "WET"
}
