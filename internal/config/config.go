// Package config loads the plant-waterer configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/plant-waterer/internal/gpio"
	"github.com/sweeney/plant-waterer/internal/logic"
)

// Backend names accepted in io.backend.
const (
	BackendGPIO   = "gpio"
	BackendSerial = "serial"
	BackendSim    = "sim"
)

// Config represents the application configuration.
type Config struct {
	Timing TimingConfig `yaml:"timing"`
	IO     IOConfig     `yaml:"io"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Sim    SimConfig    `yaml:"sim"`
}

// TimingConfig holds the control loop timing. Durations must be whole
// multiples of Tick.
type TimingConfig struct {
	Tick           time.Duration `yaml:"tick"`
	DebounceTicks  int           `yaml:"debounce_ticks"`
	CheckInterval  time.Duration `yaml:"check_interval"`
	StepDuration   time.Duration `yaml:"step_duration"`
	MaxStep        int           `yaml:"max_step"`
	PulseHighTicks int           `yaml:"pulse_high_ticks"`
	PulseLowTicks  int           `yaml:"pulse_low_ticks"`
}

// IOConfig selects and configures the I/O backend.
type IOConfig struct {
	Backend string       `yaml:"backend"`
	Chip    string       `yaml:"chip"`
	Pins    PinConfig    `yaml:"pins"`
	Serial  SerialConfig `yaml:"serial"`
}

// PinConfig holds line offsets on the GPIO chip (BCM numbering on a Pi).
type PinConfig struct {
	Button   int `yaml:"button"`
	Moisture int `yaml:"moisture"`
	Pump     int `yaml:"pump"`
	Clock    int `yaml:"clock"`
}

// SerialConfig configures the serial I/O expander.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// MQTTConfig configures telemetry publishing.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"` // empty disables MQTT
	ClientID  string        `yaml:"client_id"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	Buffer    int           `yaml:"buffer"` // messages kept while disconnected
}

// HTTPConfig configures the status page.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables HTTP
}

// SimConfig configures the simulated plant.
type SimConfig struct {
	DryAfter time.Duration `yaml:"dry_after"` // soil goes dry this long after watering
	WetAfter time.Duration `yaml:"wet_after"` // pump time needed to wet the soil
}

// Default returns a default configuration with the reference hardware timing.
func Default() *Config {
	return &Config{
		Timing: TimingConfig{
			Tick:           logic.DefaultTickPeriod,
			DebounceTicks:  logic.DefaultDebounceTicks,
			CheckInterval:  60 * time.Second,
			StepDuration:   5 * time.Second,
			MaxStep:        logic.DefaultMaxStep,
			PulseHighTicks: 1,
			PulseLowTicks:  1,
		},
		IO: IOConfig{
			Backend: BackendGPIO,
			Chip:    "gpiochip0",
			Pins: PinConfig{
				Button:   gpio.DefaultPins.Button,
				Moisture: gpio.DefaultPins.Moisture,
				Pump:     gpio.DefaultPins.Pump,
				Clock:    gpio.DefaultPins.Clock,
			},
			Serial: SerialConfig{
				Port:     "/dev/ttyACM0",
				BaudRate: gpio.DefaultBaudRate,
			},
		},
		MQTT: MQTTConfig{
			Broker:    "tcp://192.168.1.200:1883",
			ClientID:  "plant-waterer",
			Heartbeat: 15 * time.Minute,
			Buffer:    100,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		Sim: SimConfig{
			DryAfter: 3 * time.Minute,
			WetAfter: 10 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. Broker and HTTP address may be
// set to "" in the file to disable them.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// ensureDefaults fills zero values left by a partial file.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Timing.Tick == 0 {
		c.Timing.Tick = def.Timing.Tick
	}
	if c.Timing.DebounceTicks == 0 {
		c.Timing.DebounceTicks = def.Timing.DebounceTicks
	}
	if c.Timing.CheckInterval == 0 {
		c.Timing.CheckInterval = def.Timing.CheckInterval
	}
	if c.Timing.StepDuration == 0 {
		c.Timing.StepDuration = def.Timing.StepDuration
	}
	if c.Timing.MaxStep == 0 {
		c.Timing.MaxStep = def.Timing.MaxStep
	}
	if c.Timing.PulseHighTicks == 0 {
		c.Timing.PulseHighTicks = def.Timing.PulseHighTicks
	}
	if c.Timing.PulseLowTicks == 0 {
		c.Timing.PulseLowTicks = def.Timing.PulseLowTicks
	}

	if c.IO.Backend == "" {
		c.IO.Backend = def.IO.Backend
	}
	if c.IO.Chip == "" {
		c.IO.Chip = def.IO.Chip
	}
	if c.IO.Serial.Port == "" {
		c.IO.Serial.Port = def.IO.Serial.Port
	}
	if c.IO.Serial.BaudRate == 0 {
		c.IO.Serial.BaudRate = def.IO.Serial.BaudRate
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Buffer == 0 {
		c.MQTT.Buffer = def.MQTT.Buffer
	}

	if c.Sim.DryAfter == 0 {
		c.Sim.DryAfter = def.Sim.DryAfter
	}
	if c.Sim.WetAfter == 0 {
		c.Sim.WetAfter = def.Sim.WetAfter
	}
}

// Validate checks that the configuration can drive the controller.
func (c *Config) Validate() error {
	if _, err := c.Timing.Logic(); err != nil {
		return err
	}
	switch c.IO.Backend {
	case BackendGPIO, BackendSerial, BackendSim:
	default:
		return fmt.Errorf("io.backend: unknown backend %q", c.IO.Backend)
	}
	if c.MQTT.Buffer < 0 {
		return errors.New("mqtt.buffer: must not be negative")
	}
	return nil
}

// Logic converts the configured durations into controller ticks.
func (t TimingConfig) Logic() (logic.Timing, error) {
	if t.Tick < time.Millisecond || t.Tick%time.Millisecond != 0 {
		return logic.Timing{}, fmt.Errorf("timing.tick: %v must be a whole number of milliseconds", t.Tick)
	}

	interval, err := ticks("timing.check_interval", t.CheckInterval, t.Tick)
	if err != nil {
		return logic.Timing{}, err
	}
	step, err := ticks("timing.step_duration", t.StepDuration, t.Tick)
	if err != nil {
		return logic.Timing{}, err
	}

	if t.MaxStep < 1 || t.MaxStep > math.MaxUint8 {
		return logic.Timing{}, fmt.Errorf("timing.max_step: %d out of range 1..%d", t.MaxStep, math.MaxUint8)
	}
	if uint32(step)*uint32(t.MaxStep) > math.MaxUint16 {
		return logic.Timing{}, fmt.Errorf("timing: longest run %d ticks exceeds %d", uint32(step)*uint32(t.MaxStep), math.MaxUint16)
	}
	for name, v := range map[string]int{
		"timing.debounce_ticks":   t.DebounceTicks,
		"timing.pulse_high_ticks": t.PulseHighTicks,
		"timing.pulse_low_ticks":  t.PulseLowTicks,
	} {
		if v < 1 || v > math.MaxUint8 {
			return logic.Timing{}, fmt.Errorf("%s: %d out of range 1..%d", name, v, math.MaxUint8)
		}
	}

	return logic.Timing{
		TickPeriod:         t.Tick,
		DebounceTicks:      uint8(t.DebounceTicks),
		CheckIntervalTicks: interval,
		StepTicks:          step,
		MaxStep:            uint8(t.MaxStep),
		PulseHighTicks:     uint8(t.PulseHighTicks),
		PulseLowTicks:      uint8(t.PulseLowTicks),
	}, nil
}

func ticks(name string, d, tick time.Duration) (uint16, error) {
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", name)
	}
	if d%tick != 0 {
		return 0, fmt.Errorf("%s: %v is not a multiple of the %v tick", name, d, tick)
	}
	n := d / tick
	if n > math.MaxUint16 {
		return 0, fmt.Errorf("%s: %d ticks exceeds %d", name, n, math.MaxUint16)
	}
	return uint16(n), nil
}
