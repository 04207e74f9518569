package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/plant-waterer/internal/gpio"
	"github.com/sweeney/plant-waterer/internal/logic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 20*time.Millisecond, cfg.Timing.Tick)
	assert.Equal(t, 3, cfg.Timing.DebounceTicks)
	assert.Equal(t, 60*time.Second, cfg.Timing.CheckInterval)
	assert.Equal(t, 5*time.Second, cfg.Timing.StepDuration)
	assert.Equal(t, 10, cfg.Timing.MaxStep)
	assert.Equal(t, BackendGPIO, cfg.IO.Backend)
	assert.Equal(t, "gpiochip0", cfg.IO.Chip)
	assert.Equal(t, gpio.DefaultPins, gpio.Pins(cfg.IO.Pins))
	assert.Equal(t, 115200, cfg.IO.Serial.BaudRate)
	assert.Equal(t, 15*time.Minute, cfg.MQTT.Heartbeat)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultTimingMatchesLogic(t *testing.T) {
	tm, err := Default().Timing.Logic()
	require.NoError(t, err)
	assert.Equal(t, logic.DefaultTiming(), tm)
	assert.Equal(t, uint16(3000), tm.CheckIntervalTicks)
	assert.Equal(t, uint16(250), tm.StepTicks)
	assert.Equal(t, uint16(2500), tm.RunTicks(tm.MaxStep))
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
timing:
  tick: 10ms
  check_interval: 30s
  step_duration: 2s
  max_step: 5

io:
  backend: serial
  serial:
    port: /dev/ttyUSB1

mqtt:
  broker: tcp://broker.local:1883
  heartbeat: 1m

http:
  addr: ":8080"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.Timing.Tick)
	assert.Equal(t, 30*time.Second, cfg.Timing.CheckInterval)
	assert.Equal(t, BackendSerial, cfg.IO.Backend)
	assert.Equal(t, "/dev/ttyUSB1", cfg.IO.Serial.Port)
	assert.Equal(t, 115200, cfg.IO.Serial.BaudRate, "unset fields keep defaults")
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, time.Minute, cfg.MQTT.Heartbeat)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	tm, err := cfg.Timing.Logic()
	require.NoError(t, err)
	assert.Equal(t, uint16(3000), tm.CheckIntervalTicks)
	assert.Equal(t, uint16(200), tm.StepTicks)
	assert.Equal(t, uint8(5), tm.MaxStep)
}

func TestLoad_DisableBrokerAndHTTP(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: ""
http:
  addr: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Empty(t, cfg.HTTP.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "timing: [not, a, map")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeConfig(t, "io:\n  backend: carrier-pigeon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestTimingLogicErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TimingConfig)
		want   string
	}{
		{"zero tick", func(c *TimingConfig) { c.Tick = 0 }, "timing.tick"},
		{"sub-millisecond tick", func(c *TimingConfig) { c.Tick = 500 * time.Microsecond }, "timing.tick"},
		{"fractional millisecond tick", func(c *TimingConfig) { c.Tick = 1500 * time.Microsecond }, "timing.tick"},
		{"interval not a multiple", func(c *TimingConfig) { c.CheckInterval = 60*time.Second + 5*time.Millisecond }, "timing.check_interval"},
		{"step not a multiple", func(c *TimingConfig) { c.StepDuration = 5*time.Second + time.Millisecond }, "timing.step_duration"},
		{"interval too long", func(c *TimingConfig) { c.CheckInterval = time.Hour }, "timing.check_interval"},
		{"max step negative", func(c *TimingConfig) { c.MaxStep = -1 }, "timing.max_step"},
		{"longest run overflows", func(c *TimingConfig) {
			c.StepDuration = 10 * time.Second
			c.MaxStep = 200
		}, "longest run"},
		{"debounce out of range", func(c *TimingConfig) { c.DebounceTicks = 300 }, "timing.debounce_ticks"},
		{"pulse low zero", func(c *TimingConfig) { c.PulseLowTicks = 0 }, "timing.pulse_low_ticks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := Default().Timing
			tt.modify(&tc)
			_, err := tc.Logic()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
