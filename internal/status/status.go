// Package status provides a thread-safe status tracker for the plant-waterer daemon.
// The control loop writes to it once per tick; HTTP handlers and heartbeats read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// NetworkInfo contains network state as reported by the host.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickPeriod      time.Duration
	TickMs          int64
	CheckIntervalMs int64
	StepMs          int64
	MaxStep         int
	HeartbeatMs     int64
	Backend         string
	Broker          string
	HTTPAddr        string
}

// ConfigFromTiming fills the timing fields of a display Config.
func ConfigFromTiming(t logic.Timing) Config {
	return Config{
		TickPeriod:      t.TickPeriod,
		TickMs:          t.TickPeriod.Milliseconds(),
		CheckIntervalMs: (t.TickPeriod * time.Duration(t.CheckIntervalTicks)).Milliseconds(),
		StepMs:          (t.TickPeriod * time.Duration(t.StepTicks)).Milliseconds(),
		MaxStep:         int(t.MaxStep),
	}
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Tick           uint16
	Step           uint8
	Pump           logic.PumpPhase
	RemainingTicks uint16
	NextCheckTicks uint16
	Moisture       logic.Level // last sample; meaningful only when Evaluated
	Evaluated      bool
	Counts         logic.EventCounts
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Network        *NetworkInfo
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ticksToDuration converts a tick count using the configured tick period.
func (s Snapshot) ticksToDuration(ticks uint16) time.Duration {
	return time.Duration(ticks) * s.Config.TickPeriod
}

// PumpTime is the total time the pump has run.
func (s Snapshot) PumpTime() time.Duration {
	return time.Duration(s.Counts.PumpTicks) * s.Config.TickPeriod
}

// RunDuration is the pump run length selected by the current step.
func (s Snapshot) RunDuration() time.Duration {
	return time.Duration(s.Step) * time.Duration(s.Config.StepMs) * time.Millisecond
}

// PumpRemaining is the time left on the current run, zero when idle.
func (s Snapshot) PumpRemaining() time.Duration {
	return s.ticksToDuration(s.RemainingTicks)
}

// NextCheck is the time until the next moisture sample.
func (s Snapshot) NextCheck() time.Duration {
	return s.ticksToDuration(s.NextCheckTicks)
}

// Soil returns "DRY", "WET" or "UNKNOWN" before the first sample.
func (s Snapshot) Soil() string {
	if !s.Evaluated {
		return "UNKNOWN"
	}
	if s.Moisture == logic.High {
		return "DRY"
	}
	return "WET"
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
			Step:      1,
			Config:    cfg,
		},
	}
}

// Update copies the controller state into the tracker.
// Called from runLoop on every tick.
func (t *Tracker) Update(s logic.State, timing logic.Timing) {
	next := s.Scheduler.Remaining(timing.CheckIntervalTicks)

	t.mu.Lock()
	t.snap.Tick = s.Tick
	t.snap.Step = s.Duration.Step
	t.snap.Pump = s.Pump.Phase
	t.snap.RemainingTicks = s.Pump.Remaining
	t.snap.NextCheckTicks = next
	t.snap.Moisture = s.LastMoisture
	t.snap.Evaluated = s.Evaluated
	t.snap.Counts = s.Counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
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
