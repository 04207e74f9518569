// Package logic contains the pure control loop for the plant waterer.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Everything is driven by Controller.Tick; time only exists as a tick count.
package logic

import "time"

// Level is a logical signal level on one of the device's lines.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// PumpPhase is the pump controller state.
type PumpPhase uint8

const (
	PumpIdle PumpPhase = iota
	PumpRunning
)

func (p PumpPhase) String() string {
	if p == PumpRunning {
		return "RUNNING"
	}
	return "IDLE"
}

// Timing holds every tick-derived constant used by the control loop.
type Timing struct {
	// TickPeriod is informational; the core only counts ticks.
	TickPeriod time.Duration
	// DebounceTicks is the number of identical samples needed to accept a level.
	DebounceTicks uint8
	// CheckIntervalTicks is the moisture check period.
	CheckIntervalTicks uint16
	// StepTicks is the pump run time per duration step.
	StepTicks uint16
	// MaxStep is the highest duration step; steps run 1..MaxStep.
	MaxStep uint8
	// PulseHighTicks and PulseLowTicks shape one bargraph clock pulse.
	PulseHighTicks uint8
	PulseLowTicks  uint8
}

// Defaults for a 20 ms tick.
const (
	DefaultTickPeriod         = 20 * time.Millisecond
	DefaultDebounceTicks      = 3    // 60 ms
	DefaultCheckIntervalTicks = 3000 // 60 s
	DefaultStepTicks          = 250  // 5 s
	DefaultMaxStep            = 10
)

// DefaultTiming returns the timing of the reference hardware.
func DefaultTiming() Timing {
	return Timing{
		TickPeriod:         DefaultTickPeriod,
		DebounceTicks:      DefaultDebounceTicks,
		CheckIntervalTicks: DefaultCheckIntervalTicks,
		StepTicks:          DefaultStepTicks,
		MaxStep:            DefaultMaxStep,
		PulseHighTicks:     1,
		PulseLowTicks:      1,
	}
}

// RunTicks returns the pump run length for the given step.
func (t Timing) RunTicks(step uint8) uint16 {
	return uint16(step) * t.StepTicks
}

// TicksSince returns the number of ticks from then to now on a wrapping counter.
func TicksSince(now, then uint16) uint16 {
	return now - then
}

// EventType names a telemetry event derived from one tick's output.
type EventType string

const (
	EventDurationChanged EventType = "DURATION_CHANGED"
	EventMoistureWet     EventType = "MOISTURE_WET"
	EventMoistureDry     EventType = "MOISTURE_DRY"
	EventPumpOn          EventType = "PUMP_ON"
	EventPumpOff         EventType = "PUMP_OFF"
	EventDryIgnored      EventType = "DRY_IGNORED"
)

// Event is a state change to be published.
type Event struct {
	Timestamp time.Time
	Tick      uint16
	Type      EventType
	Step      uint8
	Pump      PumpPhase
	Remaining uint16
}

// EventCounts tracks how often each thing happened since startup.
type EventCounts struct {
	Presses     int
	Evaluations int
	DryReadings int
	PumpRuns    int
	IgnoredDry  int
	PumpTicks   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
