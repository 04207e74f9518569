package logic

import "time"

// Sampler supplies logical input levels to the control loop.
// Moisture is only called on evaluate ticks.
type Sampler interface {
	Button() Level
	Moisture() Level
}

// State is the complete mutable state of the device.
type State struct {
	Tick         uint16
	Button       Button
	Duration     Duration
	Bargraph     Bargraph
	Scheduler    Scheduler
	Pump         Pump
	LastMoisture Level
	Evaluated    bool // at least one moisture sample taken
	Counts       EventCounts
}

// NewState returns the power-on state. The bargraph is primed to show the
// default step.
func NewState() State {
	s := State{
		Button:   NewButton(),
		Duration: NewDuration(),
	}
	s.Bargraph.Start(s.Duration.Step)
	return s
}

// Output is the result of one tick: the two output levels plus flags that
// are true only for the tick on which the thing happened.
type Output struct {
	Tick      uint16
	Clock     Level
	Pump      Level
	Step      uint8
	Remaining uint16

	Pressed     bool
	Evaluated   bool
	Dry         bool
	PumpStarted bool
	PumpStopped bool
	IgnoredDry  bool
}

// Step runs one tick of the control loop against s.
func Step(s *State, t *Timing, in Sampler) Output {
	s.Tick++
	out := Output{Tick: s.Tick}

	// 1, 2: button and duration
	if s.Button.Sample(in.Button(), t.DebounceTicks) {
		s.Duration.Advance(t.MaxStep)
		s.Bargraph.Start(s.Duration.Step)
		s.Counts.Presses++
		out.Pressed = true
	}

	// 3: bargraph
	out.Clock = s.Bargraph.Step(*t)

	// 4, 5: moisture check
	if s.Scheduler.Step(t.CheckIntervalTicks) {
		out.Evaluated = true
		out.Dry = in.Moisture() == High
		s.LastMoisture = Level(out.Dry)
		s.Evaluated = true
		s.Counts.Evaluations++
		if out.Dry {
			s.Counts.DryReadings++
		}
		if s.Pump.Evaluate(out.Dry, t.RunTicks(s.Duration.Step)) {
			out.PumpStarted = true
			s.Counts.PumpRuns++
		} else if out.Dry && s.Pump.Phase == PumpRunning {
			out.IgnoredDry = true
			s.Counts.IgnoredDry++
		}
	}

	// 6: countdown, not on the tick the run started
	if !out.PumpStarted && s.Pump.Countdown() {
		out.PumpStopped = true
	}

	// 7: outputs
	out.Pump = s.Pump.Output()
	if out.Pump == High {
		s.Counts.PumpTicks++
	}
	out.Step = s.Duration.Step
	out.Remaining = s.Pump.Remaining
	return out
}

// Controller bundles the timing and state of one device.
type Controller struct {
	timing Timing
	state  State
}

// NewController creates a controller in its power-on state.
func NewController(t Timing) *Controller {
	return &Controller{timing: t, state: NewState()}
}

// Tick runs one iteration of the control loop.
func (c *Controller) Tick(in Sampler) Output {
	return Step(&c.state, &c.timing, in)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Timing returns the controller's timing.
func (c *Controller) Timing() Timing {
	return c.timing
}

// Events converts the one-tick flags of o into publishable events.
func (o Output) Events(now time.Time) []Event {
	var events []Event
	add := func(typ EventType) {
		phase := PumpIdle
		if o.Pump == High {
			phase = PumpRunning
		}
		events = append(events, Event{
			Timestamp: now,
			Tick:      o.Tick,
			Type:      typ,
			Step:      o.Step,
			Pump:      phase,
			Remaining: o.Remaining,
		})
	}

	if o.Pressed {
		add(EventDurationChanged)
	}
	if o.Evaluated {
		if o.Dry {
			add(EventMoistureDry)
		} else {
			add(EventMoistureWet)
		}
	}
	if o.PumpStarted {
		add(EventPumpOn)
	}
	if o.IgnoredDry {
		add(EventDryIgnored)
	}
	if o.PumpStopped {
		add(EventPumpOff)
	}
	return events
}
