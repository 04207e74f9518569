package logic

// Pump is the pump state machine.
type Pump struct {
	Phase     PumpPhase
	Remaining uint16
}

// Evaluate handles an evaluate tick. It starts a run of runTicks only when
// the soil is dry and the pump is idle, and reports whether it did.
// A run already in progress is never restarted or extended.
func (p *Pump) Evaluate(dry bool, runTicks uint16) bool {
	if !dry || p.Phase == PumpRunning || runTicks == 0 {
		return false
	}
	p.Phase = PumpRunning
	p.Remaining = runTicks
	return true
}

// Countdown consumes one tick of a run and reports whether the run ended.
func (p *Pump) Countdown() bool {
	if p.Phase != PumpRunning {
		return false
	}
	if p.Remaining > 0 {
		p.Remaining--
	}
	if p.Remaining == 0 {
		p.Phase = PumpIdle
		return true
	}
	return false
}

// Output returns the pump relay level.
func (p *Pump) Output() Level {
	return Level(p.Phase == PumpRunning)
}
