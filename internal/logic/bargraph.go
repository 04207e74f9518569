package logic

// Bargraph clocks the external decade counter with a train of pulses.
type Bargraph struct {
	pending uint8 // pulses not yet started
	ticks   uint8 // ticks left in the current phase
	high    bool
}

// Start aborts any train in progress and queues count pulses.
// A pulse that is high at the time of the call is cut short; a full low
// phase follows it before the first new pulse.
func (b *Bargraph) Start(count uint8) {
	b.pending = count
	if b.high {
		b.ticks = 0
	}
}

// Step advances the train by one tick and returns the clock level.
func (b *Bargraph) Step(t Timing) Level {
	if b.ticks == 0 {
		switch {
		case b.high:
			b.high = false
			b.ticks = t.PulseLowTicks
		case b.pending > 0:
			b.pending--
			b.high = true
			b.ticks = t.PulseHighTicks
		default:
			return Low
		}
	}
	if b.ticks > 0 {
		b.ticks--
	}
	return Level(b.high)
}

// Active reports whether pulses or a trailing low phase remain.
func (b *Bargraph) Active() bool {
	return b.pending > 0 || b.high || b.ticks > 0
}
