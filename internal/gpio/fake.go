package gpio

import (
	"errors"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Sample represents the input levels for one tick.
type Sample struct {
	Button   logic.Level // LOW = pressed
	Moisture logic.Level // HIGH = dry
}

// Idle is a released button over wet soil.
var Idle = Sample{Button: logic.High, Moisture: logic.Low}

// FakeIO is a test double that returns scripted inputs and records outputs.
type FakeIO struct {
	// Samples contains scripted input levels.
	// Each ReadButton() consumes the next sample; ReadMoisture() returns the
	// moisture level of the sample last consumed.
	Samples []Sample

	// index tracks current position in Samples
	index   int
	current Sample

	// Clock and Pump record every level written.
	Clock []logic.Level
	Pump  []logic.Level

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by both reads.
	ReadError error

	// WriteError, if set, will be returned by both writes.
	WriteError error
}

// NewFakeIO creates a FakeIO with the given samples.
func NewFakeIO(samples []Sample) *FakeIO {
	return &FakeIO{Samples: samples}
}

// ReadButton returns the next scripted button level.
// If samples are exhausted, the last sample repeats.
func (f *FakeIO) ReadButton() (logic.Level, error) {
	if f.ReadError != nil {
		return logic.High, f.ReadError
	}
	if len(f.Samples) == 0 {
		return logic.High, errors.New("no samples configured")
	}

	f.current = f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return f.current.Button, nil
}

// ReadMoisture returns the moisture level of the current sample.
func (f *FakeIO) ReadMoisture() (logic.Level, error) {
	if f.ReadError != nil {
		return logic.Low, f.ReadError
	}
	if len(f.Samples) == 0 {
		return logic.Low, errors.New("no samples configured")
	}
	return f.current.Moisture, nil
}

// WriteClock records the clock level.
func (f *FakeIO) WriteClock(l logic.Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Clock = append(f.Clock, l)
	return nil
}

// WritePump records the pump level.
func (f *FakeIO) WritePump(l logic.Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Pump = append(f.Pump, l)
	return nil
}

// Close marks the backend as closed and records the outputs going LOW.
func (f *FakeIO) Close() error {
	f.Closed = true
	f.Clock = append(f.Clock, logic.Low)
	f.Pump = append(f.Pump, logic.Low)
	return nil
}

// Reset rewinds the script and clears recorded outputs.
func (f *FakeIO) Reset() {
	f.index = 0
	f.current = Sample{}
	f.Clock = nil
	f.Pump = nil
	f.Closed = false
}

// Repeat returns n copies of s.
func Repeat(s Sample, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// PumpTicks counts HIGH levels written to the pump.
func (f *FakeIO) PumpTicks() int {
	n := 0
	for _, l := range f.Pump {
		if l == logic.High {
			n++
		}
	}
	return n
}

// ClockPulses counts rising edges written to the clock.
func (f *FakeIO) ClockPulses() int {
	prev := logic.Low
	n := 0
	for _, l := range f.Clock {
		if l == logic.High && prev == logic.Low {
			n++
		}
		prev = l
	}
	return n
}
