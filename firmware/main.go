//go:build tinygo

//go:generate tinygo flash -target=pico

// Command firmware runs the watering controller directly on the board.
package main

import (
	"machine"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// pins reads the inputs for the controller.
type pins struct{}

func (pins) Button() logic.Level   { return logic.Level(PIN_BUTTON.Get()) }
func (pins) Moisture() logic.Level { return logic.Level(PIN_MOISTURE.Get()) }

func main() {
	PIN_CLOCK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_PUMP.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_CLOCK.Low()
	PIN_PUMP.Low()

	PIN_MOISTURE.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	timing := logic.DefaultTiming()
	state := logic.NewState()
	var in pins

	// Absolute deadlines: work done in a tick does not stretch it.
	next := time.Now()
	for {
		next = next.Add(timing.TickPeriod)

		out := logic.Step(&state, &timing, in)
		PIN_CLOCK.Set(bool(out.Clock))
		PIN_PUMP.Set(bool(out.Pump))

		if VERBOSE {
			report(out)
		}

		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		} else {
			// Overran; start counting from now.
			next = time.Now()
		}
	}
}

func report(out logic.Output) {
	switch {
	case out.Pressed:
		println("step", out.Step)
	case out.PumpStarted:
		println("dry, pump on for", out.Remaining, "ticks")
	case out.PumpStopped:
		println("pump off")
	case out.IgnoredDry:
		println("dry, pump already running")
	case out.Evaluated:
		println("wet")
	}
}
