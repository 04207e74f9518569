//go:build tinygo

package main

import "machine"

const (
	// Outputs
	PIN_CLOCK = machine.GP0 // bargraph counter clock
	PIN_PUMP  = machine.GP2 // pump relay, HIGH = on

	// Inputs
	PIN_MOISTURE = machine.GP1 // soil sensor, HIGH = dry
	PIN_BUTTON   = machine.GP3 // pushbutton to ground, pulled up

	// Print a status line over the USB console on every event.
	VERBOSE = true
)
