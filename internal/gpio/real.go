//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/plant-waterer/internal/logic"
)

const consumer = "plant-waterer"

// RealIO drives actual hardware using the Linux GPIO character device.
type RealIO struct {
	chip     *gpiocdev.Chip
	button   *gpiocdev.Line
	moisture *gpiocdev.Line
	pump     *gpiocdev.Line
	clock    *gpiocdev.Line
}

// NewRealIO requests the four lines on the named chip. Outputs start LOW.
func NewRealIO(chipName string, pins Pins) (*RealIO, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealIO{chip: chip}

	// Pulled up internally as well as on the board.
	if r.button, err = chip.RequestLine(pins.Button, gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
		r.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pins.Button, err)
	}
	if r.moisture, err = chip.RequestLine(pins.Moisture, gpiocdev.AsInput); err != nil {
		r.Close()
		return nil, fmt.Errorf("request moisture pin %d: %w", pins.Moisture, err)
	}
	if r.pump, err = chip.RequestLine(pins.Pump, gpiocdev.AsOutput(0)); err != nil {
		r.Close()
		return nil, fmt.Errorf("request pump pin %d: %w", pins.Pump, err)
	}
	if r.clock, err = chip.RequestLine(pins.Clock, gpiocdev.AsOutput(0)); err != nil {
		r.Close()
		return nil, fmt.Errorf("request clock pin %d: %w", pins.Clock, err)
	}

	return r, nil
}

// ReadButton returns the raw button level (LOW = pressed).
func (r *RealIO) ReadButton() (logic.Level, error) {
	v, err := r.button.Value()
	if err != nil {
		return logic.High, fmt.Errorf("read button pin: %w", err)
	}
	return logic.Level(v != 0), nil
}

// ReadMoisture returns the sensor level (HIGH = dry).
func (r *RealIO) ReadMoisture() (logic.Level, error) {
	v, err := r.moisture.Value()
	if err != nil {
		return logic.Low, fmt.Errorf("read moisture pin: %w", err)
	}
	return logic.Level(v != 0), nil
}

// WriteClock sets the bargraph clock line.
func (r *RealIO) WriteClock(l logic.Level) error {
	if err := r.clock.SetValue(levelValue(l)); err != nil {
		return fmt.Errorf("write clock pin: %w", err)
	}
	return nil
}

// WritePump sets the pump relay line.
func (r *RealIO) WritePump(l logic.Level) error {
	if err := r.pump.SetValue(levelValue(l)); err != nil {
		return fmt.Errorf("write pump pin: %w", err)
	}
	return nil
}

// Close switches the pump off and returns every line to input with
// pull-down (the Pi boot default) before releasing it.
func (r *RealIO) Close() error {
	var errs []error

	for _, out := range []struct {
		name string
		line *gpiocdev.Line
	}{{"pump", r.pump}, {"clock", r.clock}} {
		if out.line == nil {
			continue
		}
		if err := out.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive %s pin low: %w", out.name, err))
		}
	}

	for _, in := range []struct {
		name string
		line *gpiocdev.Line
	}{{"button", r.button}, {"moisture", r.moisture}, {"pump", r.pump}, {"clock", r.clock}} {
		if in.line == nil {
			continue
		}
		if err := in.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", in.name, err))
		}
		if err := in.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", in.name, err))
		}
	}

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func levelValue(l logic.Level) int {
	if l {
		return 1
	}
	return 0
}
