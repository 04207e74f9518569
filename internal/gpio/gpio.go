// Package gpio provides the device's logical I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device, the serial
// implementation talks to an I/O expander, the sim implementation models a
// plant pot, and the fake implementation allows testing without hardware.
//
// Levels are electrical: the button reads LOW while pressed and the moisture
// sensor reads HIGH when the soil is dry.
package gpio

import (
	"log"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Reader reads the device inputs.
type Reader interface {
	ReadButton() (logic.Level, error)
	ReadMoisture() (logic.Level, error)
}

// Writer drives the device outputs.
type Writer interface {
	WriteClock(logic.Level) error
	WritePump(logic.Level) error
}

// IO is a complete backend.
type IO interface {
	Reader
	Writer

	// Close drives the outputs LOW and releases resources.
	Close() error
}

// Pins holds line offsets on a GPIO chip.
type Pins struct {
	Button   int
	Moisture int
	Pump     int
	Clock    int
}

// Default pin assignment (BCM numbering).
var DefaultPins = Pins{
	Button:   17,
	Moisture: 27,
	Pump:     22,
	Clock:    23,
}

// Sampler adapts a Reader to logic.Sampler. A failed read is logged and
// replaced by the level that cannot cause an action: button released,
// soil wet.
type Sampler struct {
	r      Reader
	errors int
}

// NewSampler wraps r.
func NewSampler(r Reader) *Sampler {
	return &Sampler{r: r}
}

// Button implements logic.Sampler.
func (s *Sampler) Button() logic.Level {
	l, err := s.r.ReadButton()
	if err != nil {
		s.errors++
		log.Printf("gpio read error: button: %v", err)
		return logic.High
	}
	return l
}

// Moisture implements logic.Sampler.
func (s *Sampler) Moisture() logic.Level {
	l, err := s.r.ReadMoisture()
	if err != nil {
		s.errors++
		log.Printf("gpio read error: moisture: %v", err)
		return logic.Low
	}
	return l
}

// Errors returns the number of failed reads so far.
func (s *Sampler) Errors() int {
	return s.errors
}
