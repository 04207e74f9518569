//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/plant-waterer/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported")

// RealIO is not available on non-Linux platforms.
type RealIO struct{}

// NewRealIO returns an error on non-Linux platforms.
func NewRealIO(chipName string, pins Pins) (*RealIO, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadButton is not implemented on non-Linux platforms.
func (r *RealIO) ReadButton() (logic.Level, error) {
	return logic.High, errUnsupported
}

// ReadMoisture is not implemented on non-Linux platforms.
func (r *RealIO) ReadMoisture() (logic.Level, error) {
	return logic.Low, errUnsupported
}

// WriteClock is not implemented on non-Linux platforms.
func (r *RealIO) WriteClock(logic.Level) error {
	return errUnsupported
}

// WritePump is not implemented on non-Linux platforms.
func (r *RealIO) WritePump(logic.Level) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealIO) Close() error {
	return nil
}
