package gpio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// DefaultBaudRate is the expander's line speed.
const DefaultBaudRate = 115200

// serialReadTimeout bounds one query; it must stay well below the tick.
const serialReadTimeout = 10 * time.Millisecond

// maxLine is the longest reply accepted from the expander.
const maxLine = 16

var (
	errTimeout = errors.New("serial: read timeout")
	errNoReply = errors.New("serial: no valid reply to the last query")
)

// expanderPort is the part of serial.Port the expander uses.
type expanderPort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// SerialIO talks to a microcontroller I/O expander over a serial line.
//
// Protocol (one line per message, '\n' terminated):
//
//	host -> "?"        expander -> "B<0|1>M<0|1>"   raw button and moisture
//	host -> "C<0|1>P<0|1>"                          set clock and pump
type SerialIO struct {
	port expanderPort

	// moisture from the most recent query; one query serves a whole tick.
	// valid is false until a query succeeds and after any failed query.
	moisture logic.Level
	valid    bool

	clock, pump logic.Level
	sent        bool
}

// OpenSerial opens the expander on the named port.
func OpenSerial(name string, baudRate int) (*SerialIO, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	s := newSerialIO(port)
	// Force both outputs to a known state.
	if err := s.flush(); err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

func newSerialIO(port expanderPort) *SerialIO {
	return &SerialIO{port: port}
}

// ReadButton queries the expander and returns the raw button level.
// The moisture level from the same reply is kept for ReadMoisture.
// Input left over from an earlier query, such as a reply that arrived
// after its timeout, is discarded first.
func (s *SerialIO) ReadButton() (logic.Level, error) {
	s.valid = false
	if err := s.port.ResetInputBuffer(); err != nil {
		return logic.High, fmt.Errorf("discard stale input: %w", err)
	}
	if _, err := s.port.Write([]byte("?\n")); err != nil {
		return logic.High, fmt.Errorf("send query: %w", err)
	}

	line, err := s.readLine()
	if err != nil {
		return logic.High, fmt.Errorf("read reply: %w", err)
	}

	button, moisture, err := parseInputs(line)
	if err != nil {
		return logic.High, err
	}
	s.moisture, s.valid = moisture, true
	return button, nil
}

// ReadMoisture returns the moisture level from the last query, or wet and
// an error if that query failed.
func (s *SerialIO) ReadMoisture() (logic.Level, error) {
	if !s.valid {
		return logic.Low, errNoReply
	}
	return s.moisture, nil
}

// WriteClock sets the clock output.
func (s *SerialIO) WriteClock(l logic.Level) error {
	if s.sent && s.clock == l {
		return nil
	}
	s.clock = l
	return s.flush()
}

// WritePump sets the pump output.
func (s *SerialIO) WritePump(l logic.Level) error {
	if s.sent && s.pump == l {
		return nil
	}
	s.pump = l
	return s.flush()
}

// Close drives both outputs LOW and closes the port.
func (s *SerialIO) Close() error {
	s.clock, s.pump = logic.Low, logic.Low
	var errs []error
	if err := s.flush(); err != nil {
		errs = append(errs, err)
	}
	if err := s.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close serial port: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (s *SerialIO) flush() error {
	cmd := []byte{'C', digit(s.clock), 'P', digit(s.pump), '\n'}
	if _, err := s.port.Write(cmd); err != nil {
		s.sent = false
		return fmt.Errorf("send outputs: %w", err)
	}
	s.sent = true
	return nil
}

// readLine reads up to '\n'. A read that returns no data is a timeout.
func (s *SerialIO) readLine() (string, error) {
	var buf [maxLine]byte
	var one [1]byte
	n := 0
	for {
		m, err := s.port.Read(one[:])
		if err != nil {
			return "", err
		}
		if m == 0 {
			return "", errTimeout
		}
		switch c := one[0]; c {
		case '\r':
		case '\n':
			return string(buf[:n]), nil
		default:
			if n == len(buf) {
				return "", fmt.Errorf("serial: line longer than %d bytes", maxLine)
			}
			buf[n] = c
			n++
		}
	}
}

func parseInputs(line string) (button, moisture logic.Level, err error) {
	if len(line) != 4 || line[0] != 'B' || line[2] != 'M' {
		return logic.High, logic.Low, fmt.Errorf("serial: malformed reply %q", line)
	}
	if button, err = parseDigit(line[1]); err != nil {
		return logic.High, logic.Low, fmt.Errorf("serial: button: %w", err)
	}
	if moisture, err = parseDigit(line[3]); err != nil {
		return logic.High, logic.Low, fmt.Errorf("serial: moisture: %w", err)
	}
	return button, moisture, nil
}

func parseDigit(c byte) (logic.Level, error) {
	switch c {
	case '0':
		return logic.Low, nil
	case '1':
		return logic.High, nil
	}
	return logic.Low, fmt.Errorf("invalid level %q", c)
}

func digit(l logic.Level) byte {
	if l {
		return '1'
	}
	return '0'
}
