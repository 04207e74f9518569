package gpio

import (
	"sync"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// SimIO models a pot on a workbench: the soil dries out some time after it
// was last watered and becomes wet once the pump has run long enough.
// Press may be called from another goroutine.
type SimIO struct {
	mu  sync.Mutex
	now func() time.Time

	dryAfter time.Duration
	wetAfter time.Duration

	lastWet   time.Time
	pumpOn    bool
	pumpSince time.Time
	pumped    time.Duration

	pressUntil time.Time

	clock  logic.Level
	pulses int
}

// NewSimIO starts with freshly watered soil.
func NewSimIO(dryAfter, wetAfter time.Duration, now func() time.Time) *SimIO {
	if now == nil {
		now = time.Now
	}
	return &SimIO{
		now:      now,
		dryAfter: dryAfter,
		wetAfter: wetAfter,
		lastWet:  now(),
	}
}

// Press holds the simulated button down for d.
func (s *SimIO) Press(d time.Duration) {
	s.mu.Lock()
	s.pressUntil = s.now().Add(d)
	s.mu.Unlock()
}

// ReadButton returns LOW while a simulated press is held.
func (s *SimIO) ReadButton() (logic.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return logic.Level(!s.now().Before(s.pressUntil)), nil
}

// ReadMoisture returns HIGH once the soil has dried out.
func (s *SimIO) ReadMoisture() (logic.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.absorb(s.now())
	return logic.Level(s.now().Sub(s.lastWet) >= s.dryAfter), nil
}

// WriteClock counts bargraph pulses.
func (s *SimIO) WriteClock(l logic.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == logic.High && s.clock == logic.Low {
		s.pulses++
	}
	s.clock = l
	return nil
}

// WritePump switches the simulated pump.
func (s *SimIO) WritePump(l logic.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.absorb(now)
	on := l == logic.High
	if on && !s.pumpOn {
		s.pumpSince = now
	}
	s.pumpOn = on
	return nil
}

// Pulses returns the number of clock pulses seen.
func (s *SimIO) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}

// Close switches the pump off.
func (s *SimIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.absorb(s.now())
	s.pumpOn = false
	s.clock = logic.Low
	return nil
}

// absorb credits pump time since the last call. Caller holds mu.
func (s *SimIO) absorb(now time.Time) {
	if !s.pumpOn {
		return
	}
	s.pumped += now.Sub(s.pumpSince)
	s.pumpSince = now
	if s.pumped >= s.wetAfter {
		s.lastWet = now
		s.pumped = 0
	}
}
