package logic

// Scheduler decides when the moisture sensor is read.
type Scheduler struct {
	Count uint16
}

// Step counts one tick and reports whether this tick is an evaluate tick.
// The counter is back at 0 as soon as it fires.
func (s *Scheduler) Step(interval uint16) bool {
	s.Count++
	if s.Count >= interval {
		s.Count = 0
		return true
	}
	return false
}

// Remaining returns the ticks left until the next evaluate tick.
func (s *Scheduler) Remaining(interval uint16) uint16 {
	if s.Count >= interval {
		return 0
	}
	return interval - s.Count
}
