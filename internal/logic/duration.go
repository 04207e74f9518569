package logic

// Duration is the selected pump run length in steps.
type Duration struct {
	Step uint8
}

// NewDuration returns the power-on setting: one step.
func NewDuration() Duration {
	return Duration{Step: 1}
}

// Advance moves to the next step, wrapping from max back to 1.
func (d *Duration) Advance(max uint8) uint8 {
	if d.Step >= max {
		d.Step = 1
	} else {
		d.Step++
	}
	return d.Step
}
