package logic

// Button debounces the active-low pushbutton.
type Button struct {
	// last raw level seen
	last Level
	// consecutive samples equal to last, saturating at 255
	stable uint8
	// debounced state
	pressed bool
}

// NewButton returns a button that is released and already stable.
func NewButton() Button {
	return Button{last: High, stable: 255}
}

// Sample feeds one raw level (LOW = pressed) and reports whether this tick
// is the press edge. Releases never produce an edge.
func (b *Button) Sample(raw Level, window uint8) bool {
	if raw == b.last {
		if b.stable < 255 {
			b.stable++
		}
	} else {
		b.last = raw
		b.stable = 1
	}

	if b.stable < window {
		return false
	}

	down := raw == Low
	if down == b.pressed {
		return false
	}
	b.pressed = down
	return down
}

// Pressed returns the debounced state.
func (b *Button) Pressed() bool {
	return b.pressed
}
