package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/plant-waterer/internal/logic"
)

func TestFakeIORead(t *testing.T) {
	samples := []Sample{
		{Button: logic.High, Moisture: logic.Low},
		{Button: logic.Low, Moisture: logic.High},
		{Button: logic.High, Moisture: logic.High},
	}

	f := NewFakeIO(samples)

	for i, want := range append(samples, samples[2]) {
		b, err := f.ReadButton()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		m, err := f.ReadMoisture()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if b != want.Button || m != want.Moisture {
			t.Errorf("sample %d: expected (%s, %s), got (%s, %s)", i, want.Button, want.Moisture, b, m)
		}
	}
}

func TestFakeIOMoistureDoesNotAdvance(t *testing.T) {
	f := NewFakeIO([]Sample{
		{Button: logic.High, Moisture: logic.High},
		{Button: logic.High, Moisture: logic.Low},
	})

	f.ReadButton()
	f.ReadMoisture()
	m, _ := f.ReadMoisture()
	if m != logic.High {
		t.Errorf("second moisture read should not advance the script, got %s", m)
	}
}

func TestFakeIONoSamples(t *testing.T) {
	f := NewFakeIO(nil)

	if _, err := f.ReadButton(); err == nil {
		t.Error("expected error with no samples")
	}
	if _, err := f.ReadMoisture(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeIOErrors(t *testing.T) {
	f := NewFakeIO([]Sample{Idle})
	f.ReadError = errors.New("simulated read error")
	f.WriteError = errors.New("simulated write error")

	if _, err := f.ReadButton(); err == nil || err.Error() != "simulated read error" {
		t.Errorf("unexpected error: %v", err)
	}
	if err := f.WritePump(logic.High); err == nil {
		t.Error("expected write error")
	}
	if len(f.Pump) != 0 {
		t.Error("failed write should not be recorded")
	}
}

func TestFakeIOWritesAndClose(t *testing.T) {
	f := NewFakeIO([]Sample{Idle})

	for _, l := range []logic.Level{logic.High, logic.Low, logic.High, logic.High, logic.Low} {
		f.WriteClock(l)
		f.WritePump(l)
	}
	if got := f.ClockPulses(); got != 2 {
		t.Errorf("expected 2 clock pulses, got %d", got)
	}
	if got := f.PumpTicks(); got != 3 {
		t.Errorf("expected 3 pump ticks, got %d", got)
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.Pump[len(f.Pump)-1] != logic.Low {
		t.Error("Close should leave the pump LOW")
	}
}

func TestFakeIOReset(t *testing.T) {
	f := NewFakeIO([]Sample{
		{Button: logic.Low, Moisture: logic.Low},
		{Button: logic.High, Moisture: logic.Low},
	})

	f.ReadButton()
	f.WritePump(logic.High)
	f.Reset()

	b, _ := f.ReadButton()
	if b != logic.Low {
		t.Errorf("after reset: expected first sample again, got %s", b)
	}
	if len(f.Pump) != 0 {
		t.Error("reset should clear recorded outputs")
	}
}

func TestSamplerFallbacks(t *testing.T) {
	f := NewFakeIO([]Sample{{Button: logic.Low, Moisture: logic.High}})
	s := NewSampler(f)

	if s.Button() != logic.Low || s.Moisture() != logic.High {
		t.Fatal("sampler should pass levels through")
	}

	f.ReadError = errors.New("bus fault")
	if s.Button() != logic.High {
		t.Error("failed button read should look released")
	}
	if s.Moisture() != logic.Low {
		t.Error("failed moisture read should look wet")
	}
	if s.Errors() != 2 {
		t.Errorf("expected 2 errors, got %d", s.Errors())
	}
}
