package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	cfg := ConfigFromTiming(logic.DefaultTiming())
	cfg.HeartbeatMs = 900000
	cfg.Backend = "sim"
	cfg.Broker = "tcp://localhost:1883"
	cfg.HTTPAddr = ":80"
	return cfg
}

func TestConfigFromTiming(t *testing.T) {
	cfg := ConfigFromTiming(logic.DefaultTiming())
	if cfg.TickMs != 20 {
		t.Errorf("TickMs: got %d, want 20", cfg.TickMs)
	}
	if cfg.CheckIntervalMs != 60000 {
		t.Errorf("CheckIntervalMs: got %d, want 60000", cfg.CheckIntervalMs)
	}
	if cfg.StepMs != 5000 {
		t.Errorf("StepMs: got %d, want 5000", cfg.StepMs)
	}
	if cfg.MaxStep != 10 {
		t.Errorf("MaxStep: got %d, want 10", cfg.MaxStep)
	}
}

func TestConfigFromTimingFractionalTick(t *testing.T) {
	timing := logic.DefaultTiming()
	timing.TickPeriod = 2500 * time.Microsecond
	timing.CheckIntervalTicks = 24000
	timing.StepTicks = 2000
	cfg := ConfigFromTiming(timing)

	if cfg.CheckIntervalMs != 60000 {
		t.Errorf("CheckIntervalMs: got %d, want 60000", cfg.CheckIntervalMs)
	}
	if cfg.StepMs != 5000 {
		t.Errorf("StepMs: got %d, want 5000", cfg.StepMs)
	}

	snap := Snapshot{
		Step:           2,
		RemainingTicks: 400,
		NextCheckTicks: 12000,
		Counts:         logic.EventCounts{PumpTicks: 4000},
		Config:         cfg,
	}
	if got := snap.PumpRemaining(); got != time.Second {
		t.Errorf("PumpRemaining: got %v, want 1s", got)
	}
	if got := snap.NextCheck(); got != 30*time.Second {
		t.Errorf("NextCheck: got %v, want 30s", got)
	}
	if got := snap.PumpTime(); got != 10*time.Second {
		t.Errorf("PumpTime: got %v, want 10s", got)
	}
	if got := snap.RunDuration(); got != 10*time.Second {
		t.Errorf("RunDuration: got %v, want 10s", got)
	}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Step != 1 {
		t.Errorf("Step: got %d, want 1", snap.Step)
	}
	if snap.Config.HTTPAddr != ":80" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":80")
	}
	if snap.Soil() != "UNKNOWN" {
		t.Errorf("Soil: got %q, want UNKNOWN", snap.Soil())
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateFromState(t *testing.T) {
	tr := NewTracker(start, testConfig())
	timing := logic.DefaultTiming()

	s := logic.NewState()
	s.Tick = 4321
	s.Duration.Step = 4
	s.Pump = logic.Pump{Phase: logic.PumpRunning, Remaining: 750}
	s.Scheduler.Count = 1000
	s.LastMoisture = logic.High
	s.Evaluated = true
	s.Counts = logic.EventCounts{Presses: 3, PumpRuns: 1}
	tr.Update(s, timing)

	snap := tr.Snapshot()
	if snap.Tick != 4321 || snap.Step != 4 {
		t.Errorf("tick/step: got %d/%d", snap.Tick, snap.Step)
	}
	if snap.Pump != logic.PumpRunning || snap.RemainingTicks != 750 {
		t.Errorf("pump: got %v/%d", snap.Pump, snap.RemainingTicks)
	}
	if snap.NextCheckTicks != 2000 {
		t.Errorf("NextCheckTicks: got %d, want 2000", snap.NextCheckTicks)
	}
	if snap.Soil() != "DRY" {
		t.Errorf("Soil: got %q, want DRY", snap.Soil())
	}
	if snap.Counts.Presses != 3 {
		t.Errorf("Counts.Presses: got %d, want 3", snap.Counts.Presses)
	}
}

func TestSnapshotDurations(t *testing.T) {
	snap := Snapshot{
		Step:           3,
		RemainingTicks: 500,
		NextCheckTicks: 1500,
		Config:         testConfig(),
	}

	if got := snap.RunDuration(); got != 15*time.Second {
		t.Errorf("RunDuration: got %v, want 15s", got)
	}
	if got := snap.PumpRemaining(); got != 10*time.Second {
		t.Errorf("PumpRemaining: got %v, want 10s", got)
	}
	if got := snap.NextCheck(); got != 30*time.Second {
		t.Errorf("NextCheck: got %v, want 30s", got)
	}
}

func TestSoil(t *testing.T) {
	tests := []struct {
		evaluated bool
		moisture  logic.Level
		want      string
	}{
		{false, logic.High, "UNKNOWN"},
		{true, logic.High, "DRY"},
		{true, logic.Low, "WET"},
	}
	for _, tt := range tests {
		snap := Snapshot{Evaluated: tt.evaluated, Moisture: tt.moisture}
		if got := snap.Soil(); got != tt.want {
			t.Errorf("Soil(%v, %v): got %q, want %q", tt.evaluated, tt.moisture, got, tt.want)
		}
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(start, Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	s := logic.NewState()
	s.Duration.Step = 2
	tr.Update(s, logic.DefaultTiming())

	snap1 := tr.Snapshot()
	s.Duration.Step = 7
	tr.Update(s, logic.DefaultTiming())

	if snap1.Step != 2 {
		t.Error("snapshot should be a copy; Step was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	snap := Snapshot{
		Tick:           120,
		Step:           2,
		Pump:           logic.PumpRunning,
		RemainingTicks: 250,
		NextCheckTicks: 2500,
		Moisture:       logic.High,
		Evaluated:      true,
		Counts:         logic.EventCounts{Presses: 1, Evaluations: 4, DryReadings: 2, PumpRuns: 2, IgnoredDry: 0, PumpTicks: 750},
		StartTime:      start,
		Now:            start.Add(15 * time.Minute),
		MQTTConnected:  true,
		Config:         testConfig(),
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Step != 2 || s.RunSeconds != 10 {
		t.Errorf("step: got %d (%vs), want 2 (10s)", s.Step, s.RunSeconds)
	}
	if s.Pump.State != "RUNNING" || s.Pump.RemainingSeconds != 5 {
		t.Errorf("pump: got %+v", s.Pump)
	}
	if s.Soil != "DRY" {
		t.Errorf("Soil: got %q, want DRY", s.Soil)
	}
	if s.NextCheckSecs != 50 {
		t.Errorf("NextCheckSecs: got %v, want 50", s.NextCheckSecs)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Counts.PumpRuns != 2 || s.Counts.PumpSeconds != 15 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if s.Config.Backend != "sim" || s.Config.CheckIntervalMs != 60000 {
		t.Errorf("Config: got %+v", s.Config)
	}
	// Event and Reason should be omitted
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected empty event/reason for web format, got %q/%q", s.Event, s.Reason)
	}
	if s.Network != nil {
		t.Error("expected no network block")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tests := []struct {
		event  string
		reason string
	}{
		{"STARTUP", ""},
		{"HEARTBEAT", ""},
		{"SHUTDOWN", "SIGTERM"},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			snap := Snapshot{StartTime: start, Now: start.Add(time.Second), Step: 1, Config: testConfig()}
			data := FormatStatusEvent(snap, tt.event, tt.reason)

			var raw map[string]interface{}
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			status := raw["status"].(map[string]interface{})
			if status["event"] != tt.event {
				t.Errorf("event: got %v, want %s", status["event"], tt.event)
			}
			_, hasReason := status["reason"]
			if hasReason != (tt.reason != "") {
				t.Errorf("reason present=%v for %q", hasReason, tt.reason)
			}
			if status["soil"] != "UNKNOWN" {
				t.Errorf("soil: got %v", status["soil"])
			}
		})
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Minute),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "Greenhouse"},
	}

	var parsed StatusJSON
	json.Unmarshal(FormatJSON(snap), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.SSID != "Greenhouse" {
		t.Errorf("Network.SSID: got %q, want Greenhouse", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	timing := logic.DefaultTiming()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := logic.NewState()
		for i := 0; i < 1000; i++ {
			s.Tick++
			tr.Update(s, timing)
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
