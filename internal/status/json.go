package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Step          uint8        `json:"step"`
	RunSeconds    float64      `json:"run_seconds"`
	Pump          PumpJSON     `json:"pump"`
	Soil          string       `json:"soil"`
	NextCheckSecs float64      `json:"next_check_seconds"`
	Tick          uint16       `json:"tick"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// PumpJSON reports the pump state machine.
type PumpJSON struct {
	State            string  `json:"state"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses     int     `json:"presses"`
	Evaluations int     `json:"evaluations"`
	DryReadings int     `json:"dry_readings"`
	PumpRuns    int     `json:"pump_runs"`
	IgnoredDry  int     `json:"ignored_dry"`
	PumpSeconds float64 `json:"pump_seconds"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs          int64  `json:"tick_ms"`
	CheckIntervalMs int64  `json:"check_interval_ms"`
	StepMs          int64  `json:"step_ms"`
	MaxStep         int    `json:"max_step"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Backend         string `json:"backend"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	pumpTime := snap.PumpTime()

	return StatusInner{
		Step:       snap.Step,
		RunSeconds: snap.RunDuration().Seconds(),
		Pump: PumpJSON{
			State:            snap.Pump.String(),
			RemainingSeconds: snap.PumpRemaining().Seconds(),
		},
		Soil:          snap.Soil(),
		NextCheckSecs: snap.NextCheck().Seconds(),
		Tick:          snap.Tick,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:     snap.Counts.Presses,
			Evaluations: snap.Counts.Evaluations,
			DryReadings: snap.Counts.DryReadings,
			PumpRuns:    snap.Counts.PumpRuns,
			IgnoredDry:  snap.Counts.IgnoredDry,
			PumpSeconds: pumpTime.Seconds(),
		},
		Config: ConfigJSON{
			TickMs:          snap.Config.TickMs,
			CheckIntervalMs: snap.Config.CheckIntervalMs,
			StepMs:          snap.Config.StepMs,
			MaxStep:         snap.Config.MaxStep,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Backend:         snap.Config.Backend,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
