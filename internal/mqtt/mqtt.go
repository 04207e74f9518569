// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Topic is the MQTT topic for controller events.
const Topic = "garden/waterer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "garden/waterer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Waterer WatererPayload `json:"waterer"`
}

// WatererPayload contains the controller event details.
type WatererPayload struct {
	Timestamp      string `json:"timestamp"`
	Event          string `json:"event"`
	Tick           uint16 `json:"tick"`
	Step           uint8  `json:"step"`
	Pump           string `json:"pump"`
	RemainingTicks uint16 `json:"remaining_ticks"`
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Waterer: WatererPayload{
			Timestamp:      event.Timestamp.UTC().Format(time.RFC3339),
			Event:          string(event.Type),
			Tick:           event.Tick,
			Step:           event.Step,
			Pump:           event.Pump.String(),
			RemainingTicks: event.Remaining,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// Discard returns a Publisher that drops everything. Used when no broker is configured.
func Discard() Publisher {
	return discard{}
}

type discard struct{}

func (discard) Publish(logic.Event) error       { return nil }
func (discard) PublishSystem(SystemEvent) error { return nil }
func (discard) Close() error                    { return nil }
func (discard) IsConnected() bool               { return false }
