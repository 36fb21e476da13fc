package models

import "time"

// Run event types.
const (
	EventStart       = "START"
	EventStop        = "STOP"
	EventStateChange = "STATE_CHANGE"
	EventError       = "ERROR"
	EventCancel      = "CANCEL"
	EventTelemetry   = "TELEMETRY"
)

// RunEvent is a single log entry of the current run.
type RunEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | STATE_CHANGE | ERROR | CANCEL | TELEMETRY
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
