package models

import "time"

// RunState is the persisted snapshot of the current (or last) run.
type RunState struct {
	ID             int       `json:"id"`
	SessionID      string    `json:"session_id,omitempty"`
	OperatorID     int       `json:"operator_id,omitempty"` // 0 for runs started from the CLI
	State          State     `json:"state"`
	StepIndex      int       `json:"step_index"`
	TargetTempC    float64   `json:"target_temp_c,omitempty"`    // °C
	ActualCurrentA float64   `json:"actual_current_a,omitempty"` // A
	MeasuredPowerW float64   `json:"measured_power_w,omitempty"` // W
	ErrorCodes     []string  `json:"error_codes,omitempty"`      // e.g. ["RANGE_ERROR"]
	IsRunning      bool      `json:"is_running"`
	UpdatedAt      time.Time `json:"updated_at"`
}
