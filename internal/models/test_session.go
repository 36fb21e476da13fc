package models

import "time"

// State is a sequencer state name.
type State string

const (
	StateStart                  State = "START"
	StateConfigureTemperature   State = "CONFIGURE_TEMPERATURE"
	StateConfigureSupply        State = "CONFIGURE_SUPPLY"
	StateConfigureLoad          State = "CONFIGURE_LOAD"
	StateEvaluateOutput         State = "EVALUATE_OUTPUT"
	StateAdvanceTemperatureStep State = "ADVANCE_TEMPERATURE_STEP"
	StateEnd                    State = "END"
)

// TestSession is the mutable state of one run. Only the sequencer changes it.
type TestSession struct {
	ID                       string    `json:"id"`
	OperatorID               int       `json:"operator_id,omitempty"` // 0 when started from the CLI
	State                    State     `json:"state"`
	TemperatureStepIndex     int       `json:"temperature_step_index"`
	CurrentTemperatureTarget float64   `json:"current_temperature_target"` // °C
	ActualCurrent            float64   `json:"actual_current"`             // A
	MeasuredOutputPower      float64   `json:"measured_output_power"`      // W
	Stopped                  bool      `json:"stopped"`
	StartedAt                time.Time `json:"started_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// NewTestSession returns a session in the START state.
func NewTestSession(id string, now time.Time) *TestSession {
	return &TestSession{
		ID:        id,
		State:     StateStart,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// StepResult is what the sequencer reports after each output evaluation.
type StepResult struct {
	SessionID         string    `json:"session_id"`
	StepIndex         int       `json:"step_index"`
	TemperatureTarget float64   `json:"temperature_target"`
	CommandedCurrent  float64   `json:"commanded_current"`
	LoadCurrent       float64   `json:"load_current"`
	LoadVoltage       float64   `json:"load_voltage"`
	SourceCurrent     float64   `json:"source_current"`
	SourceVoltage     float64   `json:"source_voltage"`
	OutputPower       float64   `json:"output_power"`
	Satisfied         bool      `json:"satisfied"`
	MeasuredAt        time.Time `json:"measured_at"`
}
