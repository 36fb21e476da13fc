package models

import "time"

// TestConfiguration holds the parameters of a single test run.
// It is built once before the run starts and never mutated afterwards.
type TestConfiguration struct {
	TemperatureSetpoints []float64     `json:"temperature_setpoints" mapstructure:"temperature_setpoints"` // °C
	StabilizationTimeout time.Duration `json:"stabilization_timeout" mapstructure:"stabilization_timeout"`
	TemperatureTolerance float64       `json:"temperature_tolerance" mapstructure:"temperature_tolerance"` // °C, 0 = exact match
	LoadVoltage          float64       `json:"load_voltage" mapstructure:"load_voltage"`                   // V
	InitialCurrent       float64       `json:"initial_current" mapstructure:"initial_current"`             // A
	FinalCurrent         float64       `json:"final_current" mapstructure:"final_current"`                 // A
	CurrentStep          float64       `json:"current_step" mapstructure:"current_step"`                   // A per ramp retry
	PollInterval         time.Duration `json:"poll_interval" mapstructure:"poll_interval"`
	SettleDelay          time.Duration `json:"settle_delay" mapstructure:"settle_delay"`
}

// Clone returns a copy that does not share the setpoint slice.
func (c TestConfiguration) Clone() TestConfiguration {
	out := c
	out.TemperatureSetpoints = append([]float64(nil), c.TemperatureSetpoints...)
	return out
}
