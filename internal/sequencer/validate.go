package sequencer

import (
	"errors"
	"math"

	"load_transient/internal/models"
)

// Safety envelope.
const (
	MinTemperatureC = 0.0
	MaxTemperatureC = 60.0

	MinStabilizationSec = 0.0
	MaxStabilizationSec = 3600.0

	MinInitialCurrentA = 0.0
	MaxInitialCurrentA = 5.0

	MinFinalCurrentA = 1.0
	MaxFinalCurrentA = 10.0
)

func checkRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return &RangeError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// Validate checks cfg against the safety envelope and returns every violation
// joined together; errors.As finds the first *RangeError.
func Validate(cfg models.TestConfiguration) error {
	var errs []error

	if len(cfg.TemperatureSetpoints) == 0 {
		errs = append(errs, &RangeError{Field: "temperature_setpoints length", Value: 0, Min: 1, Max: math.Inf(1)})
	}
	for _, sp := range cfg.TemperatureSetpoints {
		if err := checkRange("temperature_setpoint", sp, MinTemperatureC, MaxTemperatureC); err != nil {
			errs = append(errs, err)
		}
	}
	if err := checkRange("stabilization_timeout_s", cfg.StabilizationTimeout.Seconds(), MinStabilizationSec, MaxStabilizationSec); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange("initial_current", cfg.InitialCurrent, MinInitialCurrentA, MaxInitialCurrentA); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange("final_current", cfg.FinalCurrent, MinFinalCurrentA, MaxFinalCurrentA); err != nil {
		errs = append(errs, err)
	}
	if !(cfg.FinalCurrent > cfg.InitialCurrent) {
		errs = append(errs, &RangeError{Field: "final_current", Value: cfg.FinalCurrent, Min: cfg.InitialCurrent, Max: MaxFinalCurrentA})
	}
	if !(cfg.CurrentStep > 0) {
		errs = append(errs, &RangeError{Field: "current_step", Value: cfg.CurrentStep, Min: math.SmallestNonzeroFloat64, Max: MaxFinalCurrentA})
	}
	if err := checkRange("temperature_tolerance", cfg.TemperatureTolerance, 0, MaxTemperatureC); err != nil {
		errs = append(errs, err)
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, &RangeError{Field: "poll_interval_s", Value: cfg.PollInterval.Seconds(), Min: math.SmallestNonzeroFloat64, Max: MaxStabilizationSec})
	}
	if cfg.SettleDelay < 0 {
		errs = append(errs, &RangeError{Field: "settle_delay_s", Value: cfg.SettleDelay.Seconds(), Min: 0, Max: MaxStabilizationSec})
	}

	return errors.Join(errs...)
}
