package sequencer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"load_transient/internal/instrument"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":       {nil, ""},
		"range":     {&RangeError{Field: "temperature_setpoints[0]", Value: -10, Min: 0, Max: 60}, CodeRangeError},
		"timeout":   {&StabilizationTimeoutError{Target: 45}, CodeStabilizationTimeout},
		"protocol":  {&InstrumentCommandError{Instrument: "load", Op: "measure power", Err: &instrument.ProtocolError{Command: "MEAS:FOO?"}}, CodeProtocolError},
		"canceled":  {&InstrumentCommandError{Instrument: "chamber", Op: "read temperature", Err: context.Canceled}, CodeCanceled},
		"deadline":  {fmt.Errorf("run: %w", context.DeadlineExceeded), CodeCanceled},
		"command":   {&InstrumentCommandError{Instrument: "supply", Op: "set voltage", Err: errBoom}, CodeInstrumentError},
		"exhausted": {fmt.Errorf("step 0: %w", &CurrentRampExhaustedError{FinalCurrent: 6}), CodeCurrentRampExhausted},
		"joined":    {errors.Join(&RangeError{Field: "final_current"}, errBoom), CodeRangeError},
		"other":     {errBoom, CodeInternal},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorCode(tc.err))
		})
	}
}

func TestInstrumentCommandError_Unwrap(t *testing.T) {
	err := &InstrumentCommandError{Instrument: "load", Op: "set current", Err: errBoom}
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, "load set current: boom", err.Error())
}

func TestRangeError_Message(t *testing.T) {
	err := &RangeError{Field: "initial_current", Value: 7, Min: 0, Max: 5}
	assert.Equal(t, "initial_current 7 out of range [0, 5]", err.Error())
}
