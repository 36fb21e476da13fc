package sequencer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"load_transient/internal/instrument"
)

var (
	// ErrSessionStopped is returned by Advance once the session reached END.
	ErrSessionStopped = errors.New("test session already stopped")
	// ErrUnknownState means the session holds a state the sequencer does not know.
	ErrUnknownState = errors.New("unknown sequencer state")
)

// RangeError reports a configured value outside its safety envelope.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// StabilizationTimeoutError reports a chamber that did not settle in time.
type StabilizationTimeoutError struct {
	Target  float64
	Last    float64
	Polls   int
	Elapsed time.Duration
	Timeout time.Duration
}

func (e *StabilizationTimeoutError) Error() string {
	return fmt.Sprintf("temperature did not reach %g°C within %s (last reading %g°C after %d polls, %s elapsed)",
		e.Target, e.Timeout, e.Last, e.Polls, e.Elapsed)
}

// InstrumentCommandError wraps a failed instrument call.
type InstrumentCommandError struct {
	Instrument string // chamber | supply | load
	Op         string
	Err        error
}

func (e *InstrumentCommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Instrument, e.Op, e.Err)
}

func (e *InstrumentCommandError) Unwrap() error { return e.Err }

// CurrentRampExhaustedError reports a ramp that reached the final current
// without the output power condition being met.
type CurrentRampExhaustedError struct {
	FinalCurrent  float64
	MeasuredPower float64
	RequiredPower float64
}

func (e *CurrentRampExhaustedError) Error() string {
	return fmt.Sprintf("current ramp exhausted at %g A: output power %g W below %g W",
		e.FinalCurrent, e.MeasuredPower, e.RequiredPower)
}

// Error codes stored in the run snapshot.
const (
	CodeRangeError           = "RANGE_ERROR"
	CodeStabilizationTimeout = "STABILIZATION_TIMEOUT"
	CodeProtocolError        = "PROTOCOL_ERROR"
	CodeInstrumentError      = "INSTRUMENT_ERROR"
	CodeCurrentRampExhausted = "CURRENT_RAMP_EXHAUSTED"
	CodeCanceled             = "CANCELED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorCode classifies err for the run snapshot. It returns "" for nil.
func ErrorCode(err error) string {
	var (
		rangeErr   *RangeError
		timeoutErr *StabilizationTimeoutError
		protoErr   *instrument.ProtocolError
		cmdErr     *InstrumentCommandError
		exhaustErr *CurrentRampExhaustedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rangeErr):
		return CodeRangeError
	case errors.As(err, &timeoutErr):
		return CodeStabilizationTimeout
	case errors.As(err, &protoErr):
		return CodeProtocolError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	case errors.As(err, &cmdErr):
		return CodeInstrumentError
	case errors.As(err, &exhaustErr):
		return CodeCurrentRampExhausted
	default:
		return CodeInternal
	}
}
