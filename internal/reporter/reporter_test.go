package reporter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"load_transient/internal/logger"
	"load_transient/internal/models"
	"load_transient/internal/sequencer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(satisfied bool) models.StepResult {
	return models.StepResult{
		SessionID:         "s1",
		StepIndex:         0,
		TemperatureTarget: 25,
		CommandedCurrent:  3,
		LoadCurrent:       3,
		LoadVoltage:       20,
		SourceCurrent:     1,
		SourceVoltage:     20,
		OutputPower:       60,
		Satisfied:         satisfied,
	}
}

func TestConsole_PrintsInstrumentReadings(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	c := NewConsole(&buf)

	require.NoError(t, c.Report(context.Background(), sampleResult(true)))

	out := buf.String()
	assert.Contains(t, out, "[step 1 | 25 °C | 3 A]")
	assert.Contains(t, out, "ELOAD | Current Electric Current: 3 A")
	assert.Contains(t, out, "PSU | Current Electric Voltage: 20 V")
	assert.Contains(t, out, "ELOAD Actual output power: 60 W (ok)")
}

func TestConsole_RetryVerdictAndCompletion(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	c := NewConsole(&buf)

	require.NoError(t, c.Report(context.Background(), sampleResult(false)))
	c.Completed(nil)
	c.Completed(errors.New("ramp exhausted"))

	out := buf.String()
	assert.Contains(t, out, "below target, ramping")
	assert.Contains(t, out, "The tests were completed successfully!")
	assert.Contains(t, out, "The test failed: ramp exhausted")
}

func TestMulti_CallsEveryReporterAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	ok := sequencer.ReporterFunc(func(context.Context, models.StepResult) error { calls++; return nil })
	bad := sequencer.ReporterFunc(func(context.Context, models.StepResult) error { calls++; return boom })

	err := Multi{bad, nil, ok, NewLog(logger.Nop())}.Report(context.Background(), sampleResult(true))

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestMulti_SkipsUnsetReporters(t *testing.T) {
	var (
		console *Console
		log     *Log
	)
	m := Multi{console, log, NewLog(nil)}

	assert.NotPanics(t, func() {
		assert.NoError(t, m.Report(context.Background(), sampleResult(false)))
		console.Completed(nil)
	})
}
