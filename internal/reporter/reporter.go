// Package reporter renders step results produced by the sequencer.
package reporter

import (
	"context"
	"errors"

	"load_transient/internal/logger"
	"load_transient/internal/models"
	"load_transient/internal/sequencer"
)

// Multi fans a result out to several reporters. Every reporter is called;
// failures are joined. Nil entries are skipped, and the reporters of this
// package also accept nil pointers, so an unset *Console or *Log is a no-op.
type Multi []sequencer.Reporter

func (m Multi) Report(ctx context.Context, r models.StepResult) error {
	var errs []error
	for _, rep := range m {
		if rep == nil {
			continue
		}
		if err := rep.Report(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes each result as a structured log entry.
type Log struct {
	log *logger.Logger
}

// NewLog reports to log, or discards when log is nil.
func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

func (l *Log) Report(_ context.Context, r models.StepResult) error {
	if l == nil {
		return nil
	}
	l.log.Infow("step_result",
		"session", r.SessionID,
		"step", r.StepIndex,
		"target_c", r.TemperatureTarget,
		"commanded_a", r.CommandedCurrent,
		"load_a", r.LoadCurrent,
		"load_v", r.LoadVoltage,
		"source_a", r.SourceCurrent,
		"source_v", r.SourceVoltage,
		"power_w", r.OutputPower,
		"satisfied", r.Satisfied,
	)
	return nil
}
