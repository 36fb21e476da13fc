// Package sequencer implements the load transient test state machine.
//
// A run is driven by repeatedly calling Advance until the session is stopped.
// Each call performs the work of exactly one state, so callers can stop
// between calls; Cancel forces the END shutdown sequence from any state.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/logger"
	"load_transient/internal/models"
)

// Reporter consumes the result of every output evaluation.
type Reporter interface {
	Report(ctx context.Context, r models.StepResult) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, r models.StepResult) error

func (f ReporterFunc) Report(ctx context.Context, r models.StepResult) error { return f(ctx, r) }

// Sequencer advances test sessions. It holds no per-session state and must
// not be called concurrently for the same session.
type Sequencer struct {
	reporter Reporter
	log      *logger.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithClock replaces time.Now and the context-aware sleep; tests use it to
// run the stabilization poll on a fake clock.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Sequencer) {
		s.now = now
		s.sleep = sleep
	}
}

// New returns a Sequencer. A nil reporter discards results; a nil logger is
// replaced by a no-op one.
func New(reporter Reporter, log *logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		reporter: reporter,
		log:      log,
		now:      time.Now,
		sleep:    SleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Advance performs the current state's work and moves sess to the next state.
// On error sess stays in the state that failed.
func (s *Sequencer) Advance(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	if sess.Stopped {
		return ErrSessionStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := sess.State
	var err error
	switch sess.State {
	case models.StateStart:
		err = s.start(ctx, sess, cfg, inst)
	case models.StateConfigureTemperature:
		err = s.configureTemperature(ctx, sess, cfg, inst)
	case models.StateConfigureSupply:
		err = s.configureSupply(ctx, sess, cfg, inst)
	case models.StateConfigureLoad:
		err = s.configureLoad(ctx, sess, cfg, inst)
	case models.StateEvaluateOutput:
		err = s.evaluateOutput(ctx, sess, cfg, inst)
	case models.StateAdvanceTemperatureStep:
		s.advanceTemperatureStep(sess, cfg)
	case models.StateEnd:
		err = s.shutdown(ctx, sess, inst)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownState, sess.State)
	}
	sess.UpdatedAt = s.now().UTC()

	if err != nil {
		s.log.Errorw("sequencer_step_failed", "session", sess.ID, "state", from, "err", err)
		return err
	}
	s.log.Debugw("sequencer_transition", "session", sess.ID, "from", from, "to", sess.State)
	return nil
}

// Cancel forces the session to END and runs the shutdown sequence: supply
// voltage, load current and load voltage are all commanded to zero.
func (s *Sequencer) Cancel(ctx context.Context, sess *models.TestSession, inst instrument.Set) error {
	s.log.Infow("sequencer_cancel", "session", sess.ID, "state", sess.State)
	sess.State = models.StateEnd
	err := s.shutdown(ctx, sess, inst)
	sess.UpdatedAt = s.now().UTC()
	return err
}

func (s *Sequencer) start(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	idx := sess.TemperatureStepIndex
	if idx < 0 || idx >= len(cfg.TemperatureSetpoints) {
		return &RangeError{
			Field: "temperature_step_index",
			Value: float64(idx),
			Min:   0,
			Max:   float64(len(cfg.TemperatureSetpoints) - 1),
		}
	}
	sess.CurrentTemperatureTarget = cfg.TemperatureSetpoints[idx]

	if err := instrument.SetLoadVoltage(ctx, inst.Load, cfg.LoadVoltage); err != nil {
		return &InstrumentCommandError{Instrument: "load", Op: "set voltage", Err: err}
	}
	sess.State = models.StateConfigureTemperature
	return nil
}

func (s *Sequencer) configureTemperature(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	sess.ActualCurrent = cfg.InitialCurrent

	if err := inst.Chamber.SetTarget(ctx, sess.CurrentTemperatureTarget); err != nil {
		return &InstrumentCommandError{Instrument: "chamber", Op: "set target", Err: err}
	}
	if err := s.awaitTemperature(ctx, sess, cfg, inst.Chamber); err != nil {
		return err
	}
	sess.State = models.StateConfigureSupply
	return nil
}

// awaitTemperature polls the chamber every PollInterval until the reading
// matches the target or StabilizationTimeout has been exceeded.
func (s *Sequencer) awaitTemperature(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, c instrument.TemperatureController) error {
	target := sess.CurrentTemperatureTarget
	started := s.now()
	for polls := 1; ; polls++ {
		current, err := c.GetCurrent(ctx)
		if err != nil {
			return &InstrumentCommandError{Instrument: "chamber", Op: "read temperature", Err: err}
		}
		if math.Abs(current-target) <= cfg.TemperatureTolerance {
			s.log.Infow("temperature_stabilized", "session", sess.ID, "target_c", target, "polls", polls)
			return nil
		}

		elapsed := s.now().Sub(started)
		if elapsed > cfg.StabilizationTimeout {
			return &StabilizationTimeoutError{
				Target:  target,
				Last:    current,
				Polls:   polls,
				Elapsed: elapsed,
				Timeout: cfg.StabilizationTimeout,
			}
		}
		if err := s.sleep(ctx, cfg.PollInterval); err != nil {
			return err
		}
	}
}

func (s *Sequencer) configureSupply(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	if err := inst.Supply.SetVoltage(ctx, cfg.LoadVoltage); err != nil {
		return &InstrumentCommandError{Instrument: "supply", Op: "set voltage", Err: err}
	}
	if err := s.sleep(ctx, cfg.SettleDelay); err != nil {
		return err
	}
	sess.State = models.StateConfigureLoad
	return nil
}

func (s *Sequencer) configureLoad(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	if err := checkRange("actual_current", sess.ActualCurrent, cfg.InitialCurrent, cfg.FinalCurrent); err != nil {
		return err
	}
	if err := instrument.SetLoadCurrent(ctx, inst.Load, sess.ActualCurrent); err != nil {
		return &InstrumentCommandError{Instrument: "load", Op: "set current", Err: err}
	}
	if err := s.sleep(ctx, cfg.SettleDelay); err != nil {
		return err
	}
	sess.State = models.StateEvaluateOutput
	return nil
}

// evaluateOutput records the output power and decides the next state: the
// step is satisfied once power reaches the load voltage; otherwise the load
// current is stepped up until FinalCurrent.
func (s *Sequencer) evaluateOutput(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) error {
	power, err := instrument.Measure(ctx, inst.Load, instrument.QueryMeasuredPower)
	if err != nil {
		return &InstrumentCommandError{Instrument: "load", Op: "measure power", Err: err}
	}
	sess.MeasuredOutputPower = power

	result, err := s.readings(ctx, inst)
	if err != nil {
		return err
	}
	result.SessionID = sess.ID
	result.StepIndex = sess.TemperatureStepIndex
	result.TemperatureTarget = sess.CurrentTemperatureTarget
	result.CommandedCurrent = sess.ActualCurrent
	result.OutputPower = power
	result.Satisfied = power >= cfg.LoadVoltage
	result.MeasuredAt = s.now().UTC()
	s.report(ctx, result)

	switch {
	case result.Satisfied:
		sess.State = models.StateAdvanceTemperatureStep
	case sess.ActualCurrent >= cfg.FinalCurrent:
		return &CurrentRampExhaustedError{
			FinalCurrent:  cfg.FinalCurrent,
			MeasuredPower: power,
			RequiredPower: cfg.LoadVoltage,
		}
	default:
		sess.ActualCurrent = math.Min(sess.ActualCurrent+cfg.CurrentStep, cfg.FinalCurrent)
		sess.State = models.StateConfigureLoad
	}
	return nil
}

// readings collects the load and supply measurements for the report.
func (s *Sequencer) readings(ctx context.Context, inst instrument.Set) (models.StepResult, error) {
	var (
		r   models.StepResult
		err error
	)
	if r.LoadCurrent, err = instrument.Measure(ctx, inst.Load, instrument.QueryMeasuredCurrent); err != nil {
		return r, &InstrumentCommandError{Instrument: "load", Op: "measure current", Err: err}
	}
	if r.LoadVoltage, err = instrument.Measure(ctx, inst.Load, instrument.QueryMeasuredVoltage); err != nil {
		return r, &InstrumentCommandError{Instrument: "load", Op: "measure voltage", Err: err}
	}
	if r.SourceCurrent, err = inst.Supply.GetCurrent(ctx); err != nil {
		return r, &InstrumentCommandError{Instrument: "supply", Op: "read current", Err: err}
	}
	if r.SourceVoltage, err = inst.Supply.GetVoltage(ctx); err != nil {
		return r, &InstrumentCommandError{Instrument: "supply", Op: "read voltage", Err: err}
	}
	return r, nil
}

func (s *Sequencer) report(ctx context.Context, r models.StepResult) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, r); err != nil {
		s.log.Warnw("report_failed", "session", r.SessionID, "step", r.StepIndex, "err", err)
	}
}

func (s *Sequencer) advanceTemperatureStep(sess *models.TestSession, cfg models.TestConfiguration) {
	sess.TemperatureStepIndex++
	if sess.TemperatureStepIndex < len(cfg.TemperatureSetpoints) {
		sess.CurrentTemperatureTarget = cfg.TemperatureSetpoints[sess.TemperatureStepIndex]
		sess.State = models.StateStart
		return
	}
	sess.State = models.StateEnd
}

// shutdown attempts every zeroing command even if an earlier one fails, then
// marks the session stopped.
func (s *Sequencer) shutdown(ctx context.Context, sess *models.TestSession, inst instrument.Set) error {
	var errs []error
	if err := inst.Supply.SetVoltage(ctx, 0); err != nil {
		errs = append(errs, &InstrumentCommandError{Instrument: "supply", Op: "set voltage", Err: err})
	}
	if err := instrument.SetLoadCurrent(ctx, inst.Load, 0); err != nil {
		errs = append(errs, &InstrumentCommandError{Instrument: "load", Op: "set current", Err: err})
	}
	if err := instrument.SetLoadVoltage(ctx, inst.Load, 0); err != nil {
		errs = append(errs, &InstrumentCommandError{Instrument: "load", Op: "set voltage", Err: err})
	}
	sess.Stopped = true
	return errors.Join(errs...)
}
