package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/logger"
	"load_transient/internal/models"
	"load_transient/internal/repository"
	"load_transient/internal/sequencer"

	"github.com/google/uuid"
)

var (
	ErrRunInProgress = errors.New("a test run is already in progress")
	ErrNoActiveRun   = errors.New("no test run in progress")
)

// TestRunService owns the single active run. The run loop executes in its
// own goroutine; Cancel signals it through context cancellation.
type TestRunService struct {
	runner    Runner
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	inst      instrument.Set
	defaults  models.TestConfiguration
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

func NewTestRunService(runner Runner, stateRepo repository.StateRepo, eventRepo repository.EventRepo, inst instrument.Set, defaults models.TestConfiguration, log *logger.Logger) *TestRunService {
	if log == nil {
		log = logger.Nop()
	}
	return &TestRunService{
		runner:    runner,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		inst:      inst,
		defaults:  defaults.Clone(),
		log:       log,
		now:       time.Now,
	}
}

// Defaults returns the configured test parameters.
func (s *TestRunService) Defaults() models.TestConfiguration {
	return s.defaults.Clone()
}

// Start validates cfg, resets the event log, brings the instruments to a
// safe idle state and launches the run loop on behalf of operatorID (0 for
// the CLI). The run outlives ctx.
func (s *TestRunService) Start(ctx context.Context, operatorID int, cfg models.TestConfiguration) (models.RunState, error) {
	cfg = cfg.Clone()
	if err := sequencer.Validate(cfg); err != nil {
		return models.RunState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeLocked() {
		return models.RunState{}, ErrRunInProgress
	}

	if err := s.eventRepo.Clear(ctx); err != nil {
		return models.RunState{}, err
	}
	if err := instrument.Initialize(ctx, s.inst); err != nil {
		return models.RunState{}, fmt.Errorf("initialize instruments: %w", err)
	}

	now := s.now().UTC()
	sess := models.NewTestSession(uuid.NewString(), now)
	sess.OperatorID = operatorID
	sess.CurrentTemperatureTarget = cfg.TemperatureSetpoints[0]

	st := snapshot(sess, nil)
	if err := s.stateRepo.Save(ctx, st); err != nil {
		return models.RunState{}, err
	}
	if err := s.eventRepo.Append(ctx, models.RunEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        models.EventStart,
		Description: "Test run started",
		Metadata: map[string]any{
			"session":          sess.ID,
			"operator_id":      operatorID,
			"setpoints":        cfg.TemperatureSetpoints,
			"load_voltage":     cfg.LoadVoltage,
			"initial_current":  cfg.InitialCurrent,
			"final_current":    cfg.FinalCurrent,
			"current_step":     cfg.CurrentStep,
			"stabilization_s":  cfg.StabilizationTimeout.Seconds(),
			"poll_interval_ms": cfg.PollInterval.Milliseconds(),
		},
	}); err != nil {
		return models.RunState{}, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.lastErr = nil

	go func() {
		defer close(done)
		defer cancel()
		err := s.runner.Run(runCtx, sess, cfg)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}()

	s.log.Infow("test_run_started", "session", sess.ID, "operator", operatorID)
	return st, nil
}

// Cancel stops the active run and waits until its shutdown has finished
// or ctx is done.
func (s *TestRunService) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if !s.activeLocked() {
		s.mu.Unlock()
		return ErrNoActiveRun
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	s.log.Infow("test_run_cancel_requested")
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the latest run finishes and returns its error.
func (s *TestRunService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return ErrNoActiveRun
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// activeLocked reports whether a run loop is still executing. s.mu must be held.
func (s *TestRunService) activeLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
