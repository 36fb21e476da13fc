package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/logger"
	"load_transient/internal/models"
	"load_transient/internal/reporter"
	"load_transient/internal/repository"
	"load_transient/internal/sequencer"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	shutdownTimeout     = 10 * time.Second
)

// RunnerService drives a session through the sequencer, persisting a
// snapshot and logging events as it goes.
type RunnerService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	inst      instrument.Set
	seq       *sequencer.Sequencer
	log       *logger.Logger
}

// NewRunnerService returns a runner whose step results go to rep and to the
// event log as TELEMETRY events.
func NewRunnerService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, inst instrument.Set, rep sequencer.Reporter, log *logger.Logger, opts ...sequencer.Option) *RunnerService {
	if log == nil {
		log = logger.Nop()
	}
	fanout := reporter.Multi{rep, NewEventReporter(eventRepo)}
	return &RunnerService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		inst:      inst,
		seq:       sequencer.New(fanout, log, opts...),
		log:       log,
	}
}

// Run calls Advance every PollInterval until the session stops. On failure
// or cancellation it records the error and runs the shutdown sequence.
func (r *RunnerService) Run(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration) error {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	r.log.Infow("run_started", "session", sess.ID, "setpoints", cfg.TemperatureSetpoints)
	for {
		from := sess.State
		if err := r.seq.Advance(ctx, sess, cfg, r.inst); err != nil {
			return r.fail(ctx, sess, err)
		}
		r.persist(ctx, sess, nil)
		r.appendEvent(ctx, models.RunEvent{
			OccurredAt:  sess.UpdatedAt,
			Type:        models.EventStateChange,
			Description: fmt.Sprintf("%s -> %s", from, sess.State),
			Metadata: map[string]any{
				"from":     from,
				"to":       sess.State,
				"step":     sess.TemperatureStepIndex,
				"target_c": sess.CurrentTemperatureTarget,
				"current":  sess.ActualCurrent,
			},
		})
		if sess.Stopped {
			break
		}

		select {
		case <-ctx.Done():
			return r.fail(ctx, sess, ctx.Err())
		case <-t.C:
		}
	}

	r.log.Infow("run_completed", "session", sess.ID)
	r.appendEvent(ctx, models.RunEvent{
		Type:        models.EventStop,
		Description: "The tests were completed successfully",
		Metadata:    map[string]any{"session": sess.ID},
	})
	return nil
}

// fail logs err, forces END and persists the final snapshot.
func (r *RunnerService) fail(ctx context.Context, sess *models.TestSession, err error) error {
	code := sequencer.ErrorCode(err)
	failedIn := sess.State

	typ := models.EventError
	if code == sequencer.CodeCanceled {
		typ = models.EventCancel
		r.log.Infow("run_canceled", "session", sess.ID, "state", failedIn)
	} else {
		r.log.Errorw("run_failed", "session", sess.ID, "state", failedIn, "code", code, "err", err)
	}
	r.appendEvent(ctx, models.RunEvent{
		Type:        typ,
		Description: err.Error(),
		Metadata:    map[string]any{"code": code, "state": failedIn, "step": sess.TemperatureStepIndex},
	})

	// shutdown must still reach the instruments after ctx is canceled
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	codes := []string{code}
	cerr := r.seq.Cancel(sctx, sess, r.inst)
	if cerr != nil {
		r.log.Errorw("shutdown_failed", "session", sess.ID, "err", cerr)
		codes = append(codes, sequencer.ErrorCode(cerr))
		r.appendEvent(ctx, models.RunEvent{
			Type:        models.EventError,
			Description: cerr.Error(),
			Metadata:    map[string]any{"code": sequencer.ErrorCode(cerr), "state": models.StateEnd},
		})
	}
	r.persist(ctx, sess, codes)
	return errors.Join(err, cerr)
}

func (r *RunnerService) persist(ctx context.Context, sess *models.TestSession, codes []string) {
	if err := r.stateRepo.Save(context.WithoutCancel(ctx), snapshot(sess, codes)); err != nil {
		r.log.Warnw("persist_state_failed", "session", sess.ID, "err", err)
	}
}

func (r *RunnerService) appendEvent(ctx context.Context, e models.RunEvent) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := r.eventRepo.Append(context.WithoutCancel(ctx), e); err != nil {
		r.log.Warnw("append_event_failed", "type", e.Type, "err", err)
	}
}

// snapshot converts a session into its persisted form.
func snapshot(sess *models.TestSession, codes []string) models.RunState {
	return models.RunState{
		ID:             1,
		SessionID:      sess.ID,
		OperatorID:     sess.OperatorID,
		State:          sess.State,
		StepIndex:      sess.TemperatureStepIndex,
		TargetTempC:    sess.CurrentTemperatureTarget,
		ActualCurrentA: sess.ActualCurrent,
		MeasuredPowerW: sess.MeasuredOutputPower,
		ErrorCodes:     codes,
		IsRunning:      !sess.Stopped,
		UpdatedAt:      sess.UpdatedAt,
	}
}
