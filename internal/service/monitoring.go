package service

import (
	"context"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/models"
	"load_transient/internal/repository"
)

// StateIdle is reported before the first run has been started.
const StateIdle models.State = "IDLE"

type MonitoringService struct {
	stateRepo repository.StateRepo
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo}
}

// GetState returns the latest persisted run snapshot.
// If no run was ever started, returns a baseline IDLE snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.RunState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.RunState{}, err
	}
	if state.ID == 0 {
		return s.baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineState describes an idle bench at ambient temperature.
func (s *MonitoringService) baselineState() models.RunState {
	return models.RunState{
		ID:          1, // DB schema enforces single-row state with id=1
		State:       StateIdle,
		TargetTempC: instrument.AmbientC,
		IsRunning:   false,
		UpdatedAt:   time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
