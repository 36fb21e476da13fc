package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"load_transient/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	runStateRowID = 1

	upsertRunStateSQL = `
		INSERT INTO run_state (id, session_id, operator_id, state, step_index, target_c, current_a, power_w, errors, running, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id,
			operator_id=excluded.operator_id,
			state=excluded.state,
			step_index=excluded.step_index,
			target_c=excluded.target_c,
			current_a=excluded.current_a,
			power_w=excluded.power_w,
			errors=excluded.errors,
			running=excluded.running,
			updated_at=excluded.updated_at
	`

	selectRunStateSQL = `
		SELECT id, session_id, operator_id, state, step_index, target_c, current_a, power_w, errors, running, updated_at
		FROM run_state WHERE id=?
	`
)

// marshalErrorCodes converts the slice to a JSON string.
func marshalErrorCodes(codes []string) (string, error) {
	b, err := json.Marshal(codes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalErrorCodes parses a JSON string into a slice.
func unmarshalErrorCodes(s string) ([]string, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(s), &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// Save upserts the run_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.RunState) error {
	errorsJSON, err := marshalErrorCodes(state.ErrorCodes)
	if err != nil {
		return fmt.Errorf("marshal error codes: %w", err)
	}

	// persisted as UTC; set if zero
	ts := state.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err = r.db.ExecContext(ctx, upsertRunStateSQL,
		runStateRowID,
		state.SessionID,
		state.OperatorID,
		string(state.State),
		state.StepIndex,
		state.TargetTempC,
		state.ActualCurrentA,
		state.MeasuredPowerW,
		errorsJSON,
		state.IsRunning,
		ts,
	)
	if err != nil {
		return fmt.Errorf("save run state: %w", err)
	}
	return nil
}

// Load fetches the run_state row. A missing row yields the zero value.
func (r *StateSQLite) Load(ctx context.Context) (models.RunState, error) {
	row := r.db.QueryRowContext(ctx, selectRunStateSQL, runStateRowID)

	var (
		s          models.RunState
		state      string
		errorsJSON string
	)
	if err := row.Scan(
		&s.ID,
		&s.SessionID,
		&s.OperatorID,
		&state,
		&s.StepIndex,
		&s.TargetTempC,
		&s.ActualCurrentA,
		&s.MeasuredPowerW,
		&errorsJSON,
		&s.IsRunning,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RunState{}, nil // no run yet
		}
		return models.RunState{}, fmt.Errorf("load run state: %w", err)
	}

	codes, err := unmarshalErrorCodes(errorsJSON)
	if err != nil {
		return models.RunState{}, fmt.Errorf("unmarshal error codes: %w", err)
	}
	s.State = models.State(state)
	s.ErrorCodes = codes
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
