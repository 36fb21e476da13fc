package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"load_transient/internal/models"
	"load_transient/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var runStateColumns = []string{
	"id", "session_id", "operator_id", "state", "step_index", "target_c", "current_a", "power_w", "errors", "running", "updated_at",
}

func TestStateSQLite_Save_SetsUTCAndMarshalsErrors_WhenTimeZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewStateSQLite(db)

	state := models.RunState{
		SessionID:      "s-1",
		OperatorID:     7,
		State:          models.StateEvaluateOutput,
		StepIndex:      1,
		TargetTempC:    25,
		ActualCurrentA: 3.5,
		MeasuredPowerW: 17.5,
		ErrorCodes:     []string{"RANGE_ERROR", "INSTRUMENT_ERROR"},
		IsRunning:      true,
	}

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok || tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO run_state")).
		WithArgs(
			1,
			state.SessionID,
			state.OperatorID,
			string(state.State),
			state.StepIndex,
			state.TargetTempC,
			state.ActualCurrentA,
			state.MeasuredPowerW,
			`["RANGE_ERROR","INSTRUMENT_ERROR"]`,
			state.IsRunning,
			isUTCRecent,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_ConvertsProvidedTimeToUTC(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewStateSQLite(db)

	loc := time.FixedZone("UTC+5", 5*60*60)
	local := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO run_state")).
		WithArgs(1, "", 0, "END", 0, 0.0, 0.0, 0.0, "null", false, local.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), models.RunState{State: models.StateEnd, UpdatedAt: local})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_PropagatesDBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO run_state")).
		WillReturnError(errors.New("disk full"))

	err = repository.NewStateSQLite(db).Save(context.Background(), models.RunState{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestStateSQLite_Load_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	repo := repository.NewStateSQLite(db)

	loc := time.FixedZone("UTC-3", -3*60*60)
	updated := time.Date(2026, 4, 2, 9, 30, 0, 0, loc)

	rows := sqlmock.NewRows(runStateColumns).
		AddRow(1, "s-9", 12, "CONFIGURE_LOAD", 2, 45.0, 4.5, 12.0, `["STABILIZATION_TIMEOUT"]`, true, updated)

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_state WHERE id=?")).
		WithArgs(1).
		WillReturnRows(rows)

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := models.RunState{
		ID:             1,
		SessionID:      "s-9",
		OperatorID:     12,
		State:          models.StateConfigureLoad,
		StepIndex:      2,
		TargetTempC:    45,
		ActualCurrentA: 4.5,
		MeasuredPowerW: 12,
		ErrorCodes:     []string{"STABILIZATION_TIMEOUT"},
		IsRunning:      true,
		UpdatedAt:      updated.UTC(),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
	if got.UpdatedAt.Location() != time.UTC {
		t.Fatalf("UpdatedAt not UTC: %v", got.UpdatedAt.Location())
	}
}

func TestStateSQLite_Load_NoRows_ReturnsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_state WHERE id=?")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	got, err := repository.NewStateSQLite(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, models.RunState{}) {
		t.Fatalf("expected zero state, got %+v", got)
	}
}

func TestStateSQLite_Load_InvalidErrorsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(runStateColumns).
		AddRow(1, "s-1", 0, "END", 0, 0.0, 0.0, 0.0, `{not json`, false, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_state WHERE id=?")).
		WithArgs(1).
		WillReturnRows(rows)

	_, err = repository.NewStateSQLite(db).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unmarshal error codes") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}
