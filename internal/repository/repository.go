package repository

import (
	"context"
	"database/sql"
	"time"

	"load_transient/internal/models"
)

// Authorization stores the operators allowed to drive the bench.
type Authorization interface {
	// Create returns ErrOperatorExists when the username is taken.
	Create(ctx context.Context, username, hash string) (int, error)
	// GetByUsername returns (nil, nil) for an unknown operator.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StateRepo persists the single-row snapshot of the current run.
type StateRepo interface {
	Save(ctx context.Context, s models.RunState) error
	Load(ctx context.Context) (models.RunState, error)
}

// EventRepo is the append-only log of the current run.
type EventRepo interface {
	Append(ctx context.Context, e models.RunEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.RunEvent, error)
	Clear(ctx context.Context) error
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewOperatorSQLite(db),
	}
}
