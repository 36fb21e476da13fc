package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"load_transient/internal/models"
)

// ErrOperatorExists is returned by Create for a username already registered.
var ErrOperatorExists = errors.New("operator already exists")

type OperatorSQLite struct {
	db *sql.DB
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite {
	return &OperatorSQLite{db: db}
}

var _ Authorization = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL = `
		INSERT INTO operators (username, password_hash) VALUES (?, ?)
		ON CONFLICT(username) DO NOTHING
	`
	selectOperatorSQL = `SELECT id, username, password_hash FROM operators WHERE username = ?`
)

func (r *OperatorSQLite) Create(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOperatorSQL, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrOperatorExists, username)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get id of operator %q: %w", username, err)
	}
	return int(id), nil
}

func (r *OperatorSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectOperatorSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	return &u, nil
}
