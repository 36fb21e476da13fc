package service

import (
	"context"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/logger"
	"load_transient/internal/models"
	"load_transient/internal/repository"
	"load_transient/internal/sequencer"
)

// Authorization registers operators and maps bearer tokens to operator IDs.
type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// TestRun controls the single test run: start, cancel and wait for it.
type TestRun interface {
	Start(ctx context.Context, operatorID int, cfg models.TestConfiguration) (models.RunState, error)
	Cancel(ctx context.Context) error
	Wait(ctx context.Context) error
	Defaults() models.TestConfiguration
}

// Monitoring exposes the read-only run snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.RunState, error)
}

// EventLog exposes the current run's events with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.RunEvent, error)
}

// Runner drives one session with the sequencer until it stops.
type Runner interface {
	Run(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration) error
}

type Service struct {
	TestRun
	Monitoring
	EventLog
	Authorization
}

// Deps are the non-repository collaborators of the services.
type Deps struct {
	Instruments instrument.Set
	Reporter    sequencer.Reporter // console/log output; TELEMETRY events are always recorded
	Log         *logger.Logger
	Defaults    models.TestConfiguration
	SigningKey  string
	TokenTTL    time.Duration
}

// NewService wires the repository layer and the bench into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	runner := NewRunnerService(repos.StateRepo, repos.EventRepo, deps.Instruments, deps.Reporter, log)
	return &Service{
		TestRun:       NewTestRunService(runner, repos.StateRepo, repos.EventRepo, deps.Instruments, deps.Defaults, log),
		Monitoring:    NewMonitoringService(repos.StateRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL),
	}
}
