package service

import (
	"context"
	"sync"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/instrument/sim"
	"load_transient/internal/models"
)

// memStateRepo is a goroutine-safe in-memory repository.StateRepo.
type memStateRepo struct {
	mu      sync.Mutex
	saved   []models.RunState
	saveErr error
}

func (r *memStateRepo) Save(ctx context.Context, s models.RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, s)
	return nil
}

func (r *memStateRepo) Load(ctx context.Context) (models.RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return models.RunState{}, nil
	}
	return r.saved[len(r.saved)-1], nil
}

func (r *memStateRepo) last() models.RunState {
	s, _ := r.Load(context.Background())
	return s
}

// memEventRepo is a goroutine-safe in-memory repository.EventRepo.
type memEventRepo struct {
	mu       sync.Mutex
	events   []models.RunEvent
	clearErr error
	cleared  int
}

func (r *memEventRepo) Append(ctx context.Context, e models.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.RunEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RunEvent
	for _, e := range r.events {
		if typ == "" || e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clearErr != nil {
		return r.clearErr
	}
	r.cleared++
	r.events = nil
	return nil
}

func (r *memEventRepo) ofType(typ string) []models.RunEvent {
	out, _ := r.List(context.Background(), time.Time{}, time.Time{}, typ)
	return out
}

func (r *memEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fixedPowerLoad answers MEAS:POW? with a constant reading.
type fixedPowerLoad struct {
	*sim.Load
	power string
}

func (l fixedPowerLoad) Query(ctx context.Context, command string) (string, error) {
	if command == instrument.QueryMeasuredPower {
		return l.power, nil
	}
	return l.Load.Query(ctx, command)
}

// simBench is an instantly settling simulated bench.
type simBench struct {
	chamber *sim.Chamber
	supply  *sim.Supply
	load    *sim.Load
}

func newSimBench() *simBench {
	return &simBench{
		chamber: sim.NewChamber(sim.WithRates(0, 0)),
		supply:  sim.NewSupply(sim.DefaultSupplyCurrentA),
		load:    sim.NewLoad(),
	}
}

func (b *simBench) set() instrument.Set {
	return instrument.Set{Chamber: b.chamber, Supply: b.supply, Load: b.load}
}

func fastConfig() models.TestConfiguration {
	return models.TestConfiguration{
		TemperatureSetpoints: []float64{10, 25, 45},
		StabilizationTimeout: time.Second,
		LoadVoltage:          20,
		InitialCurrent:       3,
		FinalCurrent:         6,
		CurrentStep:          0.5,
		PollInterval:         time.Millisecond,
	}
}

// blockingRunner runs until its context is canceled.
type blockingRunner struct {
	started chan *models.TestSession
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan *models.TestSession, 1)}
}

func (r *blockingRunner) Run(ctx context.Context, sess *models.TestSession, cfg models.TestConfiguration) error {
	r.started <- sess
	<-ctx.Done()
	return ctx.Err()
}
