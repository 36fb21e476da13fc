package sequencer

import (
	"context"
	"errors"
	"time"

	"load_transient/internal/instrument"
	"load_transient/internal/models"
)

// ---- Test doubles ----

// fakeClock advances only when the sequencer sleeps.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
	onPoll func(n int) // called before each sleep, n = sleeps so far
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if c.onPoll != nil {
		c.onPoll(len(c.sleeps))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

// stubChamber reaches its target on the reachAfter-th read; reachAfter <= 0 never reaches.
type stubChamber struct {
	reachAfter int
	targets    []float64
	reads      int
	setErr     error
	readErr    error
}

func (c *stubChamber) SetTarget(ctx context.Context, tempC float64) error {
	c.targets = append(c.targets, tempC)
	return c.setErr
}

func (c *stubChamber) GetCurrent(ctx context.Context) (float64, error) {
	c.reads++
	if c.readErr != nil {
		return 0, c.readErr
	}
	target := instrument.AmbientC
	if len(c.targets) > 0 {
		target = c.targets[len(c.targets)-1]
	}
	if c.reachAfter > 0 && c.reads >= c.reachAfter {
		return target, nil
	}
	return target - 7.5, nil
}

type stubSupply struct {
	voltages []float64
	reads    int
	current  float64
	setErr   error
}

func (s *stubSupply) SetVoltage(ctx context.Context, volts float64) error {
	s.voltages = append(s.voltages, volts)
	return s.setErr
}

func (s *stubSupply) GetVoltage(ctx context.Context) (float64, error) {
	s.reads++
	if len(s.voltages) == 0 {
		return 0, nil
	}
	return s.voltages[len(s.voltages)-1], nil
}

func (s *stubSupply) GetCurrent(ctx context.Context) (float64, error) {
	s.reads++
	return s.current, nil
}

// stubLoad records writes and answers queries. When power is set, MEAS:POW?
// is computed from the last commanded current.
type stubLoad struct {
	writes   []string
	queries  []string
	answers  map[string]string
	power    func(current float64) float64
	current  float64
	voltage  float64
	writeErr error
	queryErr map[string]error
}

func (l *stubLoad) Write(ctx context.Context, command string) error {
	l.writes = append(l.writes, command)
	if l.writeErr != nil {
		return l.writeErr
	}
	cmd, err := instrument.ParseCommand(command)
	if err != nil {
		return err
	}
	switch cmd.Name {
	case instrument.CmdCurrent:
		l.current = cmd.Value
	case instrument.CmdVoltage:
		l.voltage = cmd.Value
	}
	return nil
}

func (l *stubLoad) Query(ctx context.Context, command string) (string, error) {
	l.queries = append(l.queries, command)
	if err := l.queryErr[command]; err != nil {
		return "", err
	}
	if ans, ok := l.answers[command]; ok {
		return ans, nil
	}
	switch command {
	case instrument.QueryMeasuredPower:
		if l.power != nil {
			return instrument.FormatValue(l.power(l.current)), nil
		}
		return instrument.FormatValue(l.current * l.voltage), nil
	case instrument.QueryMeasuredCurrent:
		return instrument.FormatValue(l.current), nil
	case instrument.QueryMeasuredVoltage:
		return instrument.FormatValue(l.voltage), nil
	}
	return "", &instrument.ProtocolError{Command: command}
}

type bench struct {
	chamber *stubChamber
	supply  *stubSupply
	load    *stubLoad
}

func newBench() *bench {
	return &bench{
		chamber: &stubChamber{reachAfter: 1},
		supply:  &stubSupply{current: 1},
		load:    &stubLoad{},
	}
}

func (b *bench) set() instrument.Set {
	return instrument.Set{Chamber: b.chamber, Supply: b.supply, Load: b.load}
}

func (b *bench) calls() int {
	return len(b.chamber.targets) + b.chamber.reads +
		len(b.supply.voltages) + b.supply.reads +
		len(b.load.writes) + len(b.load.queries)
}

// recordingReporter keeps every reported result.
type recordingReporter struct {
	results []models.StepResult
	err     error
}

func (r *recordingReporter) Report(ctx context.Context, res models.StepResult) error {
	r.results = append(r.results, res)
	return r.err
}

var errBoom = errors.New("boom")

// validConfig mirrors the reference bench parameters with in-range setpoints.
func validConfig() models.TestConfiguration {
	return models.TestConfiguration{
		TemperatureSetpoints: []float64{10, 25, 45},
		StabilizationTimeout: 40 * time.Minute,
		LoadVoltage:          20,
		InitialCurrent:       3,
		FinalCurrent:         6,
		CurrentStep:          0.5,
		PollInterval:         100 * time.Millisecond,
	}
}

func newTestSequencer(rep Reporter, clock *fakeClock) *Sequencer {
	return New(rep, nil, WithClock(clock.Now, clock.Sleep))
}

// runToEnd drives Advance until the session stops, returning the visited states.
func runToEnd(ctx context.Context, s *Sequencer, sess *models.TestSession, cfg models.TestConfiguration, inst instrument.Set) ([]models.State, error) {
	visited := []models.State{sess.State}
	for i := 0; i < 200 && !sess.Stopped; i++ {
		if err := s.Advance(ctx, sess, cfg, inst); err != nil {
			return visited, err
		}
		visited = append(visited, sess.State)
	}
	return visited, nil
}
