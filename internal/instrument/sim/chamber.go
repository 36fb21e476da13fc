// Package sim provides in-process simulations of the bench instruments,
// used by the headless runner and by tests.
package sim

import (
	"context"
	"sync"
	"time"

	"load_transient/internal/instrument"
)

// Default chamber slew rates.
const (
	RampUpCPerSec   = 3.0 // °C per second when heating
	RampDownCPerSec = 5.0 // °C per second when cooling
)

// Chamber simulates a climatic chamber that slews toward its target.
// A zero rate means the target is reached instantly.
type Chamber struct {
	mu        sync.Mutex
	now       func() time.Time
	rampUp    float64
	rampDown  float64
	tempC     float64
	targetC   float64
	updatedAt time.Time
}

var _ instrument.TemperatureController = (*Chamber)(nil)

// ChamberOption customizes a Chamber.
type ChamberOption func(*Chamber)

// WithRates sets the heating and cooling slew rates in °C/s.
func WithRates(up, down float64) ChamberOption {
	return func(c *Chamber) {
		c.rampUp = up
		c.rampDown = down
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ChamberOption {
	return func(c *Chamber) { c.now = now }
}

// WithInitialTemp sets the starting temperature (defaults to ambient).
func WithInitialTemp(tempC float64) ChamberOption {
	return func(c *Chamber) {
		c.tempC = tempC
		c.targetC = tempC
	}
}

// NewChamber returns a chamber resting at ambient temperature.
func NewChamber(opts ...ChamberOption) *Chamber {
	c := &Chamber{
		now:      time.Now,
		rampUp:   RampUpCPerSec,
		rampDown: RampDownCPerSec,
		tempC:    instrument.AmbientC,
		targetC:  instrument.AmbientC,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updatedAt = c.now()
	return c
}

// SetTarget changes the setpoint; the temperature keeps slewing from where it is.
func (c *Chamber) SetTarget(ctx context.Context, tempC float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.targetC = tempC
	return nil
}

// GetCurrent returns the simulated chamber temperature.
func (c *Chamber) GetCurrent(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	return c.tempC, nil
}

// advance moves the temperature toward the target for the time elapsed since
// the last update and clamps overshoot.
func (c *Chamber) advance() {
	now := c.now()
	elapsed := now.Sub(c.updatedAt).Seconds()
	c.updatedAt = now
	if elapsed < 0 {
		return
	}

	switch {
	case c.tempC < c.targetC:
		if c.rampUp <= 0 {
			c.tempC = c.targetC
			return
		}
		c.tempC = minFloat(c.tempC+c.rampUp*elapsed, c.targetC)
	case c.tempC > c.targetC:
		if c.rampDown <= 0 {
			c.tempC = c.targetC
			return
		}
		c.tempC = maxFloat(c.tempC-c.rampDown*elapsed, c.targetC)
	}
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}
