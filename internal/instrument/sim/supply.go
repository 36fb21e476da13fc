package sim

import (
	"context"
	"sync"

	"load_transient/internal/instrument"
)

// DefaultSupplyCurrentA is the current reading reported by the simulated supply.
const DefaultSupplyCurrentA = 1.0

// Supply simulates a programmable power supply with a fixed current reading.
type Supply struct {
	mu       sync.Mutex
	voltage  float64
	currentA float64
}

var _ instrument.PowerSource = (*Supply)(nil)

// NewSupply returns a supply at 0 V reporting currentA amperes.
func NewSupply(currentA float64) *Supply {
	return &Supply{currentA: currentA}
}

func (s *Supply) SetVoltage(ctx context.Context, volts float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voltage = volts
	return nil
}

func (s *Supply) GetVoltage(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voltage, nil
}

func (s *Supply) GetCurrent(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentA, nil
}

// Power is voltage times the reported current.
func (s *Supply) Power() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voltage * s.currentA
}
