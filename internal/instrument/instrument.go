// Package instrument defines the contracts of the bench instruments the
// sequencer drives: the temperature chamber, the programmable power supply
// and the electronic load.
package instrument

import (
	"context"
	"fmt"
)

// AmbientC is the chamber temperature commanded before a run starts.
const AmbientC = 25.0

// TemperatureController commands and reads the chamber temperature (°C).
type TemperatureController interface {
	SetTarget(ctx context.Context, tempC float64) error
	GetCurrent(ctx context.Context) (float64, error)
}

// PowerSource is the programmable power supply feeding the device under test.
type PowerSource interface {
	SetVoltage(ctx context.Context, volts float64) error
	GetVoltage(ctx context.Context) (float64, error)
	GetCurrent(ctx context.Context) (float64, error)
}

// ElectronicLoad speaks a small ASCII command set, see the Cmd* and Query* constants.
type ElectronicLoad interface {
	Write(ctx context.Context, command string) error
	Query(ctx context.Context, command string) (string, error)
}

// Set groups the three instruments of one bench.
type Set struct {
	Chamber TemperatureController
	Supply  PowerSource
	Load    ElectronicLoad
}

// Initialize puts the bench in its idle configuration: no load current,
// chamber at ambient and supply at 0 V.
func Initialize(ctx context.Context, s Set) error {
	if err := SetLoadCurrent(ctx, s.Load, 0); err != nil {
		return fmt.Errorf("init load: %w", err)
	}
	if err := s.Chamber.SetTarget(ctx, AmbientC); err != nil {
		return fmt.Errorf("init chamber: %w", err)
	}
	if err := s.Supply.SetVoltage(ctx, 0); err != nil {
		return fmt.Errorf("init supply: %w", err)
	}
	return nil
}
