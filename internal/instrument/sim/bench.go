package sim

import "load_transient/internal/instrument"

// Options configures a simulated bench.
type Options struct {
	ChamberRampUpCPerSec   float64 `mapstructure:"chamber_ramp_up_c_per_sec"`
	ChamberRampDownCPerSec float64 `mapstructure:"chamber_ramp_down_c_per_sec"`
	SupplyCurrentA         float64 `mapstructure:"supply_current_a"`
}

// NewBench wires a chamber, supply and load into an instrument.Set.
func NewBench(o Options) instrument.Set {
	return instrument.Set{
		Chamber: NewChamber(WithRates(o.ChamberRampUpCPerSec, o.ChamberRampDownCPerSec)),
		Supply:  NewSupply(o.SupplyCurrentA),
		Load:    NewLoad(),
	}
}
