package reporter

import (
	"context"
	"fmt"
	"io"

	"load_transient/internal/models"

	"github.com/fatih/color"
)

var (
	headerColor    = color.New(color.Bold)
	satisfiedColor = color.New(color.FgGreen)
	retryColor     = color.New(color.FgYellow)
	failedColor    = color.New(color.FgRed)
)

// Console prints one block per evaluated step, in the bench operator's
// ELOAD/PSU layout.
type Console struct {
	out io.Writer
}

// NewConsole writes to w, or stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = color.Output
	}
	return &Console{out: w}
}

func (c *Console) Report(_ context.Context, r models.StepResult) error {
	if c == nil {
		return nil
	}
	if _, err := headerColor.Fprintf(c.out, "[step %d | %g °C | %g A]\n", r.StepIndex+1, r.TemperatureTarget, r.CommandedCurrent); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("ELOAD | Current Electric Current: %g A", r.LoadCurrent),
		fmt.Sprintf("ELOAD | Current Electric Voltage: %g V", r.LoadVoltage),
		fmt.Sprintf("PSU | Current Electric Current: %g A", r.SourceCurrent),
		fmt.Sprintf("PSU | Current Electric Voltage: %g V", r.SourceVoltage),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(c.out, "  "+l); err != nil {
			return err
		}
	}
	out := retryColor
	verdict := "below target, ramping"
	if r.Satisfied {
		out = satisfiedColor
		verdict = "ok"
	}
	_, err := out.Fprintf(c.out, "  ELOAD Actual output power: %g W (%s)\n", r.OutputPower, verdict)
	return err
}

// Completed prints the final run verdict.
func (c *Console) Completed(err error) {
	if c == nil {
		return
	}
	if err != nil {
		_, _ = failedColor.Fprintf(c.out, "The test failed: %v\n", err)
		return
	}
	_, _ = satisfiedColor.Fprintln(c.out, "The tests were completed successfully!")
}

// DisableColor turns colors off, e.g. when stdout is not a terminal.
func DisableColor() {
	color.NoColor = true
}
