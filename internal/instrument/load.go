package instrument

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Electronic load commands.
const (
	CmdCurrent = "CURR"
	CmdVoltage = "VOLT"

	QueryCurrent         = "CURR?"
	QueryVoltage         = "VOLT?"
	QueryMeasuredCurrent = "MEAS:CURR?"
	QueryMeasuredVoltage = "MEAS:VOLT?"
	QueryMeasuredPower   = "MEAS:POW?"
)

// ErrMalformedReading is returned when a query answer is not a decimal number.
var ErrMalformedReading = errors.New("malformed instrument reading")

// ProtocolError reports a command the load does not recognize.
type ProtocolError struct {
	Command string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unrecognized load command %q", e.Command)
}

// Command is a parsed load command line.
type Command struct {
	Name     string  // CURR, VOLT, MEAS:CURR, ...
	Query    bool    // trailing '?'
	Value    float64 // only for setters
	HasValue bool
}

// ParseCommand validates a load command line such as "CURR 3.5" or "MEAS:POW?".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, &ProtocolError{Command: line}
	}
	head := fields[0]

	if strings.HasSuffix(head, "?") {
		if len(fields) != 1 {
			return Command{}, &ProtocolError{Command: line}
		}
		name := strings.TrimSuffix(head, "?")
		switch name {
		case CmdCurrent, CmdVoltage, "MEAS:CURR", "MEAS:VOLT", "MEAS:POW":
			return Command{Name: name, Query: true}, nil
		}
		return Command{}, &ProtocolError{Command: line}
	}

	if head != CmdCurrent && head != CmdVoltage {
		return Command{}, &ProtocolError{Command: line}
	}
	if len(fields) != 2 {
		return Command{}, &ProtocolError{Command: line}
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Command{}, &ProtocolError{Command: line}
	}
	return Command{Name: head, Value: v, HasValue: true}, nil
}

// FormatSetter renders a setter command, e.g. FormatSetter(CmdCurrent, 3) == "CURR 3".
func FormatSetter(name string, value float64) string {
	return name + " " + FormatValue(value)
}

// FormatValue renders a reading the way the load answers queries.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SetLoadCurrent commands the load current in amperes.
func SetLoadCurrent(ctx context.Context, l ElectronicLoad, amps float64) error {
	return l.Write(ctx, FormatSetter(CmdCurrent, amps))
}

// SetLoadVoltage commands the load voltage in volts.
func SetLoadVoltage(ctx context.Context, l ElectronicLoad, volts float64) error {
	return l.Write(ctx, FormatSetter(CmdVoltage, volts))
}

// Measure sends a query and parses the decimal answer.
func Measure(ctx context.Context, l ElectronicLoad, query string) (float64, error) {
	raw, err := l.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s answered %q", ErrMalformedReading, query, raw)
	}
	return v, nil
}
