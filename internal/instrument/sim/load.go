package sim

import (
	"context"
	"sync"

	"load_transient/internal/instrument"
)

// Load simulates an electronic load in constant-current mode. Measured power
// is the commanded current times the commanded voltage.
type Load struct {
	mu       sync.Mutex
	current  float64
	voltage  float64
	buffer   string
	buffered bool
}

var _ instrument.ElectronicLoad = (*Load)(nil)

func NewLoad() *Load {
	return &Load{}
}

// Write executes a setter, or evaluates a query into the read buffer.
func (l *Load) Write(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, err := instrument.ParseCommand(command)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cmd.Query {
		l.buffer = l.answer(cmd)
		l.buffered = true
		return nil
	}
	switch cmd.Name {
	case instrument.CmdCurrent:
		l.current = cmd.Value
	case instrument.CmdVoltage:
		l.voltage = cmd.Value
	}
	return nil
}

// Read returns and clears the answer of the last written query.
func (l *Load) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.buffered {
		return "", nil
	}
	out := l.buffer
	l.buffer, l.buffered = "", false
	return out, nil
}

// Query answers a query command directly.
func (l *Load) Query(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cmd, err := instrument.ParseCommand(command)
	if err != nil {
		return "", err
	}
	if !cmd.Query {
		return "", &instrument.ProtocolError{Command: command}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.answer(cmd), nil
}

func (l *Load) answer(cmd instrument.Command) string {
	switch cmd.Name {
	case instrument.CmdVoltage, "MEAS:VOLT":
		return instrument.FormatValue(l.voltage)
	case "MEAS:POW":
		return instrument.FormatValue(l.current * l.voltage)
	default: // CURR, MEAS:CURR
		return instrument.FormatValue(l.current)
	}
}
