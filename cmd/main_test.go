package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	t.Run("serve is the default command", func(t *testing.T) {
		a, err := parseArgs(nil)
		require.NoError(t, err)
		assert.Equal(t, cmdServe, a.command)
		assert.Empty(t, a.configPath)
		assert.Empty(t, a.logLevel)
	})

	t.Run("run with setpoints", func(t *testing.T) {
		a, err := parseArgs([]string{"--config", "bench.yml", "--logLevel", "debug", "run", "--setpoint", "25", "--setpoint", "45", "--noColor"})
		require.NoError(t, err)
		assert.Equal(t, cmdRun, a.command)
		assert.Equal(t, "bench.yml", a.configPath)
		assert.Equal(t, "debug", a.logLevel)
		assert.Equal(t, []float64{25, 45}, a.setpoints)
		assert.True(t, a.noColor)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := parseArgs([]string{"--logLevel", "loud"})
		assert.Error(t, err)
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := parseArgs([]string{"calibrate"})
		assert.Error(t, err)
	})
}
