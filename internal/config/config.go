// Package config loads bench settings from configs/config.yml with
// environment overrides (BENCH_ prefix, dots replaced by underscores).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"load_transient/internal/instrument/sim"
	"load_transient/internal/models"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "BENCH"
	defaultConfigDir  = "configs"
	defaultConfigName = "config"

	// DefaultSigningKey is only meant for local benches; main warns when it is used.
	DefaultSigningKey = "bench-dev-key"
)

// Config is the full application configuration.
type Config struct {
	Port      string                   `mapstructure:"port"`
	DB        DBConfig                 `mapstructure:"db"`
	Log       LogConfig                `mapstructure:"log"`
	Auth      AuthConfig               `mapstructure:"auth"`
	Test      models.TestConfiguration `mapstructure:"test"`
	Simulator sim.Options              `mapstructure:"simulator"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// setDefaults mirrors configs/config.yml so the binary also runs without a file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")

	v.SetDefault("auth.signing_key", DefaultSigningKey)
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("test.temperature_setpoints", []float64{10, 25, 45})
	v.SetDefault("test.stabilization_timeout", 40*time.Minute)
	v.SetDefault("test.temperature_tolerance", 0.0)
	v.SetDefault("test.load_voltage", 20.0)
	v.SetDefault("test.initial_current", 3.0)
	v.SetDefault("test.final_current", 6.0)
	v.SetDefault("test.current_step", 0.5)
	v.SetDefault("test.poll_interval", 100*time.Millisecond)
	v.SetDefault("test.settle_delay", time.Second)

	v.SetDefault("simulator.chamber_ramp_up_c_per_sec", sim.RampUpCPerSec)
	v.SetDefault("simulator.chamber_ramp_down_c_per_sec", sim.RampDownCPerSec)
	v.SetDefault("simulator.supply_current_a", sim.DefaultSupplyCurrentA)
}

// Load reads the config file at path. An empty path looks for
// configs/config.yml and falls back to defaults when it does not exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(defaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
