package config

import (
	"os"
	"time"

	"github.com/core-tools/hsu-lifesim/pkg/errors"
	"github.com/core-tools/hsu-lifesim/pkg/scenario"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const DefaultInterval = 2 * time.Second

// Config is the optional run settings file. Every field may be omitted.
type Config struct {
	Interval   time.Duration    `yaml:"interval,omitempty"`
	Scenario   string           `yaml:"scenario,omitempty"` // used only when no scenario argument is given
	PIDFile    string           `yaml:"pid_file,omitempty"`
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
}

// ThresholdsConfig overrides the heartbeat count at which a scenario fires
type ThresholdsConfig struct {
	Error uint64 `yaml:"error,omitempty"`
	Crash uint64 `yaml:"crash,omitempty"`
	Quick uint64 `yaml:"quick,omitempty"`
}

func DefaultConfig() *Config {
	config := &Config{}
	setConfigDefaults(config)
	return config
}

// LoadConfigFromFile loads run settings from a YAML file. Missing values are
// filled with defaults; the result still has to go through ValidateConfig.
func LoadConfigFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	setConfigDefaults(&config)

	return &config, nil
}

// ValidateConfig reports every invalid value. It does not modify config.
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	var err error
	if config.Interval <= 0 {
		err = multierr.Append(err, errors.NewValidationError("interval must be positive", nil).
			WithContext("interval", config.Interval.String()))
	}
	if config.Thresholds.Error == 0 {
		err = multierr.Append(err, errors.NewValidationError("error threshold must be at least 1", nil))
	}
	if config.Thresholds.Crash == 0 {
		err = multierr.Append(err, errors.NewValidationError("crash threshold must be at least 1", nil))
	}
	if config.Thresholds.Quick == 0 {
		err = multierr.Append(err, errors.NewValidationError("quick threshold must be at least 1", nil))
	}
	return err
}

// Normalize replaces invalid values with defaults so that a bad file never
// keeps the simulator from starting.
func Normalize(config *Config) {
	if config == nil {
		return
	}
	if config.Interval <= 0 {
		config.Interval = 0
	}
	setConfigDefaults(config)
}

// ScenarioThresholds converts the thresholds for the scenario package.
func (c *Config) ScenarioThresholds() scenario.Thresholds {
	return scenario.Thresholds{
		Error: c.Thresholds.Error,
		Crash: c.Thresholds.Crash,
		Quick: c.Thresholds.Quick,
	}
}

func setConfigDefaults(config *Config) {
	defaults := scenario.DefaultThresholds()

	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.Thresholds.Error == 0 {
		config.Thresholds.Error = defaults.Error
	}
	if config.Thresholds.Crash == 0 {
		config.Thresholds.Crash = defaults.Crash
	}
	if config.Thresholds.Quick == 0 {
		config.Thresholds.Quick = defaults.Quick
	}
}
