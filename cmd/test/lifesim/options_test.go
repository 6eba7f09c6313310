package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/core-tools/hsu-lifesim/pkg/config"
	"github.com/core-tools/hsu-lifesim/pkg/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettings_Scenario(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		expected scenario.Scenario
	}{
		{"no arguments", nil, scenario.Normal},
		{"error", []string{"error"}, scenario.Error},
		{"crash", []string{"crash"}, scenario.Crash},
		{"panic alias", []string{"panic"}, scenario.Crash},
		{"quick", []string{"quick"}, scenario.Quick},
		{"unknown word", []string{"restart-me"}, scenario.Normal},
		{"only first positional counts", []string{"quick", "error"}, scenario.Quick},
		{"after flags", []string{"--interval", "10ms", "error"}, scenario.Error},
		{"after unknown flag", []string{"--verbose", "quick"}, scenario.Quick},
		{"after double dash", []string{"--", "crash"}, scenario.Crash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, problems := resolveSettings(tt.argv)

			assert.NoError(t, problems)
			assert.Equal(t, tt.expected, settings.Scenario)
		})
	}
}

func TestResolveSettings_Defaults(t *testing.T) {
	settings, problems := resolveSettings(nil)

	require.NoError(t, problems)
	assert.Equal(t, runSettings{
		Scenario:   scenario.Normal,
		Thresholds: scenario.DefaultThresholds(),
		Interval:   config.DefaultInterval,
	}, settings)
}

func TestResolveSettings_Flags(t *testing.T) {
	settings, problems := resolveSettings([]string{"--interval", "150ms", "--pid-file", "/tmp/x.pid", "--debug", "error"})

	require.NoError(t, problems)
	assert.Equal(t, 150*time.Millisecond, settings.Interval)
	assert.Equal(t, "/tmp/x.pid", settings.PIDFile)
	assert.True(t, settings.Debug)
	assert.Equal(t, scenario.Error, settings.Scenario)
}

func TestResolveSettings_NeverRefusesToStart(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"malformed interval", []string{"--interval=soon", "error"}},
		{"negative interval", []string{"--interval=-1s"}},
		{"missing config", []string{"--config", filepath.Join(os.TempDir(), "does-not-exist-lifesim.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, problems := resolveSettings(tt.argv)

			assert.Error(t, problems)
			assert.Equal(t, config.DefaultInterval, settings.Interval)
			assert.Equal(t, scenario.DefaultThresholds(), settings.Thresholds)
		})
	}
}

func TestResolveSettings_MalformedValueKeepsScenario(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		expected scenario.Scenario
	}{
		{"separate value", []string{"--interval", "bogus", "error"}, scenario.Error},
		{"inline value", []string{"--interval=bogus", "quick"}, scenario.Quick},
		{"with other options", []string{"--debug", "--pid-file", "/tmp/x.pid", "--interval", "bogus", "crash"}, scenario.Crash},
		{"after double dash", []string{"--interval", "bogus", "--", "error"}, scenario.Error},
		{"no scenario", []string{"--interval", "bogus"}, scenario.Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, problems := resolveSettings(tt.argv)

			assert.Error(t, problems)
			assert.Equal(t, tt.expected, settings.Scenario)
			assert.Equal(t, config.DefaultInterval, settings.Interval)
		})
	}
}

func TestSkipOptions(t *testing.T) {
	assert.Equal(t,
		[]string{"--interval=x", "error", "-v"},
		skipOptions([]string{"--config", "a.yaml", "--interval=x", "--debug", "error", "--pid-file", "p", "-v"}))
	assert.Equal(t, []string{"--pid-file"}, skipOptions([]string{"--", "--pid-file"}))
	assert.Empty(t, skipOptions([]string{"--interval"}))
}

func TestResolveSettings_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interval: "40ms"
scenario: "error"
pid_file: "/tmp/from-config.pid"
thresholds:
  error: 5
`), 0644))

	settings, problems := resolveSettings([]string{"--config", path})
	require.NoError(t, problems)
	assert.Equal(t, 40*time.Millisecond, settings.Interval)
	assert.Equal(t, scenario.Error, settings.Scenario)
	assert.Equal(t, "/tmp/from-config.pid", settings.PIDFile)
	assert.Equal(t, uint64(5), settings.Thresholds.Error)

	// Flags and the positional argument win over the file
	settings, problems = resolveSettings([]string{"--config", path, "--interval", "5ms", "--pid-file", "/tmp/flag.pid", "quick"})
	require.NoError(t, problems)
	assert.Equal(t, 5*time.Millisecond, settings.Interval)
	assert.Equal(t, scenario.Quick, settings.Scenario)
	assert.Equal(t, "/tmp/flag.pid", settings.PIDFile)
}

func TestResolveSettings_InvalidConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`interval: "-3s"`), 0644))

	settings, problems := resolveSettings([]string{"--config", path})

	assert.Error(t, problems)
	assert.Equal(t, config.DefaultInterval, settings.Interval)
}
