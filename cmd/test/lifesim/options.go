package main

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/core-tools/hsu-lifesim/pkg/config"
	"github.com/core-tools/hsu-lifesim/pkg/errors"
	"github.com/core-tools/hsu-lifesim/pkg/scenario"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/multierr"
)

type flagOptions struct {
	Interval time.Duration `long:"interval" description:"Heartbeat interval, e.g. 500ms (default 2s)"`
	Config   string        `long:"config" description:"YAML file with run settings"`
	PIDFile  string        `long:"pid-file" description:"Write the process ID to this file while running"`
	Debug    bool          `long:"debug" description:"Write diagnostic logs to stderr"`
}

// runSettings is everything main needs after flags and config are merged.
type runSettings struct {
	Scenario   scenario.Scenario
	Thresholds scenario.Thresholds
	Interval   time.Duration
	PIDFile    string
	Debug      bool
}

// resolveSettings never fails: every problem is returned as a warning and
// replaced by a default, because the simulator must always start.
func resolveSettings(argv []string) (runSettings, error) {
	var problems error

	var opts flagOptions
	parser := flags.NewParser(&opts, flags.IgnoreUnknown|flags.PassDoubleDash)
	parser.Usage = "[options] [error|crash|quick]"
	rest, err := parser.ParseArgs(argv)
	if err != nil {
		problems = multierr.Append(problems, errors.NewValidationError("command line flags parsing failed, using defaults", err))
		opts = flagOptions{}
		rest = skipOptions(argv)
	}
	positional := positionalArgs(rest)

	cfg := config.DefaultConfig()
	if opts.Config != "" {
		loaded, err := config.LoadConfigFromFile(opts.Config)
		if err != nil {
			problems = multierr.Append(problems, err)
		} else {
			cfg = loaded
		}
	}
	if err := config.ValidateConfig(cfg); err != nil {
		problems = multierr.Append(problems, err)
		config.Normalize(cfg)
	}

	settings := runSettings{
		Scenario:   scenario.Parse(cfg.Scenario),
		Thresholds: cfg.ScenarioThresholds(),
		Interval:   cfg.Interval,
		PIDFile:    cfg.PIDFile,
		Debug:      opts.Debug,
	}

	if len(positional) > 0 {
		settings.Scenario = scenario.Select(positional)
	}

	switch {
	case opts.Interval > 0:
		settings.Interval = opts.Interval
	case opts.Interval < 0:
		problems = multierr.Append(problems, errors.NewValidationError(
			fmt.Sprintf("interval must be positive, using %v", settings.Interval), nil).
			WithContext("interval", opts.Interval.String()))
	}

	if opts.PIDFile != "" {
		settings.PIDFile = opts.PIDFile
	}

	return settings, problems
}

// positionalArgs drops the unknown flags go-flags passes through along with
// the positional arguments.
func positionalArgs(rest []string) []string {
	var positional []string
	for _, arg := range rest {
		if !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
		}
	}
	return positional
}

// skipOptions removes our own options from argv, including the separate value
// of a non-boolean option, so a malformed value is never taken for the
// scenario. Everything after "--" is kept as is.
func skipOptions(argv []string) []string {
	valued := valuedOptions()

	var rest []string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			return append(rest, argv[i+1:]...)
		}
		name := strings.TrimPrefix(arg, "--")
		if name == arg || strings.Contains(name, "=") {
			rest = append(rest, arg)
			continue
		}
		if valued[name] {
			i++
		}
	}
	return rest
}

func valuedOptions() map[string]bool {
	valued := make(map[string]bool)
	t := reflect.TypeOf(flagOptions{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if long := field.Tag.Get("long"); long != "" && field.Type.Kind() != reflect.Bool {
			valued[long] = true
		}
	}
	return valued
}
