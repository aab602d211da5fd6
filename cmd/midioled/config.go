package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/midihub/midioled/internal/monitor"
)

const envPrefix = "MIDIOLED_"

type options struct {
	configPath string
	envFile    string
	debug      bool
	preview    bool
}

func bindFlags(f *pflag.FlagSet, cfg *monitor.Config, opts *options) {
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with "+envPrefix+"* overrides (ignored if missing)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging (adds source location)")
	f.BoolVar(&opts.preview, "preview", false, "mirror the panel in a desktop window")

	f.StringVar(&cfg.SerialDevice, "serial", cfg.SerialDevice, "serial device of the panel controller (empty: none)")
	f.IntVar(&cfg.SerialBaud, "baud", cfg.SerialBaud, "serial baud rate")
	f.StringVar(&cfg.TriggerPath, "trigger", cfg.TriggerPath, "hot-plug trigger file polled for changes")
	f.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "minimum interval between events of one input")
	f.DurationVar(&cfg.LatchDuration, "latch", cfg.LatchDuration, "how long released notes stay on screen")
	f.DurationVar(&cfg.FlashDuration, "flash", cfg.FlashDuration, "highlight time of a changed field")
	f.IntVar(&cfg.MaxBubbles, "max-bubbles", cfg.MaxBubbles, "maximum notes shown at once")
	f.IntVar(&cfg.OctaveOffset, "octave-offset", cfg.OctaveOffset, "octave shift applied to note names")
	f.BoolVar(&cfg.ClearChordOnShort, "clear-chord-on-short", cfg.ClearChordOnShort, "blank the chord row when fewer than three notes are held")
	f.IntVar(&cfg.PreviewScale, "preview-scale", cfg.PreviewScale, "pixel scale of the preview window")
}

// resolveConfig merges defaults, the YAML file, the environment and the
// flags the user actually set, in that order of precedence.
func resolveConfig(f *pflag.FlagSet, flagCfg monitor.Config, opts *options) (monitor.Config, error) {
	cfg := monitor.DefaultConfig()

	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("env file %q: %w", opts.envFile, err)
	}
	if opts.configPath == "" {
		opts.configPath = os.Getenv(envPrefix + "CONFIG")
	}
	if opts.configPath != "" {
		if err := monitor.LoadConfigFile(opts.configPath, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg, opts); err != nil {
		return cfg, err
	}
	applyFlags(f, &cfg, flagCfg)
	return cfg, nil
}

func applyEnv(cfg *monitor.Config, opts *options) error {
	if v, ok := os.LookupEnv(envPrefix + "SERIAL"); ok {
		cfg.SerialDevice = v
	}
	if v, ok := os.LookupEnv(envPrefix + "TRIGGER"); ok {
		cfg.TriggerPath = v
	}
	if v, ok := os.LookupEnv(envPrefix + "BAUD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBAUD: %w", envPrefix, err)
		}
		cfg.SerialBaud = n
	}
	if v, ok := os.LookupEnv(envPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEBUG: %w", envPrefix, err)
		}
		opts.debug = opts.debug || b
	}
	return nil
}

func applyFlags(f *pflag.FlagSet, cfg *monitor.Config, src monitor.Config) {
	set := map[string]func(){
		"serial":               func() { cfg.SerialDevice = src.SerialDevice },
		"baud":                 func() { cfg.SerialBaud = src.SerialBaud },
		"trigger":              func() { cfg.TriggerPath = src.TriggerPath },
		"debounce":             func() { cfg.Debounce = src.Debounce },
		"latch":                func() { cfg.LatchDuration = src.LatchDuration },
		"flash":                func() { cfg.FlashDuration = src.FlashDuration },
		"max-bubbles":          func() { cfg.MaxBubbles = src.MaxBubbles },
		"octave-offset":        func() { cfg.OctaveOffset = src.OctaveOffset },
		"clear-chord-on-short": func() { cfg.ClearChordOnShort = src.ClearChordOnShort },
		"preview-scale":        func() { cfg.PreviewScale = src.PreviewScale },
	}
	f.Visit(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
}
