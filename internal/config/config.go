package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSystem        = "solar"
	DefaultStep          = 150.0
	DefaultTicksPerFrame = 100
	DefaultDuration      = 365.25 * 86400
	DefaultSampleEvery   = 100
	DefaultScaleAU       = 10.0
	DefaultFPS           = 30
	DefaultDataDir       = ".spacesim"
)

// MaxTicks bounds the number of ticks a run may need.
const MaxTicks = math.MaxInt32

// EnvPrefix prefixes every environment override, e.g. SPACESIM_STEP.
const EnvPrefix = "SPACESIM_"

type Config struct {
	System        string    `yaml:"system"`
	Step          float64   `yaml:"step"`
	TicksPerFrame int       `yaml:"ticks_per_frame"`
	Duration      float64   `yaml:"duration"`
	SampleEvery   int       `yaml:"sample_every"`
	Workers       int       `yaml:"workers"`
	StopOnError   bool      `yaml:"stop_on_error"`
	ScaleAU       float64   `yaml:"scale_au"`
	FPS           int       `yaml:"fps"`
	DataDir       string    `yaml:"data_dir"`
	Log           LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		System:        DefaultSystem,
		Step:          DefaultStep,
		TicksPerFrame: DefaultTicksPerFrame,
		Duration:      DefaultDuration,
		SampleEvery:   DefaultSampleEvery,
		Workers:       1,
		ScaleAU:       DefaultScaleAU,
		FPS:           DefaultFPS,
		DataDir:       DefaultDataDir,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadOver(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOver reads a yaml file over base; keys missing from the file keep
// base's values.
func LoadOver(path string, base *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from SPACESIM_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("SYSTEM", &c.System)
	float("STEP", &c.Step)
	integer("TICKS_PER_FRAME", &c.TicksPerFrame)
	float("DURATION", &c.Duration)
	integer("SAMPLE_EVERY", &c.SampleEvery)
	integer("WORKERS", &c.Workers)
	float("SCALE_AU", &c.ScaleAU)
	integer("FPS", &c.FPS)
	str("DATA_DIR", &c.DataDir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup(EnvPrefix + "STOP_ON_ERROR"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSTOP_ON_ERROR: %w", EnvPrefix, err))
		} else {
			c.StopOnError = b
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error
	if c.System == "" {
		errs = append(errs, errors.New("system must be set"))
	}
	if math.IsNaN(c.Step) || math.IsInf(c.Step, 0) || c.Step < 0 {
		errs = append(errs, fmt.Errorf("step must be a finite non-negative number, got %g", c.Step))
	}
	if c.TicksPerFrame < 1 {
		errs = append(errs, fmt.Errorf("ticks_per_frame must be at least 1, got %d", c.TicksPerFrame))
	}
	if math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0) || c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must be a finite non-negative number, got %g", c.Duration))
	} else if c.Step > 0 && c.Duration/c.Step > MaxTicks {
		errs = append(errs, fmt.Errorf("duration %g at step %g needs more than %d ticks", c.Duration, c.Step, MaxTicks))
	}
	if c.SampleEvery < 1 {
		errs = append(errs, fmt.Errorf("sample_every must be at least 1, got %d", c.SampleEvery))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if !(c.ScaleAU > 0) {
		errs = append(errs, fmt.Errorf("scale_au must be positive, got %g", c.ScaleAU))
	}
	if c.FPS < 1 {
		errs = append(errs, fmt.Errorf("fps must be at least 1, got %d", c.FPS))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Ticks is the number of whole ticks needed to cover Duration.
func (c *Config) Ticks() int {
	if c.Step <= 0 {
		return 0
	}
	q := math.Ceil(c.Duration / c.Step)
	if !(q < MaxTicks) {
		return MaxTicks
	}
	return int(q)
}
