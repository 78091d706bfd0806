package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/spacesim/internal/config"
)

// resolveConfig layers, lowest first: defaults, --preset, --config file,
// .env and SPACESIM_* variables, then flags the user actually set.
func resolveConfig(cmd *cobra.Command, lookup func(string) (string, bool)) (*config.Config, error) {
	c := config.DefaultConfig()

	if preset != "" {
		c = config.GetPreset(preset)
		if c == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadOver(configFile, c); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		c.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if flags.Changed("step") {
		c.Step = step
	}
	if flags.Changed("time") {
		c.Duration = duration
	}
	if flags.Changed("sample") {
		c.SampleEvery = sampleEvery
	}
	if flags.Changed("workers") {
		c.Workers = workers
	}
	if flags.Changed("stop-on-error") {
		c.StopOnError = stopOnError
	}
	if flags.Changed("ticks") && cmd.Name() != "bench" {
		c.TicksPerFrame = ticksPerFrame
	}
	if flags.Changed("fps") {
		c.FPS = frameRate
	}
	if flags.Changed("scale") {
		c.ScaleAU = scaleAU
	}

	return c, nil
}

// withSystem returns a copy of c targeting the positional system argument,
// if one was given.
func withSystem(c *config.Config, args []string) *config.Config {
	out := *c
	if len(args) > 0 {
		out.System = args[0]
	}
	return &out
}
