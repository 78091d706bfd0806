package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/spacesim/internal/config"
	"github.com/san-kum/spacesim/internal/logging"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logFormat  string

	step        float64
	duration    float64
	sampleEvery int
	workers     int
	preset      string
	stopOnError bool

	ticksPerFrame int
	frameRate     int
	scaleAU       float64
	gifPath       string
	theme         string

	withTracks bool
	svgOut     string
	advance    float64
	imageSize  int
	benchTicks int
	asteroids  int
	sweepSteps []float64
)

// cfg is resolved once per invocation in the root PersistentPreRunE.
var cfg *config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "spacesim [system]",
		Short:        "2-D Newtonian gravity simulator",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, os.LookupEnv)
			if err != nil {
				return err
			}
			cfg = resolved
			logging.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	addLiveFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "watch a system in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addLiveFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "run a system headless and record its trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "simulated seconds per tick")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds to run")
	runCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "record every n ticks")
	runCmd.Flags().IntVar(&workers, "workers", 1, "gravity worker goroutines")
	runCmd.Flags().StringVar(&preset, "preset", "", "run preset (see presets)")
	runCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "stop at the first failed tick")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot each body's distance from the first body",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the orbit tracks as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&withTracks, "tracks", false, "include body tracks")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [system]",
		Short: "render a system as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotSystem,
	}
	snapshotCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")
	snapshotCmd.Flags().Float64Var(&advance, "advance", 0, "simulated seconds to run before rendering")
	snapshotCmd.Flags().Float64Var(&step, "step", config.DefaultStep, "simulated seconds per tick")
	snapshotCmd.Flags().Float64Var(&scaleAU, "scale", 0, "AU per half image (default: the system's view)")
	snapshotCmd.Flags().IntVar(&imageSize, "size", 800, "image size in pixels")

	systemsCmd := &cobra.Command{
		Use:   "systems",
		Short: "list seed systems",
		Args:  cobra.NoArgs,
		RunE:  listSystems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [system]",
		Short: "measure ticks per second for several worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSystem,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 2000, "ticks per measurement")
	benchCmd.Flags().IntVar(&asteroids, "asteroids", 0, "extra small bodies on circular orbits")

	sweepCmd := &cobra.Command{
		Use:   "sweep [system]",
		Short: "compare conservation drift across step durations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64SliceVar(&sweepSteps, "steps", []float64{60, 150, 600, 3600}, "step durations to compare")
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds per member")
	sweepCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "record every n ticks")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "run preset (see presets)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and record every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCmd, snapshotCmd,
		systemsCmd, presetsCmd, benchCmd, sweepCmd, scenarioCmd)

	return rootCmd
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "simulated seconds per tick")
	cmd.Flags().IntVar(&ticksPerFrame, "ticks", config.DefaultTicksPerFrame, "ticks per frame")
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frames per second")
	cmd.Flags().Float64Var(&scaleAU, "scale", 0, "AU per half screen (default: the system's view)")
	cmd.Flags().StringVar(&gifPath, "gif", "spacesim.gif", "recording output (toggle with g)")
	cmd.Flags().StringVar(&theme, "theme", "deep-space", "color theme")
}
