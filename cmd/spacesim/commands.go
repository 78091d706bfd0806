package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/spacesim/internal/analysis"
	"github.com/san-kum/spacesim/internal/automation"
	"github.com/san-kum/spacesim/internal/config"
	"github.com/san-kum/spacesim/internal/experiment"
	"github.com/san-kum/spacesim/internal/export"
	"github.com/san-kum/spacesim/internal/logging"
	"github.com/san-kum/spacesim/internal/space"
	"github.com/san-kum/spacesim/internal/storage"
	"github.com/san-kum/spacesim/internal/viz"
)

const liveLogFile = "live.log"

func runLive(cmd *cobra.Command, args []string) error {
	c := withSystem(cfg, args)
	if err := c.Validate(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	sys, err := registry.GetSystem(c.System)
	if err != nil {
		return err
	}

	// the terminal belongs to the view; logs go to a file under the data dir
	st := storage.New(c.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(c.DataDir, liveLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	logger := logging.New(f, c.Log.Level, c.Log.Format)

	u := space.New(c.Step, logger)
	if err := registry.Seed(c.System, u); err != nil {
		return err
	}
	u.SetWorkers(c.Workers)

	scale := sys.ScaleAU
	if cmd.Flags().Changed("scale") || c.ScaleAU != config.DefaultScaleAU {
		scale = c.ScaleAU
	}

	m := viz.NewModel(u, viz.Options{
		System:        c.System,
		TicksPerFrame: c.TicksPerFrame,
		FPS:           c.FPS,
		ScaleAU:       scale,
		GIFPath:       gifPath,
		Theme:         theme,
		Logger:        logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	c := withSystem(cfg, args)
	out := cmd.OutOrStdout()

	st := storage.New(c.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(c, experiment.NewRegistry(), slog.Default())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "running %s for %s simulated (%d ticks)...\n", c.System, formatSeconds(c.Duration), c.Ticks())
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		System:      c.System,
		Step:        c.Step,
		Duration:    c.Duration,
		SampleEvery: c.SampleEvery,
		Workers:     c.Workers,
	}, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "ticks: %d\n", result.TicksTaken)
	fmt.Fprintf(out, "samples: %d\n", len(result.Samples))
	if n := len(result.Errors); n > 0 {
		fmt.Fprintf(out, "tick errors: %d (first: %v)\n", n, result.Errors[0])
	}
	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}

	if runErr != nil {
		return fmt.Errorf("run stopped early: %w", runErr)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tDURATION\tSTEP\tTICKS\tBODIES\tERRORS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%gs\t%d\t%d\t%d\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			formatSeconds(run.Duration),
			run.Step,
			run.Ticks,
			len(run.Bodies),
			len(run.Errors),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	runID := args[0]
	st := storage.New(cfg.DataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	points, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	tracks := storage.Tracks(points)
	if len(tracks) < 2 {
		return fmt.Errorf("run %s has %d bodies, need at least two to plot distances", runID, len(tracks))
	}

	ref := tracks[0]
	fmt.Fprintf(out, "run %s (%s), %d samples\n\n", meta.ID, meta.System, len(ref.Times))
	for _, tr := range tracks[1:] {
		dist := distances(ref, tr)
		if len(dist) < 2 {
			continue
		}
		graph := asciigraph.Plot(dist,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from %s (AU)", tr.Name, ref.Name)),
		)
		fmt.Fprintln(out, graph)
		if period, err := analysis.OrbitalPeriod(ref, tr); err == nil {
			fmt.Fprintf(out, "estimated period around %s: %s\n", ref.Name, formatSeconds(period))
		}
		fmt.Fprintln(out)
	}

	if svgOut != "" {
		colors := make(map[space.BodyID]string, len(meta.Bodies))
		for _, b := range meta.Bodies {
			colors[b.ID] = b.Color
		}
		svg := export.TracksToSVG(tracks, colors, 800)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", svgOut)
	}
	return nil
}

// distances returns |tr - ref| in AU for every sample both tracks share.
func distances(ref, tr storage.Track) []float64 {
	n := min(len(ref.Positions), len(tr.Positions))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = tr.Positions[i].Sub(ref.Positions[i]).Len() / experiment.AU
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	return st.ExportJSON(cmd.OutOrStdout(), args[0], withTracks)
}

func snapshotSystem(cmd *cobra.Command, args []string) error {
	c := withSystem(cfg, args)
	if err := c.Validate(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	sys, err := registry.GetSystem(c.System)
	if err != nil {
		return err
	}
	u := space.New(c.Step, slog.Default())
	if err := registry.Seed(c.System, u); err != nil {
		return err
	}

	if math.IsNaN(advance) || math.IsInf(advance, 0) || advance < 0 {
		return fmt.Errorf("advance must be a finite non-negative number, got %g", advance)
	}
	ticks := 0
	if advance > 0 {
		if !(c.Step > 0) {
			return fmt.Errorf("advancing needs a positive step, got %g", c.Step)
		}
		q := math.Ceil(advance / c.Step)
		if q > config.MaxTicks {
			return fmt.Errorf("advance %g at step %g needs more than %d ticks", advance, c.Step, config.MaxTicks)
		}
		ticks = int(q)
	}
	var errs []error
	for i := 0; i < ticks; i++ {
		if err := u.Tick(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		slog.Warn("Snapshot ticks failed", "component", "cli", "operation", "snapshot", "count", len(errs), "first", errs[0])
	}

	scale := sys.ScaleAU
	if cmd.Flags().Changed("scale") {
		scale = scaleAU
	}
	center, _ := u.CenterOfMass()
	svg := export.SnapshotToSVG(u.Snapshot(), export.Options{
		Size:    imageSize,
		ScaleAU: scale,
		Center:  center,
	})

	if svgOut == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", svgOut)
	return nil
}

func listSystems(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCALE\tDESCRIPTION")
	for _, name := range registry.ListSystems() {
		sys, err := registry.GetSystem(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g AU\t%s\n", sys.Name, sys.ScaleAU, sys.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYSTEM\tSTEP\tDURATION\tSAMPLE")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%gs\t%s\t%d\n", name, p.System, p.Step, formatSeconds(p.Duration), p.SampleEvery)
	}
	return w.Flush()
}

func benchSystem(cmd *cobra.Command, args []string) error {
	c := withSystem(cfg, args)
	if err := c.Validate(); err != nil {
		return err
	}
	if benchTicks < 1 {
		return fmt.Errorf("ticks must be at least 1, got %d", benchTicks)
	}

	registry := experiment.NewRegistry()
	sys, err := registry.GetSystem(c.System)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %s with %d extra bodies, %d ticks of %gs\n\n", c.System, asteroids, benchTicks, c.Step)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tBODIES\tTIME\tTICKS/SEC")

	for _, n := range []int{1, 2, 4, 8} {
		u := space.New(c.Step, logging.Discard())
		if err := registry.Seed(c.System, u); err != nil {
			return err
		}
		if err := addAsteroids(u, asteroids, sys.ScaleAU*experiment.AU); err != nil {
			return err
		}
		u.SetWorkers(n)

		start := time.Now()
		for i := 0; i < benchTicks; i++ {
			// failed pairs are skipped inside the tick; only speed matters here
			_ = u.Tick()
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, u.Len(), elapsed.Round(time.Microsecond), float64(benchTicks)/elapsed.Seconds())
	}

	return w.Flush()
}

// addAsteroids puts n light planets on circular orbits around the first body
// at random distances up to maxDistance. The layout is the same on every call.
func addAsteroids(u *space.Universe, n int, maxDistance float64) error {
	if n <= 0 {
		return nil
	}
	bodies := u.Bodies()
	if len(bodies) == 0 {
		return space.ErrEmptyRegistry
	}
	parent := bodies[0]
	rng := rand.New(rand.NewSource(42))
	gray := space.RGB(0.6, 0.6, 0.6)

	var errs []error
	for i := 0; i < n; i++ {
		d := maxDistance * (0.2 + 0.8*rng.Float64())
		angle := rng.Float64() * 2 * math.Pi
		if err := space.ValidateOrbit(parent.Mass, d); err != nil {
			return err
		}
		radial := space.Vector2{X: math.Cos(angle), Y: math.Sin(angle)}
		tangent := space.Vector2{X: -radial.Y, Y: radial.X}
		b := space.NewPlanet(
			fmt.Sprintf("Asteroid %d", i+1),
			1e15, 0.002,
			parent.Position.Add(radial.Scale(d)),
			parent.Velocity.Add(tangent.Scale(space.OrbitalSpeed(parent.Mass, d))),
			gray,
		)
		if _, err := u.Add(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runSweep(cmd *cobra.Command, args []string) error {
	c := withSystem(cfg, args)
	if len(sweepSteps) == 0 {
		return fmt.Errorf("no step durations given")
	}

	exp := experiment.New(c, experiment.NewRegistry(), slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %s over %s simulated\n\n", c.System, formatSeconds(c.Duration))
	start := time.Now()
	results, err := exp.Sweep(ctx, sweepSteps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTICKS\tENERGY DRIFT\tMOMENTUM DRIFT\tANGULAR DRIFT\tERRORS")
	for i, r := range results {
		fmt.Fprintf(w, "%gs\t%d\t%.3e\t%.3e\t%.3e\t%d\n",
			sweepSteps[i],
			r.TicksTaken,
			r.Metrics["energy_drift"],
			r.Metrics["momentum_drift"],
			r.Metrics["angular_momentum_drift"],
			len(r.Errors),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d steps\n\n", scenario.Name, len(scenario.Steps))
	results, runErr := automation.RunScenario(ctx, scenario, cfg, experiment.NewRegistry(), storage.New(cfg.DataDir), slog.Default())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSYSTEM\tRUN ID\tTICKS\tENERGY DRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.3e\n", r.Index, r.System, r.RunID, r.Result.TicksTaken, r.Result.Metrics["energy_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatSeconds renders a simulated duration in the largest fitting unit.
func formatSeconds(s float64) string {
	const (
		minute = 60.0
		hour   = 60 * minute
		day    = 24 * hour
		year   = 365.25 * day
	)
	switch {
	case s >= year:
		return trimFloat(s/year) + "y"
	case s >= day:
		return trimFloat(s/day) + "d"
	case s >= hour:
		return trimFloat(s/hour) + "h"
	case s >= minute:
		return trimFloat(s/minute) + "m"
	}
	return trimFloat(s) + "s"
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
