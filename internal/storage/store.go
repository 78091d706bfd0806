package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/spacesim/internal/sim"
	"github.com/san-kum/spacesim/internal/space"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"tick", "time", "id", "name", "category", "x", "y", "vx", "vy"}

// Store keeps one directory per recorded run. Runs are write-once output;
// nothing here rebuilds a universe.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	System      string
	Step        float64
	Duration    float64
	SampleEvery int
	Workers     int
}

type BodyInfo struct {
	ID       space.BodyID `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Mass     float64      `json:"mass"`
	Color    string       `json:"color"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	System      string             `json:"system"`
	Timestamp   time.Time          `json:"timestamp"`
	Step        float64            `json:"step"`
	Duration    float64            `json:"duration"`
	SampleEvery int                `json:"sample_every"`
	Workers     int                `json:"workers"`
	Ticks       int                `json:"ticks"`
	Samples     int                `json:"samples"`
	Errors      []string           `json:"errors,omitempty"`
	Bodies      []BodyInfo         `json:"bodies"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and trajectory.csv for result and returns the run id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := s.now()
	runID, runDir, err := s.makeRunDir(info.System, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		System:      info.System,
		Timestamp:   now,
		Step:        info.Step,
		Duration:    info.Duration,
		SampleEvery: info.SampleEvery,
		Workers:     info.Workers,
		Ticks:       result.TicksTaken,
		Samples:     len(result.Samples),
		Metrics:     result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	if len(result.Samples) > 0 {
		for _, b := range result.Samples[0].Bodies {
			meta.Bodies = append(meta.Bodies, BodyInfo{
				ID:       b.ID,
				Name:     b.Name,
				Category: b.Category.String(),
				Mass:     b.Mass,
				Color:    b.Color.Hex(),
			})
		}
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

// makeRunDir creates a fresh directory, suffixing the id when two runs of
// the same system land in the same second.
func (s *Store) makeRunDir(system string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%s", system, now.Format("20060102_150405"))
	for i := 1; ; i++ {
		id := base
		if i > 1 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return f.Close()
}

func writeTrajectory(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		tick := strconv.Itoa(smp.Tick)
		t := formatFloat(smp.Time)
		for _, b := range smp.Bodies {
			row := []string{
				tick,
				t,
				strconv.FormatUint(uint64(b.ID), 10),
				b.Name,
				b.Category.String(),
				formatFloat(b.Position.X),
				formatFloat(b.Position.Y),
				formatFloat(b.Velocity.X),
				formatFloat(b.Velocity.Y),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// Point is one body at one sample of a recorded run.
type Point struct {
	Tick     int
	Time     float64
	ID       space.BodyID
	Name     string
	Category string
	Position space.Vector2
	Velocity space.Vector2
}

// LoadTrajectory reads trajectory.csv back as points in file order.
func (s *Store) LoadTrajectory(runID string) ([]Point, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(trajectoryHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trajectory of %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []Point{}, nil
	}

	points := make([]Point, 0, len(records)-1)
	for i, rec := range records[1:] {
		p, err := parsePoint(rec)
		if err != nil {
			return nil, fmt.Errorf("trajectory of %s, row %d: %w", runID, i+2, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(rec []string) (Point, error) {
	var (
		p    Point
		errs []error
	)
	parseF := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	tick, err := strconv.Atoi(rec[0])
	if err != nil {
		errs = append(errs, err)
	}
	id, err := strconv.ParseUint(rec[2], 10, 64)
	if err != nil {
		errs = append(errs, err)
	}

	p.Tick = tick
	p.Time = parseF(rec[1])
	p.ID = space.BodyID(id)
	p.Name = rec[3]
	p.Category = rec[4]
	p.Position = space.Vector2{X: parseF(rec[5]), Y: parseF(rec[6])}
	p.Velocity = space.Vector2{X: parseF(rec[7]), Y: parseF(rec[8])}
	return p, errors.Join(errs...)
}

// Track is the sampled path of one body.
type Track struct {
	ID        space.BodyID
	Name      string
	Times     []float64
	Positions []space.Vector2
}

// Tracks groups points by body, in order of first appearance.
func Tracks(points []Point) []Track {
	index := make(map[space.BodyID]int)
	var tracks []Track
	for _, p := range points {
		i, ok := index[p.ID]
		if !ok {
			i = len(tracks)
			index[p.ID] = i
			tracks = append(tracks, Track{ID: p.ID, Name: p.Name})
		}
		tracks[i].Times = append(tracks[i].Times, p.Time)
		tracks[i].Positions = append(tracks[i].Positions, p.Position)
	}
	return tracks
}
