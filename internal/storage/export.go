package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Tracks []ExportTrack `json:"tracks,omitempty"`
}

type ExportTrack struct {
	ID    uint64       `json:"id"`
	Name  string       `json:"name"`
	Times []float64    `json:"times"`
	XY    [][2]float64 `json:"xy"`
}

// ExportJSON writes a run's metadata and, when withTracks is set, every
// body's sampled positions as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string, withTracks bool) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Run: *meta}

	if withTracks {
		points, err := s.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		for _, tr := range Tracks(points) {
			et := ExportTrack{ID: uint64(tr.ID), Name: tr.Name, Times: tr.Times}
			for _, p := range tr.Positions {
				et.XY = append(et.XY, [2]float64{p.X, p.Y})
			}
			data.Tracks = append(data.Tracks, et)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
