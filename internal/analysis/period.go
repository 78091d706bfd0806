package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/spacesim/internal/storage"
)

var (
	ErrTooShort   = errors.New("analysis: series too short for a period estimate")
	ErrNoSignal   = errors.New("analysis: series has no periodic component")
	ErrUnevenTime = errors.New("analysis: samples are not evenly spaced")
)

// minSamples is the shortest series worth transforming.
const minSamples = 8

// PowerSpectrum returns |X_k| for k in [0, n/2] of the real series data.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(data)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant frequency
// in values, sampled every dt. The bin peak is refined by a parabola through
// its neighbours.
func DominantPeriod(values []float64, dt float64) (float64, error) {
	n := len(values)
	if n < minSamples || !(dt > 0) {
		return 0, ErrTooShort
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	signal := false
	for i, v := range values {
		centered[i] = v - mean
		if math.Abs(centered[i]) > 1e-12*math.Abs(mean) {
			signal = true
		}
	}
	if !signal {
		return 0, ErrNoSignal
	}

	ps := PowerSpectrum(centered)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}

	k := refine(ps, peak)
	if k < 1 {
		// less than one cycle in the series
		return 0, ErrTooShort
	}
	return float64(n) * dt / k, nil
}

func refine(ps []float64, k int) float64 {
	if k <= 0 || k >= len(ps)-1 {
		return float64(k)
	}
	a, b, c := ps[k-1], ps[k], ps[k+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(k)
	}
	return float64(k) + 0.5*(a-c)/denom
}

// OrbitalPeriod estimates how long tr takes to circle ref, from the x
// offset between the two tracks. Only the evenly spaced prefix of the
// samples is used; a final partial interval is dropped.
func OrbitalPeriod(ref, tr storage.Track) (float64, error) {
	n := min(len(ref.Positions), len(tr.Positions), len(tr.Times))
	if n < minSamples {
		return 0, ErrTooShort
	}

	dt := tr.Times[1] - tr.Times[0]
	if !(dt > 0) {
		return 0, ErrUnevenTime
	}
	even := 2
	for even < n && math.Abs(tr.Times[even]-tr.Times[even-1]-dt) <= 1e-9*dt {
		even++
	}

	offsets := make([]float64, even)
	for i := range offsets {
		offsets[i] = tr.Positions[i].X - ref.Positions[i].X
	}
	return DominantPeriod(offsets, dt)
}
