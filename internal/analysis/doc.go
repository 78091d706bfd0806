// Package analysis extracts periodic structure from recorded trajectories.
//
//   - [PowerSpectrum]: magnitude spectrum of a real series
//   - [DominantPeriod]: strongest period in an evenly sampled series
//   - [OrbitalPeriod]: period of one track around a reference track
//
// Estimates need the series to span at least one full period; shorter
// series return [ErrTooShort].
package analysis
