package config

import "sort"

// Presets are named run configurations. Zero fields are filled from
// DefaultConfig by GetPreset.
var Presets = map[string]*Config{
	"quick": {
		System: "solar", Step: 150, Duration: 30 * 86400, SampleEvery: 50,
	},
	"year": {
		System: "solar", Step: 150, Duration: 365.25 * 86400, SampleEvery: 200,
	},
	"outer": {
		System: "solar", Step: 3600, Duration: 10 * 365.25 * 86400, SampleEvery: 100,
	},
	"lunar": {
		System: "earth-moon", Step: 10, Duration: 27.3 * 86400, SampleEvery: 100,
	},
	"binary": {
		System: "binary", Step: 600, Duration: 2 * 365.25 * 86400, SampleEvery: 100,
	},
}

// GetPreset returns a copy of the named preset merged over the defaults,
// or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.System = p.System
	if p.Step > 0 {
		cfg.Step = p.Step
	}
	if p.Duration > 0 {
		cfg.Duration = p.Duration
	}
	if p.SampleEvery > 0 {
		cfg.SampleEvery = p.SampleEvery
	}
	if p.Workers > 0 {
		cfg.Workers = p.Workers
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
