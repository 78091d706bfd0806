package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/spacesim/internal/metrics"
	"github.com/san-kum/spacesim/internal/sim"
	"github.com/san-kum/spacesim/internal/space"
)

// System is a named seed function plus the view it is meant to be watched at.
type System struct {
	Name        string
	Description string
	ScaleAU     float64
	Seed        func(u *space.Universe) error
}

type Registry struct {
	systems map[string]System
}

func NewRegistry() *Registry {
	r := &Registry{systems: make(map[string]System)}

	r.Register(System{
		Name:        "solar",
		Description: "Sun, eight planets, the Moon and a Jovian moon",
		ScaleAU:     10,
		Seed:        seedSolar,
	})
	r.Register(System{
		Name:        "earth-moon",
		Description: "Earth with the Moon on a circular orbit",
		ScaleAU:     0.005,
		Seed:        seedEarthMoon,
	})
	r.Register(System{
		Name:        "sun-earth",
		Description: "Sun and Earth",
		ScaleAU:     1.5,
		Seed:        seedSunEarth,
	})
	r.Register(System{
		Name:        "binary",
		Description: "two equal stars with a circumbinary planet",
		ScaleAU:     6,
		Seed:        seedBinary,
	})

	return r
}

// Register adds or replaces a system.
func (r *Registry) Register(s System) {
	r.systems[s.Name] = s
}

func (r *Registry) GetSystem(name string) (System, error) {
	s, ok := r.systems[name]
	if !ok {
		return System{}, fmt.Errorf("unknown system: %s", name)
	}
	return s, nil
}

func (r *Registry) ListSystems() []string {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seed fills u with the named system.
func (r *Registry) Seed(name string, u *space.Universe) error {
	s, err := r.GetSystem(name)
	if err != nil {
		return err
	}
	if err := s.Seed(u); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	return nil
}

// DefaultMetrics returns fresh metrics for a run of the named system. The
// stability radius is three times the system's view scale.
func (r *Registry) DefaultMetrics(name string) []sim.Metric {
	radius := 3 * AU * 10
	if s, ok := r.systems[name]; ok && s.ScaleAU > 0 {
		radius = 3 * AU * s.ScaleAU
	}
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewStability(radius),
	}
}
