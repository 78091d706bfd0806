package space_test

import (
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/spacesim/internal/space"
)

var _ = Describe("Universe", func() {
	var u *space.Universe

	white := space.RGB(1, 1, 1)

	BeforeEach(func() {
		u = space.New(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("RemoveMostRecent", func() {
		var star, planet, moon *space.Body

		BeforeEach(func() {
			star = space.NewStar("star", 10, 1, space.Vector2{}, space.Vector2{}, white)
			planet = space.NewPlanet("planet", 20, 1, space.Vector2{X: 1}, space.Vector2{}, white)
			moon = space.NewBody(space.Moon, "moon", 30, 1, space.Vector2{X: 2}, space.Vector2{}, white)
			for _, b := range []*space.Body{star, planet, moon} {
				_, err := u.Add(b)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("removes the moon and leaves the star and planet views untouched", func() {
			removed, err := u.RemoveMostRecent()
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeIdenticalTo(moon))

			Expect(u.Moons()).To(BeEmpty())
			Expect(u.Stars()).To(Equal([]*space.Body{star}))
			Expect(u.Planets()).To(Equal([]*space.Body{planet}))
			Expect(u.Bodies()).To(Equal([]*space.Body{star, planet}))
		})

		It("releases the star's emitter slot", func() {
			slot, ok := star.EmitterSlot()
			Expect(ok).To(BeTrue())
			Expect(slot).To(Equal(0))

			for i := 0; i < 3; i++ {
				_, err := u.RemoveMostRecent()
				Expect(err).NotTo(HaveOccurred())
			}
			_, ok = star.EmitterSlot()
			Expect(ok).To(BeFalse())
		})

		It("reports EmptyRegistry once everything is gone and leaves the views alone", func() {
			for i := 0; i < 3; i++ {
				_, err := u.RemoveMostRecent()
				Expect(err).NotTo(HaveOccurred())
			}

			removed, err := u.RemoveMostRecent()
			Expect(err).To(MatchError(space.ErrEmptyRegistry))
			Expect(removed).To(BeNil())
			Expect(u.Len()).To(BeZero())
			Expect(u.Stars()).To(BeEmpty())
			Expect(u.Planets()).To(BeEmpty())
			Expect(u.Moons()).To(BeEmpty())
		})
	})

	Describe("Tick", func() {
		It("pulls a light body toward a heavy one by about 1.99 m in one second", func() {
			heavy := space.NewPlanet("heavy", 5.97e24, 1, space.Vector2{}, space.Vector2{}, white)
			light := space.NewPlanet("light", 1, 1, space.Vector2{X: 1.0e7}, space.Vector2{}, white)
			_, _ = u.Add(heavy)
			_, _ = u.Add(light)

			Expect(u.Tick()).To(Succeed())

			moved := 1.0e7 - light.Position.X
			Expect(moved).To(BeNumerically("~", 0.5*space.G*5.97e24/1.0e14, 1e-6))
			Expect(heavy.Position.X).To(BeNumerically("~", moved/5.97e24, 1e-30))
			Expect(u.Elapsed()).To(Equal(1.0))
		})

		It("keeps a satellite close to its circular orbit for one revolution", func() {
			earth := space.NewPlanet("Earth", 5.9736e24, 1, space.Vector2{}, space.Vector2{}, white)
			_, _ = u.Add(earth)
			moon := space.NewSatellite(earth, "Moon", 1, 1, 384399e3, white)
			_, _ = u.Add(moon)
			Expect(u.SetStepDuration(60)).To(Succeed())

			period := space.OrbitalPeriod(earth.Mass, 384399e3)
			steps := int(period / 60)
			for i := 0; i < steps; i++ {
				Expect(u.Tick()).To(Succeed())
			}

			r := moon.Position.Sub(earth.Position).Len()
			Expect(math.Abs(r-384399e3) / 384399e3).To(BeNumerically("<", 1e-2))
		})

		It("surfaces degenerate pairs without poisoning positions", func() {
			a := space.NewPlanet("a", 1e20, 1, space.Vector2{}, space.Vector2{}, white)
			b := space.NewPlanet("b", 1e20, 1, space.Vector2{}, space.Vector2{}, white)
			_, _ = u.Add(a)
			_, _ = u.Add(b)

			Expect(u.Tick()).To(MatchError(space.ErrDegenerateGeometry))
			Expect(a.Position.IsFinite()).To(BeTrue())
			Expect(b.Position.IsFinite()).To(BeTrue())
			Expect(a.Force).To(Equal(space.Vector2{}))
		})
	})
})
