package experiment

import (
	"errors"
	"math"

	"github.com/san-kum/spacesim/internal/space"
)

// AU is one astronomical unit in meters.
const AU = 149598e6

func addAll(u *space.Universe, bodies ...*space.Body) error {
	var errs []error
	for _, b := range bodies {
		if _, err := u.Add(b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func seedSolar(u *space.Universe) error {
	sun := space.NewStar("Sun", 1.9891e30, 0.025, space.Vector2{}, space.Vector2{}, space.RGB(1, 1, 0))
	mercury := space.NewPlanet("Mercury", 3.3011e23, 0.0125,
		space.Vector2{X: 5790906e4}, space.Vector2{Y: 47870}, space.RGB(0.6, 0.6, 0.6))
	venus := space.NewPlanet("Venus", 4.8685e24, 0.0125,
		space.Vector2{X: 1082089e5}, space.Vector2{Y: 35020}, space.RGB(1, 0.5, 0.5))
	earth := space.NewPlanet("Earth", 5.9736e24, 0.0125,
		space.Vector2{X: 149598261e3}, space.Vector2{Y: 29783}, space.RGB(0, 1, 0))
	mars := space.NewPlanet("Mars", 4.185e23, 0.0125,
		space.Vector2{X: 227939100e3}, space.Vector2{Y: 24077}, space.RGB(1, 0, 0))
	jupiter := space.NewPlanet("Jupiter", 1.8986e27, 0.0125,
		space.Vector2{X: 778547200e3}, space.Vector2{Y: 13.07e3}, space.RGB(0.8, 0.4, 0))
	saturn := space.NewPlanet("Saturn", 5.6834e26, 0.0125,
		space.Vector2{X: 1433449370e3}, space.Vector2{Y: 9.69e3}, space.RGB(0.7, 0.5, 0))
	uranus := space.NewPlanet("Uranus", 8.6810e25, 0.0125,
		space.Vector2{X: 2876679082e3}, space.Vector2{Y: 6.81e3}, space.RGB(0, 0, 0.8))
	neptune := space.NewPlanet("Neptune", 1.0243e26, 0.0125,
		space.Vector2{X: 4452940833e3}, space.Vector2{Y: 5.43e3}, space.RGB(0, 0, 1))

	moon := space.NewSatellite(earth, "Moon", 7.3477e22, 0.00625, 384399e3, space.RGB(0.8, 0.8, 0.8))
	jovian := space.NewSatellite(jupiter, "Jovian Moon", 7.3477e22, 0.00625, 184399e4, space.RGB(0.8, 0.8, 0.8))

	return addAll(u, sun, mercury, venus, earth, moon, mars, jupiter, jovian, saturn, uranus, neptune)
}

func seedEarthMoon(u *space.Universe) error {
	earth := space.NewPlanet("Earth", 5.9736e24, 0.0125, space.Vector2{}, space.Vector2{}, space.RGB(0, 1, 0))
	moon := space.NewSatellite(earth, "Moon", 7.3477e22, 0.00625, 384399e3, space.RGB(0.8, 0.8, 0.8))
	return addAll(u, earth, moon)
}

func seedSunEarth(u *space.Universe) error {
	sun := space.NewStar("Sun", 1.9891e30, 0.025, space.Vector2{}, space.Vector2{}, space.RGB(1, 1, 0))
	earth := space.NewPlanet("Earth", 5.9736e24, 0.0125,
		space.Vector2{X: 149598261e3}, space.Vector2{Y: 29783}, space.RGB(0, 1, 0))
	return addAll(u, sun, earth)
}

// seedBinary places two equal stars one AU apart on a circular mutual orbit
// and a planet on a wide circumbinary orbit.
func seedBinary(u *space.Universe) error {
	const (
		starMass   = 1.0e30
		separation = AU
	)
	v := math.Sqrt(space.G * starMass / (2 * separation))
	a := space.NewStar("Alpha", starMass, 0.02,
		space.Vector2{X: -separation / 2}, space.Vector2{Y: -v}, space.RGB(1, 0.85, 0.4))
	b := space.NewStar("Beta", starMass, 0.02,
		space.Vector2{X: separation / 2}, space.Vector2{Y: v}, space.RGB(1, 0.55, 0.3))

	r := 4 * separation
	vp := math.Sqrt(space.G * 2 * starMass / r)
	p := space.NewPlanet("Tatoo", 5.9736e24, 0.0125,
		space.Vector2{X: r}, space.Vector2{Y: vp}, space.RGB(0.3, 0.6, 1))

	return addAll(u, a, b, p)
}
