// Package space provides the gravity core of the simulator.
//
// The package defines the value types and the registry that every other
// layer reads from:
//
//   - [Vector2]: 2-D vector value type
//   - [Body]: a simulated point mass tagged with a [Category]
//   - [Universe]: body registry, category views, gravity and time stepping
//
// # Example
//
//	u := space.New(150, nil)
//	sun := space.NewStar("Sun", 1.9891e30, 0.025, space.Vector2{}, space.Vector2{}, space.RGB(1, 1, 0))
//	u.Add(sun)
//	earth := space.NewPlanet("Earth", 5.9736e24, 0.0125, space.Vector2{X: 149598261e3}, space.Vector2{Y: 29783}, space.RGB(0, 1, 0))
//	u.Add(earth)
//	if err := u.Tick(); err != nil {
//		// recoverable: degenerate pairs or zero-mass bodies were skipped
//	}
//
// # Thread Safety
//
// Universe instances are NOT thread-safe. A single owner drives Add,
// RemoveMostRecent and Tick. [Universe.SetWorkers] only parallelises the
// inside of a gravity pass; writes to each body's force stay serial.
package space
