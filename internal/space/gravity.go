package space

import "errors"

// ParallelThreshold is the body count from which AccumulateGravity splits
// the pair triangle across workers.
const ParallelThreshold = 64

// AccumulateGravity adds the Newtonian attraction of every unordered pair of
// bodies to both bodies' Force, equal and opposite. Pairs at zero distance,
// or close enough that the force is not finite, contribute nothing and are
// reported as *PairError wrapping ErrDegenerateGeometry.
func (u *Universe) AccumulateGravity() error {
	n := len(u.bodies)
	if u.workers > 1 && n >= ParallelThreshold {
		return u.accumulateParallel()
	}

	var errs []error
	for i := 0; i < n; i++ {
		a := u.bodies[i]
		for j := i + 1; j < n; j++ {
			b := u.bodies[j]
			f, err := pairForce(a, b)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			a.Force = a.Force.Add(f)
			b.Force = b.Force.Sub(f)
		}
	}
	return errors.Join(errs...)
}

// pairForce returns the force exerted on a by b. Coincident bodies, and
// bodies so close that the force overflows, are degenerate.
func pairForce(a, b *Body) (Vector2, error) {
	d := b.Position.Sub(a.Position)
	r := d.Len()
	if r == 0 {
		return Vector2{}, &PairError{A: a.id, B: b.id, Err: ErrDegenerateGeometry}
	}
	f := G * a.Mass * b.Mass / (r * r)
	force := d.Scale(1 / r).Scale(f)
	if !force.IsFinite() {
		return Vector2{}, &PairError{A: a.id, B: b.id, Err: ErrDegenerateGeometry}
	}
	return force, nil
}

func (u *Universe) accumulateParallel() error {
	n := len(u.bodies)
	forces := make([][]Vector2, u.workers)
	errs := make([][]error, u.workers)

	ParallelFor(n, u.workers, ParallelThreshold/4, func(w, start, end int) {
		buf := make([]Vector2, n)
		for i := start; i < end; i++ {
			a := u.bodies[i]
			for j := i + 1; j < n; j++ {
				f, err := pairForce(a, u.bodies[j])
				if err != nil {
					errs[w] = append(errs[w], err)
					continue
				}
				buf[i] = buf[i].Add(f)
				buf[j] = buf[j].Sub(f)
			}
		}
		forces[w] = buf
	})

	var all []error
	for w := range forces {
		if forces[w] != nil {
			for i, b := range u.bodies {
				b.Force = b.Force.Add(forces[w][i])
			}
		}
		all = append(all, errs[w]...)
	}
	return errors.Join(all...)
}

// AdvanceTime moves every body forward by the step duration using the force
// accumulated since the last step, then clears that force. Bodies with zero
// mass are left untouched and reported as *BodyError wrapping
// ErrZeroMassBody.
func (u *Universe) AdvanceTime() error {
	dt := u.stepDuration
	var errs []error
	for _, b := range u.bodies {
		if b.Mass == 0 {
			errs = append(errs, &BodyError{ID: b.id, Name: b.Name, Err: ErrZeroMassBody})
			continue
		}
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		acc := b.Force.Scale(1 / b.Mass)
		b.Position = b.Position.Add(acc.Scale(dt * dt).Scale(0.5))
		b.Velocity = b.Velocity.Add(acc.Scale(dt))
		b.Force = Vector2{}
	}
	u.elapsed += dt
	return errors.Join(errs...)
}
