package space

// TotalMomentum returns Σ m·v over all bodies.
func (u *Universe) TotalMomentum() Vector2 {
	var p Vector2
	for _, b := range u.bodies {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

func (u *Universe) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range u.bodies {
		ke += 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
	}
	return ke
}

// PotentialEnergy sums -G·mA·mB/r over all pairs. Coincident pairs are skipped.
func (u *Universe) PotentialEnergy() float64 {
	pe := 0.0
	for i, a := range u.bodies {
		for _, b := range u.bodies[i+1:] {
			r := b.Position.Sub(a.Position).Len()
			if r == 0 {
				continue
			}
			pe -= G * a.Mass * b.Mass / r
		}
	}
	return pe
}

func (u *Universe) TotalEnergy() float64 {
	return u.KineticEnergy() + u.PotentialEnergy()
}

// AngularMomentum returns Σ m·(r × v) about the origin.
func (u *Universe) AngularMomentum() float64 {
	l := 0.0
	for _, b := range u.bodies {
		l += b.Mass * b.Position.Cross(b.Velocity)
	}
	return l
}

// CenterOfMass returns the mass-weighted mean position and the total mass.
func (u *Universe) CenterOfMass() (Vector2, float64) {
	var sum Vector2
	total := 0.0
	for _, b := range u.bodies {
		sum = sum.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return Vector2{}, 0
	}
	return sum.Scale(1 / total), total
}
