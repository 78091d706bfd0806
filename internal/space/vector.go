package space

import "math"

// Vector2 is a position, velocity or force in the simulation plane.
type Vector2 struct {
	X, Y float64
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{v.X + o.X, v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{v.X - o.X, v.Y - o.Y}
}

func (v Vector2) Scale(k float64) Vector2 {
	return Vector2{v.X * k, v.Y * k}
}

// Len returns the Euclidean length.
func (v Vector2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2) Equal(o Vector2) bool {
	return v.X == o.X && v.Y == o.Y
}

func (v Vector2) NotEqual(o Vector2) bool {
	return !v.Equal(o)
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3-D cross product of v and o.
func (v Vector2) Cross(o Vector2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Unit returns v scaled to length 1. The zero vector stays zero.
func (v Vector2) Unit() Vector2 {
	l := v.Len()
	if l == 0 {
		return Vector2{}
	}
	return v.Scale(1 / l)
}

func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
