package model

import "math"

// Position is a point in scene coordinates. The ground plane is z = 0;
// z is expected to be non-negative but not enforced here.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns p + other.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub returns p - other.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Scale returns p multiplied component-wise by s.
func (p Position) Scale(s float64) Position {
	return Position{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Norm returns the Euclidean norm of the position vector.
func (p Position) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// HorizontalNorm returns the norm of the (x, y) projection. This equals
// |cross(p, ẑ)|, which the spiral model uses to derive angular velocity.
func (p Position) HorizontalNorm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Route is an ordered sequence of positions, one per simulated step.
// Once a generator returns a Route it is treated as immutable; consumers
// that need to modify one must work on a Clone.
type Route []Position

// Len returns the number of steps in the route.
func (r Route) Len() int { return len(r) }

// Clone returns an independent copy of the route.
func (r Route) Clone() Route {
	if r == nil {
		return nil
	}
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// Altitudes returns the z-coordinate of every step as a fresh slice.
func (r Route) Altitudes() []float64 {
	out := make([]float64, len(r))
	for i, p := range r {
		out[i] = p.Z
	}
	return out
}
