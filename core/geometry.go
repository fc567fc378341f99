package core

import (
	"math"

	"github.com/signalsfoundry/fov-simulator/model"
)

// Distance metrics used by the detection analytics. Both operate on the
// ground plane only: the z component is ignored because the target and the
// FOV footprint center are ground-plane quantities (z = 0) by construction.

// EuclideanDistance2D returns the straight-line distance between the (x, y)
// projections of a and b.
func EuclideanDistance2D(a, b model.Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanDistance2D returns the axis-aligned distance between the (x, y)
// projections of a and b.
func ManhattanDistance2D(a, b model.Position) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
