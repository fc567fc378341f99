package core

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/fov-simulator/model"
)

var (
	ErrRouteLengthMismatch = errors.New("target and fov routes differ in length")
	ErrInvalidFOVRadius    = errors.New("fov radius must be positive")
	ErrEmptyRoute          = errors.New("route is empty")
)

// ComputeDetectionRecord classifies, for every step, whether the ground
// target lies inside the sensor footprint. The classification is on the
// Euclidean distance with a closed boundary: a target exactly on the FOV
// edge counts as detected. The Manhattan distance is recorded alongside.
//
// The routes must already be equal-length; a mismatch is a precondition
// violation and fails immediately rather than producing truncated output.
func ComputeDetectionRecord(target, fov model.Route, radius float64) (*model.DetectionRecord, error) {
	if len(target) != len(fov) {
		return nil, fmt.Errorf("%w: target=%d fov=%d", ErrRouteLengthMismatch, len(target), len(fov))
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidFOVRadius, radius)
	}

	n := len(target)
	rec := &model.DetectionRecord{
		Hits:      make([]bool, n),
		Euclidean: make([]float64, n),
		Manhattan: make([]float64, n),
		FOVRadius: radius,
	}

	for i := 0; i < n; i++ {
		euclidean := EuclideanDistance2D(target[i], fov[i])
		rec.Euclidean[i] = euclidean
		rec.Manhattan[i] = ManhattanDistance2D(target[i], fov[i])
		if euclidean <= radius {
			rec.Hits[i] = true
			rec.HitCount++
		}
	}

	if n > 0 {
		rec.MeanEuclidean = stat.Mean(rec.Euclidean, nil)
		rec.MeanManhattan = stat.Mean(rec.Manhattan, nil)
	}
	return rec, nil
}

// RouteAltitudeBounds returns the minimum and maximum altitude reached over
// the route. Used to fill the run summary for the airborne agent.
func RouteAltitudeBounds(route model.Route) (minHeight, maxHeight float64, err error) {
	if len(route) == 0 {
		return 0, 0, ErrEmptyRoute
	}
	altitudes := route.Altitudes()
	return floats.Min(altitudes), floats.Max(altitudes), nil
}
