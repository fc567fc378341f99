package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/fov-simulator/model"
)

var ErrInvalidFOVAngle = errors.New("fov angle must be in [0, 90) degrees")

// headingSweepDegrees is the synthetic per-step yaw increment of the sensor.
// The heading sweep is independent of the vehicle's actual direction of
// travel; it is preserved as-is for compatibility with the recorded runs.
const headingSweepDegrees = 10.0

// FOVConfig holds the downward-facing sensor parameters: the declination of
// the sensor cone from horizontal and the radius of its ground footprint.
type FOVConfig struct {
	AngleDegrees float64 `json:"angle_degrees"`
	Radius       float64 `json:"radius"`
}

// DeriveFOVRoute projects the airborne route onto the ground as the moving
// center of the sensor footprint. At step i the sensor heading is i·10°;
// the footprint center is offset from the nadir point by tan(angle) along
// that heading.
func DeriveFOVRoute(airborne model.Route, angleDegrees float64) (model.Route, error) {
	if angleDegrees < 0 || angleDegrees >= 90 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidFOVAngle, angleDegrees)
	}

	offset := math.Tan(degToRad(angleDegrees))
	route := make(model.Route, len(airborne))
	for i, p := range airborne {
		yaw := degToRad(float64(i) * headingSweepDegrees)
		route[i] = model.Position{
			X: p.X + offset*math.Sin(yaw),
			Y: p.Y + offset*math.Cos(yaw),
			Z: 0,
		}
	}
	return route, nil
}

// DeriveGroundTrace returns the vertical projection of the airborne route
// onto the ground plane: same (x, y), z forced to zero. Display-only; the
// detection analytics never consume it.
func DeriveGroundTrace(airborne model.Route) model.Route {
	trace := airborne.Clone()
	for i := range trace {
		trace[i].Z = 0
	}
	return trace
}
