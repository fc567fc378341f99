package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/fov-simulator/model"
)

var (
	ErrInvalidTimeStep   = errors.New("time increment must be positive")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidVelocity   = errors.New("velocity must be positive")
	ErrInvalidRadius     = errors.New("radius must be positive")
	ErrZeroDisplacement  = errors.New("start and end points coincide")
	ErrDegenerateCenter  = errors.New("orbit center coincides with orbit point")
	ErrTooFewCheckpoints = errors.New("waypoint trajectory needs at least two checkpoints")
	ErrVelocityCount     = errors.New("need exactly one velocity per checkpoint segment")
	ErrEmptyTrajectory   = errors.New("trajectory parameters produce zero steps")
)

// The deterministic kinematic models are independent pure constructors:
// each returns a complete Route and is never composed with the random-walk
// post-processing (turn insertion, altitude capping).

// LinearConfig describes a constant-velocity ray sampled for a fixed
// duration. The route does not reach End unless duration and velocity
// happen to align; End only fixes the direction of travel.
type LinearConfig struct {
	Start    model.Position `json:"start"`
	End      model.Position `json:"end"`
	Velocity float64        `json:"velocity"`
	Duration float64        `json:"duration"`
	DT       float64        `json:"dt"`
}

// NewLinearRoute samples floor(Duration/DT) positions along the unit
// direction from Start towards End at the configured velocity.
func NewLinearRoute(cfg LinearConfig) (model.Route, error) {
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTimeStep, cfg.DT)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDuration, cfg.Duration)
	}
	if cfg.Velocity <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidVelocity, cfg.Velocity)
	}

	displacement := cfg.End.Sub(cfg.Start)
	norm := displacement.Norm()
	if norm == 0 {
		return nil, ErrZeroDisplacement
	}
	direction := displacement.Scale(1 / norm)

	numSteps := int(cfg.Duration / cfg.DT)
	if numSteps < 1 {
		return nil, fmt.Errorf("%w: duration=%g dt=%g", ErrEmptyTrajectory, cfg.Duration, cfg.DT)
	}

	stepSize := cfg.Velocity * cfg.DT
	route := make(model.Route, numSteps)
	for i := range route {
		route[i] = cfg.Start.Add(direction.Scale(stepSize * float64(i)))
	}
	return route, nil
}

// OrbitConfig describes a circular orbit in the z-plane of its center.
type OrbitConfig struct {
	Center   model.Position `json:"center"`
	Radius   float64        `json:"radius"`
	Velocity float64        `json:"velocity"`
	Duration float64        `json:"duration"`
	DT       float64        `json:"dt"`
}

// NewOrbitRoute samples a circular orbit with angular velocity
// Velocity/Radius, starting on the positive x-axis of the center.
func NewOrbitRoute(cfg OrbitConfig) (model.Route, error) {
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTimeStep, cfg.DT)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDuration, cfg.Duration)
	}
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRadius, cfg.Radius)
	}

	numSteps := int(cfg.Duration / cfg.DT)
	if numSteps < 1 {
		return nil, fmt.Errorf("%w: duration=%g dt=%g", ErrEmptyTrajectory, cfg.Duration, cfg.DT)
	}

	angularVelocity := cfg.Velocity / cfg.Radius
	route := make(model.Route, numSteps)
	for i := range route {
		angle := angularVelocity * float64(i) * cfg.DT
		route[i] = cfg.Center.Add(model.Position{
			X: cfg.Radius * math.Cos(angle),
			Y: cfg.Radius * math.Sin(angle),
		})
	}
	return route, nil
}

// SpiralConfig describes a contracting-or-expanding spiral between two
// circular orbits around a shared center.
type SpiralConfig struct {
	Start    model.Position `json:"start"`
	End      model.Position `json:"end"`
	Center   model.Position `json:"center"`
	Duration float64        `json:"duration"`
	DT       float64        `json:"dt"`
}

// NewSpiralRoute derives one orbit from the Start displacement and one from
// the End displacement (radius from the displacement norm, angular velocity
// from the horizontal component over the radius), then interpolates between
// the two orbit positions in proportion to elapsed fraction of the run.
func NewSpiralRoute(cfg SpiralConfig) (model.Route, error) {
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTimeStep, cfg.DT)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidDuration, cfg.Duration)
	}

	dispStart := cfg.Start.Sub(cfg.Center)
	dispEnd := cfg.End.Sub(cfg.Center)
	radiusStart := dispStart.Norm()
	radiusEnd := dispEnd.Norm()
	if radiusStart == 0 || radiusEnd == 0 {
		return nil, ErrDegenerateCenter
	}

	// |cross(d, ẑ)| is the horizontal norm of d.
	omegaStart := dispStart.HorizontalNorm() / radiusStart
	omegaEnd := dispEnd.HorizontalNorm() / radiusEnd

	numSteps := int(cfg.Duration / cfg.DT)
	if numSteps < 1 {
		return nil, fmt.Errorf("%w: duration=%g dt=%g", ErrEmptyTrajectory, cfg.Duration, cfg.DT)
	}

	route := make(model.Route, numSteps)
	for i := range route {
		angleStart := omegaStart * float64(i) * cfg.DT
		angleEnd := omegaEnd * float64(i) * cfg.DT

		posStart := cfg.Center.Add(model.Position{
			X: radiusStart * math.Cos(angleStart),
			Y: radiusStart * math.Sin(angleStart),
		})
		posEnd := cfg.Center.Add(model.Position{
			X: radiusEnd * math.Cos(angleEnd),
			Y: radiusEnd * math.Sin(angleEnd),
		})

		frac := float64(i) / float64(numSteps)
		route[i] = posStart.Scale(1 - frac).Add(posEnd.Scale(frac))
	}
	return route, nil
}

// WaypointConfig describes a piecewise-linear traversal of an ordered
// checkpoint sequence. Invariant: len(Velocities) == len(Checkpoints) - 1.
type WaypointConfig struct {
	Checkpoints []model.Position `json:"checkpoints"`
	Velocities  []float64        `json:"velocities"`
	DT          float64          `json:"dt"`
}

// NewWaypointRoute traverses consecutive checkpoint pairs as linear
// segments, each at its own velocity, with a shared time increment. A
// segment's duration is its length over its velocity; segments shorter
// than DT still contribute a single step so no checkpoint is skipped.
func NewWaypointRoute(cfg WaypointConfig) (model.Route, error) {
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTimeStep, cfg.DT)
	}
	if len(cfg.Checkpoints) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewCheckpoints, len(cfg.Checkpoints))
	}
	if len(cfg.Velocities) != len(cfg.Checkpoints)-1 {
		return nil, fmt.Errorf("%w: %d checkpoints, %d velocities",
			ErrVelocityCount, len(cfg.Checkpoints), len(cfg.Velocities))
	}

	var route model.Route
	for seg := 0; seg < len(cfg.Checkpoints)-1; seg++ {
		velocity := cfg.Velocities[seg]
		if velocity <= 0 {
			return nil, fmt.Errorf("%w: segment %d velocity %g", ErrInvalidVelocity, seg, velocity)
		}

		from := cfg.Checkpoints[seg]
		to := cfg.Checkpoints[seg+1]
		length := to.Sub(from).Norm()
		if length == 0 {
			return nil, fmt.Errorf("%w: checkpoints %d and %d", ErrZeroDisplacement, seg, seg+1)
		}

		segRoute, err := NewLinearRoute(LinearConfig{
			Start:    from,
			End:      to,
			Velocity: velocity,
			Duration: math.Max(length/velocity, cfg.DT),
			DT:       cfg.DT,
		})
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", seg, err)
		}
		route = append(route, segRoute...)
	}
	return route, nil
}
