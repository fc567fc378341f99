package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/signalsfoundry/fov-simulator/model"
)

// Trajectory modes selectable from a scenario.
const (
	ModeRandomWalk = "random_walk"
	ModeLinear     = "linear"
	ModeOrbit      = "orbit"
	ModeSpiral     = "spiral"
	ModeWaypoint   = "waypoint"
	ModeSGP4       = "sgp4"
)

var (
	ErrUnknownMode      = errors.New("unknown trajectory mode")
	ErrMissingModeParam = errors.New("missing parameters for trajectory mode")
)

// TrajectorySpec selects one generation mode and carries its parameters.
// Exactly the block matching Mode must be present.
type TrajectorySpec struct {
	Mode string `json:"mode"`

	RandomWalk *RandomWalkConfig `json:"random_walk,omitempty"`
	Linear     *LinearConfig     `json:"linear,omitempty"`
	Orbit      *OrbitConfig      `json:"orbit,omitempty"`
	Spiral     *SpiralConfig     `json:"spiral,omitempty"`
	Waypoint   *WaypointConfig   `json:"waypoint,omitempty"`
	SGP4       *SGP4Config       `json:"sgp4,omitempty"`
}

// Scenario is a complete run description: one airborne agent, one ground
// target, and the sensor parameters. The presentation layer feeds these in
// as plain data; nothing here touches rendering.
type Scenario struct {
	Name   string         `json:"name"`
	UAV    TrajectorySpec `json:"uav"`
	Target TrajectorySpec `json:"target"`
	FOV    FOVConfig      `json:"fov"`
}

// scenarioJSON keeps the wire shape unexported so it can evolve without
// breaking the Scenario API.
type scenarioJSON struct {
	Name   string          `json:"name"`
	UAV    *TrajectorySpec `json:"uav"`
	Target *TrajectorySpec `json:"target"`
	FOV    *FOVConfig      `json:"fov"`
}

// LoadScenario reads a JSON scenario from r and validates the structural
// invariants that can be checked without generating anything: mode
// dispatch, the waypoint velocity/checkpoint invariant, and the sensor
// parameter ranges.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}
	if payload.UAV == nil || payload.Target == nil {
		return nil, fmt.Errorf("LoadScenario: scenario needs both uav and target trajectories")
	}

	scn := &Scenario{
		Name:   payload.Name,
		UAV:    *payload.UAV,
		Target: *payload.Target,
	}
	if payload.FOV != nil {
		scn.FOV = *payload.FOV
	}

	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("LoadScenario: %w", err)
	}
	return scn, nil
}

// Validate checks the scenario's structural invariants.
func (s *Scenario) Validate() error {
	if err := validateSpec("uav", s.UAV); err != nil {
		return err
	}
	if err := validateSpec("target", s.Target); err != nil {
		return err
	}
	if s.FOV.AngleDegrees < 0 || s.FOV.AngleDegrees >= 90 {
		return fmt.Errorf("fov: %w: %g", ErrInvalidFOVAngle, s.FOV.AngleDegrees)
	}
	if s.FOV.Radius <= 0 {
		return fmt.Errorf("fov: %w: %g", ErrInvalidFOVRadius, s.FOV.Radius)
	}
	return nil
}

func validateSpec(who string, spec TrajectorySpec) error {
	switch spec.Mode {
	case ModeRandomWalk:
		if spec.RandomWalk == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
		return prefixErr(who, spec.RandomWalk.validate())
	case ModeLinear:
		if spec.Linear == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
	case ModeOrbit:
		if spec.Orbit == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
	case ModeSpiral:
		if spec.Spiral == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
	case ModeWaypoint:
		if spec.Waypoint == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
		wp := spec.Waypoint
		if len(wp.Checkpoints) < 2 {
			return fmt.Errorf("%s: %w: got %d", who, ErrTooFewCheckpoints, len(wp.Checkpoints))
		}
		if len(wp.Velocities) != len(wp.Checkpoints)-1 {
			return fmt.Errorf("%s: %w: %d checkpoints, %d velocities",
				who, ErrVelocityCount, len(wp.Checkpoints), len(wp.Velocities))
		}
	case ModeSGP4:
		if spec.SGP4 == nil {
			return fmt.Errorf("%s: %w: %s", who, ErrMissingModeParam, spec.Mode)
		}
	default:
		return fmt.Errorf("%s: %w: %q", who, ErrUnknownMode, spec.Mode)
	}
	return nil
}

func prefixErr(who string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", who, err)
}

// BuildTrajectoryRoute dispatches on the spec's mode and generates the
// route. Only the random-walk mode consumes randomness; the deterministic
// models ignore rng entirely.
func BuildTrajectoryRoute(spec TrajectorySpec, kind model.AgentKind, rng *rand.Rand) (model.Route, error) {
	switch spec.Mode {
	case ModeRandomWalk:
		if spec.RandomWalk == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		if kind == model.AgentKindGround {
			return NewGroundRoute(*spec.RandomWalk, rng)
		}
		return NewAirborneRoute(*spec.RandomWalk, rng)
	case ModeLinear:
		if spec.Linear == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		return NewLinearRoute(*spec.Linear)
	case ModeOrbit:
		if spec.Orbit == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		return NewOrbitRoute(*spec.Orbit)
	case ModeSpiral:
		if spec.Spiral == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		return NewSpiralRoute(*spec.Spiral)
	case ModeWaypoint:
		if spec.Waypoint == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		return NewWaypointRoute(*spec.Waypoint)
	case ModeSGP4:
		if spec.SGP4 == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingModeParam, spec.Mode)
		}
		return NewSGP4Route(*spec.SGP4)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, spec.Mode)
	}
}

// DefaultScenario reproduces the stock demo run: a waypoint-driven UAV
// climbing through a fixed checkpoint table while the target patrols the
// ground, observed by a 70° sensor with a unit-radius footprint.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name: "default",
		UAV: TrajectorySpec{
			Mode: ModeWaypoint,
			Waypoint: &WaypointConfig{
				Checkpoints: []model.Position{
					{X: 0, Y: 0, Z: 0},
					{X: 5, Y: 12, Z: 20},
					{X: 10, Y: 5, Z: 20},
					{X: 13, Y: 20, Z: 25},
					{X: 18, Y: 13, Z: 25},
					{X: 23, Y: 21, Z: 25},
				},
				Velocities: []float64{2, 3, 4, 2, 1.5},
				DT:         0.1,
			},
		},
		Target: TrajectorySpec{
			Mode: ModeWaypoint,
			Waypoint: &WaypointConfig{
				Checkpoints: []model.Position{
					{X: 0, Y: 0, Z: 0},
					{X: 9, Y: 13, Z: 0},
					{X: 20, Y: 19, Z: 0},
					{X: 10, Y: 25, Z: 0},
					{X: 18, Y: 10, Z: 0},
					{X: 30, Y: 30, Z: 0},
				},
				Velocities: []float64{3, 2, 2, 5, 1},
				DT:         0.1,
			},
		},
		FOV: FOVConfig{AngleDegrees: 70, Radius: 1},
	}
}

// RandomWalkScenario builds a scenario where both agents follow bounded
// random walks of the given length, matching the stochastic demo mode.
func RandomWalkScenario(steps int, maxStep float64, fov FOVConfig) *Scenario {
	return &Scenario{
		Name: "random_walk",
		UAV: TrajectorySpec{
			Mode:       ModeRandomWalk,
			RandomWalk: &RandomWalkConfig{Steps: steps, MaxStep: maxStep},
		},
		Target: TrajectorySpec{
			Mode:       ModeRandomWalk,
			RandomWalk: &RandomWalkConfig{Steps: steps, MaxStep: maxStep, GroundConstrained: true},
		},
		FOV: fov,
	}
}
