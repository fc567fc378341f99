package core

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/signalsfoundry/fov-simulator/model"
)

var (
	ErrInvalidStepCount = errors.New("number of steps must be positive")
	ErrInvalidMaxStep   = errors.New("max step must be positive")
	ErrNilRandSource    = errors.New("random source must not be nil")
)

// RandomWalkConfig parameterises the bounded random-walk generator. The
// random source is passed in explicitly so that runs are reproducible under
// a fixed seed and independent runs never share pseudo-random state.
type RandomWalkConfig struct {
	Steps   int     `json:"steps"`
	MaxStep float64 `json:"max_step"`

	// GroundConstrained pins the z displacement to zero on every step.
	GroundConstrained bool `json:"ground_constrained"`

	Start model.Position `json:"start"`
}

func (cfg RandomWalkConfig) validate() error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStepCount, cfg.Steps)
	}
	if cfg.MaxStep <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidMaxStep, cfg.MaxStep)
	}
	return nil
}

// NewRandomWalkRoute generates a route of exactly cfg.Steps positions by
// drawing per-axis displacements uniformly from [0, MaxStep), inserting
// random turns into the displacement buffer, and accumulating from the
// start position. The displacement buffer is owned by this call; nothing
// aliases it across generations.
func NewRandomWalkRoute(cfg RandomWalkConfig, rng *rand.Rand) (model.Route, error) {
	if rng == nil {
		return nil, ErrNilRandSource
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	steps := drawRandomSteps(cfg, rng)
	insertRandomTurns(steps, rng)
	return accumulateRoute(cfg.Start, steps), nil
}

// NewAirborneRoute generates an unconstrained random walk and then applies
// altitude capping, matching how an airborne agent climbs and then holds a
// ceiling for the remainder of the run.
func NewAirborneRoute(cfg RandomWalkConfig, rng *rand.Rand) (model.Route, error) {
	cfg.GroundConstrained = false
	route, err := NewRandomWalkRoute(cfg, rng)
	if err != nil {
		return nil, err
	}
	capAltitude(route, rng)
	return route, nil
}

// NewGroundRoute generates a ground-constrained random walk. Altitude
// capping is never applied here: z is identically zero by construction.
func NewGroundRoute(cfg RandomWalkConfig, rng *rand.Rand) (model.Route, error) {
	cfg.GroundConstrained = true
	return NewRandomWalkRoute(cfg, rng)
}

func drawRandomSteps(cfg RandomWalkConfig, rng *rand.Rand) []model.Position {
	steps := make([]model.Position, cfg.Steps)
	for i := range steps {
		steps[i].X = rng.Float64() * cfg.MaxStep
		steps[i].Y = rng.Float64() * cfg.MaxStep
		if !cfg.GroundConstrained {
			steps[i].Z = rng.Float64() * cfg.MaxStep
		}
	}
	return steps
}

// insertRandomTurns overwrites windows of the displacement buffer to model
// discrete heading changes: on a turn, one horizontal axis stalls, the other
// triples, and climb stops. Turn count is drawn from [0, steps/100), so
// walks under 100 steps never turn. Overlapping turns compose by repeated
// overwriting in insertion order.
func insertRandomTurns(steps []model.Position, rng *rand.Rand) {
	n := len(steps)
	if n < 100 {
		return
	}
	numTurns := rng.Intn(n / 100)
	if numTurns == 0 {
		return
	}

	duration := 1
	if n > 50 {
		duration = n / 50
	}

	for t := 0; t < numTurns; t++ {
		start := rng.Intn(n)
		end := start + duration
		if end > n {
			// Window clipped at the tail of the walk.
			end = n
		}
		axis := rng.Intn(2)
		for i := start; i < end; i++ {
			if axis == 0 {
				steps[i].X = 0
				steps[i].Y *= 3
			} else {
				steps[i].Y = 0
				steps[i].X *= 3
			}
			steps[i].Z = 0
		}
	}
}

func accumulateRoute(start model.Position, steps []model.Position) model.Route {
	route := make(model.Route, len(steps))
	pos := start
	for i, s := range steps {
		pos = pos.Add(s)
		route[i] = pos
	}
	return route
}

// capAltitude freezes the route's altitude from a randomly chosen index in
// the first half of the run onward. Because random-walk z displacements are
// non-negative, the frozen value is the route's ceiling.
func capAltitude(route model.Route, rng *rand.Rand) {
	if len(route) < 2 {
		return
	}
	stop := rng.Intn(len(route) / 2)
	ceiling := route[stop].Z
	for i := stop + 1; i < len(route); i++ {
		route[i].Z = ceiling
	}
}
