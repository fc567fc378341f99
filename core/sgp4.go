package core

import (
	"errors"
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/fov-simulator/model"
)

var ErrEmptyTLE = errors.New("both TLE lines are required")

// SGP4Config describes an orbital trajectory source: instead of a synthetic
// kinematic model, the route is produced by propagating a real two-line
// element set and sampling the resulting ECEF track.
type SGP4Config struct {
	TLELine1 string `json:"tle_line1"`
	TLELine2 string `json:"tle_line2"`

	// Epoch is the simulation time of step 0.
	Epoch time.Time `json:"epoch"`

	Steps int `json:"steps"`

	// DT is the simulated seconds between consecutive steps.
	DT float64 `json:"dt"`

	// Scale converts propagated kilometres into scene units. A zero value
	// defaults to 1 (route in kilometres).
	Scale float64 `json:"scale,omitempty"`
}

// NewSGP4Route propagates the TLE over Steps samples spaced DT seconds
// apart and returns the ECEF track scaled into scene units.
func NewSGP4Route(cfg SGP4Config) (model.Route, error) {
	if cfg.TLELine1 == "" || cfg.TLELine2 == "" {
		return nil, ErrEmptyTLE
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStepCount, cfg.Steps)
	}
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTimeStep, cfg.DT)
	}

	scale := cfg.Scale
	if scale == 0 {
		scale = 1
	}

	sat := satellite.TLEToSat(cfg.TLELine1, cfg.TLELine2, satellite.GravityWGS72)

	route := make(model.Route, cfg.Steps)
	for i := range route {
		sampleTime := cfg.Epoch.Add(time.Duration(float64(i) * cfg.DT * float64(time.Second)))
		year, month, day := sampleTime.Date()
		hour, min, sec := sampleTime.Clock()

		posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
		jd := satellite.JDay(year, int(month), day, hour, min, sec)
		gmst := satellite.ThetaG_JD(jd)
		posECEF := satellite.ECIToECEF(posECI, gmst)

		route[i] = model.Position{
			X: posECEF.X * scale,
			Y: posECEF.Y * scale,
			Z: posECEF.Z * scale,
		}
	}
	return route, nil
}
