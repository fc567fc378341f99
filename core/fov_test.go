package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/fov-simulator/model"
)

func TestDeriveFOVRoute_FirstStepOffsetsAlongY(t *testing.T) {
	airborne := model.Route{{X: 2, Y: 3, Z: 10}}
	route, err := DeriveFOVRoute(airborne, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Step 0 has yaw 0: the footprint center sits tan(70°) ahead on y.
	want := model.Position{X: 2, Y: 3 + math.Tan(70*math.Pi/180)}
	if !positionsAlmostEqual(route[0], want) {
		t.Fatalf("got %#v want %#v", route[0], want)
	}
}

func TestDeriveFOVRoute_HeadingSweeps(t *testing.T) {
	airborne := make(model.Route, 10)
	for i := range airborne {
		airborne[i] = model.Position{Z: 5}
	}

	// 45° declination gives a unit offset, so step 9 (yaw 90°) lands on +x.
	route, err := DeriveFOVRoute(airborne, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !positionsAlmostEqual(route[9], model.Position{X: 1}) {
		t.Fatalf("expected step 9 at (1, 0, 0), got %#v", route[9])
	}
}

func TestDeriveFOVRoute_ZeroAngleIsNadir(t *testing.T) {
	airborne := model.Route{{X: 4, Y: -2, Z: 30}, {X: 5, Y: -1, Z: 31}}
	route, err := DeriveFOVRoute(airborne, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range route {
		want := model.Position{X: airborne[i].X, Y: airborne[i].Y}
		if !positionsAlmostEqual(p, want) {
			t.Fatalf("step %d: got %#v want nadir %#v", i, p, want)
		}
	}
}

func TestDeriveFOVRoute_StaysOnGround(t *testing.T) {
	airborne := model.Route{{Z: 10}, {X: 1, Z: 11}, {X: 2, Z: 12}}
	route, err := DeriveFOVRoute(airborne, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range route {
		if p.Z != 0 {
			t.Fatalf("footprint center left the ground at step %d: z=%g", i, p.Z)
		}
	}
}

func TestDeriveFOVRoute_RejectsOutOfRangeAngle(t *testing.T) {
	airborne := model.Route{{Z: 10}}
	for _, angle := range []float64{90, 95, -1} {
		if _, err := DeriveFOVRoute(airborne, angle); !errors.Is(err, ErrInvalidFOVAngle) {
			t.Fatalf("angle %g: expected ErrInvalidFOVAngle, got %v", angle, err)
		}
	}
}

func TestDeriveGroundTrace(t *testing.T) {
	airborne := model.Route{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	trace := DeriveGroundTrace(airborne)

	for i, p := range trace {
		if p.X != airborne[i].X || p.Y != airborne[i].Y || p.Z != 0 {
			t.Fatalf("step %d: got %#v", i, p)
		}
	}
	// The input route must not be mutated.
	if airborne[0].Z != 3 || airborne[1].Z != 6 {
		t.Fatalf("ground trace mutated its input: %#v", airborne)
	}
}
