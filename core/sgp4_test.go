package core

import (
	"errors"
	"testing"
	"time"
)

// ISS sample TLE; exact orbital values belong to go-satellite, so these
// tests only check the plumbing around the propagation.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestNewSGP4Route_ChangesOverTime(t *testing.T) {
	route, err := NewSGP4Route(SGP4Config{
		TLELine1: issTLE1,
		TLELine2: issTLE2,
		Epoch:    time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
		Steps:    5,
		DT:       60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Len() != 5 {
		t.Fatalf("expected 5 steps, got %d", route.Len())
	}

	for i := 1; i < route.Len(); i++ {
		if route[i] == route[i-1] {
			t.Fatalf("position did not change between steps %d and %d: %#v", i-1, i, route[i])
		}
	}
}

func TestNewSGP4Route_ScaleAppliesUniformly(t *testing.T) {
	cfg := SGP4Config{
		TLELine1: issTLE1,
		TLELine2: issTLE2,
		Epoch:    time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC),
		Steps:    3,
		DT:       60,
	}

	base, err := NewSGP4Route(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Scale = 0.001
	scaled, err := NewSGP4Route(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range base {
		want := base[i].Scale(0.001)
		if !positionsAlmostEqual(scaled[i], want) {
			t.Fatalf("step %d: got %#v want %#v", i, scaled[i], want)
		}
	}
}

func TestNewSGP4Route_Validation(t *testing.T) {
	if _, err := NewSGP4Route(SGP4Config{TLELine2: issTLE2, Steps: 1, DT: 1}); !errors.Is(err, ErrEmptyTLE) {
		t.Fatalf("expected ErrEmptyTLE, got %v", err)
	}
	if _, err := NewSGP4Route(SGP4Config{TLELine1: issTLE1, TLELine2: issTLE2, Steps: 0, DT: 1}); !errors.Is(err, ErrInvalidStepCount) {
		t.Fatalf("expected ErrInvalidStepCount, got %v", err)
	}
	if _, err := NewSGP4Route(SGP4Config{TLELine1: issTLE1, TLELine2: issTLE2, Steps: 1, DT: 0}); !errors.Is(err, ErrInvalidTimeStep) {
		t.Fatalf("expected ErrInvalidTimeStep, got %v", err)
	}
}
