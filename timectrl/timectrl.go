package timectrl

import (
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time. Consumers that
// only need to read the clock (renderers, exporters) depend on this rather
// than the concrete controller type, which keeps them testable.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Step returns the index of the most recently replayed step, or -1
	// before the first step.
	Step() int
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances one step per tick of wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping simulation time by Tick.
	Accelerated
)

// TimeController replays a completed run step by step, advancing simulation
// time by Tick per step and notifying registered listeners. Routes are
// fixed-length, so a replay always covers exactly the requested number of
// steps. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	currentStep int

	listeners []func(step int, simTime time.Time)
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
		currentStep: -1,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Step returns the most recently replayed step index. Implements SimClock.
func (tc *TimeController) Step() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentStep
}

// SetTime overrides the current simulation time without emitting steps.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every replayed step.
func (tc *TimeController) AddListener(fn func(step int, simTime time.Time)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start replays totalSteps steps in a separate goroutine. It returns a
// channel that is closed when the replay finishes.
func (tc *TimeController) Start(totalSteps int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.currentStep = -1
		tc.mu.Unlock()

		var ticker *time.Ticker
		if tc.Mode == RealTime {
			ticker = time.NewTicker(tc.Tick)
			defer ticker.Stop()
		}

		for step := 0; step < totalSteps; step++ {
			if ticker != nil {
				<-ticker.C
			}
			simTime = simTime.Add(tc.Tick)

			tc.mu.Lock()
			tc.currentTime = simTime
			tc.currentStep = step
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(step, simTime)
			}
		}
	}()
	return done
}
