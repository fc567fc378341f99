package core

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/fov-simulator/internal/logging"
	"github.com/signalsfoundry/fov-simulator/kb"
	"github.com/signalsfoundry/fov-simulator/model"
)

// Fixed agent IDs: each engine simulates one airborne vehicle and one
// ground target, re-generating their routes on every run.
const (
	AgentIDUAV    = "uav"
	AgentIDTarget = "target"
)

// RunRecorder receives run outcomes; the engine drives it without
// depending on any particular metrics backend.
type RunRecorder interface {
	ObserveRun(d time.Duration, rec *model.DetectionRecord)
	ObserveRunFailure()
	SetAgentCount(n int)
}

// EngineOption configures a SimulationEngine.
type EngineOption func(*SimulationEngine)

// WithLogger attaches a structured logger to the engine.
func WithLogger(log logging.Logger) EngineOption {
	return func(se *SimulationEngine) {
		if log != nil {
			se.log = log
		}
	}
}

// WithRunRecorder attaches a metrics recorder to the engine.
func WithRunRecorder(r RunRecorder) EngineOption {
	return func(se *SimulationEngine) { se.recorder = r }
}

// SimulationEngine executes complete simulation runs: it generates the two
// agent routes, derives the sensor footprint, computes the detection
// record, and stores the result in the knowledge base. Each run owns its
// own pseudo-random source, so batches of runs may execute in parallel on
// separate engines without sharing state.
type SimulationEngine struct {
	KB *kb.KnowledgeBase

	log          logging.Logger
	recorder     RunRecorder
	runListeners []func(*model.RunData)
}

// NewSimulationEngine constructs an engine over the given knowledge base
// and registers the two agents it simulates.
func NewSimulationEngine(store *kb.KnowledgeBase, opts ...EngineOption) *SimulationEngine {
	se := &SimulationEngine{
		KB:  store,
		log: logging.Noop(),
	}
	for _, opt := range opts {
		opt(se)
	}

	// Ignore duplicate errors: a restarted engine may reuse a KB that
	// already holds the two agents.
	_ = store.AddAgent(&model.AgentDefinition{ID: AgentIDUAV, Name: "UAV", Kind: model.AgentKindAirborne})
	_ = store.AddAgent(&model.AgentDefinition{ID: AgentIDTarget, Name: "Ground target", Kind: model.AgentKindGround})
	if se.recorder != nil {
		se.recorder.SetAgentCount(len(store.ListAgents()))
	}
	return se
}

// RegisterRunListener registers a callback invoked after every completed
// run, once the run data is stored in the KB.
func (se *SimulationEngine) RegisterRunListener(fn func(*model.RunData)) {
	se.runListeners = append(se.runListeners, fn)
}

// Run executes one complete simulation run of the given scenario. The seed
// fully determines stochastic trajectory modes, making runs reproducible.
func (se *SimulationEngine) Run(ctx context.Context, scn *Scenario, seed int64) (*model.RunData, error) {
	start := time.Now()

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := se.log.With(logging.String("run_id", runID))

	tracer := otel.Tracer("fov-simulator/core")
	ctx, span := tracer.Start(ctx, "SimulationEngine.Run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("scenario", scn.Name),
			attribute.Int64("seed", seed),
		),
	)
	defer span.End()

	run, err := se.executeRun(ctx, scn, seed, runID)
	if err != nil {
		if se.recorder != nil {
			se.recorder.ObserveRunFailure()
		}
		log.Error(ctx, "run failed", logging.String("error", err.Error()))
		return nil, err
	}

	elapsed := time.Since(start)
	if se.recorder != nil {
		se.recorder.ObserveRun(elapsed, run.Record)
	}
	span.SetAttributes(
		attribute.Int("run.steps", run.Record.Steps()),
		attribute.Int("run.hits", run.Record.HitCount),
	)
	log.Info(ctx, "run completed",
		logging.Int("steps", run.Record.Steps()),
		logging.Int("hits", run.Record.HitCount),
		logging.Float64("hit_ratio", run.Record.HitRatio()),
		logging.Float64("max_height", run.Record.MaxHeight),
	)

	for _, fn := range se.runListeners {
		fn(run)
	}
	return run, nil
}

func (se *SimulationEngine) executeRun(ctx context.Context, scn *Scenario, seed int64, runID string) (*model.RunData, error) {
	if scn == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))

	uavRoute, err := BuildTrajectoryRoute(scn.UAV, model.AgentKindAirborne, rng)
	if err != nil {
		return nil, fmt.Errorf("uav trajectory: %w", err)
	}
	targetRoute, err := BuildTrajectoryRoute(scn.Target, model.AgentKindGround, rng)
	if err != nil {
		return nil, fmt.Errorf("target trajectory: %w", err)
	}

	fovRoute, err := DeriveFOVRoute(uavRoute, scn.FOV.AngleDegrees)
	if err != nil {
		return nil, fmt.Errorf("fov route: %w", err)
	}
	groundTrace := DeriveGroundTrace(uavRoute)

	// Trajectory modes with independent step counts (e.g. two waypoint
	// tables) may produce routes of different lengths; detection is
	// evaluated over the common prefix. ComputeDetectionRecord itself
	// stays strict about equal lengths.
	n := len(targetRoute)
	if len(fovRoute) < n {
		n = len(fovRoute)
	}
	record, err := ComputeDetectionRecord(targetRoute[:n], fovRoute[:n], scn.FOV.Radius)
	if err != nil {
		return nil, fmt.Errorf("detection: %w", err)
	}
	record.FOVAngleDegrees = scn.FOV.AngleDegrees

	minH, maxH, err := RouteAltitudeBounds(uavRoute)
	if err != nil {
		return nil, fmt.Errorf("altitude bounds: %w", err)
	}
	record.MinHeight = minH
	record.MaxHeight = maxH

	if err := se.KB.SetAgentRoute(AgentIDUAV, uavRoute); err != nil {
		return nil, err
	}
	if err := se.KB.SetAgentRoute(AgentIDTarget, targetRoute); err != nil {
		return nil, err
	}

	run := &model.RunData{
		RunID:       runID,
		CompletedAt: time.Now().UTC(),
		UAVRoute:    uavRoute,
		TargetRoute: targetRoute,
		GroundTrace: groundTrace,
		FOVRoute:    fovRoute,
		Record:      record,
	}
	if err := se.KB.AddRunData(run); err != nil {
		return nil, err
	}
	return run, nil
}
