package core

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/fov-simulator/kb"
	"github.com/signalsfoundry/fov-simulator/model"
)

type capturingRecorder struct {
	completed  int
	failed     int
	agentCount int
	lastRecord *model.DetectionRecord
}

func (c *capturingRecorder) ObserveRun(d time.Duration, rec *model.DetectionRecord) {
	c.completed++
	c.lastRecord = rec
}

func (c *capturingRecorder) ObserveRunFailure() { c.failed++ }
func (c *capturingRecorder) SetAgentCount(n int) {
	c.agentCount = n
}

func TestSimulationEngine_RegistersAgents(t *testing.T) {
	store := kb.NewKnowledgeBase()
	rec := &capturingRecorder{}
	NewSimulationEngine(store, WithRunRecorder(rec))

	if store.GetAgent(AgentIDUAV) == nil || store.GetAgent(AgentIDTarget) == nil {
		t.Fatalf("engine must register both agents")
	}
	if rec.agentCount != 2 {
		t.Fatalf("expected agent count 2, got %d", rec.agentCount)
	}

	// A second engine over the same KB must tolerate the existing agents.
	NewSimulationEngine(store)
	if got := len(store.ListAgents()); got != 2 {
		t.Fatalf("expected 2 agents after re-registration, got %d", got)
	}
}

func TestSimulationEngine_Run_DefaultScenario(t *testing.T) {
	store := kb.NewKnowledgeBase()
	rec := &capturingRecorder{}
	engine := NewSimulationEngine(store, WithRunRecorder(rec))

	run, err := engine.Run(context.Background(), DefaultScenario(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.RunID == "" {
		t.Fatalf("run must carry an ID")
	}
	if len(run.FOVRoute) != len(run.UAVRoute) || len(run.GroundTrace) != len(run.UAVRoute) {
		t.Fatalf("derived routes must match the airborne route length: uav=%d fov=%d trace=%d",
			len(run.UAVRoute), len(run.FOVRoute), len(run.GroundTrace))
	}
	if run.Record.Steps() == 0 {
		t.Fatalf("detection record is empty")
	}
	if run.Record.Steps() > len(run.TargetRoute) || run.Record.Steps() > len(run.FOVRoute) {
		t.Fatalf("detection evaluated beyond the common prefix")
	}
	for i, p := range run.GroundTrace {
		if p.Z != 0 {
			t.Fatalf("ground trace off the ground at step %d: z=%g", i, p.Z)
		}
	}

	// The default UAV table climbs from the ground to a 25-unit ceiling.
	if run.Record.MinHeight != 0 || run.Record.MaxHeight != 25 {
		t.Fatalf("unexpected altitude bounds [%g, %g]", run.Record.MinHeight, run.Record.MaxHeight)
	}
	if run.Record.FOVAngleDegrees != 70 || run.Record.FOVRadius != 1 {
		t.Fatalf("record lost the sensor parameters: %#v", run.Record)
	}

	if stored := store.GetRunData(run.RunID); stored != run {
		t.Fatalf("run not stored in the knowledge base")
	}
	if uav := store.GetAgent(AgentIDUAV); uav.Route.Len() != run.UAVRoute.Len() {
		t.Fatalf("uav agent route not attached")
	}
	if rec.completed != 1 || rec.failed != 0 {
		t.Fatalf("recorder saw completed=%d failed=%d", rec.completed, rec.failed)
	}
}

func TestSimulationEngine_Run_SeedReproducible(t *testing.T) {
	scn := RandomWalkScenario(200, 0.5, FOVConfig{AngleDegrees: 45, Radius: 2})

	runA, err := NewSimulationEngine(kb.NewKnowledgeBase()).Run(context.Background(), scn, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runB, err := NewSimulationEngine(kb.NewKnowledgeBase()).Run(context.Background(), scn, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range runA.UAVRoute {
		if runA.UAVRoute[i] != runB.UAVRoute[i] {
			t.Fatalf("uav routes diverge at step %d under the same seed", i)
		}
	}
	for i := range runA.TargetRoute {
		if runA.TargetRoute[i] != runB.TargetRoute[i] {
			t.Fatalf("target routes diverge at step %d under the same seed", i)
		}
	}
	if runA.Record.HitCount != runB.Record.HitCount {
		t.Fatalf("hit counts diverge under the same seed: %d vs %d",
			runA.Record.HitCount, runB.Record.HitCount)
	}
}

func TestSimulationEngine_Run_InvalidScenario(t *testing.T) {
	store := kb.NewKnowledgeBase()
	rec := &capturingRecorder{}
	engine := NewSimulationEngine(store, WithRunRecorder(rec))

	scn := DefaultScenario()
	scn.FOV.Radius = 0

	if _, err := engine.Run(context.Background(), scn, 1); err == nil {
		t.Fatalf("expected validation error")
	}
	if rec.failed != 1 || rec.completed != 0 {
		t.Fatalf("recorder saw completed=%d failed=%d", rec.completed, rec.failed)
	}
	if got := len(store.ListRunIDs()); got != 0 {
		t.Fatalf("failed run must not be stored, got %d runs", got)
	}
}

func TestSimulationEngine_RunListeners(t *testing.T) {
	engine := NewSimulationEngine(kb.NewKnowledgeBase())

	var seen []*model.RunData
	engine.RegisterRunListener(func(run *model.RunData) {
		seen = append(seen, run)
	})

	run, err := engine.Run(context.Background(), DefaultScenario(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != run {
		t.Fatalf("listener not invoked with the completed run")
	}
}
