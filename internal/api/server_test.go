package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/signalsfoundry/fov-simulator/core"
	"github.com/signalsfoundry/fov-simulator/kb"
	"github.com/signalsfoundry/fov-simulator/model"
)

func newTestServer(t *testing.T) (*httptest.Server, *kb.KnowledgeBase) {
	t.Helper()

	store := kb.NewKnowledgeBase()
	engine := core.NewSimulationEngine(store)
	srv := httptest.NewServer(NewServer(engine, store, nil).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_CreateAndFetchRun(t *testing.T) {
	srv, store := newTestServer(t)

	body := `{"seed": 42}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var summary struct {
		RunID    string  `json:"run_id"`
		Steps    int     `json:"steps"`
		HitRatio float64 `json:"hit_ratio"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.RunID == "" || summary.Steps == 0 {
		t.Fatalf("incomplete summary: %#v", summary)
	}
	if store.GetRunData(summary.RunID) == nil {
		t.Fatalf("run %s not stored", summary.RunID)
	}

	getResp, err := http.Get(srv.URL + "/api/v1/runs/" + summary.RunID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}

	var run model.RunData
	if err := json.NewDecoder(getResp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.RunID != summary.RunID || run.Record == nil {
		t.Fatalf("incomplete run payload: %#v", run)
	}
	if len(run.UAVRoute) == 0 || len(run.FOVRoute) == 0 {
		t.Fatalf("run payload missing routes")
	}
}

func TestServer_CreateRun_CustomScenario(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{
		"seed": 7,
		"scenario": {
			"name": "walk",
			"uav": {"mode": "random_walk", "random_walk": {"steps": 120, "max_step": 0.5}},
			"target": {"mode": "random_walk", "random_walk": {"steps": 120, "max_step": 0.5, "ground_constrained": true}},
			"fov": {"angle_degrees": 45, "radius": 2}
		}
	}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var summary struct {
		Steps int `json:"steps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Steps != 120 {
		t.Fatalf("expected 120 steps, got %d", summary.Steps)
	}
}

func TestServer_CreateRun_InvalidScenario(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"scenario": {"uav": {"mode": "teleport"}, "target": {"mode": "teleport"}, "fov": {"angle_degrees": 45, "radius": 1}}}`
	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestServer_GetRun_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/runs/nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServer_ListRunsAndAgents(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader(`{"seed": 1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/v1/runs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer listResp.Body.Close()

	var list struct {
		RunIDs []string `json:"run_ids"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.RunIDs) != 1 {
		t.Fatalf("expected 1 run, got %v", list.RunIDs)
	}

	agentsResp, err := http.Get(srv.URL + "/api/v1/agents")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer agentsResp.Body.Close()

	var agents struct {
		Agents []model.AgentDefinition `json:"agents"`
	}
	if err := json.NewDecoder(agentsResp.Body).Decode(&agents); err != nil {
		t.Fatalf("decode agents: %v", err)
	}
	if len(agents.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents.Agents))
	}
}
