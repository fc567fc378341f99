// Package api exposes the simulation engine over a small JSON HTTP
// surface: triggering runs, listing them, and fetching complete run
// records for downstream tooling.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/signalsfoundry/fov-simulator/core"
	"github.com/signalsfoundry/fov-simulator/internal/logging"
	"github.com/signalsfoundry/fov-simulator/kb"
	"github.com/signalsfoundry/fov-simulator/model"
)

// Server handles the HTTP API for the simulation engine.
type Server struct {
	engine *core.SimulationEngine
	store  *kb.KnowledgeBase
	log    logging.Logger

	defaultScenario func() *core.Scenario
}

// NewServer constructs an API server over the given engine and store.
func NewServer(engine *core.SimulationEngine, store *kb.KnowledgeBase, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		engine:          engine,
		store:           store,
		log:             log,
		defaultScenario: core.DefaultScenario,
	}
}

// Routes registers the API endpoints on a fresh mux and returns it.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/v1/runs", s.handleCreateRun)
	mux.HandleFunc("GET /api/v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/v1/agents", s.handleListAgents)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// runRequest is the body of POST /api/v1/runs. Both fields are optional:
// an empty body runs the default scenario with a time-derived seed.
type runRequest struct {
	Scenario *core.Scenario `json:"scenario,omitempty"`
	Seed     *int64         `json:"seed,omitempty"`
}

// runSummary is the response to POST /api/v1/runs. The full record stays
// behind GET /api/v1/runs/{id} to keep run creation responses small.
type runSummary struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
	Steps       int       `json:"steps"`
	HitCount    int       `json:"hit_count"`
	HitRatio    float64   `json:"hit_ratio"`
	MinHeight   float64   `json:"min_height"`
	MaxHeight   float64   `json:"max_height"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}

	scn := req.Scenario
	if scn == nil {
		scn = s.defaultScenario()
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	run, err := s.engine.Run(r.Context(), scn, seed)
	if err != nil {
		s.log.Warn(r.Context(), "run request rejected", logging.String("error", err.Error()))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	s.log.Info(r.Context(), "run completed via API",
		logging.String("run_id", run.RunID),
		logging.Int("steps", run.Record.Steps()),
	)

	writeJSON(w, http.StatusCreated, runSummary{
		RunID:       run.RunID,
		CompletedAt: run.CompletedAt,
		Steps:       run.Record.Steps(),
		HitCount:    run.Record.HitCount,
		HitRatio:    run.Record.HitRatio(),
		MinHeight:   run.Record.MinHeight,
		MaxHeight:   run.Record.MaxHeight,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"run_ids": s.store.ListRunIDs()})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	run := s.store.GetRunData(id)
	if run == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "run not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents := s.store.ListAgents()
	out := make([]model.AgentDefinition, 0, len(agents))
	for _, a := range agents {
		out = append(out, *a)
	}
	writeJSON(w, http.StatusOK, map[string][]model.AgentDefinition{"agents": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
