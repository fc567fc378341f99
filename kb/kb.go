package kb

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/fov-simulator/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventAgentRouteUpdated EventType = iota
	EventRunCompleted
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type  EventType
	Agent model.AgentDefinition
	RunID string
}

// KnowledgeBase is an in-memory, thread-safe store for agents and completed
// run records.
type KnowledgeBase struct {
	mu sync.RWMutex

	agents map[string]*model.AgentDefinition
	runs   map[string]*model.RunData
	runIDs []string // insertion order, for listing

	subs      map[int]func(Event)
	nextSubID int
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		agents: make(map[string]*model.AgentDefinition),
		runs:   make(map[string]*model.RunData),
		subs:   make(map[int]func(Event)),
	}
}

// AddAgent adds a new agent. It returns an error if the ID already exists.
func (kb *KnowledgeBase) AddAgent(a *model.AgentDefinition) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("nil or empty agent definition")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.agents[a.ID]; exists {
		return fmt.Errorf("agent with ID %q already exists", a.ID)
	}
	// store pointer so generators can attach routes in-place
	kb.agents[a.ID] = a
	return nil
}

// GetAgent returns the agent with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetAgent(id string) *model.AgentDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.agents[id]
}

// ListAgents returns a snapshot slice of all agents.
func (kb *KnowledgeBase) ListAgents() []*model.AgentDefinition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.AgentDefinition, 0, len(kb.agents))
	for _, a := range kb.agents {
		res = append(res, a)
	}
	return res
}

// SetAgentRoute attaches a generated route to an agent and notifies
// subscribers. The route is stored as-is; callers hand over ownership.
func (kb *KnowledgeBase) SetAgentRoute(id string, route model.Route) error {
	kb.mu.Lock()
	a, ok := kb.agents[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("agent with ID %q not found", id)
	}
	a.Route = route
	event := Event{
		Type:  EventAgentRouteUpdated,
		Agent: *a, // copy for safety
	}
	subs := kb.subscriberSnapshot()
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// AddRunData stores a completed run record and notifies subscribers.
// Records are immutable once stored.
func (kb *KnowledgeBase) AddRunData(run *model.RunData) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("nil run data or empty run ID")
	}

	kb.mu.Lock()
	if _, exists := kb.runs[run.RunID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("run with ID %q already exists", run.RunID)
	}
	kb.runs[run.RunID] = run
	kb.runIDs = append(kb.runIDs, run.RunID)
	event := Event{Type: EventRunCompleted, RunID: run.RunID}
	subs := kb.subscriberSnapshot()
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetRunData returns the run record with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetRunData(id string) *model.RunData {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.runs[id]
}

// ListRunIDs returns run IDs in completion order.
func (kb *KnowledgeBase) ListRunIDs() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return append([]string(nil), kb.runIDs...)
}

// Subscribe registers a callback for KB events. It returns an unsubscribe
// function. Subscribers are keyed, so unsubscribing is safe in any order.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextSubID
	kb.nextSubID++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

// subscriberSnapshot copies the current subscribers; callers must hold the
// lock and invoke the callbacks only after releasing it.
func (kb *KnowledgeBase) subscriberSnapshot() []func(Event) {
	subs := make([]func(Event), 0, len(kb.subs))
	for _, fn := range kb.subs {
		subs = append(subs, fn)
	}
	return subs
}
