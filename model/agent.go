package model

// AgentKind indicates how an agent moves through the scene.
type AgentKind int

const (
	AgentKindUnknown  AgentKind = iota
	AgentKindAirborne           // free 3D movement, altitude-capped random walk
	AgentKindGround             // pinned to the ground plane (z = 0)
)

// String returns a stable label for the agent kind.
func (k AgentKind) String() string {
	switch k {
	case AgentKindAirborne:
		return "AIRBORNE"
	case AgentKindGround:
		return "GROUND"
	default:
		return "UNKNOWN"
	}
}

// AgentDefinition represents a simulated vehicle (UAV, ground target, etc.).
// Identity and start conditions are fixed at construction; the Route is
// attached once by a trajectory generator and read-only afterwards.
type AgentDefinition struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind AgentKind `json:"kind"`

	Start Position `json:"start"`
	Route Route    `json:"route,omitempty"`
}
