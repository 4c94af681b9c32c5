package network

// Incident is a temporary lane closure: rule RuleVehicle is cleared on
// LaneID for the tick window [StartMS, EndMS), then restored (§9
// supplemented feature 1, from original_source's IncidentManager.hpp).
type Incident struct {
	LaneID  int64
	StartMS int64
	EndMS   int64

	applied bool
}

// IncidentManager applies and reverts a fixed set of scheduled incidents
// against a sealed Network, consulted by the WorkGroup during its
// manage-entities phase (kernel.IncidentHook). Read-only to agents;
// written only by the WorkGroup's driver goroutine between ticks, so no
// locking is required here.
type IncidentManager struct {
	net       *Network
	incidents []*Incident
}

// NewIncidentManager builds a manager over net's lanes, driving the given
// incident schedule.
func NewIncidentManager(net *Network, incidents []*Incident) *IncidentManager {
	return &IncidentManager{net: net, incidents: incidents}
}

// Apply closes or reopens each incident's lane as now crosses its window
// boundaries (kernel.IncidentHook).
func (m *IncidentManager) Apply(now int64) {
	for _, inc := range m.incidents {
		lane, ok := m.net.lanes[inc.LaneID]
		if !ok {
			continue
		}
		active := now >= inc.StartMS && now < inc.EndMS
		if active && !inc.applied {
			lane.Rules = lane.Rules.Without(RuleVehicle)
			inc.applied = true
		} else if !active && inc.applied {
			lane.Rules = lane.Rules.With(RuleVehicle)
			inc.applied = false
		}
	}
}
