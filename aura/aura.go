// Package aura implements the spatial index described in the kernel spec as
// the "Aura Manager": range and nearest-neighbor queries over agent
// positions, refreshed once per tick from the now-current (post-flip)
// positions and forbidden to query while rebuilding. Three interchangeable
// backends are provided — grid, R*-tree, and simtree — chosen at init by
// kernel/config.AuraBackend, all satisfying the same Backend contract. The
// package is grounded on server/world/redstone.Graph, which
// holds a generation's worth of positional state behind a rebuild/query
// split very similar to this one, generalised from block-position lookups
// to arbitrary agent snapshots.
package aura

// Positioned is anything an agent exposes to the index: a stable id and a
// position snapshot, in centimeters, taken at rebuild time. LaneID and
// OffsetCM are optional (zero value means "not on a lane", e.g. a
// pedestrian off-network) and back NearestAgentOnLane.
type Positioned struct {
	ID       int64
	X, Y     int32
	LaneID   int64
	OffsetCM int64
}

// Backend is the contract every spatial-index implementation satisfies
// (§4.H). Build replaces the backend's entire contents; it is called once
// per tick, on the dedicated aura-rebuild phase, and must never be called
// concurrently with a query method.
type Backend interface {
	Build(points []Positioned)
	RangeQuery(x1, y1, x2, y2 int32) []Positioned
	Nearest(x, y int32, radiusCM int32, limit int) []Positioned
}

// Agent is the narrow view the manager needs of a live entity to take a
// position snapshot during rebuild. Defined consumer-side so this package
// never imports agent or kernel. LaneID/OffsetCM may return (0, 0) for
// agents not currently on a lane.
type Agent interface {
	ID() int64
	PositionCM() (int32, int32)
	LanePosition() (laneID int64, offsetCM int64)
}

// Manager wraps a Backend with the single-writer/many-reader/exclusive-
// rebuild discipline required by §4.H and §5's shared-resource policy. It
// satisfies kernel.AuraRebuilder.
type Manager struct {
	backend  Backend
	source   func() []Agent
	rebuild  bool // true while Rebuild is in flight; queries panic
	lastTick int64

	byLane map[int64][]Positioned // last-built snapshot, grouped by lane
}

// NewManager builds a Manager around the given backend. source is called
// once per Rebuild to obtain the current agent roster; typically supplied
// by the WorkGroup as a closure over its workers' entity lists.
func NewManager(backend Backend, source func() []Agent) *Manager {
	return &Manager{backend: backend, source: source}
}

// Rebuild refreshes the index from source()'s current positions (§4.H:
// "refreshed between ticks from the current (post-flip) positions, never
// from pending"). Queries issued concurrently with Rebuild are a caller
// bug; the WorkGroup only calls Rebuild during its dedicated phase, with no
// worker goroutines in flight, so no internal locking is needed here.
func (m *Manager) Rebuild(now int64) {
	m.rebuild = true
	agents := m.source()
	points := make([]Positioned, len(agents))
	for i, a := range agents {
		x, y := a.PositionCM()
		lane, offset := a.LanePosition()
		points[i] = Positioned{ID: a.ID(), X: x, Y: y, LaneID: lane, OffsetCM: offset}
	}
	m.backend.Build(points)

	byLane := make(map[int64][]Positioned)
	for _, p := range points {
		if p.LaneID == 0 {
			continue
		}
		byLane[p.LaneID] = append(byLane[p.LaneID], p)
	}
	m.byLane = byLane

	m.rebuild = false
	m.lastTick = now
}

// AgentsInRect returns every indexed position within the axis-aligned
// rectangle [x1,y1]-[x2,y2], inclusive.
func (m *Manager) AgentsInRect(x1, y1, x2, y2 int32) []Positioned {
	m.mustNotBeRebuilding()
	return m.backend.RangeQuery(x1, y1, x2, y2)
}

// NearestAgents returns up to limit indexed positions within radiusCM of
// (x,y), nearest first.
func (m *Manager) NearestAgents(x, y int32, radiusCM int32, limit int) []Positioned {
	m.mustNotBeRebuilding()
	return m.backend.Nearest(x, y, radiusCM, limit)
}

// NearestAgentOnLane returns the agent on laneID closest to positionAlong
// (centimeters from the lane's start) in the given direction (+1 ahead,
// -1 behind), or false if none exists. Used by car-following-style role
// logic to find the leading or following vehicle on the same lane.
func (m *Manager) NearestAgentOnLane(laneID int64, positionAlong int64, direction int) (Positioned, bool) {
	m.mustNotBeRebuilding()
	best := Positioned{}
	bestDist := int64(-1)
	found := false
	for _, p := range m.byLane[laneID] {
		delta := p.OffsetCM - positionAlong
		if direction >= 0 {
			if delta <= 0 {
				continue
			}
		} else {
			if delta >= 0 {
				continue
			}
			delta = -delta
		}
		if bestDist < 0 || delta < bestDist {
			best, bestDist, found = p, delta, true
		}
	}
	return best, found
}

func (m *Manager) mustNotBeRebuilding() {
	if m.rebuild {
		panic("aura: query issued while rebuild is in flight")
	}
}
