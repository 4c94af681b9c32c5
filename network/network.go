// Package network models the sealed road-network object graph consumed by
// the kernel (§3, §6): Node, Link, Segment, Lane, LaneConnector,
// TurningGroup, TurningPath, TurningConflict, Crossing, and BusStop, each
// addressed by a stable integer id. Per §9's design note on the cyclic
// object graph, elements never hold pointers to one another — only ids —
// so the whole graph can be built incrementally and then frozen.
package network

import "fmt"

// Node is an intersection or other point where links meet.
type Node struct {
	ID   int64
	X, Y int32 // centimeters
}

// Link is a directed stretch of roadway between two nodes, made up of one
// or more Segments.
type Link struct {
	ID       int64
	FromNode int64
	ToNode   int64
	Segments []int64 // ordered segment ids, from FromNode to ToNode
}

// Segment is a maximal stretch of a Link with a constant lane layout.
type Segment struct {
	ID       int64
	LinkID   int64
	LengthCM int64
	Lanes    []int64 // lane ids, ordered from the road shoulder inward
}

// TurningGroup groups the TurningPaths available from one segment at a
// node into the set a driver chooses among.
type TurningGroup struct {
	ID          int64
	NodeID      int64
	FromSegment int64
}

// TurningPath is one concrete lane-to-lane movement within a TurningGroup.
type TurningPath struct {
	ID       int64
	GroupID  int64
	FromLane int64
	ToLane   int64
}

// TurningConflict records that two TurningPaths cannot be green at the
// same time without risk of collision; consumed by the signal package
// when building phases.
type TurningConflict struct {
	ID     int64
	PathA  int64
	PathB  int64
}

// Crossing is a pedestrian crossing at a Node.
type Crossing struct {
	ID     int64
	NodeID int64
}

// BusStop marks a stopping point along a Segment.
type BusStop struct {
	ID        int64
	SegmentID int64
	OffsetCM  int64
}

// InconsistencyError reports a network-consistency error (§7): a dangling
// id or similarly malformed reference. The offending element is skipped;
// the simulation continues; the caller should count these toward the
// final summary.
type InconsistencyError struct {
	Kind string
	ID   int64
	Detail string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("network: %s %d: %s", e.Kind, e.ID, e.Detail)
}

// Network is the arena of all network elements, addressed by id. It is
// mutable while being built by a loader and becomes read-only once Seal
// succeeds (§3 "frozen (sealed) before tick 0").
type Network struct {
	sealed bool

	nodes   map[int64]*Node
	links   map[int64]*Link
	segs    map[int64]*Segment
	lanes   map[int64]*Lane
	conns   map[int64]*LaneConnector
	groups  map[int64]*TurningGroup
	paths   map[int64]*TurningPath
	confl   map[int64]*TurningConflict
	cross   map[int64]*Crossing
	stops   map[int64]*BusStop

	skipped []error
}

// New returns an empty, unsealed Network ready for a loader to populate.
func New() *Network {
	return &Network{
		nodes:  make(map[int64]*Node),
		links:  make(map[int64]*Link),
		segs:   make(map[int64]*Segment),
		lanes:  make(map[int64]*Lane),
		conns:  make(map[int64]*LaneConnector),
		groups: make(map[int64]*TurningGroup),
		paths:  make(map[int64]*TurningPath),
		confl:  make(map[int64]*TurningConflict),
		cross:  make(map[int64]*Crossing),
		stops:  make(map[int64]*BusStop),
	}
}

func (n *Network) mustBeBuilding() {
	if n.sealed {
		panic("network: mutation after Seal is not permitted")
	}
}

// AddNode, AddLink, ... register an element while the network is still
// being built. Each panics if called after Seal.
func (n *Network) AddNode(v Node) { n.mustBeBuilding(); n.nodes[v.ID] = &v }
func (n *Network) AddLink(v Link) { n.mustBeBuilding(); n.links[v.ID] = &v }
func (n *Network) AddSegment(v Segment) { n.mustBeBuilding(); n.segs[v.ID] = &v }
func (n *Network) AddLane(v Lane) { n.mustBeBuilding(); n.lanes[v.ID] = &v }
func (n *Network) AddLaneConnector(v LaneConnector) { n.mustBeBuilding(); n.conns[v.ID] = &v }
func (n *Network) AddTurningGroup(v TurningGroup) { n.mustBeBuilding(); n.groups[v.ID] = &v }
func (n *Network) AddTurningPath(v TurningPath) { n.mustBeBuilding(); n.paths[v.ID] = &v }
func (n *Network) AddTurningConflict(v TurningConflict) { n.mustBeBuilding(); n.confl[v.ID] = &v }
func (n *Network) AddCrossing(v Crossing) { n.mustBeBuilding(); n.cross[v.ID] = &v }
func (n *Network) AddBusStop(v BusStop) { n.mustBeBuilding(); n.stops[v.ID] = &v }

// Node, Link, Segment, ... look elements up by id.
func (n *Network) Node(id int64) (*Node, bool) { v, ok := n.nodes[id]; return v, ok }
func (n *Network) Link(id int64) (*Link, bool) { v, ok := n.links[id]; return v, ok }
func (n *Network) Segment(id int64) (*Segment, bool) { v, ok := n.segs[id]; return v, ok }
func (n *Network) Lane(id int64) (*Lane, bool) { v, ok := n.lanes[id]; return v, ok }
func (n *Network) LaneConnector(id int64) (*LaneConnector, bool) { v, ok := n.conns[id]; return v, ok }
func (n *Network) TurningGroup(id int64) (*TurningGroup, bool) { v, ok := n.groups[id]; return v, ok }
func (n *Network) TurningPath(id int64) (*TurningPath, bool) { v, ok := n.paths[id]; return v, ok }
func (n *Network) BusStop(id int64) (*BusStop, bool) { v, ok := n.stops[id]; return v, ok }

// Nodes, Links, Segments, ... return every element of that kind, for
// static output dumping (§6) in id order is the caller's responsibility.
func (n *Network) Nodes() map[int64]*Node { return n.nodes }
func (n *Network) Links() map[int64]*Link { return n.links }
func (n *Network) Segments() map[int64]*Segment { return n.segs }
func (n *Network) Lanes() map[int64]*Lane { return n.lanes }
func (n *Network) LaneConnectors() map[int64]*LaneConnector { return n.conns }
func (n *Network) TurningGroups() map[int64]*TurningGroup { return n.groups }
func (n *Network) TurningPaths() map[int64]*TurningPath { return n.paths }
func (n *Network) TurningConflicts() map[int64]*TurningConflict { return n.confl }
func (n *Network) Crossings() map[int64]*Crossing { return n.cross }
func (n *Network) BusStops() map[int64]*BusStop { return n.stops }

// Sealed reports whether Seal has been called.
func (n *Network) Sealed() bool { return n.sealed }

// Seal validates referential integrity (§7 "network-consistency error"),
// dropping and counting any element with a dangling reference, then marks
// the network read-only. Must be called exactly once, before tick 0.
func (n *Network) Seal() []error {
	n.mustBeBuilding()
	n.skipped = n.skipped[:0]

	for id, l := range n.links {
		if _, ok := n.nodes[l.FromNode]; !ok {
			n.drop("link", id, "dangling from-node")
			continue
		}
		if _, ok := n.nodes[l.ToNode]; !ok {
			n.drop("link", id, "dangling to-node")
		}
	}
	for id, s := range n.segs {
		if _, ok := n.links[s.LinkID]; !ok {
			n.drop("segment", id, "dangling link")
		}
	}
	for id, l := range n.lanes {
		if _, ok := n.segs[l.SegmentID]; !ok {
			n.drop("lane", id, "dangling segment")
		}
	}
	for id, c := range n.conns {
		if _, ok := n.lanes[c.FromLane]; !ok {
			n.drop("lane-connector", id, "dangling from-lane")
			continue
		}
		if _, ok := n.lanes[c.ToLane]; !ok {
			n.drop("lane-connector", id, "dangling to-lane")
		}
	}
	for id, p := range n.paths {
		if _, ok := n.groups[p.GroupID]; !ok {
			n.drop("turning-path", id, "dangling turning-group")
			continue
		}
		if _, ok := n.lanes[p.FromLane]; !ok {
			n.drop("turning-path", id, "dangling from-lane")
			continue
		}
		if _, ok := n.lanes[p.ToLane]; !ok {
			n.drop("turning-path", id, "dangling to-lane")
		}
	}
	for id, g := range n.groups {
		if _, ok := n.nodes[g.NodeID]; !ok {
			n.drop("turning-group", id, "dangling node")
			continue
		}
		if _, ok := n.segs[g.FromSegment]; !ok {
			n.drop("turning-group", id, "dangling from-segment")
		}
	}
	for id, c := range n.confl {
		if _, ok := n.paths[c.PathA]; !ok {
			n.drop("conflict", id, "dangling path-a")
			continue
		}
		if _, ok := n.paths[c.PathB]; !ok {
			n.drop("conflict", id, "dangling path-b")
		}
	}
	for id, c := range n.cross {
		if _, ok := n.nodes[c.NodeID]; !ok {
			n.drop("crossing", id, "dangling node")
		}
	}
	for id, s := range n.stops {
		if _, ok := n.segs[s.SegmentID]; !ok {
			n.drop("bus-stop", id, "dangling segment")
		}
	}

	n.sealed = true
	return n.skipped
}

func (n *Network) drop(kind string, id int64, detail string) {
	switch kind {
	case "link":
		delete(n.links, id)
	case "segment":
		delete(n.segs, id)
	case "lane":
		delete(n.lanes, id)
	case "lane-connector":
		delete(n.conns, id)
	case "turning-path":
		delete(n.paths, id)
	case "turning-group":
		delete(n.groups, id)
	case "conflict":
		delete(n.confl, id)
	case "crossing":
		delete(n.cross, id)
	case "bus-stop":
		delete(n.stops, id)
	}
	n.skipped = append(n.skipped, &InconsistencyError{Kind: kind, ID: id, Detail: detail})
}
