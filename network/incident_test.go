package network

import "testing"

func buildIncidentNetwork() (*Network, *Lane) {
	n := New()
	n.AddNode(Node{ID: 1})
	n.AddLink(Link{ID: 1, FromNode: 1, ToNode: 1})
	n.AddSegment(Segment{ID: 1, LinkID: 1})
	n.AddLane(Lane{ID: 1, SegmentID: 1, Rules: LaneRules(0).With(RuleVehicle)})
	n.Seal()
	return n, n.lanes[1]
}

func TestIncidentManagerClosesLaneWithinWindow(t *testing.T) {
	n, lane := buildIncidentNetwork()
	mgr := NewIncidentManager(n, []*Incident{{LaneID: 1, StartMS: 1000, EndMS: 2000}})

	mgr.Apply(500)
	if !lane.Rules.Has(RuleVehicle) {
		t.Fatal("lane should remain open before the incident window")
	}

	mgr.Apply(1000)
	if lane.Rules.Has(RuleVehicle) {
		t.Fatal("lane should be closed once now enters [StartMS, EndMS)")
	}

	mgr.Apply(2000)
	if !lane.Rules.Has(RuleVehicle) {
		t.Fatal("lane should reopen once now reaches EndMS")
	}
}

func TestIncidentManagerApplyIsIdempotentWithinWindow(t *testing.T) {
	n, lane := buildIncidentNetwork()
	mgr := NewIncidentManager(n, []*Incident{{LaneID: 1, StartMS: 0, EndMS: 100}})

	mgr.Apply(10)
	lane.Rules = lane.Rules.With(RuleBus) // simulate another actor touching unrelated bits
	mgr.Apply(20)
	if !lane.Rules.Has(RuleBus) {
		t.Fatal("a second Apply within the same window should not re-toggle the lane and clobber unrelated rules")
	}
	if lane.Rules.Has(RuleVehicle) {
		t.Fatal("lane should still be closed on the second Apply within the window")
	}
}

func TestIncidentManagerIgnoresUnknownLane(t *testing.T) {
	n, _ := buildIncidentNetwork()
	mgr := NewIncidentManager(n, []*Incident{{LaneID: 999, StartMS: 0, EndMS: 100}})
	// Should not panic despite the lane never existing in the network.
	mgr.Apply(50)
}
