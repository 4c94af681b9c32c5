package aura

import "testing"

type fakeAgent struct {
	id     int64
	x, y   int32
	lane   int64
	offset int64
}

func (a fakeAgent) ID() int64                           { return a.id }
func (a fakeAgent) PositionCM() (int32, int32)           { return a.x, a.y }
func (a fakeAgent) LanePosition() (int64, int64)         { return a.lane, a.offset }

func TestManagerRebuildThenRangeQuery(t *testing.T) {
	agents := []Agent{
		fakeAgent{id: 1, x: 0, y: 0},
		fakeAgent{id: 2, x: 2000, y: 2000},
	}
	m := NewManager(NewGrid(1000), func() []Agent { return agents })
	m.Rebuild(0)
	got := m.AgentsInRect(-100, -100, 100, 100)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("AgentsInRect = %v, want only id 1", got)
	}
}

func TestManagerQueryDuringRebuildPanics(t *testing.T) {
	m := NewManager(NewGrid(1000), func() []Agent { return nil })

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic from querying while Rebuild is in flight")
		}
	}()
	m.rebuild = true
	m.AgentsInRect(0, 0, 0, 0)
}

func TestManagerNearestAgentOnLane(t *testing.T) {
	agents := []Agent{
		fakeAgent{id: 1, lane: 10, offset: 100},
		fakeAgent{id: 2, lane: 10, offset: 500},
		fakeAgent{id: 3, lane: 10, offset: 50},
		fakeAgent{id: 4, lane: 20, offset: 100}, // different lane, must be ignored
	}
	m := NewManager(NewGrid(1000), func() []Agent { return agents })
	m.Rebuild(0)

	ahead, ok := m.NearestAgentOnLane(10, 100, 1)
	if !ok || ahead.ID != 2 {
		t.Fatalf("NearestAgentOnLane(ahead) = %+v, %v; want id 2", ahead, ok)
	}
	behind, ok := m.NearestAgentOnLane(10, 100, -1)
	if !ok || behind.ID != 3 {
		t.Fatalf("NearestAgentOnLane(behind) = %+v, %v; want id 3", behind, ok)
	}
}

func TestManagerNearestAgentOnLaneNoneFound(t *testing.T) {
	agents := []Agent{fakeAgent{id: 1, lane: 10, offset: 50}}
	m := NewManager(NewGrid(1000), func() []Agent { return agents })
	m.Rebuild(0)
	_, ok := m.NearestAgentOnLane(10, 100, 1)
	if ok {
		t.Fatal("NearestAgentOnLane(ahead) found an agent behind the query position")
	}
}
