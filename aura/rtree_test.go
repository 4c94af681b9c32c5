package aura

import "testing"

func TestRStarTreeRangeQuery(t *testing.T) {
	tr := NewRStarTree()
	tr.Build([]Positioned{
		{ID: 1, X: 0, Y: 0},
		{ID: 2, X: 5000, Y: 5000},
	})
	got := tr.RangeQuery(-100, -100, 100, 100)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("RangeQuery = %v, want only id 1", got)
	}
}

func TestRStarTreeNearestOrdersByDistance(t *testing.T) {
	tr := NewRStarTree()
	tr.Build([]Positioned{
		{ID: 1, X: 300, Y: 0},
		{ID: 2, X: 10, Y: 0},
	})
	got := tr.Nearest(0, 0, 1000, 10)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("Nearest order = %v, want [id 2, id 1]", got)
	}
}

func TestRStarTreeBuildReplacesPreviousContents(t *testing.T) {
	tr := NewRStarTree()
	tr.Build([]Positioned{{ID: 1, X: 0, Y: 0}})
	tr.Build([]Positioned{{ID: 2, X: 0, Y: 0}})
	got := tr.RangeQuery(-10, -10, 10, 10)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("RangeQuery after rebuild = %v, want only id 2 (stale entries must not survive a rebuild)", got)
	}
}
