package kernel

import "testing"

type fakeEntity struct {
	id    int64
	start int64
}

func (f *fakeEntity) ID() int64          { return f.id }
func (f *fakeEntity) StartTime() int64   { return f.start }
func (f *fakeEntity) IsNonSpatial() bool { return false }
func (f *fakeEntity) Dynamic() bool      { return false }
func (f *fakeEntity) FrameInit(now int64) bool        { return true }
func (f *fakeEntity) FrameTick(now int64) UpdateStatus { return Continue }
func (f *fakeEntity) FrameOutput(now int64)            {}

func TestStartQueuePopEligibleOrdersByStartTimeThenID(t *testing.T) {
	q := NewStartQueue()
	q.Push(&fakeEntity{id: 3, start: 100})
	q.Push(&fakeEntity{id: 1, start: 50})
	q.Push(&fakeEntity{id: 2, start: 50})

	out := q.PopEligible(100)
	if len(out) != 3 {
		t.Fatalf("PopEligible returned %d entities, want 3", len(out))
	}
	wantIDs := []int64{1, 2, 3}
	for i, e := range out {
		if e.ID() != wantIDs[i] {
			t.Fatalf("entity %d id = %d, want %d", i, e.ID(), wantIDs[i])
		}
	}
}

func TestStartQueuePopEligibleLeavesLaterEntriesQueued(t *testing.T) {
	q := NewStartQueue()
	q.Push(&fakeEntity{id: 1, start: 0})
	q.Push(&fakeEntity{id: 2, start: 1000})

	out := q.PopEligible(0)
	if len(out) != 1 || out[0].ID() != 1 {
		t.Fatalf("PopEligible(0) = %v, want only entity 1", out)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() after partial pop = %d, want 1", q.Len())
	}
	out = q.PopEligible(1000)
	if len(out) != 1 || out[0].ID() != 2 {
		t.Fatalf("PopEligible(1000) = %v, want only entity 2", out)
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after draining = %d, want 0", q.Len())
	}
}
