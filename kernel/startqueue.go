package kernel

import "container/heap"

// StartQueue is a priority queue of not-yet-active entities keyed by start
// time ascending, tie-broken by id (§4.G). The WorkGroup drains it each
// tick during manage-entities.
type StartQueue struct {
	h pendingHeap
}

// NewStartQueue creates an empty start queue.
func NewStartQueue() *StartQueue {
	return &StartQueue{}
}

// Push schedules e for later activation.
func (q *StartQueue) Push(e Entity) {
	heap.Push(&q.h, e)
}

// Len reports how many entities remain pending.
func (q *StartQueue) Len() int {
	return q.h.Len()
}

// Peek returns the next eligible entity without removing it, and whether
// the queue is non-empty.
func (q *StartQueue) Peek() (Entity, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h[0], true
}

// PopEligible removes and returns, in ascending (startTime, id) order,
// every entity whose StartTime is at most now.
func (q *StartQueue) PopEligible(now int64) []Entity {
	var out []Entity
	for q.h.Len() > 0 && q.h[0].StartTime() <= now {
		out = append(out, heap.Pop(&q.h).(Entity))
	}
	return out
}

type pendingHeap []Entity

func (h pendingHeap) Len() int { return len(h) }
func (h pendingHeap) Less(i, j int) bool {
	if h[i].StartTime() != h[j].StartTime() {
		return h[i].StartTime() < h[j].StartTime()
	}
	return h[i].ID() < h[j].ID()
}
func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x any)   { *h = append(*h, x.(Entity)) }
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
