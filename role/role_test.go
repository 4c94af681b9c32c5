package role

import (
	"github.com/trafficlab/aurasim/kernel/message"
)

// fakeHost is a minimal role.Host for exercising role variants in
// isolation, without an agent.Agent or a running WorkGroup.
type fakeHost struct {
	id       int64
	x, y     int32
	laneID   int64
	offsetCM int64
	queuing  bool
	now      int64
	bus      *message.Bus
}

func newFakeHost(id int64) *fakeHost {
	return newFakeHostOnBus(id, message.New())
}

// newFakeHostOnBus builds a host registered on a caller-supplied bus, for
// tests that need two hosts to actually exchange messages with each other.
func newFakeHostOnBus(id int64, bus *message.Bus) *fakeHost {
	bus.Register(message.HandlerID(id))
	return &fakeHost{id: id, bus: bus}
}

func (h *fakeHost) ID() int64                 { return h.id }
func (h *fakeHost) PositionCM() (int32, int32) { return h.x, h.y }
func (h *fakeHost) SetPositionCM(x, y int32)   { h.x, h.y = x, y }
func (h *fakeHost) LaneID() int64              { return h.laneID }
func (h *fakeHost) SetLaneID(id int64)         { h.laneID = id }
func (h *fakeHost) OffsetCM() int64            { return h.offsetCM }
func (h *fakeHost) SetOffsetCM(cm int64)       { h.offsetCM = cm }
func (h *fakeHost) SetQueuing(q bool)          { h.queuing = q }
func (h *fakeHost) Bus() *message.Bus          { return h.bus }
func (h *fakeHost) Now() int64                 { return h.now }
func (h *fakeHost) Drain() []message.Message   { return h.bus.Drain(message.HandlerID(h.id)) }
