// Package role implements the behavioral-strategy variants attached to an
// agent for one trip-chain item (§3, §4.D, §9 "Agent polymorphism via
// roles"): Driver, Pedestrian, BusDriver, Passenger, WaitBusActivity, and
// ActivityPerformer. Each supplies a perceive/decide facet and a movement
// facet, matching §9's guidance to treat Role as a tagged variant rather
// than an inheritance hierarchy. The behavioral models themselves (car-
// following, lane-changing, route choice) are explicitly out of scope
// (§1); these roles implement the minimal deterministic kinematics needed
// to exercise the testable scenarios in §8.
//
// Grounded on the server/entity movement-facet split
// (server/entity/movement.go's MovementComputer, invoked by an owning
// Entity's Tick instead of embedding motion logic directly in the entity).
package role

import (
	"github.com/trafficlab/aurasim/kernel/message"
	"github.com/trafficlab/aurasim/tripchain"
)

// Host is the narrow view of an agent a Role needs: its own id, current
// kinematic state, and the means to stage a new one and exchange messages.
// Defined consumer-side (role never imports agent) so agent.Agent
// satisfies it structurally.
type Host interface {
	ID() int64
	PositionCM() (int32, int32)
	SetPositionCM(x, y int32)
	LaneID() int64
	SetLaneID(id int64)
	OffsetCM() int64
	SetOffsetCM(cm int64)
	SetQueuing(bool)
	Bus() *message.Bus
	Drain() []message.Message
	Now() int64
}

// Role is the uniform capability set every variant implements (§9).
type Role interface {
	tripchain.Role // Done() bool

	// Tick runs one frame's worth of perceive+decide+move against host
	// (§4.D steps 2-3 combined into a single call for simplicity; role
	// implementations internally separate perception from decision).
	Tick(host Host)

	// Kind identifies the variant, for output records and logging.
	Kind() Kind
}

// Kind names a role variant, for logging and output records.
type Kind string

const (
	KindDriver            Kind = "driver"
	KindPedestrian        Kind = "pedestrian"
	KindBusDriver         Kind = "bus-driver"
	KindPassenger         Kind = "passenger"
	KindWaitBusActivity   Kind = "wait-bus-activity"
	KindActivityPerformer Kind = "activity-performer"
)
