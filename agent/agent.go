// Package agent implements the Agent entity (§3, §4.D): a position/
// velocity-bearing Entity that owns a role and a trip chain, publishing
// its kinematic state through buffered cells so other workers' queries
// (the aura manager, other agents) always observe a stable, flip-
// published snapshot (§4.A, §5). Grounded on
// server/entity/movement.go split between an owning entity and a movement
// computer invoked from its Tick, and on its mgl64 vector math (mgl64.Vec2
// here, for 2D positions).
package agent

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/trafficlab/aurasim/aura"
	"github.com/trafficlab/aurasim/kernel"
	"github.com/trafficlab/aurasim/kernel/config"
	"github.com/trafficlab/aurasim/kernel/message"
	"github.com/trafficlab/aurasim/output"
	"github.com/trafficlab/aurasim/role"
	"github.com/trafficlab/aurasim/tripchain"
)

// Agent is the Entity implementation for a person moving through the
// network (§3 "Agent (Entity)"). One Agent persists across every role
// transition its trip chain drives (§9 "switching roles is replacement of
// the variant payload on the agent record").
type Agent struct {
	id        int64
	startMS   int64
	dynamic   bool

	bus     *message.Bus
	factory tripchain.RoleFactory
	cursor  *tripchain.Cursor

	currentRole role.Role
	prevRole    role.Role
	prevRoleAge int // ticks since retirement; destroyed after 1 full tick (§4.J)

	now int64

	position  *kernel.BufferedValue[mgl64.Vec2]
	laneID    *kernel.BufferedValue[int64]
	offsetCM  *kernel.BufferedValue[int64]
	queuing   *kernel.BufferedValue[bool]
}

// New constructs an Agent from a validated, expanded trip chain. mtx
// selects the buffered-value synchronisation strategy from the run
// config; bus is the shared message bus the agent's roles post to and
// drain from.
func New(id int64, startMS int64, dynamic bool, items []tripchain.Item, factory tripchain.RoleFactory, bus *message.Bus, mtx config.MutexStrategy) (*Agent, error) {
	if err := tripchain.Validate(items, startMS); err != nil {
		return nil, fmt.Errorf("agent %d: %w", id, err)
	}
	steps := tripchain.Expand(items)
	if len(steps) == 0 {
		return nil, fmt.Errorf("agent %d: trip chain expands to zero steps", id)
	}
	a := &Agent{
		id:       id,
		startMS:  startMS,
		dynamic:  dynamic,
		bus:      bus,
		factory:  factory,
		cursor:   tripchain.NewCursor(steps, factory),
		position: kernel.NewBufferedValue[mgl64.Vec2](id, mtx, mgl64.Vec2{}),
		laneID:   kernel.NewBufferedValue[int64](id, mtx, 0),
		offsetCM: kernel.NewBufferedValue[int64](id, mtx, 0),
		queuing:  kernel.NewBufferedValue[bool](id, mtx, false),
	}
	return a, nil
}

// RegisterCells adds every buffered cell this agent owns to the shared-data
// manager's sublist for workerID (§4.A "registered with its owning
// worker's subscription list").
func (a *Agent) RegisterCells(shared *kernel.SharedDataManager, workerID int) {
	shared.RegisterCell(workerID, a.position)
	shared.RegisterCell(workerID, a.laneID)
	shared.RegisterCell(workerID, a.offsetCM)
	shared.RegisterCell(workerID, a.queuing)
}

// kernel.Entity implementation.

func (a *Agent) ID() int64          { return a.id }
func (a *Agent) StartTime() int64   { return a.startMS }
func (a *Agent) IsNonSpatial() bool { return false }
func (a *Agent) Dynamic() bool      { return a.dynamic }

// FrameInit resolves the first role and registers the bus endpoint (§4.D).
func (a *Agent) FrameInit(now int64) bool {
	a.now = now
	r, err := a.cursor.NewRoleForCurrent()
	if err != nil {
		return false // agent-construction error (§7): discarded, counted upstream
	}
	a.currentRole = r.(role.Role)
	a.bus.Register(message.HandlerID(a.id))
	return true
}

// FrameTick implements §4.D's four steps.
func (a *Agent) FrameTick(now int64) kernel.UpdateStatus {
	a.now = now
	if a.prevRole != nil {
		a.prevRoleAge++
		if a.prevRoleAge >= 1 {
			a.prevRole = nil // held for exactly one full tick (§4.J), now destroyed
		}
	}

	if a.currentRole == nil {
		r, err := a.cursor.NewRoleForCurrent()
		if err != nil {
			return kernel.Done
		}
		a.currentRole = r.(role.Role)
	}

	a.currentRole.Tick(a)

	if a.currentRole.Done() {
		a.prevRole, a.prevRoleAge = a.currentRole, 0
		a.currentRole = nil
		if !a.cursor.Advance() {
			return kernel.Done
		}
		r, err := a.cursor.NewRoleForCurrent()
		if err != nil {
			return kernel.Done
		}
		a.currentRole = r.(role.Role)
	}
	return kernel.Continue
}

// FrameOutput is a no-op; per-tick records are produced by the output
// package reading the agent's public accessors directly.
func (a *Agent) FrameOutput(now int64) {}

// role.Host implementation — the capability surface roles tick against.

func (a *Agent) PositionCM() (int32, int32) {
	v := a.position.Get()
	return int32(v.X()), int32(v.Y())
}

func (a *Agent) SetPositionCM(x, y int32) {
	a.position.Set(mgl64.Vec2{float64(x), float64(y)})
}

func (a *Agent) LaneID() int64        { return a.laneID.Get() }
func (a *Agent) SetLaneID(id int64)   { a.laneID.Set(id) }
func (a *Agent) OffsetCM() int64      { return a.offsetCM.Get() }
func (a *Agent) SetOffsetCM(cm int64) { a.offsetCM.Set(cm) }
func (a *Agent) SetQueuing(q bool)    { a.queuing.Set(q) }
func (a *Agent) Queuing() bool        { return a.queuing.Get() }

func (a *Agent) Bus() *message.Bus { return a.bus }
func (a *Agent) Now() int64        { return a.now }

// Drain implements role.Host by reading this agent's own inbox (§4.K): an
// entity's first action of the tick drains messages delivered by the last
// Flip.
func (a *Agent) Drain() []message.Message {
	return a.bus.Drain(message.HandlerID(a.id))
}

// LanePosition implements aura.Agent, exposing the current lane/offset for
// the spatial index's NearestAgentOnLane query (§4.H).
func (a *Agent) LanePosition() (int64, int64) {
	return a.laneID.Get(), a.offsetCM.Get()
}

// RoleKind implements output.AgentView, reporting the currently active (or
// just-retired) role's variant name for per-tick output records (§6).
func (a *Agent) RoleKind() string {
	if a.currentRole != nil {
		return string(a.currentRole.Kind())
	}
	if a.prevRole != nil {
		return string(a.prevRole.Kind())
	}
	return ""
}

var _ aura.Agent = (*Agent)(nil)
var _ role.Host = (*Agent)(nil)
var _ kernel.Entity = (*Agent)(nil)
var _ output.AgentView = (*Agent)(nil)
