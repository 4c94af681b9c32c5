package role

import (
	"fmt"
	"math"
	"sync"

	"github.com/trafficlab/aurasim/network"
	"github.com/trafficlab/aurasim/tripchain"
)

// transitRoster tracks which agents are waiting for which bus line, so a
// BusDriver role can notify its passengers without the message bus
// supporting a broadcast primitive. Grounded on the approach of
// a small shared registry (e.g. server/world/redstone's per-chunk
// subscriber set) guarded by one mutex rather than per-entry locking,
// since join/board churn is low relative to tick volume.
type transitRoster struct {
	mu      sync.Mutex
	waiting map[string][]int64
}

func newTransitRoster() *transitRoster {
	return &transitRoster{waiting: make(map[string][]int64)}
}

func (r *transitRoster) join(line string, agentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiting[line] = append(r.waiting[line], agentID)
}

func (r *transitRoster) board(line string) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.waiting[line]
	delete(r.waiting, line)
	return ids
}

// Factory resolves trip-chain steps to Role instances (§4.J "key =
// (itemType, mode)"), satisfying tripchain.RoleFactory. It holds the
// sealed network (for leg-distance estimates; full route choice is out of
// scope per §1) and the transit roster used to connect WaitBusActivity,
// BusDriver, and Passenger roles.
type Factory struct {
	net     *network.Network
	roster  *transitRoster
	speeds  map[Kind]int32 // centimeters per tick, by role kind
}

// NewFactory builds a Factory over the given sealed network with default
// per-role speeds. Use WithSpeed to override before first use.
func NewFactory(net *network.Network) *Factory {
	return &Factory{
		net:    net,
		roster: newTransitRoster(),
		speeds: map[Kind]int32{
			KindDriver:    1200, // ~43 km/h at 1 tick == 1s; tuned per scenario needs, not claimed realistic
			KindPedestrian: 140,
			KindBusDriver: 900,
		},
	}
}

// WithSpeed overrides the per-tick movement speed (centimeters) for kind.
func (f *Factory) WithSpeed(kind Kind, cmPerTick int32) *Factory {
	f.speeds[kind] = cmPerTick
	return f
}

// NewRole implements tripchain.RoleFactory.
func (f *Factory) NewRole(kind tripchain.ItemKind, mode tripchain.Mode, step tripchain.Step) (tripchain.Role, error) {
	switch kind {
	case tripchain.KindActivity:
		return newActivityPerformer(step.Activity), nil
	case tripchain.KindWaitBusActivity:
		return newWaitBusActivity(f.roster, step.WaitLineID), nil
	case tripchain.KindSubTrip:
		switch mode {
		case tripchain.ModeCar:
			dist := f.legDistanceCM(step.ParentTrip)
			return newDriver(dist, f.speeds[KindDriver]), nil
		case tripchain.ModeWalk:
			dist := f.legDistanceCM(step.ParentTrip)
			return newPedestrian(dist, f.speeds[KindPedestrian]), nil
		case tripchain.ModeBus:
			if step.SubTrip.Primary {
				dist := f.legDistanceCM(step.ParentTrip)
				return newBusDriver(dist, f.speeds[KindBusDriver], f.roster, step.SubTrip.LineID), nil
			}
			return newPassenger(f.roster, step.SubTrip.LineID), nil
		default:
			return nil, fmt.Errorf("role: unknown sub-trip mode %q", mode)
		}
	default:
		return nil, fmt.Errorf("role: unknown item kind %q", kind)
	}
}

// legDistanceCM estimates a trip's travel distance as the straight-line
// distance between its endpoint nodes. Route choice (the actual path
// through links/segments) is out of scope (§1); this is enough to drive
// the deterministic kinematics the testable scenarios in §8 require.
func (f *Factory) legDistanceCM(t *tripchain.Trip) int64 {
	if t == nil || f.net == nil {
		return 0
	}
	from, ok1 := f.net.Node(t.FromNode)
	to, ok2 := f.net.Node(t.ToNode)
	if !ok1 || !ok2 {
		return 0
	}
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	return int64(math.Round(math.Sqrt(dx*dx + dy*dy)))
}
