package tripchain

// Role is an opaque role instance as far as this package is concerned;
// the concrete behavior lives in the role package. Kept opaque here so
// tripchain never imports role (role already depends on this package for
// ItemKind/Mode), avoiding an import cycle; the agent package, which
// imports both, performs the concrete type assertion when it ticks a role.
type Role interface {
	// Done reports whether this role has finished its trip-chain item and
	// the dispatcher should advance to the next one (§4.D step 4).
	Done() bool
}

// RoleFactory resolves a trip-chain item to a Role instance (§4.J "key =
// (itemType, mode)"). Defined here, consumer-side, so tripchain never
// imports role; role.Factory satisfies this structurally.
type RoleFactory interface {
	NewRole(kind ItemKind, mode Mode, current Step) (Role, error)
}

// Step is one flattened, dispatchable unit of a trip chain: either the
// Activity itself, a SubTrip (with its parent Trip's from/to node for
// context), or a dispatcher-inserted WaitBusActivity preceding a transit
// SubTrip (§4.J supplemented feature 3).
type Step struct {
	Kind ItemKind

	Activity *Activity

	ParentTrip *Trip
	SubTrip    *SubTrip

	// WaitLineID is set only for Kind == KindWaitBusActivity: the transit
	// line the agent is waiting to board.
	WaitLineID string
}

// Mode returns the mode relevant to RoleFactory lookup for this step.
func (s Step) Mode() Mode {
	switch s.Kind {
	case KindSubTrip:
		return s.SubTrip.Mode
	case KindWaitBusActivity:
		return ModeBus
	default:
		return ""
	}
}

// Expand flattens a validated trip chain into dispatchable Steps, inserting
// a WaitBusActivity step immediately before every bus SubTrip (§4.J
// supplemented feature 3, from original_source's waitBusActivity.cpp).
func Expand(items []Item) []Step {
	var steps []Step
	for _, it := range items {
		switch it.Kind {
		case KindActivity:
			steps = append(steps, Step{Kind: KindActivity, Activity: it.Activity})
		case KindTrip:
			for i := range it.Trip.SubTrips {
				st := &it.Trip.SubTrips[i]
				if st.Mode == ModeBus {
					steps = append(steps, Step{Kind: KindWaitBusActivity, ParentTrip: it.Trip, WaitLineID: st.LineID})
				}
				steps = append(steps, Step{Kind: KindSubTrip, ParentTrip: it.Trip, SubTrip: st})
			}
		}
	}
	return steps
}

// Cursor walks a flattened step sequence one item at a time, resolving a
// Role from the configured factory as each step becomes current (§4.J).
// The agent holding a Cursor is responsible for ticking the returned Role
// and calling Advance once it reports Done.
type Cursor struct {
	steps   []Step
	idx     int
	factory RoleFactory
}

// NewCursor returns a Cursor positioned at the first step.
func NewCursor(steps []Step, factory RoleFactory) *Cursor {
	return &Cursor{steps: steps, factory: factory}
}

// Exhausted reports whether every step has been dispatched.
func (c *Cursor) Exhausted() bool { return c.idx >= len(c.steps) }

// Current returns the step at the cursor. It does not consult the factory;
// NewRoleForCurrent resolves the step's Role.
func (c *Cursor) Current() (Step, error) {
	step := c.steps[c.idx]
	return step, nil
}

// NewRoleForCurrent asks the factory for a role matching the step at the
// cursor (§4.J "asks a RoleFactory for a matching Role instance").
func (c *Cursor) NewRoleForCurrent() (Role, error) {
	step := c.steps[c.idx]
	return c.factory.NewRole(step.Kind, step.Mode(), step)
}

// Advance moves the cursor to the next step. Returns false once the chain
// is exhausted, signaling the agent should return kernel.Done.
func (c *Cursor) Advance() bool {
	c.idx++
	return !c.Exhausted()
}
