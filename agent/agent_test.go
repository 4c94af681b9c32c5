package agent

import (
	"errors"
	"testing"

	"github.com/trafficlab/aurasim/kernel"
	"github.com/trafficlab/aurasim/kernel/config"
	"github.com/trafficlab/aurasim/kernel/message"
	"github.com/trafficlab/aurasim/role"
	"github.com/trafficlab/aurasim/tripchain"
)

// stubRole is a minimal role.Role double whose Done() state is controlled
// directly by the test, letting FrameTick's role-transition logic be
// exercised without a real role.Factory.
type stubRole struct {
	kind  role.Kind
	done  bool
	ticks int
}

func (r *stubRole) Tick(h role.Host) { r.ticks++ }
func (r *stubRole) Done() bool       { return r.done }
func (r *stubRole) Kind() role.Kind  { return r.kind }

// stubFactory hands out pre-built stubRoles in sequence, one per step,
// counting how many roles it was asked to resolve.
type stubFactory struct {
	roles []*stubRole
	calls int
}

func (f *stubFactory) NewRole(kind tripchain.ItemKind, mode tripchain.Mode, step tripchain.Step) (tripchain.Role, error) {
	if f.calls >= len(f.roles) {
		return nil, errors.New("stubFactory: exhausted")
	}
	r := f.roles[f.calls]
	f.calls++
	return r, nil
}

func singleActivityChain() []tripchain.Item {
	return []tripchain.Item{
		{Kind: tripchain.KindActivity, Activity: &tripchain.Activity{SeqNum: 1, StartTimeMS: 0, EndTimeMS: 100}},
	}
}

func TestNewValidatesTripChain(t *testing.T) {
	bus := message.New()
	_, err := New(1, 0, false, nil, &stubFactory{}, bus, config.MutexNone)
	if err == nil {
		t.Fatal("New should reject an empty trip chain")
	}
}

func TestFrameInitResolvesFirstRoleAndRegistersBus(t *testing.T) {
	bus := message.New()
	f := &stubFactory{roles: []*stubRole{{kind: role.KindActivityPerformer}}}
	a, err := New(1, 0, false, singleActivityChain(), f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.FrameInit(0) {
		t.Fatal("FrameInit should succeed when the factory resolves a role")
	}
	if f.calls != 1 {
		t.Fatalf("factory.calls = %d, want 1", f.calls)
	}
}

func TestFrameInitFailsWhenFactoryErrors(t *testing.T) {
	bus := message.New()
	f := &stubFactory{} // no roles queued; first NewRole call errors
	a, err := New(1, 0, false, singleActivityChain(), f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.FrameInit(0) {
		t.Fatal("FrameInit should fail when the factory cannot resolve a role")
	}
}

func TestFrameTickAdvancesPastDoneRoleAndRetiresIt(t *testing.T) {
	bus := message.New()
	first := &stubRole{kind: role.KindActivityPerformer}
	chain := []tripchain.Item{
		{Kind: tripchain.KindActivity, Activity: &tripchain.Activity{SeqNum: 1, StartTimeMS: 0, EndTimeMS: 0}},
		{Kind: tripchain.KindActivity, Activity: &tripchain.Activity{SeqNum: 2, StartTimeMS: 0, EndTimeMS: 0}},
	}
	second := &stubRole{kind: role.KindActivityPerformer}
	f := &stubFactory{roles: []*stubRole{first, second}}
	a, err := New(1, 0, false, chain, f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.FrameInit(0)

	first.done = true
	status := a.FrameTick(1)
	if status != kernel.Continue {
		t.Fatalf("FrameTick status = %v, want Continue (chain has a second step)", status)
	}
	if a.RoleKind() != string(role.KindActivityPerformer) {
		t.Fatalf("RoleKind() after transition = %q", a.RoleKind())
	}
	if f.calls != 2 {
		t.Fatalf("factory.calls = %d, want 2 (one per step)", f.calls)
	}
}

func TestFrameTickReturnsDoneWhenChainExhausted(t *testing.T) {
	bus := message.New()
	only := &stubRole{kind: role.KindActivityPerformer}
	f := &stubFactory{roles: []*stubRole{only}}
	a, err := New(1, 0, false, singleActivityChain(), f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.FrameInit(0)

	only.done = true
	status := a.FrameTick(1)
	if status != kernel.Done {
		t.Fatalf("FrameTick status = %v, want Done (single-step chain exhausted)", status)
	}
}

func TestBufferedCellsAreNotVisibleUntilFlip(t *testing.T) {
	bus := message.New()
	f := &stubFactory{roles: []*stubRole{{kind: role.KindActivityPerformer}}}
	a, err := New(1, 0, false, singleActivityChain(), f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	shared := kernel.NewSharedDataManager()
	a.RegisterCells(shared, 0)

	a.SetLaneID(42)
	if a.LaneID() != 0 {
		t.Fatalf("LaneID() = %d before flip, want 0 (the prior published value)", a.LaneID())
	}
	shared.FlipAll()
	if a.LaneID() != 42 {
		t.Fatalf("LaneID() = %d after flip, want 42", a.LaneID())
	}
}

func TestPositionCMRoundTrips(t *testing.T) {
	bus := message.New()
	f := &stubFactory{roles: []*stubRole{{kind: role.KindActivityPerformer}}}
	a, err := New(1, 0, false, singleActivityChain(), f, bus, config.MutexNone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	shared := kernel.NewSharedDataManager()
	a.RegisterCells(shared, 0)

	a.SetPositionCM(100, -200)
	shared.FlipAll()
	x, y := a.PositionCM()
	if x != 100 || y != -200 {
		t.Fatalf("PositionCM() = (%d, %d), want (100, -200)", x, y)
	}
}
