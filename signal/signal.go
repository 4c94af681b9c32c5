// Package signal implements the per-intersection traffic-signal state
// machine (§4.I): phases, split plans, offsets, cycles, and degree-of-
// saturation-driven adaptive re-selection. A Signal is a kernel.Entity so
// it is ticked by a WorkGroup worker like any agent, and publishes its
// lane colors through kernel.BufferedValue so readers mid-tick see a
// stable snapshot (§4.I "both return the currently published color via
// double buffering"). Grounded on dragonfly's
// server/world/redstone.Processor, which advances a per-tick state
// machine (power level, strength decay) behind the same buffered-read
// discipline used here for phase/color state.
package signal

import (
	"github.com/trafficlab/aurasim/kernel"
	"github.com/trafficlab/aurasim/kernel/config"
)

// TrafficColor is the aspect a signal displays to one movement (§4.I).
type TrafficColor int

const (
	Red TrafficColor = iota
	Amber
	Green
	FlashingRed
	FlashingAmber
	RedAmber
)

func (c TrafficColor) String() string {
	switch c {
	case Red:
		return "red"
	case Amber:
		return "amber"
	case Green:
		return "green"
	case FlashingRed:
		return "flashing-red"
	case FlashingAmber:
		return "flashing-amber"
	case RedAmber:
		return "red-amber"
	default:
		return "unknown"
	}
}

// Movement identifies one driver movement a phase may grant (§3 TurningPath
// from-lane/to-lane) or one pedestrian crossing.
type Movement struct {
	FromLane int64
	ToLane   int64
}

// Phase enumerates the movements that are permissive or protected while it
// is active (§4.I).
type Phase struct {
	Name       string
	Movements  []Movement
	Crossings  []int64 // crossing ids given a walk signal during this phase
}

// SplitPlan maps each phase index to the fraction of the cycle it receives.
// Fractions are expected to sum to 1.0; neither New nor AddChoice checks
// this.
type SplitPlan struct {
	Name      string
	Fractions []float64 // parallel to Signal.phases
}

// durationMS returns phase i's share of a cycle of the given length.
func (p SplitPlan) durationMS(i int, cycleMS int64) int64 {
	return int64(p.Fractions[i] * float64(cycleMS))
}

// DetectorReading is one approach's measured degree-of-saturation input,
// collected over the prior cycle (§4.I step 3). PhaseIndex identifies which
// of Signal.phases serves this approach, so a candidate split plan's own
// share of the cycle can be weighed against the demand this reading
// represents, rather than the share the currently active plan happened to
// grant it.
type DetectorReading struct {
	ApproachID int64
	PhaseIndex int
	OccupiedMS int64
	EffectiveGreenMS int64
}

// DS returns occupied-time / effective-green-time, clamped to [0,1], per
// §4.I's definition. A zero effective-green is reported as fully saturated
// rather than dividing by zero, since no green time means any demand at
// all saturates the approach.
func (r DetectorReading) DS() float64 {
	if r.EffectiveGreenMS <= 0 {
		if r.OccupiedMS > 0 {
			return 1
		}
		return 0
	}
	ds := float64(r.OccupiedMS) / float64(r.EffectiveGreenMS)
	if ds < 0 {
		return 0
	}
	if ds > 1 {
		return 1
	}
	return ds
}

// AdaptiveMode selects how a Signal reacts to a new cycle's DS readings
// (§4.I step 3, "per-signal integer algorithm flag").
type AdaptiveMode int

const (
	// Fixed never changes the split plan: "fixed mode: no change".
	Fixed AdaptiveMode = iota
	// MinimizeMaxDS chooses the choice-set entry minimizing the worst
	// predicted DS across approaches.
	MinimizeMaxDS
)

// lightCell is a buffered per-movement or per-crossing color, owned by the
// Signal that publishes it.
type lightCell = *kernel.BufferedValue[TrafficColor]

// Signal is one intersection's state machine (§4.I). It implements
// kernel.Entity so the WorkGroup ticks it on the "signal" group's
// granularity, configured independently of the "person" group (§6).
type Signal struct {
	id     int64
	nodeID int64

	phases    []Phase
	choiceSet []SplitPlan
	active    SplitPlan
	cycleMS   int64
	offsetMS  int64
	mode      AdaptiveMode

	currCycleTimerMS int64
	activePhase      int
	isNewCycle       bool

	detectors map[int64]DetectorReading // accumulated since the last cycle boundary

	driverLights     map[Movement]lightCell
	pedestrianLights map[int64]lightCell

	owner int64
	mtx   config.MutexStrategy

	granularityMS int64
}

// New constructs a Signal for the given node, with an initial split plan
// (also registered as choice set entry 0) and cycle length. id is also the
// owner id of the Signal's buffered cells; mtx selects the
// buffered-value synchronisation strategy from the run config.
func New(id, nodeID int64, phases []Phase, initial SplitPlan, cycleMS, offsetMS int64, mode AdaptiveMode, mtx config.MutexStrategy, granularityMS int64) *Signal {
	s := &Signal{
		id:               id,
		nodeID:           nodeID,
		phases:           phases,
		choiceSet:        []SplitPlan{initial},
		active:           initial,
		cycleMS:          cycleMS,
		offsetMS:         offsetMS,
		mode:             mode,
		currCycleTimerMS: offsetMS % max64(cycleMS, 1),
		detectors:        make(map[int64]DetectorReading),
		driverLights:     make(map[Movement]lightCell),
		pedestrianLights: make(map[int64]lightCell),
		owner:            id,
		mtx:              mtx,
		granularityMS:    granularityMS,
	}
	for _, p := range phases {
		for _, m := range p.Movements {
			if _, ok := s.driverLights[m]; !ok {
				s.driverLights[m] = kernel.NewBufferedValue[TrafficColor](id, mtx, Red)
			}
		}
		for _, c := range p.Crossings {
			if _, ok := s.pedestrianLights[c]; !ok {
				s.pedestrianLights[c] = kernel.NewBufferedValue[TrafficColor](id, mtx, Red)
			}
		}
	}
	s.recomputeColors()
	return s
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// AddChoice appends a split plan to the adaptive choice set (§4.I "a finite
// choice set of split plans").
func (s *Signal) AddChoice(p SplitPlan) { s.choiceSet = append(s.choiceSet, p) }

// RegisterCells adds every buffered light cell this Signal owns to the
// shared-data manager's sublist for workerID, so FlipAll reaches them.
func (s *Signal) RegisterCells(shared *kernel.SharedDataManager, workerID int) {
	for _, cell := range s.driverLights {
		shared.RegisterCell(workerID, cell)
	}
	for _, cell := range s.pedestrianLights {
		shared.RegisterCell(workerID, cell)
	}
}

// ID, StartTime, IsNonSpatial, Dynamic implement kernel.Entity. Signals are
// non-spatial (excluded from the aura index) and static (loaded before
// tick 0, never inserted or removed mid-run).
func (s *Signal) ID() int64          { return s.id }
func (s *Signal) StartTime() int64   { return 0 }
func (s *Signal) IsNonSpatial() bool { return true }
func (s *Signal) Dynamic() bool      { return false }

// FrameInit always succeeds: a Signal has no construction-time failure mode.
func (s *Signal) FrameInit(now int64) bool { return true }

// RecordDetector accumulates a reading for the current cycle, called by
// role logic or an external loop-detector feed between signal ticks.
func (s *Signal) RecordDetector(r DetectorReading) {
	acc := s.detectors[r.ApproachID]
	acc.ApproachID = r.ApproachID
	acc.PhaseIndex = r.PhaseIndex
	acc.OccupiedMS += r.OccupiedMS
	acc.EffectiveGreenMS += r.EffectiveGreenMS
	s.detectors[r.ApproachID] = acc
}

// FrameTick advances the state machine by one tick's worth of simulated
// time (§4.I steps 1-3) and publishes the resulting colors. The elapsed
// time is this Signal's configured granularity (the "signal" worker
// group's tick length, independent of the "person" group's, per §6).
func (s *Signal) FrameTick(now int64) kernel.UpdateStatus {
	s.Advance(s.granularityMS)
	return kernel.Continue
}

// Advance performs the actual per-tick update given the elapsed simulated
// milliseconds since the previous tick. Exposed separately from FrameTick
// so tests can drive it without a WorkGroup.
func (s *Signal) Advance(elapsedMS int64) {
	s.isNewCycle = false
	s.currCycleTimerMS += elapsedMS
	if s.currCycleTimerMS >= s.cycleMS {
		s.currCycleTimerMS -= s.cycleMS
		s.isNewCycle = true
	}

	s.activePhase = s.phaseAt(s.currCycleTimerMS)
	s.recomputeColors()

	if s.isNewCycle {
		s.replan()
		s.detectors = make(map[int64]DetectorReading)
	}
}

// phaseAt locates which phase index owns timer position t within the
// active split plan (§4.I step 2).
func (s *Signal) phaseAt(t int64) int {
	var acc int64
	for i := range s.phases {
		acc += s.active.durationMS(i, s.cycleMS)
		if t < acc {
			return i
		}
	}
	if len(s.phases) == 0 {
		return 0
	}
	return len(s.phases) - 1
}

// recomputeColors publishes Green for every movement/crossing in the
// active phase and Red for everything else (§4.I step 2). A full amber/
// red-amber transition window is left to role-level anticipation logic;
// the published color here always reflects steady-state phase membership.
func (s *Signal) recomputeColors() {
	active := make(map[Movement]bool)
	activeCross := make(map[int64]bool)
	if s.activePhase >= 0 && s.activePhase < len(s.phases) {
		p := s.phases[s.activePhase]
		for _, m := range p.Movements {
			active[m] = true
		}
		for _, c := range p.Crossings {
			activeCross[c] = true
		}
	}
	for m, cell := range s.driverLights {
		if active[m] {
			cell.Set(Green)
		} else {
			cell.Set(Red)
		}
	}
	for c, cell := range s.pedestrianLights {
		if activeCross[c] {
			cell.Set(Green)
		} else {
			cell.Set(Red)
		}
	}
}

// replan re-scores the split-plan choice set from the accumulated DS
// readings (§4.I step 3). Fixed mode never changes the plan. Each
// candidate's predicted DS re-derates the measured occupied time against
// that candidate's own effective green time for the reading's phase,
// rather than reusing the green time actually observed under the active
// plan: a candidate granting its phase less of the cycle than the active
// plan did predicts a worse (higher) DS for that approach, and one
// granting it more predicts a better (lower) DS, so the choice-set
// entries are genuinely distinguished instead of scoring identically.
func (s *Signal) replan() {
	if s.mode != MinimizeMaxDS || len(s.choiceSet) == 0 {
		return
	}
	maxDS := func(cand SplitPlan) float64 {
		var worst float64
		for _, r := range s.detectors {
			greenMS := int64(0)
			if r.PhaseIndex >= 0 && r.PhaseIndex < len(cand.Fractions) {
				greenMS = cand.durationMS(r.PhaseIndex, s.cycleMS)
			}
			predicted := DetectorReading{OccupiedMS: r.OccupiedMS, EffectiveGreenMS: greenMS}.DS()
			if predicted > worst {
				worst = predicted
			}
		}
		return worst
	}
	best := s.active
	bestScore := maxDS(s.active)
	for _, cand := range s.choiceSet {
		if score := maxDS(cand); score < bestScore {
			best, bestScore = cand, score
		}
	}
	s.active = best
}

// FrameOutput is a no-op; signal state is exposed via GetDriverLight /
// GetPedestrianLight and recorded by the output package directly.
func (s *Signal) FrameOutput(now int64) {}

// GetDriverLight returns the currently published color for the movement
// from fromLane to toLane (§4.I indicators).
func (s *Signal) GetDriverLight(fromLane, toLane int64) (TrafficColor, bool) {
	cell, ok := s.driverLights[Movement{FromLane: fromLane, ToLane: toLane}]
	if !ok {
		return Red, false
	}
	return cell.Get(), true
}

// GetPedestrianLight returns the currently published color for a crossing.
func (s *Signal) GetPedestrianLight(crossingID int64) (TrafficColor, bool) {
	cell, ok := s.pedestrianLights[crossingID]
	if !ok {
		return Red, false
	}
	return cell.Get(), true
}

// NodeID returns the intersection this signal belongs to.
func (s *Signal) NodeID() int64 { return s.nodeID }

// CycleTimerMS returns the current position within the cycle, for output
// and tests.
func (s *Signal) CycleTimerMS() int64 { return s.currCycleTimerMS }

// ActivePlan returns the currently active split plan's name, for output.
func (s *Signal) ActivePlan() string { return s.active.Name }
