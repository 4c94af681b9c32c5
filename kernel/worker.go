package kernel

import (
	"log/slog"
	"math/rand"

	"github.com/trafficlab/aurasim/kernel/message"
)

// Worker owns a partition of active entities and drives them through one
// tick at a time (§4.E). A Worker never touches another worker's entity
// list; the only legal ways for its entities to affect the rest of the
// simulation are buffered-cell writes and the message bus.
type Worker struct {
	id            int
	granularity   int64 // in units of base ticks; due when tick % granularity == 0
	log           *slog.Logger
	bus           *message.Bus
	rng           *rand.Rand

	entities    []Entity          // active, in the order they were added
	pendingInit []Entity          // merged at the end of the previous tick; FrameInit runs for these before FrameTick
	addQueue    []Entity          // entities handed to this worker during manage-entities, merged at phase 3
	removeIDs   map[int64]bool    // ids removed at the end of the current tick

	skipped int // entities whose FrameInit returned false (agent-construction error, §7)
}

// NewWorker constructs a worker with the given id, tick granularity (in
// base ticks), logger, shared message bus, and a deterministic RNG
// sub-stream derived from runSeed (§5).
func NewWorker(id int, granularityTicks int64, log *slog.Logger, bus *message.Bus, runSeed int64) *Worker {
	if granularityTicks <= 0 {
		granularityTicks = 1
	}
	return &Worker{
		id:          id,
		granularity: granularityTicks,
		log:         log,
		bus:         bus,
		rng:         NewWorkerRNG(runSeed, id),
		removeIDs:   make(map[int64]bool),
	}
}

// ID returns the worker's index within its WorkGroup.
func (w *Worker) ID() int { return w.id }

// RNG returns the worker's deterministic sub-stream generator. Entities
// ticked by this worker should use it (rather than a fresh source) so a
// run is reproducible given a fixed seed and worker count (§5, P7).
func (w *Worker) RNG() *rand.Rand { return w.rng }

// EntityCount reports how many entities are currently active on this
// worker.
func (w *Worker) EntityCount() int { return len(w.entities) }

// Enqueue hands e to this worker for activation. e becomes active (its
// FrameInit/FrameTick begin) starting the next tick, after the deltas
// applied in runAdminPhase of the current tick (§4.E "applied at
// end-of-tick").
func (w *Worker) Enqueue(e Entity) {
	w.addQueue = append(w.addQueue, e)
}

// markRemoved flags id for removal at the next admin phase. Called by the
// driver when FrameTick returns Done or RemoveAndContinueGroup.
func (w *Worker) markRemoved(id int64) {
	w.removeIDs[id] = true
}

// Skipped reports how many entities this worker discarded because
// FrameInit returned false.
func (w *Worker) Skipped() int { return w.skipped }

// due reports whether an entity scheduled at this worker's granularity
// should be ticked at tick.
func (w *Worker) due(tick int64) bool {
	return tick%w.granularity == 0
}

// updateResult summarises one worker's update phase, for the driver's
// bookkeeping and for the P2/P3 invariant checks exercised by tests.
type updateResult struct {
	ticked  int
	removed []int64
}

// runUpdatePhase is phase 1 of §4.E: FrameInit for newly-activated
// entities, then FrameTick for every due entity, in the order entities
// were added. Safe to run concurrently with other workers' runUpdatePhase
// calls: it reads only this worker's own entity list plus buffered/aura
// state that is stable for the duration of the phase.
func (w *Worker) runUpdatePhase(tick, now int64) updateResult {
	if len(w.pendingInit) > 0 {
		initBatch := w.pendingInit
		w.pendingInit = nil
		for _, e := range initBatch {
			if e.FrameInit(now) {
				w.entities = append(w.entities, e)
			} else {
				w.skipped++
				if w.log != nil {
					w.log.Warn("entity activation aborted", "worker", w.id, "entity", e.ID())
				}
			}
		}
	}

	res := updateResult{}
	for _, e := range w.entities {
		if w.removeIDs[e.ID()] {
			continue
		}
		if !w.due(tick) {
			continue
		}
		status := e.FrameTick(now)
		e.FrameOutput(now)
		res.ticked++
		switch status {
		case Done, RemoveAndContinueGroup:
			w.markRemoved(e.ID())
			res.removed = append(res.removed, e.ID())
		case Continue:
		}
	}
	return res
}

// runAdminPhase is phase 3 of §4.E: apply the add/remove deltas
// accumulated during this tick. Entities queued via Enqueue are staged
// into pendingInit (activated next tick); entities marked removed are
// dropped from the active list now.
func (w *Worker) runAdminPhase() {
	if len(w.removeIDs) > 0 {
		kept := w.entities[:0]
		for _, e := range w.entities {
			if !w.removeIDs[e.ID()] {
				kept = append(kept, e)
			}
		}
		w.entities = kept
		w.removeIDs = make(map[int64]bool)
	}
	if len(w.addQueue) > 0 {
		w.pendingInit = append(w.pendingInit, w.addQueue...)
		w.addQueue = nil
	}
}

// Empty reports whether the worker has no active, pending, or queued
// entities left — part of the WorkGroup's stop condition (§4.F).
func (w *Worker) Empty() bool {
	return len(w.entities) == 0 && len(w.pendingInit) == 0 && len(w.addQueue) == 0
}
