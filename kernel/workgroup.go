package kernel

import (
	"context"
	"log/slog"

	"github.com/brentp/intintmap"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trafficlab/aurasim/kernel/config"
	"github.com/trafficlab/aurasim/kernel/internal/phaseguard"
	"github.com/trafficlab/aurasim/kernel/message"
)

// AuraRebuilder is the narrow capability the WorkGroup needs from the
// spatial index (§4.H): rebuild itself from the entities' now-current
// (post-flip) positions. Defined here, consumer-side, so this package
// never imports the aura package; aura.Manager satisfies it structurally.
type AuraRebuilder interface {
	Rebuild(now int64)
}

// IncidentHook lets an external context object apply temporary network
// changes (e.g. a lane closure) during manage-entities, without the
// WorkGroup knowing anything about the network model itself. Recovered
// from original_source/dev/Basic/medium/entities/IncidentManager.hpp
// (§9 supplemented feature); optional.
type IncidentHook interface {
	Apply(now int64)
}

// Stats summarises a finished or in-flight run, surfaced in the final
// output summary (§7).
type Stats struct {
	Ticks            int64
	NumAgentsSkipped int
	MessagesDropped  uint64
}

// WorkGroup partitions entities across workers and drives the simulation
// loop through phased barriers (§4.F). Its architecture is grounded on
// server/world/redstone.Scheduler — a central driver stepping a
// set of workers once per tick — generalised from a single sequential
// sweep over chunk workers to true barrier-synchronised concurrency using
// golang.org/x/sync/errgroup, and on server/world/tick.go's ticker for the
// notion of a fixed phase sequence executed once per tick.
type WorkGroup struct {
	cfg    config.Config
	log    *slog.Logger
	bus    *message.Bus
	shared *SharedDataManager

	workers []*Worker
	assign  *intintmap.Map // entity id -> worker index (§3 "WorkGroup partition")

	pending *StartQueue
	aura    AuraRebuilder
	incident IncidentHook

	baseGranMS  int64
	singleThreaded bool

	nextRobin int

	runID uuid.UUID
}

// Option configures a WorkGroup at construction.
type Option func(*WorkGroup)

// WithAura installs the spatial index to rebuild each tick.
func WithAura(a AuraRebuilder) Option { return func(g *WorkGroup) { g.aura = a } }

// WithIncidentHook installs an optional network-incident context object.
func WithIncidentHook(h IncidentHook) Option { return func(g *WorkGroup) { g.incident = h } }

// WithSingleThreaded forces sequential (non-goroutine) execution of every
// worker phase, for the debug mode described in §5; used to prove P7
// (single-threaded and N-worker runs agree bit-for-bit given one seed).
func WithSingleThreaded() Option { return func(g *WorkGroup) { g.singleThreaded = true } }

// NewWorkGroup builds a WorkGroup with numWorkers workers, each serving
// entities due at multiples of granularityMS (already validated as a
// multiple of cfg.BaseGranularityMS by config.Validate).
func NewWorkGroup(cfg config.Config, numWorkers int, granularityMS int64, log *slog.Logger, bus *message.Bus, opts ...Option) *WorkGroup {
	if log == nil {
		log = slog.Default()
	}
	g := &WorkGroup{
		cfg:        cfg,
		log:        log,
		bus:        bus,
		shared:     NewSharedDataManager(),
		pending:    NewStartQueue(),
		baseGranMS: int64(cfg.BaseGranularityMS),
		assign:     intintmap.New(64, 0.6),
		runID:      uuid.New(),
	}
	granTicks := granularityMS / g.baseGranMS
	for i := 0; i < numWorkers; i++ {
		g.workers = append(g.workers, NewWorker(i, granTicks, log, bus, cfg.RNGSeed))
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// RunID returns this run's unique identifier, stamped into the
// `simulation` output record. FatalError does not carry it.
func (g *WorkGroup) RunID() uuid.UUID { return g.runID }

// AddWorkerGroup appends numWorkers more workers at their own tick
// granularity, sharing this WorkGroup's barrier, shared-data manager,
// message bus, and start queue. This is how the {person, signal,
// communication} worker groups from §6 (MT_Config.hpp, §9 supplemented
// feature 3a) coexist under one driver: each group keeps its own
// granularity per worker, but all groups advance through the same four
// phases on the same tick clock.
func (g *WorkGroup) AddWorkerGroup(numWorkers int, granularityMS int64) {
	granTicks := granularityMS / g.baseGranMS
	base := len(g.workers)
	for i := 0; i < numWorkers; i++ {
		g.workers = append(g.workers, NewWorker(base+i, granTicks, g.log, g.bus, g.cfg.RNGSeed))
	}
}

// Shared exposes the shared-data manager so buffered cells created outside
// this package can register themselves with the worker that owns them.
func (g *WorkGroup) Shared() *SharedDataManager { return g.shared }

// Bus exposes the message bus.
func (g *WorkGroup) Bus() *message.Bus { return g.bus }

// WorkerCount reports how many workers this group drives.
func (g *WorkGroup) WorkerCount() int { return len(g.workers) }

// ScheduleForLater pushes e into the pending start queue (§4.F "mid-
// simulation insertion path"). e is activated on the earliest tick where
// now >= e.StartTime().
func (g *WorkGroup) ScheduleForLater(e Entity) {
	g.pending.Push(e)
}

// AssignWorker assigns e to a worker before the simulation starts, per the
// configured assignment strategy, and enqueues it for activation on the
// tick it becomes eligible.
func (g *WorkGroup) AssignWorker(e Entity) {
	idx := g.pickWorker()
	g.assign.Put(e.ID(), int64(idx))
	g.bus.Register(message.HandlerID(e.ID()))
	g.ScheduleForLater(e)
}

func (g *WorkGroup) pickWorker() int {
	switch g.cfg.AssignStrategy {
	case config.AssignLeastLoaded:
		best, bestLoad := 0, -1
		for i, w := range g.workers {
			load := w.EntityCount() + len(w.pendingInit) + len(w.addQueue)
			if bestLoad < 0 || load < bestLoad {
				best, bestLoad = i, load
			}
		}
		return best
	case config.AssignByPartition:
		return 0 // callers using by-partition-id should route via AssignWorkerTo instead.
	default: // round-robin
		idx := g.nextRobin % len(g.workers)
		g.nextRobin++
		return idx
	}
}

// AssignWorkerTo assigns e to a specific worker index, for the
// by-partition-id strategy where placement is externally determined (e.g.
// by the network partition an entity starts in).
func (g *WorkGroup) AssignWorkerTo(e Entity, workerIdx int) {
	g.assign.Put(e.ID(), int64(workerIdx))
	g.bus.Register(message.HandlerID(e.ID()))
	g.ScheduleForLater(e)
}

// WorkerOf returns the worker index an active or pending entity id is
// assigned to.
func (g *WorkGroup) WorkerOf(id int64) (int, bool) {
	v, ok := g.assign.Get(id)
	return int(v), ok
}

// runPhase invokes fn once per worker, either concurrently (the default)
// or sequentially when the group was built WithSingleThreaded — the
// boundary the debug mode in §5 needs.
func (g *WorkGroup) runPhase(ctx context.Context, fn func(*Worker) error) error {
	if g.singleThreaded {
		for _, w := range g.workers {
			if err := fn(w); err != nil {
				return err
			}
		}
		return nil
	}
	eg, _ := errgroup.WithContext(ctx)
	for _, w := range g.workers {
		w := w
		eg.Go(func() (err error) {
			if v := phaseguard.Run(func() { err = fn(w) }); v != nil {
				return &FatalError{Tick: v.Tick, WorkerID: v.WorkerID, EntityID: v.EntityID, Reason: v.Reason}
			}
			return err
		})
	}
	return eg.Wait()
}

// Run drives the simulation for cfg.TotalTicks base ticks, or until every
// worker and the pending queue are empty (§4.F stop condition). It
// implements the four-phase barrier sequence from §2/§5: update, flip,
// aura-rebuild, manage-entities.
func (g *WorkGroup) Run(ctx context.Context) (Stats, error) {
	total := int64(g.cfg.TotalTicks())
	var stats Stats
	for tick := int64(0); tick < total; tick++ {
		now := tick * g.baseGranMS

		// Phase 1 (per worker): FrameInit + FrameTick. Barrier: all
		// workers finish before FlipAll runs (§5 ordering guarantee 1).
		if err := g.runPhase(ctx, func(w *Worker) error {
			w.runUpdatePhase(tick, now)
			return ctx.Err()
		}); err != nil {
			return stats, err
		}

		// Phase 2: flip every buffered cell (§4.B). Single-threaded by
		// construction — no worker goroutine is running concurrently.
		g.shared.FlipAll()

		// Phase 3: aura rebuild from the now-current positions (§4.H).
		// Exclusive: queries are forbidden while this runs, enforced by
		// aura.Manager itself.
		if g.aura != nil {
			g.aura.Rebuild(now)
		}

		// Phase 4: manage-entities. Activate anything eligible, assign it
		// to its worker's add-queue, apply the incident hook, then
		// deliver messages queued during this tick (§5 ordering
		// guarantees 2-4).
		for _, e := range g.pending.PopEligible(now) {
			idx, ok := g.WorkerOf(e.ID())
			if !ok {
				idx = g.pickWorker()
				g.assign.Put(e.ID(), int64(idx))
			}
			g.workers[idx].Enqueue(e)
		}
		if g.incident != nil {
			g.incident.Apply(now)
		}
		g.bus.Flip()

		// Phase 5 (per worker, §4.E phase 3): apply add/remove deltas.
		// Barrier: every worker finishes before the next tick's update
		// phase reads a consistent entity roster (§5 ordering guarantee 4).
		if err := g.runPhase(ctx, func(w *Worker) error {
			w.runAdminPhase()
			return ctx.Err()
		}); err != nil {
			return stats, err
		}

		stats.Ticks = tick + 1
		if g.allEmpty() {
			break
		}
	}
	for _, w := range g.workers {
		stats.NumAgentsSkipped += w.Skipped()
	}
	stats.MessagesDropped = g.bus.Dropped()
	return stats, nil
}

func (g *WorkGroup) allEmpty() bool {
	if g.pending.Len() > 0 {
		return false
	}
	for _, w := range g.workers {
		if !w.Empty() {
			return false
		}
	}
	return true
}
