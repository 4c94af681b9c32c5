// Package message implements the deferred, per-tick message bus (§4.K).
// The delivery mechanics are grounded on the per-target inbox/endpoint
// pattern of server/world/redstone.Router: a sync.Map of
// endpoints, lock-protected per-endpoint queues, and a deterministic drain
// order — generalised here from chunk-coalescing to the bus's two-tier
// "in-flight"/"deliverable" discipline required by §5's double-buffering
// invariant: a message posted at tick t is observed only at tick t+1.
package message

import (
	"sort"
	"sync"
)

// HandlerID identifies a message target. Handlers are addressed by
// identity, not by pointer, so a removed target simply stops having an
// endpoint and posted messages are dropped silently (§4.K, §7).
type HandlerID int64

// Message is an application-defined payload delivered to a handler.
type Message struct {
	Sender   HandlerID
	Target   HandlerID
	Seq      uint64
	Tick     int64
	Kind     string
	Payload  any
}

type endpoint struct {
	mu      sync.Mutex
	pending []Message // posted during the current tick, not yet deliverable
	ready   []Message // became deliverable at the last Flip, drained by the target
}

// Bus is a lock-protected, per-target deferred mailbox. Post may be called
// concurrently by any worker during the update phase; Flip is called only
// by the WorkGroup driver between phases, and Drain by the target entity
// when it reads its own inbox.
type Bus struct {
	mu        sync.RWMutex
	endpoints map[HandlerID]*endpoint

	seqMu sync.Mutex
	seq   uint64

	dropped uint64
}

// New creates an empty message bus.
func New() *Bus {
	return &Bus{endpoints: make(map[HandlerID]*endpoint)}
}

// Register installs an endpoint for id, allowing it to receive messages.
// Idempotent.
func (b *Bus) Register(id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.endpoints[id]; !ok {
		b.endpoints[id] = &endpoint{}
	}
}

// Unregister removes id's endpoint. Any message already posted toward it
// before removal is dropped at the next Flip instead of being delivered.
func (b *Bus) Unregister(id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.endpoints, id)
}

// nextSeq returns the post-sequence number used to order messages from the
// same sender to the same handler within one tick, per §4.K's stability
// contract: (sender id, post sequence). Sender id orders the rest.
func (b *Bus) nextSeq() uint64 {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()
	b.seq++
	return b.seq
}

// Post enqueues msg for delivery at the start of the next tick. Non-
// blocking; safe to call from any worker during the update phase. If the
// target has no registered endpoint the message is dropped silently and
// counted.
func (b *Bus) Post(sender, target HandlerID, tick int64, kind string, payload any) {
	b.mu.RLock()
	ep, ok := b.endpoints[target]
	b.mu.RUnlock()
	if !ok {
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
		return
	}
	msg := Message{Sender: sender, Target: target, Seq: b.nextSeq(), Tick: tick, Kind: kind, Payload: payload}
	ep.mu.Lock()
	ep.pending = append(ep.pending, msg)
	ep.mu.Unlock()
}

// Flip promotes every endpoint's pending messages into its deliverable
// queue, in (sender id, post sequence) order. Called once per tick by the
// WorkGroup during manage-entities, after all of the tick's frame_tick
// calls have completed.
func (b *Bus) Flip() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ep := range b.endpoints {
		ep.mu.Lock()
		if len(ep.pending) > 0 {
			sort.Slice(ep.pending, func(i, j int) bool {
				if ep.pending[i].Sender != ep.pending[j].Sender {
					return ep.pending[i].Sender < ep.pending[j].Sender
				}
				return ep.pending[i].Seq < ep.pending[j].Seq
			})
			ep.ready = append(ep.ready, ep.pending...)
			ep.pending = ep.pending[:0]
		}
		ep.mu.Unlock()
	}
}

// Drain returns and clears the messages deliverable to id as of the last
// Flip. Called by an entity's first action of the tick.
func (b *Bus) Drain(id HandlerID) []Message {
	b.mu.RLock()
	ep, ok := b.endpoints[id]
	b.mu.RUnlock()
	if !ok {
		return nil
	}
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if len(ep.ready) == 0 {
		return nil
	}
	out := ep.ready
	ep.ready = nil
	return out
}

// Dropped reports the number of messages dropped because their target had
// no registered endpoint (§7 "handler-not-found on message").
func (b *Bus) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
