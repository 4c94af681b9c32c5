package kernel

import (
	"sync"
	"sync/atomic"

	"github.com/trafficlab/aurasim/kernel/config"
)

// BufferedValue is a single-writer/many-reader cell with deferred publish
// (§4.A). Get returns the published ("current") value; Set stages a new
// value for the next flip without disturbing readers. Only the owner may
// call Set; any goroutine may call Get.
type BufferedValue[T any] struct {
	ownerID int64
	mode    config.MutexStrategy

	mu      sync.Mutex // guards pending/current under MutexLockPerFlip
	epoch   atomic.Uint64
	current T
	pending T
	staged  atomic.Bool
}

// NewBufferedValue creates a cell owned by ownerID, holding the given
// initial value as both current and pending.
func NewBufferedValue[T any](ownerID int64, mode config.MutexStrategy, initial T) *BufferedValue[T] {
	b := &BufferedValue[T]{ownerID: ownerID, mode: mode}
	b.current, b.pending = initial, initial
	return b
}

// OwnerID returns the id of the entity allowed to call Set.
func (b *BufferedValue[T]) OwnerID() int64 { return b.ownerID }

// Get returns the currently published value. Safe for concurrent callers,
// including the owner itself, during the update phase.
func (b *BufferedValue[T]) Get() T {
	switch b.mode {
	case config.MutexNone:
		// Legal only because the WorkGroup barrier guarantees no flip is
		// concurrent with a read (§9 design note). No construction-time
		// check rejects MutexNone.
		return b.current
	default:
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.current
	}
}

// Set stages value for the next flip. Must only be called by the owning
// entity; callers outside the owner's own FrameTick violate §5's
// shared-resource policy and will corrupt P1 if invoked concurrently by
// two different entities.
func (b *BufferedValue[T]) Set(value T) {
	switch b.mode {
	case config.MutexNone:
		b.pending = value
		b.staged.Store(true)
	default:
		b.mu.Lock()
		b.pending = value
		b.staged.Store(true)
		b.mu.Unlock()
	}
}

// flip copies pending into current. Invoked exclusively by the shared-data
// manager between ticks; never call this directly.
func (b *BufferedValue[T]) flip() {
	switch b.mode {
	case config.MutexNone:
		if b.staged.Load() {
			b.current = b.pending
			b.staged.Store(false)
		}
	default:
		b.mu.Lock()
		if b.staged.Load() {
			b.current = b.pending
			b.staged.Store(false)
		}
		b.mu.Unlock()
	}
	b.epoch.Add(1)
}

// Epoch returns the number of flips this cell has undergone, useful for
// tests asserting P1 (visibility only after a flip).
func (b *BufferedValue[T]) Epoch() uint64 {
	return b.epoch.Load()
}

// flipper is the narrow interface SharedDataManager needs from a
// BufferedValue of any element type, letting one worker-local sublist hold
// cells of heterogeneous T.
type flipper interface {
	flip()
}
