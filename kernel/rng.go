package kernel

import (
	"encoding/binary"
	"math/rand"

	"github.com/segmentio/fasthash/fnv1a"
)

// DeriveWorkerSeed derives a deterministic sub-stream seed for a worker
// from the run's single seed and the worker's id (§5 "RNG"), so that a
// run with N workers always produces the same per-worker streams
// regardless of goroutine scheduling. Uses the same fasthash choice
// (FNV-1a) for the non-cryptographic mixing.
func DeriveWorkerSeed(runSeed int64, workerID int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(runSeed))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(workerID)))
	h := fnv1a.HashBytes64(buf[:])
	return int64(h)
}

// NewWorkerRNG returns a *rand.Rand seeded with the worker's deterministic
// sub-stream, derived from runSeed.
func NewWorkerRNG(runSeed int64, workerID int) *rand.Rand {
	return rand.New(rand.NewSource(DeriveWorkerSeed(runSeed, workerID)))
}
