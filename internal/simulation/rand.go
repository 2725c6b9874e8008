// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Rand is the randomness source consumed by the generator and injector.
// Implementations must be deterministic given a fixed seed so runs are
// reproducible for regression tests.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Uint64() uint64
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a seeded deterministic source. Each generation task
// should get its own source, or share one through NewLockedRand.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// LockedRand serializes access to an underlying source so it can be
// shared across workers without data races.
type LockedRand struct {
	mu  sync.Mutex
	src Rand
}

func NewLockedRand(src Rand) *LockedRand {
	return &LockedRand{src: src}
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

func (l *LockedRand) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uint64()
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Shuffle(n, swap)
}

// weightedIndex picks an index proportional to weights. Weights need
// not sum to 1.
func weightedIndex(r Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}

	draw := r.Float64() * total
	for i, w := range weights {
		draw -= w
		if draw < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// randomUUID derives a v4-shaped UUID from the injected source instead
// of crypto/rand, keeping identically seeded runs byte-identical.
func randomUUID(r Rand) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], r.Uint64())
	binary.BigEndian.PutUint64(id[8:], r.Uint64())
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// shortID is the 8-hex-char id fragment used in cust_/rest_/user_/item_
// identifiers.
func shortID(r Rand) string {
	return randomUUID(r).String()[:8]
}
