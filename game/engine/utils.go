package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source is the randomness used for tile spawns
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic generator for the given seed
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, 0))
}

// NewRandomSource returns a generator seeded from the operating system
func NewRandomSource() Source {
	return NewSource(RandomSeed())
}

// RandomSeed reads a seed from crypto/rand, falling back to the global
// generator if the system source is unavailable.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(b[:])
}
