// Package rng provides the frozen pseudo-random sequence used by the combat
// engine. The algorithm is SplitMix64; changing it breaks every recorded
// fight, so the constants and derived draws below must never change.
package rng

import "hash/fnv"

const (
	golden  = 0x9e3779b97f4a7c15
	mixMul1 = 0xbf58476d1ce4e5b9
	mixMul2 = 0x94d049bb133111eb
)

// State is the complete generator state. The zero value is a valid state.
type State uint64

// Seed returns the initial state for a fight seed.
func Seed(value uint64) State {
	return State(value)
}

// SeedInt64 maps a signed seed onto the generator using its two's-complement
// bit pattern, so negative seeds are valid and reproducible.
func SeedInt64(value int64) State {
	return State(uint64(value))
}

// Next returns the next value of the sequence and the advanced state. It has
// no side effects.
func (s State) Next() (uint64, State) {
	next := uint64(s) + golden
	z := next
	z = (z ^ (z >> 30)) * mixMul1
	z = (z ^ (z >> 27)) * mixMul2
	return z ^ (z >> 31), State(next)
}

// Source draws sequentially from a State. It is not safe for concurrent use;
// every simulation owns its own Source.
type Source struct {
	state State
	draws uint64
}

// NewSource constructs a Source positioned at the start of the seed's
// sequence.
func NewSource(seed uint64) *Source {
	return &Source{state: Seed(seed)}
}

// Uint64 advances the source. It satisfies math/rand/v2.Source.
func (s *Source) Uint64() uint64 {
	value, next := s.state.Next()
	s.state = next
	s.draws++
	return value
}

// Uniform returns a value in [0, max], inclusive.
func (s *Source) Uniform(max uint64) uint64 {
	return s.Uint64() % (max + 1)
}

// Percent returns a value in [1, 100]. A potency p triggers when the draw is
// at most p, so potency 0 never triggers and potency 100 always does.
func (s *Source) Percent() uint64 {
	return 1 + s.Uint64()%100
}

// State reports the current generator state.
func (s *Source) State() State {
	return s.state
}

// Draws reports how many values have been consumed.
func (s *Source) Draws() uint64 {
	return s.draws
}

// DeterministicSeedValue derives a stable seed from a root string and a label.
// It is used to assign seeds to fights that arrive without one.
func DeterministicSeedValue(root, label string) uint64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(root))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	return hasher.Sum64()
}
