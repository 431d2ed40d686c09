// Package rng implements the small deterministic generator the engine uses
// for evaluation jitter. A game owns one Source; replaying a game from the
// same seed reproduces the same sequence.
package rng

import "math/bits"

// Source is Bob Jenkins' small noncryptographic PRNG on 32-bit words.
type Source struct {
	a, b, c, d uint32
	seed       uint32
}

// New returns a source seeded with seed and warmed up by 20 outputs.
func New(seed uint32) *Source {
	s := &Source{a: 0xf1ea5eed, b: seed, c: seed, d: seed, seed: seed}
	for i := 0; i < 20; i++ {
		s.Uint31()
	}
	return s
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint32 {
	return s.seed
}

// Uint31 returns the next value in [0, 2^31).
func (s *Source) Uint31() uint32 {
	e := s.a - bits.RotateLeft32(s.b, 27)
	s.a = s.b ^ bits.RotateLeft32(s.c, 17)
	s.b = s.c + s.d
	s.c = s.d + e
	s.d = e + s.a
	return s.d & 0x7fffffff
}

// Intn returns a uniform value in [0, top). Values are drawn under the
// smallest all-ones mask covering top and rejected until one fits.
// top <= 1 returns 0 without consuming output.
func (s *Source) Intn(top int) int {
	if top <= 1 {
		return 0
	}
	mask := uint32(1)<<bits.Len32(uint32(top-1)) - 1
	for {
		if r := s.Uint31() & mask; r < uint32(top) {
			return int(r)
		}
	}
}

// Clone returns an independent copy positioned at the same point of the
// sequence.
func (s *Source) Clone() *Source {
	c := *s
	return &c
}
