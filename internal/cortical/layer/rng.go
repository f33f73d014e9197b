package layer

import "golang.org/x/exp/rand"

// stream is a splittable random source: every
// stochastic decision splits a fresh *rand.Rand from the stream's
// running splitmix64 counter rather than consuming a shared source.
// The sub-stream a site receives depends only on the seed and on how
// many splits preceded it, so a fixed call sequence is reproducible.
type stream struct {
	state uint64
}

func newStream(seed uint64) *stream {
	return &stream{state: seed}
}

// split advances the stream's internal counter and returns a fresh
// *rand.Rand seeded from it. The stream itself is never used to
// generate values directly.
func (s *stream) split() *rand.Rand {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return rand.New(rand.NewSource(z))
}
