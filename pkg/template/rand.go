package template

import (
	mathrand "math/rand/v2"
	"sync"
)

// randSource is a goroutine-safe seeded generator. A nil source uses the
// global math/rand/v2 generator.
type randSource struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

func newRandSource(seed uint64) *randSource {
	return &randSource{r: mathrand.New(mathrand.NewPCG(seed, seed))}
}

func (s *randSource) intN(n int) int {
	if n <= 0 {
		return 0
	}
	if s == nil {
		return mathrand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *randSource) float64() float64 {
	if s == nil {
		return mathrand.Float64()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
