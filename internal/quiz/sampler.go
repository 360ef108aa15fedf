package quiz

import "math/rand/v2"

// Sampler is the single source of randomness for quiz generation. Two
// samplers built from the same seed produce the same quiz.
type Sampler struct {
	r *rand.Rand
}

func NewSampler(seed uint64) *Sampler {
	return &Sampler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample returns n elements of items picked uniformly without replacement.
// n is clamped to len(items). items is not modified.
func Sample[T any](s *Sampler, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}

	picks := s.r.Perm(len(items))[:n]
	out := make([]T, n)
	for i, ix := range picks {
		out[i] = items[ix]
	}
	return out
}

func Shuffle[T any](s *Sampler, items []T) {
	s.r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
