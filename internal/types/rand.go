package types

import "math/rand/v2"

// Rand is the randomness behind heatmap scores, fallback scores and
// encouragement. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// OrGlobalRand returns rng, or the process-wide source when rng is nil
func OrGlobalRand(rng Rand) Rand {
	if rng == nil {
		return globalRand{}
	}
	return rng
}
