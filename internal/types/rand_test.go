package types

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrGlobalRand(t *testing.T) {
	seeded := rand.New(rand.NewPCG(1, 2))
	assert.Same(t, seeded, OrGlobalRand(seeded))

	global := OrGlobalRand(nil)
	for range 50 {
		n := global.IntN(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
}
