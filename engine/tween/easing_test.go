package tween

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEasingEndpoints(t *testing.T) {
	for name, e := range easingsByName {
		assert.InDelta(t, 0, e(0), 1e-6, name)
		assert.InDelta(t, 1, e(1), 1e-6, name)
	}
}

func TestQuadraticOut(t *testing.T) {
	assert.InDelta(t, 0.75, QuadraticOut(0.5), 1e-6)
	assert.InDelta(t, 0.19, QuadraticOut(0.1), 1e-6)
}

func TestEasingsAreMonotonic(t *testing.T) {
	for name, e := range easingsByName {
		prev := e(0)
		for i := 1; i <= 100; i++ {
			v := e(float32(i) / 100)
			assert.GreaterOrEqual(t, v, prev-1e-6, "%s at %d", name, i)
			prev = v
		}
	}
}

func TestEasingByName(t *testing.T) {
	e, ok := EasingByName("quadratic-out")
	assert.True(t, ok)
	assert.InDelta(t, QuadraticOut(0.3), e(0.3), 1e-6)

	_, ok = EasingByName("bounce")
	assert.False(t, ok)
}

func TestSymmetricEasingsPassMidpoint(t *testing.T) {
	for _, name := range []string{"quadratic-in-out", "cubic-in-out", "sine-in-out"} {
		e, ok := EasingByName(name)
		assert.True(t, ok, name)
		assert.InDelta(t, 0.5, e(0.5), 1e-6, name)
		assert.InDelta(t, 1-e(0.2), e(0.8), 1e-6, name)
	}
}
