package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func testFrustum() Frustum {
	var view, proj, vp [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)
	Perspective(proj[:], 60*math32.Pi/180, 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])
	return ExtractFrustumFromMatrix(vp[:])
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := testFrustum()

	assert.True(t, f.IntersectsAABB([3]float32{-1, -1, -1}, [3]float32{1, 1, 1}), "box at origin")
	assert.False(t, f.IntersectsAABB([3]float32{-1, -1, 20}, [3]float32{1, 1, 21}), "box behind camera")
	assert.False(t, f.IntersectsAABB([3]float32{-1, -1, -200}, [3]float32{1, 1, -150}), "box past far plane")
	assert.False(t, f.IntersectsAABB([3]float32{50, -1, -1}, [3]float32{52, 1, 1}), "box far to the right")
}

func TestTransformAABB(t *testing.T) {
	var m [16]float32
	Identity(m[:])
	m[12], m[13], m[14] = 5, 0, -2

	minB, maxB := TransformAABB(m[:], [3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	assert.Equal(t, [3]float32{4, -1, -3}, minB)
	assert.Equal(t, [3]float32{6, 1, -1}, maxB)
}
