package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.InDelta(t, 75*math32.Pi/180, c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, float32(0.01), c.Near())
	assert.Equal(t, float32(2000), c.Far())
	assert.Nil(t, c.Controller())

	x, y, z := c.Up()
	assert.Equal(t, [3]float32{0, 1, 0}, [3]float32{x, y, z})
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera()
	f := 1 / math32.Tan(c.Fov()/2)

	c.SetAspect(2)
	assert.Equal(t, float32(2), c.Aspect())
	assert.InDelta(t, f/2, c.ProjectionMatrix()[0], 1e-6)

	c.SetAspect(0)
	c.SetAspect(-1)
	c.SetAspect(math32.Inf(1))
	assert.Equal(t, float32(2), c.Aspect(), "invalid aspects are ignored")
}

func TestCameraProjection(t *testing.T) {
	c := NewCamera(WithFov(math32.Pi/3), WithNear(0.5), WithFar(10), WithFar(0.1))
	p := c.Projection()
	assert.InDelta(t, math32.Pi/3, p.Fov, 1e-6)
	assert.Equal(t, float32(0.5), p.Near)
	assert.Equal(t, float32(10), p.Far, "a far plane in front of near is ignored")

	assert.False(t, c.SetProjection(Projection{Fov: 1, Aspect: 1, Near: 2, Far: 1}))
	assert.Equal(t, p, c.Projection())

	next := Projection{Fov: 1, Aspect: 2, Near: 1, Far: 100}
	require.True(t, c.SetProjection(next))
	assert.Equal(t, next, c.Projection())

	c.SetFov(math32.Pi)
	c.SetNear(200)
	assert.Equal(t, next, c.Projection())
}

func TestCameraTarget(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, [3]float32{}, c.Target())

	c.SetController(NewOrbitControls(WithPosition(0, 2, 10), WithTarget(0, 2, 0)))
	assert.Equal(t, [3]float32{0, 2, 0}, c.Target())
	assert.Equal(t, [3]float32{0, 2, 10}, c.Position())
}

func TestCameraUpdateReadsController(t *testing.T) {
	controls := NewOrbitControls(
		WithPosition(2, 3, 4),
		WithTarget(0, 2, -0.5),
	)
	c := NewCamera(WithController(controls), WithAspect(16.0/9.0))
	require.Equal(t, controls, c.Controller())
	assert.Equal(t, [3]float32{2, 3, 4}, c.Position())

	controls.SetPosition(1, 2, 3)
	assert.Equal(t, [3]float32{2, 3, 4}, c.Position(), "camera only reads the controller on Update")

	c.Update()
	assert.Equal(t, [3]float32{1, 2, 3}, c.Position())

	frustum := c.Frustum()
	assert.True(t, frustum.IntersectsAABB([3]float32{-0.1, 1.9, -0.6}, [3]float32{0.1, 2.1, -0.4}),
		"the target is inside the view")
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	c := NewCamera(WithController(NewOrbitControls()))
	u := NewGPUCameraUniform(c, 1.25)

	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, 80, u.Size())
	assert.Equal(t, u.Exposure, math.Float32frombits(binary.LittleEndian.Uint32(buf[76:])))
}
