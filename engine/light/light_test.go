package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewerSpot(distance, x, y, z float32) Light {
	return NewLight(LightTypeSpot,
		WithColor(1, 1, 1),
		WithIntensity(3),
		WithDistance(distance),
		WithCone(0.22, 1),
		WithPosition(x, y, z),
		WithCastShadow(true, DefaultShadowBias),
	)
}

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypeSpot)

	assert.Equal(t, LightTypeSpot, l.Type())
	assert.Equal(t, [3]float32{}, l.Target())
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction(), "position equals target")
	assert.Equal(t, float32(2), l.Decay())
	assert.Equal(t, float32(0), l.Distance())
	assert.True(t, l.Enabled())
	assert.False(t, l.CastShadow())
}

func TestLightOptionsValidate(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithIntensity(2), WithIntensity(-1),
		WithDecay(-3),
		WithCone(math32.Pi, 4),
		WithHexColor(0xffffff),
	)

	assert.Equal(t, float32(2), l.Intensity())
	assert.Equal(t, float32(2), l.Decay())
	assert.InDelta(t, math32.Pi/2, l.Angle(), 1e-6)
	assert.Equal(t, float32(1), l.Penumbra())
	color := l.Color()
	assert.InDeltaSlice(t, []float32{1, 1, 1}, color[:], 1e-5)
}

func TestSpotLightCone(t *testing.T) {
	l := newViewerSpot(50, -10, 25, -10)

	outer, inner := l.ConeCosines()
	assert.InDelta(t, math32.Cos(0.22), outer, 1e-6)
	assert.Equal(t, float32(1), inner, "full penumbra fades from the axis")

	l.SetCone(0.5, 0.5)
	outer, inner = l.ConeCosines()
	assert.InDelta(t, math32.Cos(0.5), outer, 1e-6)
	assert.InDelta(t, math32.Cos(0.25), inner, 1e-6)

	l.SetCone(-1, 7)
	assert.Greater(t, l.Angle(), float32(0))
	assert.Equal(t, float32(1), l.Penumbra())
}

func TestSpotLightShadowCamera(t *testing.T) {
	l := newViewerSpot(50, -10, 25, -10)

	fov, aspect, near, far := l.ShadowCamera()
	assert.InDelta(t, 0.44, fov, 1e-6)
	assert.Equal(t, float32(1), aspect)
	assert.Equal(t, DefaultShadowNear, near)
	assert.Equal(t, float32(50), far)

	unlimited := NewLight(LightTypeSpot, WithPosition(0, 10, 0))
	_, _, _, far = unlimited.ShadowCamera()
	assert.Equal(t, DefaultShadowFar, far)
}

func TestSpotLightShadowViewProjectionSeesTarget(t *testing.T) {
	l := newViewerSpot(200, 10, 25, 25)
	vp := l.ShadowViewProjection()

	frustum := common.ExtractFrustumFromMatrix(vp[:])
	assert.True(t, frustum.IntersectsAABB([3]float32{-0.5, -0.5, -0.5}, [3]float32{0.5, 0.5, 0.5}),
		"the target sits on the cone axis")
	assert.False(t, frustum.IntersectsAABB([3]float32{-40, -1, -40}, [3]float32{-39, 1, -39}),
		"far outside the narrow cone")
}

func TestVerticalSpotLightHasValidShadowMatrix(t *testing.T) {
	l := NewLight(LightTypeSpot, WithPosition(0, 10, 0), WithCastShadow(true, 0))
	vp := l.ShadowViewProjection()
	for _, v := range vp {
		require.False(t, math32.IsNaN(v))
	}
}

func TestPointLightNeverCastsShadow(t *testing.T) {
	l := NewLight(LightTypePoint, WithCastShadow(true, 0))
	assert.False(t, l.CastShadow())
	l.SetCastShadow(true)
	assert.False(t, l.CastShadow())

	g := ToGPULight(l, 2048)
	assert.Equal(t, uint32(0), g.CastShadow)
	assert.Less(t, g.ConeOuter, g.ConeInner)
	assert.Equal(t, float32(-1), g.ConeInner)
}

func TestToGPULight(t *testing.T) {
	l := newViewerSpot(50, -10, 25, -10)
	g := ToGPULight(l, 2048)

	assert.Equal(t, 128, g.Size())
	assert.Equal(t, [3]float32{3, 3, 3}, g.Radiance)
	assert.Equal(t, float32(50), g.Distance)
	assert.Equal(t, uint32(1), g.CastShadow)
	assert.Equal(t, DefaultShadowBias, g.ShadowBias)
	assert.InDelta(t, 1.0/2048, g.TexelSize, 1e-9)
	assert.Equal(t, l.ShadowViewProjection(), g.ViewProj)
}

func TestMarshalLights(t *testing.T) {
	lights := []Light{
		newViewerSpot(50, -10, 25, -10),
		NewLight(LightTypeSpot, WithEnabled(false)),
		newViewerSpot(200, 10, 25, 25),
	}
	buf := make([]byte, MaxLights*GPULightSize)
	for i := range buf {
		buf[i] = 0xff
	}

	n := MarshalLights(buf, lights, 2048)
	require.Equal(t, 2, n, "disabled lights are skipped")

	distance := func(slot int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[slot*GPULightSize+12:]))
	}
	assert.Equal(t, float32(50), distance(0))
	assert.Equal(t, float32(200), distance(1))
	assert.Equal(t, make([]byte, GPULightSize), buf[2*GPULightSize:3*GPULightSize], "unused slots are zeroed")
}

func TestMarshalLightsBudget(t *testing.T) {
	var lights []Light
	for range MaxLights + 3 {
		lights = append(lights, NewLight(LightTypePoint))
	}
	buf := make([]byte, MaxLights*GPULightSize)
	assert.Equal(t, MaxLights, MarshalLights(buf, lights, 0))
}
