package camera

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

var (
	satellitePosition = [3]float32{2.2363356030075563, 2.820678683267509, 2.684753953671324}
	satelliteLookAt   = [3]float32{0, 2, -0.5}
)

func position(c CameraController) [3]float32 {
	x, y, z := c.Position()
	return [3]float32{x, y, z}
}

func target(c CameraController) [3]float32 {
	x, y, z := c.Target()
	return [3]float32{x, y, z}
}

func settle(c OrbitControls, frames int) {
	for range frames {
		c.Update(frame)
	}
}

func assertWithinBounds(t *testing.T, c OrbitControls) {
	t.Helper()
	minD, maxD := c.DistanceBounds()
	minP, maxP := c.PolarBounds()
	d := c.Distance()
	p := c.PolarAngle()
	assert.GreaterOrEqual(t, d, minD-1e-4)
	assert.LessOrEqual(t, d, maxD+1e-4)
	assert.GreaterOrEqual(t, p, minP-1e-4)
	assert.LessOrEqual(t, p, maxP+1e-4)
}

func TestNewOrbitControlsDefaults(t *testing.T) {
	c := NewOrbitControls()

	assert.Equal(t, [3]float32{0, 2, -0.5}, target(c))
	assert.Equal(t, [3]float32{0, 12, 0}, position(c))
	minD, maxD := c.DistanceBounds()
	assert.Equal(t, [2]float32{0.1, 20}, [2]float32{minD, maxD})
	minP, maxP := c.PolarBounds()
	assert.Equal(t, [2]float32{0.5, 1.5}, [2]float32{minP, maxP})
	assert.True(t, c.DampingEnabled())
	assert.False(t, c.AutoRotate())
	assert.True(t, c.Settled())
}

func TestOrbitControlsFirstUpdateClampsInitialPose(t *testing.T) {
	c := NewOrbitControls()
	require.Less(t, c.PolarAngle(), float32(0.5), "looking almost straight down")

	distance := c.Distance()
	assert.True(t, c.Update(0))
	assert.InDelta(t, 0.5, c.PolarAngle(), 1e-4)
	assert.InDelta(t, distance, c.Distance(), 1e-4)
	assert.Equal(t, [3]float32{0, 2, -0.5}, target(c))
}

func TestOrbitControlsUpdateLeavesValidPoseUntouched(t *testing.T) {
	c := NewOrbitControls()
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])

	assert.False(t, c.Update(frame))
	assert.Equal(t, satellitePosition, position(c))
	assert.Equal(t, satelliteLookAt, target(c))
}

func TestOrbitControlsSetWithoutResync(t *testing.T) {
	c := NewOrbitControls()
	c.SetTarget(5, 5, 5)
	assert.Equal(t, [3]float32{0, 12, 0}, position(c), "target writes leave position alone")

	c.SetPosition(100, 0, 0)
	assert.Equal(t, [3]float32{100, 0, 0}, position(c))

	c.Update(frame)
	assertWithinBounds(t, c)
	assert.Equal(t, [3]float32{5, 5, 5}, target(c))
}

func TestOrbitControlsZoomStaysWithinDistanceBounds(t *testing.T) {
	for _, damping := range []bool{true, false} {
		c := NewOrbitControls(WithDamping(damping, 0.05))
		c.Update(frame)

		c.Zoom(10000)
		settle(c, 10)
		assertWithinBounds(t, c)
		assert.InDelta(t, 0.1, c.Distance(), 1e-4)

		c.Zoom(-1000)
		settle(c, 10)
		assertWithinBounds(t, c)
		assert.InDelta(t, 20, c.Distance(), 1e-3)
	}
}

func TestOrbitControlsOpposingZoomsInOneFrame(t *testing.T) {
	for _, damping := range []bool{true, false} {
		c := NewOrbitControls(WithDamping(damping, 0.05))
		c.Update(frame)

		before := c.Distance()
		c.Zoom(5000)
		c.Zoom(-5000)
		settle(c, 2)

		assert.InDelta(t, before, c.Distance(), 1e-2, "opposing notches cancel")
		assert.False(t, math32.IsNaN(c.Distance()))
		assert.False(t, math32.IsNaN(c.PolarAngle()))
		assertWithinBounds(t, c)
		assert.True(t, common.IsFinite3(position(c)))
	}
}

func TestOrbitControlsZoomOutFromDegeneratePose(t *testing.T) {
	c := NewOrbitControls(WithDamping(false, 0))
	c.SetPosition(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])

	c.Zoom(-1e6)
	c.Update(frame)

	require.True(t, common.IsFinite3(position(c)))
	assertWithinBounds(t, c)
	assert.InDelta(t, 20, c.Distance(), 1e-3)
}

func TestOrbitControlsIgnoresNonFiniteWrites(t *testing.T) {
	c := NewOrbitControls()
	c.SetPosition(math32.NaN(), 0, 0)
	c.SetTarget(0, math32.Inf(1), 0)

	assert.Equal(t, [3]float32{0, 12, 0}, position(c))
	assert.Equal(t, [3]float32{0, 2, -0.5}, target(c))
}

func TestOrbitControlsZoomScalesPerNotch(t *testing.T) {
	c := NewOrbitControls(WithDamping(false, 0))
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])
	before := c.Distance()

	c.Zoom(1)
	require.True(t, c.Update(frame))
	assert.InDelta(t, before*0.95, c.Distance(), 1e-4)
}

func TestOrbitControlsRotateStaysWithinPolarBounds(t *testing.T) {
	c := NewOrbitControls()
	c.Update(frame)

	c.Rotate(0, 1e6, 800)
	settle(c, 300)
	assertWithinBounds(t, c)
	assert.InDelta(t, 0.5, c.PolarAngle(), 1e-3)

	c.Rotate(0, -1e6, 800)
	settle(c, 300)
	assertWithinBounds(t, c)
	assert.InDelta(t, 1.5, c.PolarAngle(), 1e-3)
}

func TestOrbitControlsDampingEasesRotation(t *testing.T) {
	c := NewOrbitControls()
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])
	start := c.AzimuthAngle()
	want := -2 * math32.Pi * 100 / 800

	c.Rotate(100, 0, 800)
	assert.False(t, c.Settled())
	require.True(t, c.Update(frame))
	first := c.AzimuthAngle() - start
	assert.Less(t, math32.Abs(first), math32.Abs(want), "only a share is applied on the first update")

	settle(c, 300)
	assert.True(t, c.Settled())
	assert.InDelta(t, want, c.AzimuthAngle()-start, 1e-3)
	assertWithinBounds(t, c)
}

func TestOrbitControlsRotateWithoutDampingIsImmediate(t *testing.T) {
	c := NewOrbitControls(WithDamping(false, 0))
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])
	start := c.AzimuthAngle()

	c.Rotate(100, 0, 800)
	c.Update(frame)
	assert.True(t, c.Settled())
	assert.InDelta(t, -2*math32.Pi*100/800, c.AzimuthAngle()-start, 1e-4)
}

func TestOrbitControlsPanMovesTargetAndPositionTogether(t *testing.T) {
	c := NewOrbitControls(WithDamping(false, 0))
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])
	distance := c.Distance()

	c.Pan(40, -25, 800, 75*math32.Pi/180)
	require.True(t, c.Update(frame))

	moveTarget := common.Sub3(target(c), satelliteLookAt)
	movePosition := common.Sub3(position(c), satellitePosition)
	for i := range 3 {
		assert.InDelta(t, moveTarget[i], movePosition[i], 1e-4)
	}
	assert.Greater(t, common.Length3(moveTarget), float32(0))
	assert.InDelta(t, distance, c.Distance(), 1e-4)
}

func TestOrbitControlsPanDisabled(t *testing.T) {
	c := NewOrbitControls(WithPan(false))
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])

	c.Pan(40, -25, 800, 1)
	assert.True(t, c.Settled())
	assert.False(t, c.Update(frame))
}

func TestOrbitControlsIgnoresInvalidInput(t *testing.T) {
	c := NewOrbitControls()
	c.Rotate(math32.NaN(), 0, 800)
	c.Rotate(10, 10, 0)
	c.Pan(math32.Inf(1), 0, 800, 1)
	c.Zoom(math32.NaN())
	c.Zoom(0)
	assert.True(t, c.Settled())
}

func TestOrbitControlsAutoRotate(t *testing.T) {
	c := NewOrbitControls(WithDamping(false, 0), WithAutoRotate(true, 2))
	c.SetPosition(satellitePosition[0], satellitePosition[1], satellitePosition[2])
	c.SetTarget(satelliteLookAt[0], satelliteLookAt[1], satelliteLookAt[2])
	start := c.AzimuthAngle()

	require.True(t, c.Update(time.Second))
	assert.InDelta(t, -2*math32.Pi/60*2, c.AzimuthAngle()-start, 1e-4)
	assert.False(t, c.Settled())

	c.SetAutoRotate(false)
	assert.True(t, c.Settled())
}
