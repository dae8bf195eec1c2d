package viewpoint

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func newControls() camera.OrbitControls {
	controls := camera.NewOrbitControls()
	controls.Update(0)
	return controls
}

func pos(c camera.CameraController) [3]float32 {
	x, y, z := c.Position()
	return [3]float32{x, y, z}
}

func tgt(c camera.CameraController) [3]float32 {
	x, y, z := c.Target()
	return [3]float32{x, y, z}
}

// step advances the animation the way the viewer's frame does: tweens, then controls.
func step(a Animator, controls camera.OrbitControls) {
	a.Group().Update(frame)
	controls.Update(frame)
}

func TestSelectReachesEveryViewpointExactly(t *testing.T) {
	for _, id := range IDs() {
		t.Run(id, func(t *testing.T) {
			controls := newControls()
			a := NewAnimator(controls)
			vp, _ := Lookup(id)

			require.NoError(t, a.Select(id))
			assert.True(t, a.Busy())

			prev := common.Length3(common.Sub3(pos(controls), vp.Position))
			for elapsed := time.Duration(0); elapsed < 2*time.Second; elapsed += frame {
				step(a, controls)
				d := common.Length3(common.Sub3(pos(controls), vp.Position))
				assert.LessOrEqual(t, d, prev+1e-4, "distance to the destination never grows")
				prev = d
			}
			step(a, controls)

			assert.False(t, a.Busy())
			assert.Equal(t, 0, a.Group().Len())
			assert.Equal(t, vp.Position, pos(controls))
			assert.Equal(t, vp.LookAt, tgt(controls))

			// later frames leave the pose alone
			for range 10 {
				step(a, controls)
			}
			assert.Equal(t, vp.Position, pos(controls))
			assert.Equal(t, vp.LookAt, tgt(controls))
		})
	}
}

func TestSelectUnknownLeavesStateUntouched(t *testing.T) {
	controls := newControls()
	a := NewAnimator(controls)
	before, beforeTarget := pos(controls), tgt(controls)

	err := a.Select("hyperdrive")
	assert.ErrorIs(t, err, ErrUnknownViewpoint)
	assert.Equal(t, 0, a.Group().Len())
	assert.False(t, a.Busy())

	step(a, controls)
	assert.Equal(t, before, pos(controls))
	assert.Equal(t, beforeTarget, tgt(controls))
}

func TestOverlappingSelectionsNewestWins(t *testing.T) {
	controls := newControls()
	a := NewAnimator(controls)

	require.NoError(t, a.Select("satellite"))
	for range 30 {
		step(a, controls)
	}
	require.NoError(t, a.Select("frontal"))
	assert.Equal(t, 4, a.Group().Len(), "the first pair keeps running")

	for range 200 {
		step(a, controls)
	}
	frontal, _ := Lookup("frontal")
	assert.Equal(t, frontal.Position, pos(controls))
	assert.Equal(t, frontal.LookAt, tgt(controls))
}

func TestCancelPreviousStopsOlderPair(t *testing.T) {
	controls := newControls()
	a := NewAnimator(controls, WithCancelPrevious(true), WithDuration(500*time.Millisecond))

	require.NoError(t, a.Select("satellite"))
	step(a, controls)
	require.NoError(t, a.Select("warpDrive"))
	step(a, controls)
	assert.Equal(t, 2, a.Group().Len())

	for range 60 {
		step(a, controls)
	}
	warp, _ := Lookup("warpDrive")
	assert.Equal(t, warp.Position, pos(controls))
	assert.Equal(t, warp.LookAt, tgt(controls))
}

func TestAnimatorSharesGroup(t *testing.T) {
	controls := newControls()
	a := NewAnimator(controls)
	b := NewAnimator(controls, WithGroup(a.Group()))
	assert.Same(t, a.Group(), b.Group())
}
