package renderer

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeMesh(mat *model.Material) model.Mesh {
	var vertices []model.GPUVertex
	for i := range 8 {
		vertices = append(vertices, model.GPUVertex{Position: [3]float32{
			float32(i&1) - 0.5,
			float32((i>>1)&1) - 0.5,
			float32((i>>2)&1) - 0.5,
		}})
	}
	indices := []uint32{
		0, 1, 3, 0, 3, 2, 4, 6, 7, 4, 7, 5,
		0, 4, 5, 0, 5, 1, 2, 3, 7, 2, 7, 6,
		0, 2, 6, 0, 6, 4, 1, 5, 7, 1, 7, 3,
	}
	opts := []model.MeshBuilderOption{model.WithVertices(vertices), model.WithIndices(indices)}
	if mat != nil {
		opts = append(opts, model.WithMaterial(mat))
	}
	return model.NewMesh(opts...)
}

func newHeadless(t *testing.T, opts ...RendererBuilderOption) (*renderer, *headlessRendererBackend) {
	t.Helper()
	r, err := NewRenderer(BackendTypeHeadless, nil, append([]RendererBuilderOption{WithSize(800, 600)}, opts...)...)
	require.NoError(t, err)
	impl := r.(*renderer)
	return impl, impl.backend.(*headlessRendererBackend)
}

// testScene has one cube at the camera target, one behind the camera,
// a shadow-casting spot light, a plain spot light and a disabled light.
func testScene() (scene.Scene, camera.Camera) {
	s := scene.NewScene()
	_ = s.Add(
		scene.NewNode(scene.WithName("front"), scene.WithMesh(cubeMesh(nil)), scene.WithPosition(0, 2, 0), scene.WithShadows(true, true)),
		scene.NewNode(scene.WithName("behind"), scene.WithMesh(cubeMesh(nil)), scene.WithPosition(0, 2, 30), scene.WithShadows(true, true)),
	)
	s.AddLight(light.NewLight(light.LightTypeSpot,
		light.WithPosition(-10, 25, -10),
		light.WithDistance(50),
		light.WithCone(0.22, 1),
		light.WithCastShadow(true, light.DefaultShadowBias),
	))
	s.AddLight(light.NewLight(light.LightTypeSpot, light.WithPosition(10, 25, 25), light.WithDistance(200)))
	s.AddLight(light.NewLight(light.LightTypeSpot, light.WithEnabled(false)))

	controls := camera.NewOrbitControls(camera.WithPosition(0, 2, 10), camera.WithTarget(0, 2, 0))
	cam := camera.NewCamera(camera.WithController(controls), camera.WithAspect(800.0/600.0))
	cam.Update()
	return s, cam
}

func TestNewRendererDefaults(t *testing.T) {
	r, _ := newHeadless(t)

	opts := r.Options()
	assert.Equal(t, ToneMappingACESFilmic, opts.ToneMapping)
	assert.Equal(t, float32(1), opts.Exposure)
	assert.True(t, opts.Shadows)
	assert.Equal(t, light.DefaultShadowMapSize, opts.ShadowMapSize)
	assert.Equal(t, MSAA4x, opts.MSAA)
	assert.Equal(t, PresentModeVSync, opts.PresentMode)
	assert.Equal(t, [3]float32{0, 0, 0}, opts.ClearColor)
	assert.Equal(t, BackendTypeHeadless, r.BackendType())
}

func TestNewRendererRejectsInvalidOptions(t *testing.T) {
	_, err := NewRenderer(BackendTypeHeadless, nil, WithMSAA(3))
	assert.Error(t, err)

	_, err = NewRenderer(BackendTypeHeadless, nil, WithShadowMapSize(0))
	assert.Error(t, err)

	_, err = NewRenderer(BackendTypeWGPU, nil)
	assert.Error(t, err, "wgpu needs a window")
}

func TestNewRendererTakesWindowSize(t *testing.T) {
	win := window.NewHeadlessWindow(2, 0, window.WithSize(640, 480))
	r, err := NewRenderer(BackendTypeHeadless, win)
	require.NoError(t, err)

	w, h := r.Size()
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})
	assert.Equal(t, float32(2), r.PixelRatio())
	w, h = r.DrawingBufferSize()
	assert.Equal(t, [2]int{1280, 960}, [2]int{w, h})
}

func TestResizeScalesDrawingBuffer(t *testing.T) {
	r, backend := newHeadless(t, WithPixelRatio(1.5))
	s, cam := testScene()

	r.Resize(1001, 333)
	w, h := r.Size()
	assert.Equal(t, [2]int{1001, 333}, [2]int{w, h})
	w, h = r.DrawingBufferSize()
	assert.Equal(t, [2]int{1502, 500}, [2]int{w, h}, "round(size * ratio)")

	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, [][2]int{{1502, 500}}, backend.configuredSizes(), "configured once per size change")

	r.Resize(0, 100)
	r.Resize(100, -1)
	w, h = r.Size()
	assert.Equal(t, [2]int{1001, 333}, [2]int{w, h}, "non-positive sizes are ignored")

	r.Resize(1001, 333)
	require.NoError(t, r.Render(s, cam))
	assert.Len(t, backend.configuredSizes(), 1, "same size does not reconfigure")

	r.SetPixelRatio(2)
	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, [2]int{2002, 666}, backend.configuredSizes()[1])
}

func TestRenderCollectsFrame(t *testing.T) {
	r, backend := newHeadless(t)
	s, cam := testScene()

	require.NoError(t, r.Render(s, cam))

	stats := r.LastFrame()
	assert.Equal(t, uint64(1), stats.Frame)
	assert.Equal(t, 2, stats.Lights, "disabled lights are skipped")
	assert.Equal(t, 1, stats.Visible)
	assert.Equal(t, 1, stats.Culled)
	assert.Equal(t, 12, stats.Triangles)
	assert.Equal(t, 1, stats.ShadowPasses)
	assert.Equal(t, 1, stats.ShadowCasters, "the cube behind the camera is outside the light cone")

	f := backend.lastFrame()
	require.NotNil(t, f)
	require.Len(t, f.uniform, FrameUniformSize)
	assert.Equal(t, uint32(ToneMappingACESFilmic), binary.LittleEndian.Uint32(f.uniform[paramToneMapping:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(f.uniform[paramShadows:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(f.uniform[paramLightCount:]))
	require.Len(t, f.shadows, 1)
	assert.Equal(t, 0, f.shadows[0].slot)
	assert.Equal(t, 800, f.width)
	assert.Equal(t, 600, f.height)
}

func TestRenderWithoutShadows(t *testing.T) {
	r, backend := newHeadless(t, WithShadows(false), WithToneMapping(ToneMappingNone))
	s, cam := testScene()

	require.NoError(t, r.Render(s, cam))

	assert.Equal(t, 0, r.LastFrame().ShadowPasses)
	f := backend.lastFrame()
	assert.Empty(t, f.casters)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(f.uniform[paramShadows:]))
	assert.Equal(t, uint32(ToneMappingNone), binary.LittleEndian.Uint32(f.uniform[paramToneMapping:]))
}

func TestRenderCountsFrames(t *testing.T) {
	r, backend := newHeadless(t)
	s, cam := testScene()

	for range 3 {
		require.NoError(t, r.Render(s, cam))
	}
	assert.Equal(t, uint64(3), r.FrameCount())
	assert.Equal(t, uint64(3), r.LastFrame().Frame)
	assert.Equal(t, uint64(3), backend.frames)
}

func TestRenderRejectsReentry(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := testScene()

	r.inFrame = true
	assert.ErrorIs(t, r.Render(s, cam), ErrFrameInFlight)

	r.inFrame = false
	assert.NoError(t, r.Render(s, cam))
}

func TestRenderSkipsEmptyDrawingBuffer(t *testing.T) {
	r, backend := newHeadless(t, WithSize(0, 0))
	s, cam := testScene()

	require.NoError(t, r.Render(s, cam))
	assert.Equal(t, uint64(0), r.FrameCount())
	assert.Empty(t, backend.configuredSizes())
}

func TestRenderAfterReleaseFails(t *testing.T) {
	r, _ := newHeadless(t)
	s, cam := testScene()

	r.Release()
	assert.Error(t, r.Render(s, cam))
}

func TestMeshUniformFlags(t *testing.T) {
	staged := &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	mat := &model.Material{
		BaseColorFactor:  [4]float32{0.5, 0.25, 1, 1},
		Metallic:         0.1,
		Roughness:        0.9,
		DoubleSided:      true,
		AlphaMode:        model.AlphaModeMask,
		AlphaCutoff:      0.3,
		BaseColorTexture: &common.ImportedTexture{Name: "albedo", Staged: staged},
	}
	node := scene.NewNode(scene.WithMesh(cubeMesh(mat)), scene.WithPosition(1, 2, 3))
	inst := scene.MeshInstance{Node: node, Mesh: node.Mesh(), World: node.WorldMatrix(), ReceiveShadow: true}

	u := meshUniform(inst)
	assert.Equal(t, mat.BaseColorFactor, u.BaseColor)
	assert.Equal(t, float32(0.1), u.Metallic)
	assert.Equal(t, float32(0.9), u.Roughness)
	assert.Equal(t, float32(0.3), u.AlphaCutoff)
	assert.Equal(t,
		model.MeshFlagHasTexture|model.MeshFlagReceiveShadow|model.MeshFlagAlphaMask|model.MeshFlagDoubleSided,
		u.Flags)
	assert.Equal(t, float32(1), u.Model[12])
	assert.Equal(t, float32(2), u.Model[13])
	assert.Equal(t, float32(3), u.Model[14])

	mat.AlphaMode = model.AlphaModeBlend
	mat.BaseColorTexture.Staged = nil
	mat.DoubleSided = false
	inst.ReceiveShadow = false
	u = meshUniform(inst)
	assert.Equal(t, model.MeshFlagAlphaMask, u.Flags)
	assert.Equal(t, blendAlphaCutoff, u.AlphaCutoff)
}

func TestMeshUniformDefaultMaterial(t *testing.T) {
	node := scene.NewNode(scene.WithMesh(cubeMesh(nil)))
	u := meshUniform(scene.MeshInstance{Node: node, Mesh: node.Mesh(), World: node.WorldMatrix()})

	def := model.DefaultMaterial()
	assert.Equal(t, def.BaseColorFactor, u.BaseColor)
	assert.Equal(t, uint32(0), u.Flags)
	assert.Equal(t, float32(1), u.NormalMatrix[0])
}

func TestParseToneMapping(t *testing.T) {
	tm, err := ParseToneMapping("aces")
	require.NoError(t, err)
	assert.Equal(t, ToneMappingACESFilmic, tm)

	tm, err = ParseToneMapping("none")
	require.NoError(t, err)
	assert.Equal(t, ToneMappingNone, tm)

	_, err = ParseToneMapping("reinhard")
	assert.Error(t, err)
}

func TestBackendTypeString(t *testing.T) {
	assert.Equal(t, "wgpu", BackendTypeWGPU.String())
	assert.Equal(t, "headless", BackendTypeHeadless.String())
	assert.Equal(t, "RendererBackendType(7)", RendererBackendType(7).String())
}

func TestEmbeddedShaderEntryPoints(t *testing.T) {
	assert.Contains(t, meshShaderSource, "fn fs_main")
	assert.Contains(t, shadowShaderSource, "fn vs_main")
}
