package renderer

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// Frame uniform layout, matching FrameUniform in assets/mesh.wgsl.
const (
	frameCameraOffset = 0
	frameParamsOffset = 80
	frameLightsOffset = 96

	// FrameUniformSize is the byte size of the per-frame uniform block.
	FrameUniformSize = frameLightsOffset + light.MaxLights*light.GPULightSize
)

// Offsets of the u32 fields of FrameParams.
const (
	paramToneMapping = frameParamsOffset + 0
	paramShadows     = frameParamsOffset + 4
	paramSRGBEncode  = frameParamsOffset + 8
	paramLightCount  = frameParamsOffset + 12
)

// blendAlphaCutoff is the alpha test threshold for blended materials, which are drawn without sorting.
const blendAlphaCutoff float32 = 0.05

// FrameStats summarizes what a rendered frame contained.
type FrameStats struct {
	// Frame is the 1-based number of the frame.
	Frame uint64
	// Lights is the number of lights uploaded (at most light.MaxLights).
	Lights int
	// ShadowPasses is the number of depth-only passes rendered.
	ShadowPasses int
	// Visible is the number of mesh instances inside the camera frustum.
	Visible int
	// Culled is the number of mesh instances skipped by frustum culling.
	Culled int
	// ShadowCasters is the number of caster draws across all shadow passes.
	ShadowCasters int
	// Triangles is the number of triangles drawn in the main pass.
	Triangles int
}

// drawItem is one mesh instance with its per-draw uniform.
type drawItem struct {
	instance scene.MeshInstance
	uniform  model.GPUMeshUniform
}

// shadowPass renders the casters inside one light's shadow frustum into layer slot.
type shadowPass struct {
	slot     int
	viewProj [16]float32
	// casters indexes frame.casters.
	casters []int
}

// frame is the backend-neutral description of one rendered frame.
type frame struct {
	width, height int
	clearColor    [3]float32

	// uniform is the FrameUniform block, FrameUniformSize bytes.
	uniform []byte

	// items are drawn in the main pass, casters in the shadow passes.
	items   []drawItem
	casters []drawItem
	shadows []shadowPass

	stats FrameStats
}

// frameSettings carries the renderer options that shape a frame.
type frameSettings struct {
	width, height int
	clearColor    [3]float32
	toneMapping   ToneMapping
	exposure      float32
	shadows       bool
	shadowMapSize int
}

// buildFrame collects the lights and mesh instances of a scene into a frame.
// Instances whose world bounds miss the camera frustum are culled from the main pass.
// Shadow casters are culled per light against the light's shadow frustum instead.
//
// Parameters:
//   - s: the scene to draw
//   - cam: the camera, with matrices already updated
//   - settings: the renderer options
//
// Returns:
//   - *frame: the frame description
func buildFrame(s scene.Scene, cam camera.Camera, settings frameSettings) *frame {
	f := &frame{
		width:      settings.width,
		height:     settings.height,
		clearColor: settings.clearColor,
		uniform:    make([]byte, FrameUniformSize),
	}

	cu := camera.NewGPUCameraUniform(cam, settings.exposure)
	cu.MarshalTo(f.uniform[frameCameraOffset:])

	lights := s.Lights()
	f.stats.Lights = light.MarshalLights(f.uniform[frameLightsOffset:], lights, settings.shadowMapSize)

	binary.LittleEndian.PutUint32(f.uniform[paramToneMapping:], uint32(settings.toneMapping))
	binary.LittleEndian.PutUint32(f.uniform[paramShadows:], boolToU32(settings.shadows))
	binary.LittleEndian.PutUint32(f.uniform[paramLightCount:], uint32(f.stats.Lights))

	frustum := cam.Frustum()
	for _, inst := range s.MeshNodes() {
		if inst.Mesh.IndexCount() == 0 {
			continue
		}
		item := drawItem{instance: inst, uniform: meshUniform(inst)}
		bounds := inst.WorldBounds()
		if bounds.Empty() || frustum.IntersectsAABB(bounds.Min, bounds.Max) {
			f.items = append(f.items, item)
			f.stats.Triangles += inst.Mesh.TriangleCount()
		} else {
			f.stats.Culled++
		}
		if settings.shadows && inst.CastShadow {
			f.casters = append(f.casters, item)
		}
	}
	f.stats.Visible = len(f.items)

	if settings.shadows {
		slot := 0
		for _, l := range lights {
			if slot >= light.MaxLights {
				break
			}
			if !l.Enabled() {
				continue
			}
			if l.CastShadow() {
				f.shadows = append(f.shadows, shadowPassFor(l, slot, f.casters))
			}
			slot++
		}
	}
	f.stats.ShadowPasses = len(f.shadows)
	for _, sp := range f.shadows {
		f.stats.ShadowCasters += len(sp.casters)
	}
	return f
}

// shadowPassFor selects the casters inside a light's shadow frustum.
func shadowPassFor(l light.Light, slot int, casters []drawItem) shadowPass {
	pass := shadowPass{slot: slot, viewProj: l.ShadowViewProjection()}
	frustum := common.ExtractFrustumFromMatrix(pass.viewProj[:])
	for i, c := range casters {
		b := c.instance.WorldBounds()
		if b.Empty() || frustum.IntersectsAABB(b.Min, b.Max) {
			pass.casters = append(pass.casters, i)
		}
	}
	return pass
}

// meshUniform packs the world transform and material of an instance.
//
// Parameters:
//   - inst: the mesh instance
//
// Returns:
//   - model.GPUMeshUniform: the per-draw uniform
func meshUniform(inst scene.MeshInstance) model.GPUMeshUniform {
	var u model.GPUMeshUniform
	copy(u.Model[:], inst.World[:])
	common.NormalMatrix(u.NormalMatrix[:], u.Model[:])

	mat := inst.Mesh.Material()
	if mat == nil {
		mat = model.DefaultMaterial()
	}
	u.BaseColor = mat.BaseColorFactor
	u.Metallic = mat.Metallic
	u.Roughness = mat.Roughness
	u.AlphaCutoff = mat.AlphaCutoff

	if hasTexture(mat) {
		u.Flags |= model.MeshFlagHasTexture
	}
	if inst.ReceiveShadow {
		u.Flags |= model.MeshFlagReceiveShadow
	}
	if mat.DoubleSided {
		u.Flags |= model.MeshFlagDoubleSided
	}
	switch mat.AlphaMode {
	case model.AlphaModeMask:
		u.Flags |= model.MeshFlagAlphaMask
	case model.AlphaModeBlend:
		u.Flags |= model.MeshFlagAlphaMask
		u.AlphaCutoff = blendAlphaCutoff
	}
	return u
}

// hasTexture reports whether a material carries decoded base colour pixels.
func hasTexture(mat *model.Material) bool {
	return mat != nil && mat.BaseColorTexture != nil && mat.BaseColorTexture.Staged != nil
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
