package pipeline

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a pipeline description in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// ShadowDepthBias and ShadowSlopeScale are the rasterizer bias applied to shadow casters.
const (
	ShadowDepthBias  int32   = 2
	ShadowSlopeScale float32 = 2
)

// WithShaders sets the vertex and fragment stages. Shadow pipelines ignore the fragment
// stage, so fs may be nil for them.
//
// Parameters:
//   - vs: the vertex shader
//   - fs: the fragment shader, or nil
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithShaders(vs, fs shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vs
		p.fragmentShader = fs
	}
}

// WithDoubleSided picks face culling for the pipeline's material side.
// Single-sided colour pipelines cull back faces. Single-sided shadow pipelines cull
// front faces so acne lands on surfaces facing away from the light.
// Double-sided pipelines cull nothing.
//
// Parameters:
//   - doubleSided: true for materials visible from both sides
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDoubleSided(doubleSided bool) PipelineBuilderOption {
	return func(p *pipeline) {
		switch {
		case doubleSided:
			p.cullMode = wgpu.CullModeNone
		case p.pipelineType == PipelineTypeShadow:
			p.cullMode = wgpu.CullModeFront
		default:
			p.cullMode = wgpu.CullModeBack
		}
	}
}

// WithCullMode overrides face culling.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithDepthBias sets the rasterizer depth bias.
//
// Parameters:
//   - bias: constant bias in depth units
//   - slopeScale: bias proportional to the polygon slope
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithDepthState sets depth writes and the depth test.
func WithDepthState(write bool, compare wgpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = write
		p.depthCompare = compare
	}
}

// WithPrimitive sets the topology and front-face winding.
func WithPrimitive(topology wgpu.PrimitiveTopology, frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the colour write mask.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}
