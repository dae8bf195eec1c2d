package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("mesh", PipelineTypeRender)

	assert.Equal(t, "mesh", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLess, p.DepthCompare())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))

	// no GPU object yet
	p.Release()
}

func TestPipelineOptions(t *testing.T) {
	vs, err := shader.NewShader("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() {}")
	require.NoError(t, err)
	fs, err := shader.NewShader("fs", shader.ShaderTypeFragment, "@fragment fn fs_main() {}")
	require.NoError(t, err)

	p := NewPipeline("shadow", PipelineTypeShadow,
		WithShaders(vs, fs),
		WithCullMode(wgpu.CullModeBack),
		WithDepthBias(2, 1.5),
		WithDepthState(false, wgpu.CompareFunctionAlways),
		WithPrimitive(wgpu.PrimitiveTopologyLineList, wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
	)

	assert.Equal(t, PipelineTypeShadow, p.Type())
	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	bias, slope := p.DepthBias()
	assert.Equal(t, int32(2), bias)
	assert.Equal(t, float32(1.5), slope)
	assert.Equal(t, wgpu.CompareFunctionAlways, p.DepthCompare())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
}

func TestWithDoubleSidedCulling(t *testing.T) {
	cases := []struct {
		name        string
		typ         PipelineType
		doubleSided bool
		want        wgpu.CullMode
	}{
		{"mesh", PipelineTypeRender, false, wgpu.CullModeBack},
		{"mesh double", PipelineTypeRender, true, wgpu.CullModeNone},
		{"shadow", PipelineTypeShadow, false, wgpu.CullModeFront},
		{"shadow double", PipelineTypeShadow, true, wgpu.CullModeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPipeline(tc.name, tc.typ, WithDoubleSided(tc.doubleSided))
			assert.Equal(t, tc.want, p.CullMode())
		})
	}
}
