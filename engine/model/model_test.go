package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() []GPUVertex {
	return []GPUVertex{
		{Position: [3]float32{0, 0, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{1, 0, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{0, 0, -1}, TexCoord: [2]float32{0, 1}},
	}
}

func TestNewMeshDefaults(t *testing.T) {
	m := NewMesh(WithName("tri"), WithVertices(triangle()))

	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices(), "sequential indices when none are given")
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, DefaultMaterial(), m.Material())
	assert.Len(t, m.VertexData(), 3*GPUVertexSize)
	assert.Len(t, m.IndexData(), 3*4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(m.IndexData()[8:]))

	b := m.Bounds()
	assert.Equal(t, [3]float32{0, 0, -1}, b.Min)
	assert.Equal(t, [3]float32{1, 0, 0}, b.Max)
	assert.False(t, b.Empty())
}

func TestNewMeshUniqueIDs(t *testing.T) {
	a := NewMesh(WithVertices(triangle()))
	b := NewMesh(WithVertices(triangle()))
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNewMeshDropsPartialTriangle(t *testing.T) {
	m := NewMesh(WithVertices(triangle()), WithIndices([]uint32{0, 1, 2, 0}))
	assert.Equal(t, 3, m.IndexCount())
}

func TestComputeNormals(t *testing.T) {
	v := triangle()
	v = append(v, GPUVertex{Position: [3]float32{5, 5, 5}})
	ComputeNormals(v, []uint32{0, 1, 2})

	for i := range 3 {
		assert.InDelta(t, 0, v[i].Normal[0], 1e-6)
		assert.InDelta(t, 1, v[i].Normal[1], 1e-6, "counter-clockwise in XZ faces +Y")
		assert.InDelta(t, 0, v[i].Normal[2], 1e-6)
	}
	assert.Equal(t, [3]float32{0, 1, 0}, v[3].Normal, "unreferenced vertices default to +Y")
}

func TestComputeBoundsEmpty(t *testing.T) {
	assert.True(t, ComputeBounds(nil).Empty())
}

func TestGPUVertexMarshal(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.25, 0.75}}
	buf := v.Marshal()
	require.Len(t, buf, v.Size())
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:])))

	layout := VertexBufferLayout()
	assert.Equal(t, uint64(GPUVertexSize), layout.ArrayStride)
	assert.Len(t, layout.Attributes, 3)
}

func TestGPUMeshUniformSize(t *testing.T) {
	u := GPUMeshUniform{Flags: MeshFlagHasTexture | MeshFlagReceiveShadow}
	buf := u.Marshal()
	assert.Len(t, buf, 160)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[152:]))
}
