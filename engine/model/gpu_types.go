package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUVertexSource is the WGSL definition of the VertexInput struct.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUMeshUniformSource is the WGSL definition of the MeshUniform struct.
//
//go:embed assets/mesh_uniform.wgsl
var GPUMeshUniformSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the VertexInput struct of the renderer's mesh and shadow shaders.
// Size: 32 bytes, no padding.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// GPUVertexSize is the byte stride of GPUVertex in a vertex buffer.
const GPUVertexSize = 32

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the vertex into buf, which must hold at least GPUVertexSize bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPUVertex) MarshalTo(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.TexCoord[1]))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	g.MarshalTo(buf)
	return buf
}

// VertexBufferLayout describes GPUVertex to a render pipeline.
// Locations: 0 position, 1 normal, 2 uv.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout of one interleaved vertex buffer
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: GPUVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// GPUMeshUniform is the per-draw uniform block of the mesh shader.
// Size: 160 bytes (WGSL aligned).
type GPUMeshUniform struct {
	Model        [16]float32 // offset   0: world matrix (mat4x4<f32>)
	NormalMatrix [16]float32 // offset  64: inverse-transpose of the world matrix (mat4x4<f32>)
	BaseColor    [4]float32  // offset 128: linear RGBA base color factor (vec4<f32>)
	Metallic     float32     // offset 144
	Roughness    float32     // offset 148
	// Flags packs MeshFlag bits.
	Flags       uint32  // offset 152
	AlphaCutoff float32 // offset 156
}

// MeshFlag bits stored in GPUMeshUniform.Flags.
const (
	MeshFlagHasTexture    uint32 = 1 << 0
	MeshFlagReceiveShadow uint32 = 1 << 1
	MeshFlagAlphaMask     uint32 = 1 << 2
	MeshFlagDoubleSided   uint32 = 1 << 3
)

// Size returns the size of the GPUMeshUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUMeshUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMeshUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 160-byte buffer ready for GPU upload
func (g *GPUMeshUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.NormalMatrix[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.BaseColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[144:], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[148:], math.Float32bits(g.Roughness))
	binary.LittleEndian.PutUint32(buf[152:], g.Flags)
	binary.LittleEndian.PutUint32(buf[156:], math.Float32bits(g.AlphaCutoff))
	return buf
}
