// Package model holds CPU-side mesh geometry and materials ready for GPU upload.
package model

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// meshCount generates unique mesh ids for renderer resource caches.
var meshCount atomic.Uint64

// mesh is the implementation of the Mesh interface.
type mesh struct {
	id       uint64
	name     string
	vertices []GPUVertex
	indices  []uint32
	material *Material
	bounds   Bounds

	vertexData, indexData []byte
}

// Mesh defines the interface for indexed triangle geometry with a material.
// Meshes are immutable after construction, so the renderer may cache GPU buffers by ID.
type Mesh interface {
	// ID returns a process-unique identifier for this mesh.
	//
	// Returns:
	//   - uint64: the mesh id
	ID() uint64

	// Name retrieves the mesh identifier from the model file.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the interleaved vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertices; callers must not modify them
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices; callers must not modify them
	Indices() []uint32

	// Material returns the surface description.
	//
	// Returns:
	//   - *Material: the material, never nil
	Material() *Material

	// Bounds returns the local-space bounding box.
	//
	// Returns:
	//   - Bounds: the box enclosing every vertex
	Bounds() Bounds

	// VertexData returns the vertex buffer contents.
	//
	// Returns:
	//   - []byte: the packed vertex data
	VertexData() []byte

	// IndexData returns the index buffer contents.
	//
	// Returns:
	//   - []byte: the packed uint32 index data
	IndexData() []byte

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// TriangleCount returns the number of triangles.
	//
	// Returns:
	//   - int: IndexCount / 3
	TriangleCount() int
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from the given options.
// Without indices the vertices are drawn as a sequential triangle list.
// Without a material the glTF default material is used.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		id: meshCount.Add(1),
	}
	for _, option := range options {
		option(m)
	}

	if m.indices == nil {
		m.indices = make([]uint32, len(m.vertices))
		for i := range m.indices {
			m.indices[i] = uint32(i)
		}
	}
	// drop a trailing partial triangle
	m.indices = m.indices[:len(m.indices)/3*3]

	if m.material == nil {
		m.material = DefaultMaterial()
	}
	m.bounds = ComputeBounds(m.vertices)

	m.vertexData = make([]byte, len(m.vertices)*GPUVertexSize)
	for i := range m.vertices {
		m.vertices[i].MarshalTo(m.vertexData[i*GPUVertexSize:])
	}
	m.indexData = append([]byte(nil), common.SliceToBytes(m.indices)...)
	return m
}

func (m *mesh) ID() uint64 {
	return m.id
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []GPUVertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) Material() *Material {
	return m.material
}

func (m *mesh) Bounds() Bounds {
	return m.bounds
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) TriangleCount() int {
	return len(m.indices) / 3
}
