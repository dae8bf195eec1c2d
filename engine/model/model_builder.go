package model

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertices is an option builder that sets the interleaved vertices of the Mesh.
//
// Parameters:
//   - vertices: the vertices; the mesh takes ownership
//
// Returns:
//   - MeshBuilderOption: a function that applies the vertices option to a mesh
func WithVertices(vertices []GPUVertex) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
	}
}

// WithIndices is an option builder that sets the triangle list indices of the Mesh.
//
// Parameters:
//   - indices: the indices; the mesh takes ownership
//
// Returns:
//   - MeshBuilderOption: a function that applies the indices option to a mesh
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}

// WithMaterial is an option builder that sets the surface description of the Mesh.
//
// Parameters:
//   - material: the material
//
// Returns:
//   - MeshBuilderOption: a function that applies the material option to a mesh
func WithMaterial(material *Material) MeshBuilderOption {
	return func(m *mesh) {
		m.material = material
	}
}
