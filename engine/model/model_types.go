package model

import "github.com/Carmen-Shannon/oxy-viewer/common"

// AlphaMode selects how the base color alpha is interpreted.
type AlphaMode int

const (
	// AlphaModeOpaque ignores alpha.
	AlphaModeOpaque AlphaMode = iota
	// AlphaModeMask discards fragments below AlphaCutoff.
	AlphaModeMask
	// AlphaModeBlend is drawn like AlphaModeMask with a low cutoff; the viewer does not sort transparent surfaces.
	AlphaModeBlend
)

// Material holds the metallic-roughness surface description of a mesh.
type Material struct {
	// Name is the material identifier from the model file.
	Name string

	// BaseColorFactor is linear RGBA, multiplied with the base color texture.
	BaseColorFactor [4]float32

	// Metallic is the metalness in [0, 1].
	Metallic float32

	// Roughness is the perceptual roughness in [0, 1].
	Roughness float32

	// DoubleSided disables back-face culling.
	DoubleSided bool

	// AlphaMode and AlphaCutoff control transparency.
	AlphaMode   AlphaMode
	AlphaCutoff float32

	// BaseColorTexture is the sRGB albedo texture, nil if untextured.
	BaseColorTexture *common.ImportedTexture
}

// DefaultMaterial returns the glTF default material: white, fully metallic, fully rough, single sided.
//
// Returns:
//   - *Material: a new default material
func DefaultMaterial() *Material {
	return &Material{
		Name:            "default",
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		Metallic:        1,
		Roughness:       1,
		AlphaCutoff:     0.5,
	}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Empty reports whether the box encloses nothing.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return common.Scale3(common.Add3(b.Min, b.Max), 0.5)
}

// ComputeBounds returns the box enclosing every vertex position.
// An empty vertex slice yields an Empty box.
//
// Parameters:
//   - vertices: the mesh vertices
//
// Returns:
//   - Bounds: the enclosing box
func ComputeBounds(vertices []GPUVertex) Bounds {
	if len(vertices) == 0 {
		return Bounds{Min: [3]float32{1, 1, 1}, Max: [3]float32{-1, -1, -1}}
	}
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for k := range 3 {
			b.Min[k] = min(b.Min[k], v.Position[k])
			b.Max[k] = max(b.Max[k], v.Position[k])
		}
	}
	return b
}

// ComputeNormals writes area-weighted vertex normals derived from the triangle faces.
// Vertices not referenced by any triangle get +Y.
//
// Parameters:
//   - vertices: the vertices to update in place
//   - indices: triangle list indices into vertices
func ComputeNormals(vertices []GPUVertex, indices []uint32) {
	sums := make([][3]float32, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(vertices) || int(b) >= len(vertices) || int(c) >= len(vertices) {
			continue
		}
		// the unnormalized cross product is proportional to the face area
		n := common.Cross3(
			common.Sub3(vertices[b].Position, vertices[a].Position),
			common.Sub3(vertices[c].Position, vertices[a].Position),
		)
		sums[a] = common.Add3(sums[a], n)
		sums[b] = common.Add3(sums[b], n)
		sums[c] = common.Add3(sums[c], n)
	}
	for i := range vertices {
		n := common.Normalize3(sums[i])
		if n == [3]float32{} {
			n = [3]float32{0, 1, 0}
		}
		vertices[i].Normal = n
	}
}
