package loader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfMeshExtractor converts glTF meshes into model meshes. Each glTF mesh is
// converted once and shared by every node that references it.
type gltfMeshExtractor struct {
	doc       *gltf.Document
	materials []*model.Material
	logger    *slog.Logger

	cache     map[int][]model.Mesh
	meshes    int
	triangles int
	vertices  int
	skipped   int
}

// newGLTFMeshExtractor creates a mesh extractor for a decoded document.
//
// Parameters:
//   - doc: the decoded document with buffer data loaded
//   - materials: the extracted materials indexed like doc.Materials
//   - logger: destination for skipped primitive warnings
//
// Returns:
//   - *gltfMeshExtractor: the extractor
func newGLTFMeshExtractor(doc *gltf.Document, materials []*model.Material, logger *slog.Logger) *gltfMeshExtractor {
	return &gltfMeshExtractor{
		doc:       doc,
		materials: materials,
		logger:    logger,
		cache:     map[int][]model.Mesh{},
	}
}

// Mesh returns one model mesh per triangle primitive of the glTF mesh.
//
// Parameters:
//   - meshIndex: index into doc.Meshes
//
// Returns:
//   - []model.Mesh: the converted primitives, possibly empty
//   - error: error if an accessor cannot be read
func (e *gltfMeshExtractor) Mesh(meshIndex int) ([]model.Mesh, error) {
	if cached, ok := e.cache[meshIndex]; ok {
		return cached, nil
	}
	if meshIndex < 0 || meshIndex >= len(e.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	gm := e.doc.Meshes[meshIndex]
	var out []model.Mesh
	for i, prim := range gm.Primitives {
		name := gm.Name
		if len(gm.Primitives) > 1 {
			name = fmt.Sprintf("%s#%d", gm.Name, i)
		}
		if prim.Mode != gltf.PrimitiveTriangles {
			e.skipped++
			e.logger.Warn("skipping non-triangle primitive", "mesh", gm.Name, "primitive", i, "mode", prim.Mode)
			continue
		}
		if _, ok := prim.Attributes[gltf.POSITION]; !ok {
			e.skipped++
			e.logger.Warn("skipping primitive without positions", "mesh", gm.Name, "primitive", i)
			continue
		}

		m, err := e.primitive(prim, name)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, i, err)
		}
		e.meshes++
		e.triangles += m.TriangleCount()
		e.vertices += len(m.Vertices())
		out = append(out, m)
	}
	e.cache[meshIndex] = out
	return out, nil
}

// Totals reports the unique meshes converted so far.
//
// Returns:
//   - meshes, triangles, vertices: counts over converted primitives
//   - skipped: primitives that were not converted
func (e *gltfMeshExtractor) Totals() (meshes, triangles, vertices, skipped int) {
	return e.meshes, e.triangles, e.vertices, e.skipped
}

func (e *gltfMeshExtractor) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(e.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return e.doc.Accessors[index], nil
}

// primitive reads positions, normals, UVs and indices into an interleaved mesh.
// Missing normals are computed from the faces, missing UVs are zero, and
// non-indexed primitives get sequential indices.
func (e *gltfMeshExtractor) primitive(prim *gltf.Primitive, name string) (model.Mesh, error) {
	posAccessor, err := e.accessor(prim.Attributes[gltf.POSITION])
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(e.doc, posAccessor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := e.accessor(idx)
		if err != nil {
			return nil, err
		}
		if normals, err = modeler.ReadNormal(e.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := e.accessor(idx)
		if err != nil {
			return nil, err
		}
		if uvs, err = modeler.ReadTextureCoord(e.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("failed to read texture coordinates: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := e.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(e.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(positions))
			}
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	vertices := make([]model.GPUVertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
		if i < len(normals) {
			vertices[i].Normal = normals[i]
		}
		if i < len(uvs) {
			vertices[i].TexCoord = uvs[i]
		}
	}
	if len(normals) < len(positions) {
		model.ComputeNormals(vertices, indices)
	}

	return model.NewMesh(
		model.WithName(name),
		model.WithVertices(vertices),
		model.WithIndices(indices),
		model.WithMaterial(materialOrDefault(e.materials, prim.Material)),
	), nil
}
