package loader

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// gltfLoaderBackendImpl is the loaderBackend for glTF 2.0 documents.
type gltfLoaderBackendImpl struct {
	maxTextureSize int
	decoder        *decodePool
	logger         *slog.Logger
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - maxTextureSize: textures above this edge length are downscaled
//   - workers: texture decode parallelism, shared by every import
//   - logger: destination for warnings about skipped content
//
// Returns:
//   - *gltfLoaderBackendImpl: the loader backend for glTF files
func newGLTFLoaderBackend(maxTextureSize, workers int, logger *slog.Logger) *gltfLoaderBackendImpl {
	return &gltfLoaderBackendImpl{
		maxTextureSize: maxTextureSize,
		decoder:        newDecodePool(workers),
		logger:         logger,
	}
}

// gltfImport holds the per-document state of one import.
type gltfImport struct {
	doc       *gltf.Document
	meshes    *gltfMeshExtractor
	stats     Stats
	logger    *slog.Logger
	nodeCount int
}

func (b *gltfLoaderBackendImpl) Import(ctx context.Context, fsys fs.FS, document []byte) (scene.Node, Stats, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(document), fsys).Decode(doc); err != nil {
		return nil, Stats{}, fmt.Errorf("failed to decode glTF: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	if len(doc.Scenes) == 0 {
		return nil, Stats{}, ErrNoScene
	}
	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}
	if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
		return nil, Stats{}, fmt.Errorf("%w: default scene %d out of range", ErrNoScene, sceneIndex)
	}

	materials := newGLTFMaterialExtractor(doc, fsys, b.maxTextureSize, b.decoder, b.logger)
	extracted, textures, err := materials.ExtractAll(ctx)
	if err != nil {
		return nil, Stats{}, err
	}

	imp := &gltfImport{
		doc:    doc,
		meshes: newGLTFMeshExtractor(doc, extracted, b.logger),
		logger: b.logger,
	}
	imp.stats.Materials = len(extracted)
	imp.stats.Textures = textures

	gs := doc.Scenes[sceneIndex]
	root := scene.NewNode(scene.WithName(gs.Name))
	for _, idx := range gs.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		n, err := imp.node(idx, map[int]bool{})
		if err != nil {
			return nil, Stats{}, err
		}
		if err := root.Add(n); err != nil {
			return nil, Stats{}, fmt.Errorf("node %d: %w", idx, err)
		}
	}

	imp.stats.Nodes = imp.nodeCount
	imp.stats.Meshes, imp.stats.Triangles, imp.stats.Vertices, imp.stats.Skipped = imp.meshes.Totals()
	return root, imp.stats, nil
}

// node converts a glTF node and its subtree. onPath holds the ancestors of idx.
func (imp *gltfImport) node(idx int, onPath map[int]bool) (scene.Node, error) {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if onPath[idx] {
		return nil, fmt.Errorf("node %d is its own ancestor", idx)
	}
	onPath[idx] = true
	defer delete(onPath, idx)

	gn := imp.doc.Nodes[idx]
	n := scene.NewNode(append([]scene.NodeBuilderOption{scene.WithName(gn.Name)}, transformOptions(gn)...)...)
	imp.nodeCount++

	if gn.Mesh != nil {
		meshes, err := imp.meshes.Mesh(*gn.Mesh)
		if err != nil {
			return nil, err
		}
		switch len(meshes) {
		case 0:
		case 1:
			n.SetMesh(meshes[0])
		default:
			for _, m := range meshes {
				if err := n.Add(scene.NewNode(scene.WithName(m.Name()), scene.WithMesh(m))); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, childIdx := range gn.Children {
		child, err := imp.node(childIdx, onPath)
		if err != nil {
			return nil, err
		}
		if err := n.Add(child); err != nil {
			return nil, fmt.Errorf("node %d: %w", childIdx, err)
		}
	}
	return n, nil
}

// transformOptions maps a glTF node transform onto node options. An explicit
// matrix wins over TRS.
func transformOptions(gn *gltf.Node) []scene.NodeBuilderOption {
	if m := gn.MatrixOrDefault(); m != identityMatrix {
		var mat mgl32.Mat4
		for i, v := range m {
			mat[i] = float32(v)
		}
		return []scene.NodeBuilderOption{scene.WithMatrix(mat)}
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	return []scene.NodeBuilderOption{
		scene.WithPosition(float32(t[0]), float32(t[1]), float32(t[2])),
		scene.WithRotation(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}),
		scene.WithScale(float32(s[0]), float32(s[1]), float32(s[2])),
	}
}

// materialOrDefault returns the extracted material for an optional index.
func materialOrDefault(materials []*model.Material, index *int) *model.Material {
	if index == nil || *index < 0 || *index >= len(materials) {
		return model.DefaultMaterial()
	}
	return materials[*index]
}
