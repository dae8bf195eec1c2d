package loader

import (
	"context"
	"io/fs"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// loaderBackend converts a model document into a scene graph.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Import decodes a document whose external references resolve against fsys.
	//
	// Parameters:
	//   - ctx: cancels the import between steps
	//   - fsys: the asset directory; every byte read through it counts as progress
	//   - document: the raw document bytes
	//
	// Returns:
	//   - scene.Node: the root of the imported hierarchy
	//   - Stats: what was imported (Bytes is filled in by the loader)
	//   - error: error if decoding fails
	Import(ctx context.Context, fsys fs.FS, document []byte) (scene.Node, Stats, error)
}
