package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF 2.0 loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

const (
	// DefaultRoot is the directory assets are resolved against.
	DefaultRoot = "public"

	// DefaultAsset is the asset loaded when none is named.
	DefaultAsset = "millennium_falcon"

	// DocumentName is the file loaded from each asset directory.
	DocumentName = "scene.gltf"

	// eventBuffer is the capacity of an operation's event channel.
	eventBuffer = 64
)

var (
	// ErrAssetNotFound is returned when the asset directory or its document does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrNoScene is returned when a document has no scene to display.
	ErrNoScene = errors.New("document has no scene")
)

// loader is the implementation of the Loader interface.
type loader struct {
	fsys           fs.FS
	maxTextureSize int
	workers        int
	logger         *slog.Logger

	backend loaderBackend
}

// Loader reads model assets from a resource file system and converts them into scene
// graphs. An asset is a directory holding scene.gltf and the files it references.
type Loader interface {
	// LoadAsync starts loading an asset on a background goroutine.
	// The returned operation reports progress and the final result over its event channel.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - name: the asset directory inside the resource root
	//
	// Returns:
	//   - *Operation: the in-flight load
	LoadAsync(ctx context.Context, name string) *Operation

	// Load loads an asset and blocks until it completes.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - name: the asset directory inside the resource root
	//
	// Returns:
	//   - Result: the loaded asset
	//   - error: the result's error, if any
	Load(ctx context.Context, name string) (Result, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified backend type and options applied.
// Without options assets resolve against the DefaultRoot directory.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		maxTextureSize: common.DefaultMaxTextureSize,
		workers:        max(runtime.NumCPU()-1, 1),
		logger:         slog.Default(),
	}
	for _, option := range options {
		option(l)
	}
	if l.fsys == nil {
		l.fsys = os.DirFS(DefaultRoot)
	}
	l.logger = l.logger.With("component", "loader")

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.maxTextureSize, l.workers, l.logger)
	}
	return l
}

func (l *loader) LoadAsync(ctx context.Context, name string) *Operation {
	ctx, cancel := context.WithCancel(ctx)
	op := &Operation{
		name:   name,
		events: make(chan Event, eventBuffer),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		defer close(op.events)
		result := l.run(ctx, name, op.events)
		op.events <- Event{Progress: Progress{Loaded: result.Stats.Bytes}, Result: &result}
	}()
	return op
}

func (l *loader) Load(ctx context.Context, name string) (Result, error) {
	result := l.LoadAsync(ctx, name).Wait(nil)
	return result, result.Err
}

// run performs one load and returns its result. Progress events are dropped when the
// channel is full; a later event supersedes them.
func (l *loader) run(ctx context.Context, name string, events chan<- Event) Result {
	result := Result{Name: name}
	if l.backend == nil {
		result.Err = fmt.Errorf("no loader backend configured")
		return result
	}

	assetFS, err := l.assetFS(name)
	if err != nil {
		result.Err = err
		return result
	}

	var total atomic.Int64
	pfs := newProgressFS(assetFS, func(loaded int64) {
		t := total.Load()
		if t == 0 || ctx.Err() != nil {
			return
		}
		select {
		case events <- Event{Progress: Progress{Loaded: loaded, Total: t}}:
		default:
		}
	})

	document, err := fs.ReadFile(pfs, DocumentName)
	if err != nil {
		result.Err = l.notFound(name, err)
		return result
	}
	t, err := measureTotal(assetFS, document)
	if err != nil {
		result.Err = fmt.Errorf("asset %q: %w", name, err)
		return result
	}
	total.Store(t)
	select {
	case events <- Event{Progress: Progress{Loaded: pfs.Loaded(), Total: t}}:
	default:
	}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	root, stats, err := l.backend.Import(ctx, pfs, document)
	stats.Bytes = pfs.Loaded()
	result.Stats = stats
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		result.Err = fmt.Errorf("asset %q: %w", name, err)
		return result
	}
	if root != nil {
		root.SetName(common.Coalesce(root.Name(), name))
	}
	result.Root = root

	l.logger.Debug("asset loaded",
		"asset", name,
		"nodes", stats.Nodes,
		"meshes", stats.Meshes,
		"triangles", stats.Triangles,
		"textures", stats.Textures,
		"bytes", stats.Bytes,
	)
	return result
}

// assetFS returns the asset directory as a file system.
func (l *loader) assetFS(name string) (fs.FS, error) {
	cleaned := path.Clean(name)
	if name == "" || !fs.ValidPath(cleaned) || cleaned == "." {
		return nil, fmt.Errorf("%w: invalid asset name %q", ErrAssetNotFound, name)
	}
	sub, err := fs.Sub(l.fsys, cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrAssetNotFound, name, err)
	}
	return sub, nil
}

func (l *loader) notFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s/%s", ErrAssetNotFound, name, DocumentName)
	}
	return fmt.Errorf("asset %q: %w", name, err)
}
