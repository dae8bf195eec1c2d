package loader

import (
	"io/fs"
	"log/slog"
	"os"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFS is an option builder that sets the resource file system assets are read from.
//
// Parameters:
//   - fsys: the resource root
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFS(fsys fs.FS) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithRoot is an option builder that reads assets from a directory on disk.
//
// Parameters:
//   - dir: the resource root directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the root option to a loader
func WithRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.fsys = os.DirFS(dir)
	}
}

// WithMaxTextureSize is an option builder that sets the largest texture edge kept
// without downscaling. Values <= 0 disable downscaling.
//
// Parameters:
//   - size: the edge length in pixels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxTextureSize = size
	}
}

// WithDecodeWorkers is an option builder that sets how many textures decode in parallel.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithLogger is an option builder that sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
