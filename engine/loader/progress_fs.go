package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sync/atomic"

	"github.com/qmuntal/gltf"
)

// progressFS wraps a file system and counts every byte read through it.
// It deliberately does not implement fs.ReadFileFS so fs.ReadFile goes through Open.
type progressFS struct {
	fsys   fs.FS
	loaded atomic.Int64
	onRead func(loaded int64)
}

func newProgressFS(fsys fs.FS, onRead func(loaded int64)) *progressFS {
	return &progressFS{fsys: fsys, onRead: onRead}
}

func (p *progressFS) Open(name string) (fs.File, error) {
	f, err := p.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	return &countingFile{File: f, owner: p}, nil
}

// Loaded returns the number of bytes read so far.
func (p *progressFS) Loaded() int64 {
	return p.loaded.Load()
}

type countingFile struct {
	fs.File
	owner *progressFS
}

func (f *countingFile) Read(b []byte) (int, error) {
	n, err := f.File.Read(b)
	if n > 0 {
		loaded := f.owner.loaded.Add(int64(n))
		if f.owner.onRead != nil {
			f.owner.onRead(loaded)
		}
	}
	return n, err
}

// resolveURI maps a relative glTF URI onto a path inside the asset file system.
func resolveURI(uri string) (string, error) {
	unescaped, err := url.PathUnescape(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}
	cleaned := path.Clean(unescaped)
	if !fs.ValidPath(cleaned) {
		return "", fmt.Errorf("uri %q escapes the asset directory", uri)
	}
	return cleaned, nil
}

// isExternal reports whether a glTF URI points at a file rather than embedded data.
func isExternal(uri string) bool {
	if uri == "" {
		return false
	}
	u, err := url.Parse(uri)
	return err != nil || u.Scheme == ""
}

// measureTotal sizes the document plus every external buffer and image it references.
// The document bytes are only parsed as JSON; no buffer is read. Buffers are counted per
// reference because the decoder reads each one.
//
// Parameters:
//   - fsys: the asset directory
//   - document: the raw glTF JSON
//
// Returns:
//   - int64: the total byte count
//   - error: error if the JSON is invalid or a referenced file is missing
func measureTotal(fsys fs.FS, document []byte) (int64, error) {
	var doc gltf.Document
	if err := json.Unmarshal(document, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse glTF document: %w", err)
	}

	total := int64(len(document))
	seen := map[string]bool{}
	add := func(uri string, once bool) error {
		if !isExternal(uri) {
			return nil
		}
		name, err := resolveURI(uri)
		if err != nil {
			return err
		}
		if once && seen[name] {
			return nil
		}
		seen[name] = true
		info, err := fs.Stat(fsys, name)
		if err != nil {
			return fmt.Errorf("referenced file %q: %w", uri, err)
		}
		total += info.Size()
		return nil
	}

	for _, b := range doc.Buffers {
		if err := add(b.URI, false); err != nil {
			return 0, err
		}
	}
	for _, img := range doc.Images {
		// images are read once per path
		if err := add(img.URI, true); err != nil {
			return 0, err
		}
	}
	return total, nil
}
