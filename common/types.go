// package common contains plain data types and helpers shared by the viewer's engine packages.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// DefaultMaxTextureSize is the largest texture edge uploaded without downscaling.
const DefaultMaxTextureSize = 4096

// ErrUnsupportedImage is returned when texture bytes are not PNG, JPEG or WebP.
var ErrUnsupportedImage = errors.New("unsupported image format")

// supportedImageMIME lists the formats registered with image.Decode in this package.
var supportedImageMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA8, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the texture width in pixels.
	Width uint32
	// Height is the texture height in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// Compare is set for comparison samplers (shadow maps).
	Compare wgpu.CompareFunction
	// MaxAnisotropy is the anisotropic filtering level.
	MaxAnisotropy uint16
}

// DefaultSamplerData returns the glTF default sampler: linear filtering, repeat wrapping.
//
// Returns:
//   - SamplerStagingData: the default sampler description
func DefaultSamplerData() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// ImportedTexture represents texture data extracted from a model file.
// Data always holds the encoded image bytes, whether they came from a buffer view,
// a data URI or an external file.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Path is the source URI for external textures (empty for embedded).
	Path string

	// Data contains the encoded image bytes.
	Data []byte

	// MimeType indicates the image format. Filled in by Decode when the model omits it.
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData holds sampler parameters from the model file. Nil means glTF defaults.
	SamplerData *SamplerStagingData

	// Staged holds the decoded RGBA pixels (populated after Decode).
	Staged *TextureStagingData
}

// Decode decodes the texture into RGBA pixels and caches them in Staged.
// The format is sniffed from the bytes rather than trusted from MimeType.
// Images with an edge longer than maxDimension are downscaled, preserving aspect ratio.
//
// Parameters:
//   - maxDimension: the largest allowed edge in pixels (<= 0 disables downscaling)
//
// Returns:
//   - *TextureStagingData: the decoded pixels
//   - error: error if the bytes are missing, unsupported or corrupt
func (t *ImportedTexture) Decode(maxDimension int) (*TextureStagingData, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}
	if t.Staged != nil {
		return t.Staged, nil
	}
	if len(t.Data) == 0 {
		return nil, fmt.Errorf("texture %q has no image data", t.Name)
	}

	kind, err := filetype.Match(t.Data)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", t.Name, err)
	}
	if !supportedImageMIME[kind.MIME.Value] {
		return nil, fmt.Errorf("texture %q (%s): %w", t.Name, Coalesce(kind.MIME.Value, "unknown"), ErrUnsupportedImage)
	}
	t.MimeType = kind.MIME.Value

	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}

	if w, h, scaled := FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), maxDimension); scaled {
		img = transform.Resize(img, w, h, transform.Linear)
	}

	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	pixels := rgba.Pix
	if rgba.Stride != t.Width*4 {
		pixels = make([]byte, 0, t.Width*t.Height*4)
		for y := 0; y < t.Height; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+t.Width*4]
			pixels = append(pixels, row...)
		}
	}

	t.Staged = &TextureStagingData{
		Pixels: pixels,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}
	return t.Staged, nil
}

// FitWithin scales (w, h) down so neither edge exceeds maxDimension.
//
// Parameters:
//   - w, h: the source size
//   - maxDimension: the largest allowed edge (<= 0 disables scaling)
//
// Returns:
//   - int, int: the fitted size (never below 1)
//   - bool: true if the size changed
func FitWithin(w, h, maxDimension int) (int, int, bool) {
	if maxDimension <= 0 || (w <= maxDimension && h <= maxDimension) {
		return w, h, false
	}
	if w >= h {
		return maxDimension, max(1, h*maxDimension/w), true
	}
	return max(1, w*maxDimension/h), maxDimension, true
}
