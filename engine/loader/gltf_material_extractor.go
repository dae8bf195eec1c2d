package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfMaterialExtractor converts glTF materials and loads their base color textures.
type gltfMaterialExtractor struct {
	doc            *gltf.Document
	fsys           fs.FS
	maxTextureSize int
	decoder        *decodePool
	logger         *slog.Logger

	textures map[int]*common.ImportedTexture
	files    map[string][]byte
}

// newGLTFMaterialExtractor creates a material extractor for a decoded document.
//
// Parameters:
//   - doc: the decoded document
//   - fsys: the asset directory used for external images
//   - maxTextureSize: textures above this edge length are downscaled
//   - decoder: the pool texture decodes run on
//   - logger: destination for texture warnings
//
// Returns:
//   - *gltfMaterialExtractor: the extractor
func newGLTFMaterialExtractor(doc *gltf.Document, fsys fs.FS, maxTextureSize int, decoder *decodePool, logger *slog.Logger) *gltfMaterialExtractor {
	return &gltfMaterialExtractor{
		doc:            doc,
		fsys:           fsys,
		maxTextureSize: maxTextureSize,
		decoder:        decoder,
		logger:         logger,
		textures:       map[int]*common.ImportedTexture{},
		files:          map[string][]byte{},
	}
}

// ExtractAll converts every material. Texture bytes are read sequentially, then decoded
// in parallel. A texture that fails to load or decode is dropped with a warning and its
// materials render untextured.
//
// Parameters:
//   - ctx: cancels the extraction before decoding
//
// Returns:
//   - []*model.Material: materials indexed like doc.Materials
//   - int: the number of textures decoded
//   - error: the context error if cancelled
func (e *gltfMaterialExtractor) ExtractAll(ctx context.Context) ([]*model.Material, int, error) {
	materials := make([]*model.Material, len(e.doc.Materials))
	for i, gm := range e.doc.Materials {
		materials[i] = e.material(gm)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	failed := e.decodeTextures()
	for _, m := range materials {
		if m.BaseColorTexture != nil && failed[m.BaseColorTexture] {
			m.BaseColorTexture = nil
		}
	}
	return materials, len(e.textures) - len(failed), ctx.Err()
}

func (e *gltfMaterialExtractor) material(gm *gltf.Material) *model.Material {
	m := model.DefaultMaterial()
	m.Name = gm.Name
	m.DoubleSided = gm.DoubleSided
	m.AlphaCutoff = float32(gm.AlphaCutoffOrDefault())
	switch gm.AlphaMode {
	case gltf.AlphaMask:
		m.AlphaMode = model.AlphaModeMask
	case gltf.AlphaBlend:
		m.AlphaMode = model.AlphaModeBlend
	default:
		m.AlphaMode = model.AlphaModeOpaque
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		for i, v := range pbr.BaseColorFactorOrDefault() {
			m.BaseColorFactor[i] = float32(v)
		}
		m.Metallic = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			tex, err := e.texture(pbr.BaseColorTexture.Index)
			if err != nil {
				e.logger.Warn("base color texture unavailable", "material", gm.Name, "error", err)
			} else {
				m.BaseColorTexture = tex
			}
		}
	}
	return m
}

// texture loads the encoded bytes of a glTF texture, once per index.
func (e *gltfMaterialExtractor) texture(index int) (*common.ImportedTexture, error) {
	if tex, ok := e.textures[index]; ok {
		return tex, nil
	}
	if index < 0 || index >= len(e.doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", index)
	}
	gt := e.doc.Textures[index]
	if gt.Source == nil || *gt.Source < 0 || *gt.Source >= len(e.doc.Images) {
		return nil, fmt.Errorf("texture %d has no image source", index)
	}
	img := e.doc.Images[*gt.Source]

	tex := &common.ImportedTexture{
		Name:     common.Coalesce(img.Name, gt.Name, fmt.Sprintf("texture_%d", index)),
		MimeType: img.MimeType,
	}

	var err error
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(e.doc.BufferViews) {
			return nil, fmt.Errorf("image buffer view %d out of range", *img.BufferView)
		}
		tex.Data, err = modeler.ReadBufferView(e.doc, e.doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		tex.Data, err = img.MarshalData()
	default:
		tex.Path = img.URI
		tex.Data, err = e.readFile(img.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", tex.Name, err)
	}

	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(e.doc.Samplers) {
		tex.SamplerData = gltfSamplerToStagingData(e.doc.Samplers[*gt.Sampler])
	}
	e.textures[index] = tex
	return tex, nil
}

// readFile reads an external image through the progress file system, once per path.
func (e *gltfMaterialExtractor) readFile(uri string) ([]byte, error) {
	name, err := resolveURI(uri)
	if err != nil {
		return nil, err
	}
	if data, ok := e.files[name]; ok {
		return data, nil
	}
	data, err := fs.ReadFile(e.fsys, name)
	if err != nil {
		return nil, err
	}
	e.files[name] = data
	return data, nil
}

// decodeTextures decodes every loaded texture on a worker pool and returns the failures.
func (e *gltfMaterialExtractor) decodeTextures() map[*common.ImportedTexture]bool {
	failed := map[*common.ImportedTexture]bool{}
	if len(e.textures) == 0 {
		return failed
	}

	var mu sync.Mutex
	jobs := make([]func(), 0, len(e.textures))
	for _, tex := range e.textures {
		jobs = append(jobs, func() {
			if _, err := tex.Decode(e.maxTextureSize); err != nil {
				e.logger.Warn("texture decode failed", "texture", tex.Name, "error", err)
				mu.Lock()
				failed[tex] = true
				mu.Unlock()
			}
		})
	}
	e.decoder.Run(jobs)
	return failed
}

// gltfSamplerToStagingData converts a glTF sampler into sampler staging data.
//
// Parameters:
//   - s: the glTF sampler
//
// Returns:
//   - *common.SamplerStagingData: the converted sampler staging data
func gltfSamplerToStagingData(s *gltf.Sampler) *common.SamplerStagingData {
	result := common.DefaultSamplerData()

	switch s.MagFilter {
	case gltf.MagNearest:
		result.MagFilter = wgpu.FilterModeNearest
	case gltf.MagLinear:
		result.MagFilter = wgpu.FilterModeLinear
	}

	switch s.MinFilter {
	case gltf.MinNearest, gltf.MinNearestMipMapNearest, gltf.MinNearestMipMapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	case gltf.MinLinear, gltf.MinLinearMipMapNearest, gltf.MinLinearMipMapLinear:
		result.MinFilter = wgpu.FilterModeLinear
	}

	result.AddressModeU = gltfWrapToAddressMode(s.WrapS)
	result.AddressModeV = gltfWrapToAddressMode(s.WrapT)
	return &result
}

// gltfWrapToAddressMode converts a glTF wrap mode to a wgpu AddressMode.
func gltfWrapToAddressMode(wrap gltf.WrappingMode) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
