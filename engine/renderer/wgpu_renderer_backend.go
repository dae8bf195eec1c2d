package renderer

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/mesh.wgsl
var meshShaderSource string

//go:embed assets/shadow.wgsl
var shadowShaderSource string

// Pipeline keys.
const (
	pipelineMesh         = "mesh"
	pipelineMeshDouble   = "mesh_double"
	pipelineShadow       = "shadow"
	pipelineShadowDouble = "shadow_double"
)

// Bindings of the frame group (group 0 of the lit pass).
const (
	frameBindingUniform   = 0
	frameBindingShadowMap = 1
	frameBindingSampler   = 2
)

// Bindings of the mesh group (group 1 of both passes).
const (
	meshBindingUniform = 0
	meshBindingTexture = 1
	meshBindingSampler = 2
)

const (
	meshUniformSize   = 160
	shadowUniformSize = 64
)

// instanceKey identifies the per-draw resources of a mesh attached to a node.
type instanceKey struct {
	node uint64
	mesh uint64
}

type wgpuRendererBackend struct {
	mu     *sync.Mutex
	logger *slog.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	// srgbEncode is set when the surface has no sRGB format and the shader must encode.
	srgbEncode bool

	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	shadowMapSize int

	// Size-dependent targets, recreated by Configure.
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	frameLayout  *wgpu.BindGroupLayout
	meshLayout   *wgpu.BindGroupLayout
	shadowLayout *wgpu.BindGroupLayout
	pipelines    map[string]pipeline.Pipeline

	// frameProvider holds the frame uniform, the shadow map array view and the comparison sampler.
	frameProvider bind_group_provider.BindGroupProvider

	shadowMap        *wgpu.Texture
	shadowLayerViews []*wgpu.TextureView
	shadowProviders  []bind_group_provider.BindGroupProvider

	// fallbackTexture is a 1x1 white texture bound for untextured materials.
	fallbackTexture bind_group_provider.BindGroupProvider

	// Lazily filled GPU caches. Scene nodes are never freed, so entries live until Release.
	geometry  map[uint64]bind_group_provider.BindGroupProvider
	textures  map[*common.ImportedTexture]bind_group_provider.BindGroupProvider
	instances map[instanceKey]bind_group_provider.BindGroupProvider
}

var _ rendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend creates the instance, surface, adapter and device, then the
// size-independent resources: layouts, pipelines, the shadow map and the frame bind group.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the window
//   - forceFallbackAdapter: request a software adapter
//   - opts: renderer settings (MSAA, shadow map size)
//   - logger: the renderer's logger
//
// Returns:
//   - *wgpuRendererBackend: the backend, ready for Configure
//   - error: error if any GPU object could not be created
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, opts Options, logger *slog.Logger) (*wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackend{
		mu:            &sync.Mutex{},
		logger:        logger,
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeFifo,
		sampleCount:   opts.MSAA,
		shadowMapSize: opts.ShadowMapSize,
		pipelines:     make(map[string]pipeline.Pipeline),
		geometry:      make(map[uint64]bind_group_provider.BindGroupProvider),
		textures:      make(map[*common.ImportedTexture]bind_group_provider.BindGroupProvider),
		instances:     make(map[instanceKey]bind_group_provider.BindGroupProvider),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.pickSurfaceFormat()

	if err := b.initResources(); err != nil {
		b.Release()
		return nil, err
	}

	b.logger.Info("wgpu backend ready",
		"surface_format", uint32(b.surfaceFormat),
		"srgb_in_shader", b.srgbEncode,
		"shadow_map_size", b.shadowMapSize,
	)
	return b, nil
}

// pickSurfaceFormat prefers an sRGB swapchain so the hardware encodes output colour.
func (b *wgpuRendererBackend) pickSurfaceFormat() {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.srgbEncode = true
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			b.surfaceFormat = f
			b.srgbEncode = false
			break
		}
	}
	b.alphaMode = capabilities.AlphaModes[0]
}

// initResources creates everything that does not depend on the surface size.
func (b *wgpuRendererBackend) initResources() error {
	var err error
	if b.frameLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    frameBindingUniform,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: FrameUniformSize,
				},
			},
			{
				Binding:    frameBindingShadowMap,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    frameBindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeComparison,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to create frame bind group layout: %w", err)
	}

	if b.meshLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Mesh Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    meshBindingUniform,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: meshUniformSize,
				},
			},
			{
				Binding:    meshBindingTexture,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    meshBindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to create mesh bind group layout: %w", err)
	}

	if b.shadowLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: shadowUniformSize,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("failed to create shadow bind group layout: %w", err)
	}

	if err := b.initPipelines(); err != nil {
		return err
	}
	if err := b.initShadowMap(); err != nil {
		return err
	}
	if err := b.initFrameBindGroup(); err != nil {
		return err
	}
	return b.initFallbackTexture()
}

// initPipelines compiles the lit and shadow shaders and creates single and double sided variants.
func (b *wgpuRendererBackend) initPipelines() error {
	meshVS, err := shader.NewShader("mesh_vs", shader.ShaderTypeVertex, meshShaderSource)
	if err != nil {
		return err
	}
	meshFS, err := shader.NewShader("mesh_fs", shader.ShaderTypeFragment, meshShaderSource)
	if err != nil {
		return err
	}
	shadowVS, err := shader.NewShader("shadow_vs", shader.ShaderTypeVertex, shadowShaderSource)
	if err != nil {
		return err
	}

	pipelines := []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineMesh, pipeline.PipelineTypeRender,
			pipeline.WithShaders(meshVS, meshFS),
			pipeline.WithDoubleSided(false),
		),
		pipeline.NewPipeline(pipelineMeshDouble, pipeline.PipelineTypeRender,
			pipeline.WithShaders(meshVS, meshFS),
			pipeline.WithDoubleSided(true),
		),
		pipeline.NewPipeline(pipelineShadow, pipeline.PipelineTypeShadow,
			pipeline.WithShaders(shadowVS, nil),
			pipeline.WithDoubleSided(false),
			pipeline.WithDepthBias(pipeline.ShadowDepthBias, pipeline.ShadowSlopeScale),
		),
		pipeline.NewPipeline(pipelineShadowDouble, pipeline.PipelineTypeShadow,
			pipeline.WithShaders(shadowVS, nil),
			pipeline.WithDoubleSided(true),
			pipeline.WithDepthBias(pipeline.ShadowDepthBias, pipeline.ShadowSlopeScale),
		),
	}
	for _, p := range pipelines {
		if err := b.registerPipeline(p); err != nil {
			return fmt.Errorf("failed to create pipeline %s: %w", p.PipelineKey(), err)
		}
		b.pipelines[p.PipelineKey()] = p
	}
	return nil
}

// registerPipeline creates the GPU pipeline described by p and attaches it with SetRenderPipeline.
// Render pipelines target the surface with the configured MSAA count. Shadow pipelines have
// no fragment stage and render into a single-sample Depth32Float layer.
func (b *wgpuRendererBackend) registerPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	if vertexShader == nil {
		return errors.New("vertex shader must be set")
	}
	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return err
	}

	groups := []*wgpu.BindGroupLayout{b.frameLayout, b.meshLayout}
	if p.Type() == pipeline.PipelineTypeShadow {
		groups = []*wgpu.BindGroupLayout{b.shadowLayout, b.meshLayout}
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groups,
	})
	if err != nil {
		return err
	}

	depthBias, slopeScale := p.DepthBias()
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        p.DepthCompare(),
			DepthBias:           depthBias,
			DepthBiasSlopeScale: slopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}

	switch p.Type() {
	case pipeline.PipelineTypeShadow:
		desc.Multisample.Count = 1
		desc.DepthStencil.Format = wgpu.TextureFormatDepth32Float
	default:
		fragmentShader := p.Shader(shader.ShaderTypeFragment)
		if fragmentShader == nil {
			return errors.New("fragment shader must be set for a render pipeline")
		}
		fs, err := b.device.CreateShaderModule(fragmentShader.Module())
		if err != nil {
			return err
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: p.WriteMask(),
				},
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

// initShadowMap creates the Depth32Float array with one layer per light slot,
// a render view per layer and the comparison sampler used for PCF.
func (b *wgpuRendererBackend) initShadowMap() error {
	size := uint32(b.shadowMapSize)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Map",
		Size: wgpu.Extent3D{
			Width:              size,
			Height:             size,
			DepthOrArrayLayers: light.MaxLights,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow map: %w", err)
	}
	b.shadowMap = tex

	for layer := range light.MaxLights {
		view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("Shadow Map Layer %d", layer),
			Format:          wgpu.TextureFormatDepth32Float,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(layer),
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			return fmt.Errorf("failed to create shadow map layer view %d: %w", layer, err)
		}
		b.shadowLayerViews = append(b.shadowLayerViews, view)

		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Shadow %d", layer))
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Uniform Buffer",
			Size:  shadowUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create shadow uniform buffer: %w", err)
		}
		provider.SetBuffer(0, buf)
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  provider.Label() + " Bind Group",
			Layout: b.shadowLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create shadow bind group: %w", err)
		}
		provider.SetBindGroup(bg)
		b.shadowProviders = append(b.shadowProviders, provider)
	}
	return nil
}

// initFrameBindGroup creates the frame uniform buffer and binds it with the shadow map array.
func (b *wgpuRendererBackend) initFrameBindGroup() error {
	provider := bind_group_provider.NewBindGroupProvider("Frame")
	b.frameProvider = provider

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform Buffer",
		Size:  FrameUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create frame uniform buffer: %w", err)
	}
	provider.SetBuffer(frameBindingUniform, buf)

	view, err := b.shadowMap.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Shadow Map Array",
		Format:          wgpu.TextureFormatDepth32Float,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: light.MaxLights,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow map array view: %w", err)
	}
	provider.SetTexture(frameBindingShadowMap, nil, view)

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	provider.SetSampler(frameBindingSampler, samp)

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: frameBindingUniform, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
			{Binding: frameBindingShadowMap, TextureView: view},
			{Binding: frameBindingSampler, Sampler: samp},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create frame bind group: %w", err)
	}
	provider.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackend) initFallbackTexture() error {
	provider := bind_group_provider.NewBindGroupProvider("Fallback Texture")
	white := common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	if err := b.uploadTexture(provider, white, common.DefaultSamplerData()); err != nil {
		return err
	}
	b.fallbackTexture = provider
	return nil
}

// uploadTexture creates an sRGB texture from staging data plus its sampler and stores them on provider.
func (b *wgpuRendererBackend) uploadTexture(provider bind_group_provider.BindGroupProvider, stagingData common.TextureStagingData, samplerData common.SamplerStagingData) error {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     provider.Label() + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create texture %s: %w", provider.Label(), err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create texture view %s: %w", provider.Label(), err)
	}
	provider.SetTexture(meshBindingTexture, tex, view)

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerData.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   samplerData.LodMinClamp,
		LodMaxClamp:   common.Coalesce(samplerData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerData.MaxAnisotropy, 1),
	})
	if err != nil {
		return fmt.Errorf("failed to create sampler %s: %w", provider.Label(), err)
	}
	provider.SetSampler(meshBindingSampler, samp)
	return nil
}

// Configure (re)configures the surface and recreates the MSAA and depth targets.
func (b *wgpuRendererBackend) Configure(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("failed to create MSAA texture: %w", err)
		}
		b.msaaTexture = msaaTexture
		if b.msaaTextureView, err = msaaTexture.CreateView(nil); err != nil {
			return fmt.Errorf("failed to create MSAA texture view: %w", err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	b.depthTexture = depthTexture
	if b.depthTextureView, err = depthTexture.CreateView(nil); err != nil {
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}

	// With MSAA, View is the MSAA texture and ResolveTarget is set per frame to the
	// swapchain view. Without it, View is set per frame and ResolveTarget stays nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	b.logger.Debug("surface configured", "width", width, "height", height, "msaa", count)
	return nil
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

// Draw uploads per-frame data, then encodes the shadow passes and the main pass in one
// command buffer and presents the result.
func (b *wgpuRendererBackend) Draw(f *frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface not configured")
	}

	binary.LittleEndian.PutUint32(f.uniform[paramSRGBEncode:], boolToU32(b.srgbEncode))
	b.queue.WriteBuffer(b.frameProvider.Buffer(frameBindingUniform), 0, f.uniform)

	items := make([]bind_group_provider.BindGroupProvider, len(f.items))
	for i, item := range f.items {
		p, err := b.instanceFor(item)
		if err != nil {
			return err
		}
		items[i] = p
	}
	casters := make([]bind_group_provider.BindGroupProvider, len(f.casters))
	for i, item := range f.casters {
		p, err := b.instanceFor(item)
		if err != nil {
			return err
		}
		casters[i] = p
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}
	defer encoder.Release()

	for _, sp := range f.shadows {
		b.encodeShadowPass(encoder, f, sp, casters)
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearValue(f.clearColor)

	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetBindGroup(0, b.frameProvider.BindGroup(), nil)
	for i, item := range f.items {
		key := pipelineMesh
		if item.uniform.Flags&model.MeshFlagDoubleSided != 0 {
			key = pipelineMeshDouble
		}
		pass.SetPipeline(b.pipelines[key].RenderPipeline())
		pass.SetBindGroup(1, items[i].BindGroup(), nil)
		b.drawMesh(pass, item)
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	return nil
}

// encodeShadowPass renders one light's casters into its shadow map layer.
func (b *wgpuRendererBackend) encodeShadowPass(encoder *wgpu.CommandEncoder, f *frame, sp shadowPass, casters []bind_group_provider.BindGroupProvider) {
	provider := b.shadowProviders[sp.slot]
	buf := make([]byte, shadowUniformSize)
	for i, v := range sp.viewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	b.queue.WriteBuffer(provider.Buffer(0), 0, buf)

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.shadowLayerViews[sp.slot],
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	pass.SetBindGroup(0, provider.BindGroup(), nil)
	for _, ci := range sp.casters {
		item := f.casters[ci]
		key := pipelineShadow
		if item.uniform.Flags&model.MeshFlagDoubleSided != 0 {
			key = pipelineShadowDouble
		}
		pass.SetPipeline(b.pipelines[key].RenderPipeline())
		pass.SetBindGroup(1, casters[ci].BindGroup(), nil)
		b.drawMesh(pass, item)
	}
	pass.End()
	pass.Release()
}

func (b *wgpuRendererBackend) drawMesh(pass *wgpu.RenderPassEncoder, item drawItem) {
	geo := b.geometry[item.instance.Mesh.ID()]
	pass.SetVertexBuffer(0, geo.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(geo.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(geo.IndexCount()), 1, 0, 0, 0)
}

// clearValue converts the linear clear colour for the surface format.
func (b *wgpuRendererBackend) clearValue(c [3]float32) wgpu.Color {
	if b.srgbEncode {
		c = [3]float32{common.LinearToSRGB(c[0]), common.LinearToSRGB(c[1]), common.LinearToSRGB(c[2])}
	}
	return wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1}
}

// instanceFor returns the cached bind group of a mesh instance, creating geometry, texture
// and uniform resources on first use, and writes this frame's uniform.
func (b *wgpuRendererBackend) instanceFor(item drawItem) (bind_group_provider.BindGroupProvider, error) {
	m := item.instance.Mesh
	if _, ok := b.geometry[m.ID()]; !ok {
		if err := b.initGeometry(m); err != nil {
			return nil, err
		}
	}

	key := instanceKey{node: item.instance.Node.ID(), mesh: m.ID()}
	provider, ok := b.instances[key]
	if !ok {
		tex, err := b.textureFor(m.Material())
		if err != nil {
			return nil, err
		}
		provider = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Instance %d/%d", key.node, key.mesh))
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Uniform Buffer",
			Size:  meshUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mesh uniform buffer: %w", err)
		}
		provider.SetBuffer(meshBindingUniform, buf)
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  provider.Label() + " Bind Group",
			Layout: b.meshLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: meshBindingUniform, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
				{Binding: meshBindingTexture, TextureView: tex.TextureView(meshBindingTexture)},
				{Binding: meshBindingSampler, Sampler: tex.Sampler(meshBindingSampler)},
			},
		})
		if err != nil {
			buf.Release()
			return nil, fmt.Errorf("failed to create mesh bind group: %w", err)
		}
		provider.SetBindGroup(bg)
		b.instances[key] = provider
	}

	b.queue.WriteBuffer(provider.Buffer(meshBindingUniform), 0, item.uniform.Marshal())
	return provider, nil
}

// initGeometry uploads the vertex and index buffers of a mesh.
func (b *wgpuRendererBackend) initGeometry(m model.Mesh) error {
	label := fmt.Sprintf("Mesh %d %s", m.ID(), m.Name())

	vertexData := m.VertexData()
	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create vertex buffer for %s: %w", m.Name(), err)
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)

	indexData := m.IndexData()
	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return fmt.Errorf("failed to create index buffer for %s: %w", m.Name(), err)
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)

	b.geometry[m.ID()] = bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithGeometry(vbuf, ibuf, m.IndexCount()),
	)
	return nil
}

// textureFor returns the provider holding the base colour texture of a material,
// uploading it on first use. Untextured materials share the white fallback.
func (b *wgpuRendererBackend) textureFor(mat *model.Material) (bind_group_provider.BindGroupProvider, error) {
	if !hasTexture(mat) {
		return b.fallbackTexture, nil
	}
	it := mat.BaseColorTexture
	if p, ok := b.textures[it]; ok {
		return p, nil
	}
	samplerData := common.DefaultSamplerData()
	if it.SamplerData != nil {
		samplerData = *it.SamplerData
	}
	provider := bind_group_provider.NewBindGroupProvider("Texture " + it.Name)
	if err := b.uploadTexture(provider, *it.Staged, samplerData); err != nil {
		return nil, err
	}
	b.textures[it] = provider
	return provider, nil
}

// releaseTargets frees the size-dependent render targets.
func (b *wgpuRendererBackend) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
	b.renderPassDescriptor = nil
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.instances {
		p.Release()
	}
	for _, p := range b.textures {
		p.Release()
	}
	for _, p := range b.geometry {
		p.Release()
	}
	clear(b.instances)
	clear(b.textures)
	clear(b.geometry)

	if b.fallbackTexture != nil {
		b.fallbackTexture.Release()
	}
	if b.frameProvider != nil {
		b.frameProvider.Release()
	}
	for _, p := range b.shadowProviders {
		p.Release()
	}
	for _, v := range b.shadowLayerViews {
		v.Release()
	}
	b.shadowProviders, b.shadowLayerViews = nil, nil
	if b.shadowMap != nil {
		b.shadowMap.Release()
		b.shadowMap = nil
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	clear(b.pipelines)
	b.releaseTargets()

	for _, l := range []*wgpu.BindGroupLayout{b.frameLayout, b.meshLayout, b.shadowLayout} {
		if l != nil {
			l.Release()
		}
	}
	b.frameLayout, b.meshLayout, b.shadowLayout = nil, nil, nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
