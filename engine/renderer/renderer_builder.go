package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithClearColor sets the background colour from a 0xRRGGBB sRGB value.
//
// Parameters:
//   - hex: the sRGB colour
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(hex uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.ClearColor = common.HexColor(hex)
	}
}

// WithToneMapping selects the tone mapping operator. Defaults to ToneMappingACESFilmic.
//
// Parameters:
//   - tm: the operator
//
// Returns:
//   - RendererBuilderOption: a function that applies the tone mapping option to a renderer
func WithToneMapping(tm ToneMapping) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.ToneMapping = tm
	}
}

// WithExposure scales radiance before tone mapping. Defaults to 1.
//
// Parameters:
//   - exposure: the exposure multiplier
//
// Returns:
//   - RendererBuilderOption: a function that applies the exposure option to a renderer
func WithExposure(exposure float32) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.Exposure = exposure
	}
}

// WithShadows enables or disables shadow mapping. Enabled by default.
//
// Parameters:
//   - enabled: true to render shadow passes
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadows option to a renderer
func WithShadows(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.Shadows = enabled
	}
}

// WithShadowMapSize sets the edge length of each shadow map layer in texels.
//
// Parameters:
//   - size: the edge length, defaults to light.DefaultShadowMapSize
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow map size option to a renderer
func WithShadowMapSize(size int) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.ShadowMapSize = size
	}
}

// WithPixelRatio overrides the window's pixel ratio.
//
// Parameters:
//   - ratio: framebuffer pixels per logical unit, clamped to [1, 8]
//
// Returns:
//   - RendererBuilderOption: a function that applies the pixel ratio option to a renderer
func WithPixelRatio(ratio float32) RendererBuilderOption {
	return func(r *renderer) {
		r.pixelRatio = common.Clamp(ratio, 1, maxPixelRatio)
	}
}

// WithSize sets the initial logical size. Required for headless renderers without a window.
//
// Parameters:
//   - width: the logical width
//   - height: the logical height
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width = width
		r.height = height
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.PresentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.opts.MSAA = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
