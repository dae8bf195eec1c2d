package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// maxPixelRatio bounds the drawing buffer scale.
const maxPixelRatio float32 = 8

// ErrFrameInFlight is returned by Render when called while another frame is being drawn.
var ErrFrameInFlight = errors.New("renderer: frame already in flight")

// Options are the settings a Renderer was built with.
type Options struct {
	ClearColor    [3]float32
	ToneMapping   ToneMapping
	Exposure      float32
	Shadows       bool
	ShadowMapSize int
	MSAA          MSAASampleCount
	PresentMode   PresentMode
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     rendererBackend
	logger      *slog.Logger

	opts Options

	// Logical size and the scale to the drawing buffer.
	width, height int
	pixelRatio    float32
	sizeDirty     bool

	inFrame    bool
	frameCount uint64
	lastFrame  FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

// Renderer draws a scene through a camera into the window surface.
//
// The Renderer owns the graphics backend and every GPU resource derived from the scene.
// Mesh geometry, textures and per-instance uniforms are uploaded on first use and cached.
type Renderer interface {
	// Render draws one frame of the scene as seen by the camera, including shadow passes.
	// The camera's matrices must be current (Camera.Update).
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewing camera
	//
	// Returns:
	//   - error: ErrFrameInFlight on re-entry, or the backend error wrapped
	Render(s scene.Scene, cam camera.Camera) error

	// Resize sets the logical size of the drawing area. The backend is reconfigured
	// before the next frame. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: the logical width
	//   - height: the logical height
	Resize(width, height int)

	// Size returns the logical size last set by Resize or at construction.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// DrawingBufferSize returns the size in pixels, the logical size scaled by the pixel ratio.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	DrawingBufferSize() (int, int)

	// PixelRatio returns the logical-to-pixel scale.
	PixelRatio() float32

	// SetPixelRatio changes the logical-to-pixel scale, clamped to [1, 8].
	//
	// Parameters:
	//   - ratio: the new scale
	SetPixelRatio(ratio float32)

	// SetPresentMode changes how frames are delivered to the display, from the next frame on.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// FrameCount returns how many frames have been drawn.
	FrameCount() uint64

	// LastFrame returns the statistics of the most recent frame.
	LastFrame() FrameStats

	// Options returns the settings the renderer was built with.
	Options() Options

	// BackendType returns the backend in use.
	BackendType() RendererBackendType

	// Release frees the backend. The renderer is unusable afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type.
// The WGPU backend draws into the window's surface and takes its initial size and pixel
// ratio from the window. The headless backend accepts a nil window, sized by WithSize.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - win: the window to draw into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: error if the backend could not be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      slog.Default(),
		opts: Options{
			ToneMapping:   ToneMappingACESFilmic,
			Exposure:      1,
			Shadows:       true,
			ShadowMapSize: light.DefaultShadowMapSize,
			MSAA:          MSAA4x,
			PresentMode:   PresentModeVSync,
		},
		width:      1,
		height:     1,
		pixelRatio: 1,
		sizeDirty:  true,
	}
	if win != nil {
		r.width, r.height = win.Width(), win.Height()
		r.pixelRatio = win.PixelRatio()
	}

	// Apply options after the window defaults so WithSize and WithPixelRatio win.
	for _, opt := range options {
		opt(r)
	}
	r.logger = r.logger.With("component", "renderer")

	if r.opts.ShadowMapSize <= 0 {
		return nil, fmt.Errorf("invalid shadow map size %d", r.opts.ShadowMapSize)
	}
	if r.opts.MSAA != MSAAOff && r.opts.MSAA != MSAA4x {
		return nil, fmt.Errorf("unsupported MSAA sample count %d", r.opts.MSAA)
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend()
	case BackendTypeWGPU:
		if win == nil {
			return nil, errors.New("wgpu backend requires a window")
		}
		b, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.opts, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s backend: %w", backendType, err)
		}
		r.backend = b
	default:
		return nil, fmt.Errorf("unknown renderer backend %s", backendType)
	}
	r.backend.SetPresentMode(r.opts.PresentMode)

	r.logger.Debug("renderer created",
		"backend", backendType.String(),
		"width", r.width,
		"height", r.height,
		"pixel_ratio", r.pixelRatio,
		"msaa", uint32(r.opts.MSAA),
		"shadows", r.opts.Shadows,
	)
	return r, nil
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	if r.inFrame {
		r.mu.Unlock()
		return ErrFrameInFlight
	}
	r.inFrame = true
	bw, bh := r.drawingBufferSize()
	dirty := r.sizeDirty
	r.sizeDirty = false
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFrame = false
		r.mu.Unlock()
	}()

	// A minimized window has no drawing buffer.
	if bw == 0 || bh == 0 {
		return nil
	}

	if dirty {
		if err := r.backend.Configure(bw, bh); err != nil {
			r.mu.Lock()
			r.sizeDirty = true
			r.mu.Unlock()
			return fmt.Errorf("failed to configure surface %dx%d: %w", bw, bh, err)
		}
	}

	f := buildFrame(s, cam, frameSettings{
		width:         bw,
		height:        bh,
		clearColor:    r.opts.ClearColor,
		toneMapping:   r.opts.ToneMapping,
		exposure:      r.opts.Exposure,
		shadows:       r.opts.Shadows,
		shadowMapSize: r.opts.ShadowMapSize,
	})

	r.mu.Lock()
	f.stats.Frame = r.frameCount + 1
	r.mu.Unlock()

	if err := r.backend.Draw(f); err != nil {
		return fmt.Errorf("failed to draw frame %d: %w", f.stats.Frame, err)
	}

	r.mu.Lock()
	r.frameCount = f.stats.Frame
	r.lastFrame = f.stats
	r.mu.Unlock()
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	r.sizeDirty = true
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) DrawingBufferSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawingBufferSize()
}

// drawingBufferSize must be called with mu held.
func (r *renderer) drawingBufferSize() (int, int) {
	return scaledSize(r.width, r.pixelRatio), scaledSize(r.height, r.pixelRatio)
}

func scaledSize(v int, ratio float32) int {
	return int(math.Round(float64(v) * float64(ratio)))
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) SetPixelRatio(ratio float32) {
	ratio = common.Clamp(ratio, 1, maxPixelRatio)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio == r.pixelRatio {
		return
	}
	r.pixelRatio = ratio
	r.sizeDirty = true
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.PresentMode = mode
	r.backend.SetPresentMode(mode)
	r.sizeDirty = true
}

func (r *renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameCount
}

func (r *renderer) LastFrame() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame
}

func (r *renderer) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend != nil {
		r.backend.Release()
	}
}
