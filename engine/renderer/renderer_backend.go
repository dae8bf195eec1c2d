package renderer

import "fmt"

// RendererBackendType selects the graphics API implementation of a Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU draws with WebGPU through cogentcore/webgpu.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless records frames without a GPU. Used by tests and batch tools.
	BackendTypeHeadless
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank (FIFO). No tearing, frame rate capped to the display.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately. May tear.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel of the main colour target.
type MSAASampleCount uint32

const (
	// MSAAOff renders one sample per pixel.
	MSAAOff MSAASampleCount = 1

	// MSAA4x renders four samples per pixel. Supported by every WebGPU adapter.
	MSAA4x MSAASampleCount = 4
)

// ToneMapping selects the operator mapping HDR radiance to display range.
type ToneMapping uint32

const (
	// ToneMappingNone clamps exposed radiance to [0, 1].
	ToneMappingNone ToneMapping = iota

	// ToneMappingACESFilmic applies the ACES filmic curve.
	ToneMappingACESFilmic
)

// ParseToneMapping maps a settings name ("aces" or "none") to a ToneMapping.
//
// Parameters:
//   - name: the operator name
//
// Returns:
//   - ToneMapping: the operator
//   - error: error if the name is unknown
func ParseToneMapping(name string) (ToneMapping, error) {
	switch name {
	case "aces":
		return ToneMappingACESFilmic, nil
	case "none":
		return ToneMappingNone, nil
	default:
		return ToneMappingNone, fmt.Errorf("unknown tone mapping %q", name)
	}
}

// rendererBackend is the graphics API side of a Renderer. The renderer prepares a
// backend-neutral frame description and the backend turns it into GPU work.
type rendererBackend interface {
	// Configure (re)creates the size-dependent targets for a drawing buffer in pixels.
	Configure(width, height int) error

	// SetPresentMode changes the present mode, applied at the next Configure.
	SetPresentMode(mode PresentMode)

	// Draw renders and presents one frame.
	Draw(f *frame) error

	// Release frees every GPU resource. The backend is unusable afterwards.
	Release()
}
