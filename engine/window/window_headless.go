package window

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// HeadlessWindow is a Window without a native counterpart. Input is injected by the caller.
// Used by tests and offscreen tools together with the headless renderer backend.
type HeadlessWindow interface {
	Window

	// Resize changes the logical size and fires the resize callback.
	//
	// Parameters:
	//   - width: new logical width
	//   - height: new logical height
	Resize(width, height int)

	// Scroll fires the scroll callback.
	Scroll(delta float32)

	// KeyDown fires the key down callback. KeyEsc closes the window instead, as the native window does.
	KeyDown(keyCode uint32)

	// KeyUp fires the key up callback.
	KeyUp(keyCode uint32)

	// MouseDown fires the mouse down callback.
	MouseDown(button common.MouseButton, x, y int32)

	// MouseUp fires the mouse up callback.
	MouseUp(button common.MouseButton, x, y int32)

	// MouseMove fires the mouse move callback.
	MouseMove(x, y int32)

	// Iterations returns how many message loop iterations have run.
	Iterations() int
}

type headlessWindow struct {
	*engineWindow
	platform *headlessPlatform
}

// headlessPlatform is the platformWindow of a HeadlessWindow.
type headlessPlatform struct {
	running    bool
	ratio      float32
	maxIter    int
	iterations int
}

var _ HeadlessWindow = &headlessWindow{}
var _ platformWindow = &headlessPlatform{}

// NewHeadlessWindow creates a window with no native surface.
// ProcessMessages runs until Close is called, or until maxIterations loop iterations
// have run when maxIterations is positive.
//
// Parameters:
//   - pixelRatio: the framebuffer scale to report (values below 1 become 1)
//   - maxIterations: iteration cap for ProcessMessages, 0 for none
//   - options: functional options to configure the window
//
// Returns:
//   - HeadlessWindow: the running window
func NewHeadlessWindow(pixelRatio float32, maxIterations int, options ...WindowBuilderOption) HeadlessWindow {
	w := newEngineWindow(options...)
	p := &headlessPlatform{running: true, ratio: max(pixelRatio, 1), maxIter: maxIterations}
	w.internalWindow = p
	return &headlessWindow{engineWindow: w, platform: p}
}

func (h *headlessWindow) Resize(width, height int) {
	h.resized(width, height)
}

func (h *headlessWindow) Scroll(delta float32) {
	h.scrolled(delta)
}

func (h *headlessWindow) KeyDown(keyCode uint32) {
	if keyCode == common.KeyEsc {
		h.platform.running = false
		return
	}
	h.keyDown(keyCode)
}

func (h *headlessWindow) KeyUp(keyCode uint32) {
	h.keyUp(keyCode)
}

func (h *headlessWindow) MouseDown(button common.MouseButton, x, y int32) {
	h.mouseDown(button, x, y)
}

func (h *headlessWindow) MouseUp(button common.MouseButton, x, y int32) {
	h.mouseUp(button, x, y)
}

func (h *headlessWindow) MouseMove(x, y int32) {
	h.mouseMoved(x, y)
}

func (h *headlessWindow) Iterations() int {
	return h.platform.iterations
}

func (p *headlessPlatform) isRunning() bool {
	return p.running
}

func (p *headlessPlatform) close() error {
	p.running = false
	return nil
}

func (p *headlessPlatform) pollEvents() bool {
	if !p.running {
		return false
	}
	if p.maxIter > 0 && p.iterations >= p.maxIter {
		p.running = false
		return false
	}
	p.iterations++
	return true
}

func (p *headlessPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (p *headlessPlatform) setTitle(string) {}

func (p *headlessPlatform) pixelRatio() float32 {
	return p.ratio
}
