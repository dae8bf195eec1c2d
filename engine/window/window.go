package window

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
//
// Sizes are logical (screen coordinates). PixelRatio converts them to framebuffer pixels.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving the new logical width and height
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta in notches (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the callback for mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor x, y position
	SetMouseDownCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseUpCallback sets the callback for mouse button releases.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor x, y position
	SetMouseUpCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil for headless windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources. Closing twice is a no-op.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current logical client area width.
	//
	// Returns:
	//   - int: width in screen coordinates
	Width() int

	// Height returns the current logical client area height.
	//
	// Returns:
	//   - int: height in screen coordinates
	Height() int

	// PixelRatio returns framebuffer pixels per logical unit (2 on most high-DPI displays).
	//
	// Returns:
	//   - float32: the ratio, at least 1
	PixelRatio() float32

	// Title returns the text shown in the title bar.
	Title() string

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)
}

// platformWindow is the native side of an engineWindow.
type platformWindow interface {
	isRunning() bool
	close() error
	// pollEvents dispatches pending events and reports whether the window is still open.
	pollEvents() bool
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	setTitle(title string)
	pixelRatio() float32
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, the platform window, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// resizable allows the user to resize the window.
	resizable bool

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current logical client area width.
	width int

	// height is the current logical client area height.
	height int

	// internalWindow holds the platform-specific window (glfwWindow or headlessPlatform).
	internalWindow platformWindow

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the window is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)

	// onMouseDown is called when a mouse button is pressed.
	onMouseDown func(button common.MouseButton, x, y int32)

	// onMouseUp is called when a mouse button is released.
	onMouseUp func(button common.MouseButton, x, y int32)

	// onMouseMove is called when the mouse moves within the window.
	onMouseMove func(x, y int32)
}

var _ Window = &engineWindow{}

// newEngineWindow applies default values first, then each option in order.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "oxy-viewer",
		resizable: true,
		maxWidth:  0,
		maxHeight: 0,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a native GLFW window with the specified options.
// Must be called from the main goroutine; the calling OS thread stays locked.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if GLFW or the native window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseDownCallback(callback func(button common.MouseButton, x, y int32)) {
	w.onMouseDown = callback
}

func (w *engineWindow) SetMouseUpCallback(callback func(button common.MouseButton, x, y int32)) {
	w.onMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.internalWindow != nil && w.internalWindow.isRunning()
}

func (w *engineWindow) Close() error {
	if w.internalWindow == nil {
		return errNotInitialized
	}
	return w.internalWindow.close()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := w.internalWindow.pollEvents(); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *engineWindow) PixelRatio() float32 {
	if w.internalWindow == nil {
		return 1
	}
	return max(w.internalWindow.pixelRatio(), 1)
}

func (w *engineWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *engineWindow) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
	if w.internalWindow != nil {
		w.internalWindow.setTitle(title)
	}
}

// resized stores a new logical size and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) scrolled(delta float32) {
	if w.onScroll != nil {
		w.onScroll(delta)
	}
}

func (w *engineWindow) keyDown(code uint32) {
	if w.onKeyDown != nil {
		w.onKeyDown(code)
	}
}

func (w *engineWindow) keyUp(code uint32) {
	if w.onKeyUp != nil {
		w.onKeyUp(code)
	}
}

func (w *engineWindow) mouseDown(button common.MouseButton, x, y int32) {
	if w.onMouseDown != nil {
		w.onMouseDown(button, x, y)
	}
}

func (w *engineWindow) mouseUp(button common.MouseButton, x, y int32) {
	if w.onMouseUp != nil {
		w.onMouseUp(button, x, y)
	}
}

func (w *engineWindow) mouseMoved(x, y int32) {
	if w.onMouseMove != nil {
		w.onMouseMove(x, y)
	}
}
