package engine

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// ErrAlreadyRunning is returned by Run when the frame loop is already active.
var ErrAlreadyRunning = errors.New("engine already running")

// engine implements the Engine interface.
// Drives the frame loop from the window's message loop on a single OS thread.
type engine struct {
	mu *sync.Mutex

	running bool

	window window.Window
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback  func(dt time.Duration)
	resizeCallback func(width, height int)

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time
	frames     uint64

	now   func() time.Time
	sleep func(time.Duration)
}

// Engine is the main entry point for the engine.
// It runs the frame loop and forwards window resizes.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called once per frame.
	// Use this for animation updates and scene rendering.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the time since the previous frame
	SetFrameCallback(callback func(dt time.Duration))

	// SetResizeCallback registers the function called when the window's logical size changes.
	//
	// Parameters:
	//   - callback: function receiving the new logical width and height
	SetResizeCallback(callback func(width, height int))

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Frames returns how many frames have run.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run starts the frame loop and blocks until the window closes.
	// Must be called from the goroutine that created the window.
	//
	// Returns:
	//   - error: ErrAlreadyRunning when called re-entrantly
	Run() error

	// Quit closes the window, which ends Run after the current frame.
	// Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A window is required; the profiler is created disabled.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if no window was supplied
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:     &sync.Mutex{},
		logger: slog.Default(),
		now:    time.Now,
		sleep:  time.Sleep,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.window == nil {
		return nil, errors.New("engine requires a window")
	}
	e.logger = e.logger.With("component", "engine")
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger), profiler.WithClock(e.now))
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		cb := e.resizeCallback
		e.mu.Unlock()
		if cb != nil {
			cb(width, height)
		}
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	e.lastFrame = e.now()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	// GLFW and the wgpu surface are bound to the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.window.SetUpdateCallback(e.frame)
	defer e.window.SetUpdateCallback(nil)

	e.logger.Debug("frame loop started")
	e.window.ProcessMessages()
	e.logger.Debug("frame loop stopped", "frames", e.Frames())
	return nil
}

// Quit closes the window. Subsequent calls are no-ops.
func (e *engine) Quit() {
	if e.window.IsRunning() {
		if err := e.window.Close(); err != nil {
			e.logger.Warn("failed to close window", "error", err)
		}
	}
}

// frame runs one iteration of the loop: delta time, frame callback, profiler,
// then the frame limit sleep.
// Recovers from panics in the callback, logs them and closes the window.
func (e *engine) frame() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame recovered from panic", "panic", r)
			e.Quit()
		}
	}()

	e.mu.Lock()
	start := e.now()
	dt := start.Sub(e.lastFrame)
	e.lastFrame = start
	e.frames++
	cb := e.frameCallback
	profiling := e.profilingEnabled
	limit := e.frameLimit
	e.mu.Unlock()

	if cb != nil {
		cb(dt)
	}

	if profiling {
		e.profiler.Tick()
	}

	if limit > 0 {
		if remaining := limit - e.now().Sub(start); remaining > 0 {
			e.sleep(remaining)
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(dt time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizeCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLimit = frameDuration(fps)
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
