package renderer

import (
	"errors"
	"sync"
)

var errBackendReleased = errors.New("backend released")

// headlessRendererBackend keeps the frame descriptions instead of drawing them.
type headlessRendererBackend struct {
	mu *sync.Mutex

	configured  [][2]int
	presentMode PresentMode
	frames      uint64
	last        *frame
	released    bool
}

var _ rendererBackend = &headlessRendererBackend{}

func newHeadlessRendererBackend() *headlessRendererBackend {
	return &headlessRendererBackend{mu: &sync.Mutex{}}
}

func (b *headlessRendererBackend) Configure(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return errBackendReleased
	}
	b.configured = append(b.configured, [2]int{width, height})
	return nil
}

func (b *headlessRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *headlessRendererBackend) Draw(f *frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return errBackendReleased
	}
	b.frames++
	b.last = f
	return nil
}

func (b *headlessRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	b.last = nil
}

// configuredSizes returns every drawing buffer size passed to Configure.
func (b *headlessRendererBackend) configuredSizes() [][2]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][2]int(nil), b.configured...)
}

func (b *headlessRendererBackend) lastFrame() *frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
