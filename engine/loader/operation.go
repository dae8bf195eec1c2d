package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// Progress reports how many bytes of an asset have been read so far.
type Progress struct {
	// Loaded is the number of bytes read through the resource file system.
	Loaded int64
	// Total is the size of the glTF document plus every external buffer and image it references.
	Total int64
}

// Percent returns 100 * Loaded / Total, or 0 when the total is unknown.
//
// Returns:
//   - float64: the percentage
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return 100 * float64(p.Loaded) / float64(p.Total)
}

// String formats the progress for the loading indicator, e.g. "Loading: 42.00%".
func (p Progress) String() string {
	return fmt.Sprintf("Loading: %.2f%%", p.Percent())
}

// Stats summarizes a loaded asset.
type Stats struct {
	Nodes     int
	Meshes    int
	Triangles int
	Vertices  int
	Materials int
	Textures  int
	// Skipped counts primitives that were not triangle lists.
	Skipped int
	// Bytes is the number of bytes read.
	Bytes int64
}

// Result is the outcome of a load operation.
type Result struct {
	// Name is the asset that was requested.
	Name string
	// Root is the model root node, nil on failure.
	Root scene.Node
	// Stats describes what was loaded.
	Stats Stats
	// Err is non-nil when the load failed or was cancelled.
	Err error
}

// Event is a single step of a load operation: either progress, or the terminal result.
type Event struct {
	// Progress is the byte count at the time of the event.
	Progress Progress
	// Result is set only on the final event.
	Result *Result
}

// Done reports whether this is the terminal event.
func (e Event) Done() bool {
	return e.Result != nil
}

// Operation is an in-flight asset load. Its event channel yields progress events,
// then exactly one terminal event, then closes.
type Operation struct {
	name   string
	events chan Event
	cancel context.CancelFunc
}

// Name returns the asset being loaded.
func (o *Operation) Name() string {
	return o.name
}

// Events returns the operation's event stream.
//
// Returns:
//   - <-chan Event: progress events followed by one terminal event
func (o *Operation) Events() <-chan Event {
	return o.events
}

// Cancel aborts the load. The terminal event then carries the context error.
func (o *Operation) Cancel() {
	o.cancel()
}

// Wait drains the event stream and returns the terminal result.
//
// Parameters:
//   - onProgress: called for every progress event, may be nil
//
// Returns:
//   - Result: the terminal result
func (o *Operation) Wait(onProgress func(Progress)) Result {
	for ev := range o.events {
		if ev.Done() {
			return *ev.Result
		}
		if onProgress != nil {
			onProgress(ev.Progress)
		}
	}
	return Result{Name: o.name, Err: fmt.Errorf("load of %q ended without a result", o.name)}
}
