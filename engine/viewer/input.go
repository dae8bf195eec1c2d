package viewer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// dragState tracks the pointer between mouse down and mouse up.
type dragState struct {
	active bool
	button common.MouseButton
	lastX  int32
	lastY  int32
}

// Attach routes a window's pointer, wheel and key input to the viewer.
// The resize callback is left alone; the engine forwards resizes.
//
// Parameters:
//   - w: the window to listen to
func (v *Viewer) Attach(w window.Window) {
	w.SetMouseDownCallback(v.MouseDown)
	w.SetMouseUpCallback(v.MouseUp)
	w.SetMouseMoveCallback(v.MouseMove)
	w.SetScrollCallback(v.Scroll)
	w.SetKeyDownCallback(v.KeyDown)
}

// MouseDown starts a drag. Left drags rotate; right and middle drags pan.
func (v *Viewer) MouseDown(button common.MouseButton, x, y int32) {
	if v.drag.active {
		return
	}
	v.drag = dragState{active: true, button: button, lastX: x, lastY: y}
}

// MouseUp ends the drag started with the same button.
func (v *Viewer) MouseUp(button common.MouseButton, x, y int32) {
	if v.drag.active && v.drag.button == button {
		v.drag.active = false
	}
}

// MouseMove turns pointer motion during a drag into rotate or pan input.
func (v *Viewer) MouseMove(x, y int32) {
	if !v.drag.active {
		return
	}
	dx := float32(x - v.drag.lastX)
	dy := float32(y - v.drag.lastY)
	v.drag.lastX, v.drag.lastY = x, y
	if dx == 0 && dy == 0 {
		return
	}

	_, h := v.renderer.Size()
	switch v.drag.button {
	case common.MouseButtonLeft:
		v.controls.Rotate(dx, dy, float32(h))
	case common.MouseButtonRight, common.MouseButtonMiddle:
		v.controls.Pan(dx, dy, float32(h), v.camera.Fov())
	}
}

// Scroll zooms; positive deltas (wheel up) move the camera closer.
func (v *Viewer) Scroll(delta float32) {
	v.controls.Zoom(delta)
}

// KeyDown selects the viewpoint bound to the key, if any.
func (v *Viewer) KeyDown(keyCode uint32) {
	id, ok := v.menu.Lookup(keyCode)
	if !ok {
		return
	}
	// unknown ids are logged by the animator
	_ = v.Select(id)
}
