package camera

import "time"

// CameraController defines the positional state a Camera reads each frame.
// Controllers own positional state (position, target). Camera reads from controller
// and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// SetPosition sets the camera's world-space position directly.
	// Non-finite coordinates are ignored.
	// The controller does not resynchronize; call Update afterwards.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// SetTarget sets the look-at/pivot point directly.
	// Non-finite coordinates are ignored.
	// The controller does not resynchronize; call Update afterwards.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// Update applies pending input and the controller's constraints to the current pose.
	//
	// Parameters:
	//   - dt: time elapsed since the previous update
	//
	// Returns:
	//   - bool: true if position or target changed
	Update(dt time.Duration) bool
}

// OrbitControls orbits the camera around a target with pointer-driven rotate, pan and zoom.
// Angles are spherical coordinates of (position - target): the polar angle is measured
// from +Y and the azimuth around Y, starting at +Z.
//
// Input methods only accumulate pending deltas; Update applies them. With damping enabled
// each Update applies a share of the pending delta so motion eases out over several frames.
type OrbitControls interface {
	CameraController

	// Rotate queues an orbit from a pointer drag.
	// A drag across the full viewport height rotates by one full turn.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	//   - viewportHeight: viewport height in pixels
	Rotate(dx, dy, viewportHeight float32)

	// Pan queues a screen-space translation of both target and position.
	// Movement is scaled so the point under the cursor follows it at the target's depth.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	//   - viewportHeight: viewport height in pixels
	//   - fovY: camera vertical field of view in radians
	Pan(dx, dy, viewportHeight, fovY float32)

	// Zoom dollies the camera along the view direction.
	// Positive delta zooms in (closer to target); one unit is one wheel notch.
	//
	// Parameters:
	//   - delta: zoom notches scaled by ZoomSpeed
	Zoom(delta float32)

	// Distance returns the current distance between position and target.
	//
	// Returns:
	//   - float32: distance from target
	Distance() float32

	// PolarAngle returns the current angle between +Y and (position - target).
	//
	// Returns:
	//   - float32: polar angle in radians
	PolarAngle() float32

	// AzimuthAngle returns the current angle around Y, measured from +Z.
	//
	// Returns:
	//   - float32: azimuth in radians
	AzimuthAngle() float32

	// DistanceBounds returns the allowed distance range.
	//
	// Returns:
	//   - minDistance, maxDistance: the range in world units
	DistanceBounds() (minDistance, maxDistance float32)

	// PolarBounds returns the allowed polar angle range.
	//
	// Returns:
	//   - minPolar, maxPolar: the range in radians
	PolarBounds() (minPolar, maxPolar float32)

	// DampingEnabled reports whether pending input eases out over several updates.
	//
	// Returns:
	//   - bool: true if damping is on
	DampingEnabled() bool

	// SetAutoRotate toggles continuous rotation around the target.
	//
	// Parameters:
	//   - enabled: true to rotate every update
	SetAutoRotate(enabled bool)

	// AutoRotate reports whether continuous rotation is on.
	//
	// Returns:
	//   - bool: true if auto-rotate is enabled
	AutoRotate() bool

	// Settled reports whether no input is pending.
	//
	// Returns:
	//   - bool: true if Update would not move the camera because of input
	Settled() bool
}
