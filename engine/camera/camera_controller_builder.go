package camera

// OrbitControlsOption is a functional option for configuring OrbitControls.
type OrbitControlsOption func(*orbitControlsImpl)

// WithPosition sets the initial camera position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - OrbitControlsOption: functional option to set the position
func WithPosition(x, y, z float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.position = [3]float32{x, y, z}
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - x: X coordinate of the target
//   - y: Y coordinate of the target
//   - z: Z coordinate of the target
//
// Returns:
//   - OrbitControlsOption: functional option to set the target position
func WithTarget(x, y, z float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.target = [3]float32{x, y, z}
	}
}

// WithDistanceBounds sets the minimum and maximum distance from the target.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - OrbitControlsOption: functional option to set distance bounds
func WithDistanceBounds(min, max float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.minDistance = min
		oc.maxDistance = max
	}
}

// WithPolarBounds sets the minimum and maximum polar angle, measured from +Y.
//
// Parameters:
//   - min: smallest angle in radians (how far the camera may look down)
//   - max: largest angle in radians (how far the camera may drop towards the horizon)
//
// Returns:
//   - OrbitControlsOption: functional option to set polar bounds
func WithPolarBounds(min, max float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.minPolar = min
		oc.maxPolar = max
	}
}

// WithDamping toggles eased motion and sets its strength.
// Larger factors settle faster.
//
// Parameters:
//   - enabled: true to ease pending input over several updates
//   - factor: damping strength, typically 0.05
//
// Returns:
//   - OrbitControlsOption: functional option to set damping
func WithDamping(enabled bool, factor float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.enableDamping = enabled
		if factor > 0 {
			oc.dampingFactor = factor
		}
	}
}

// WithPan toggles pointer panning.
func WithPan(enabled bool) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.enablePan = enabled
	}
}

// WithRotateSpeed sets the rotation speed multiplier.
//
// Parameters:
//   - speed: multiplier for drag rotation
//
// Returns:
//   - OrbitControlsOption: functional option to set rotate speed
func WithRotateSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.rotateSpeed = speed
	}
}

// WithZoomSpeed sets the zoom speed multiplier.
//
// Parameters:
//   - speed: multiplier for zoom input
//
// Returns:
//   - OrbitControlsOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan speed multiplier.
//
// Parameters:
//   - speed: multiplier for pan input
//
// Returns:
//   - OrbitControlsOption: functional option to set pan speed
func WithPanSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.panSpeed = speed
	}
}

// WithAutoRotate enables continuous rotation around the target.
// A speed of 2.0 completes one orbit in 30 seconds.
//
// Parameters:
//   - enabled: true to rotate every update
//   - speed: rotation speed multiplier
//
// Returns:
//   - OrbitControlsOption: functional option to set auto-rotate
func WithAutoRotate(enabled bool, speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.autoRotate = enabled
		if speed != 0 {
			oc.autoRotateSpeed = speed
		}
	}
}
