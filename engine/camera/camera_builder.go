package camera

// CameraBuilderOption configures a camera in NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector. Defaults to +Y.
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithProjection sets every frustum parameter. Invalid projections are ignored.
//
// Parameters:
//   - p: the projection
//
// Returns:
//   - CameraBuilderOption: the option
func WithProjection(p Projection) CameraBuilderOption {
	return func(c *cameraImpl) {
		if p.Valid() {
			c.projection = p
		}
	}
}

// WithFov sets the vertical field of view in radians.
func WithFov(fov float32) CameraBuilderOption {
	return withProjectionField(func(p *Projection) { p.Fov = fov })
}

// WithAspect sets the aspect ratio (width / height).
func WithAspect(aspect float32) CameraBuilderOption {
	return withProjectionField(func(p *Projection) { p.Aspect = aspect })
}

// WithNear sets the near plane distance.
func WithNear(near float32) CameraBuilderOption {
	return withProjectionField(func(p *Projection) { p.Near = near })
}

// WithFar sets the far plane distance.
func WithFar(far float32) CameraBuilderOption {
	return withProjectionField(func(p *Projection) { p.Far = far })
}

// WithController attaches a controller; NewCamera reads its pose once all options are applied.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: the option
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

// withProjectionField changes one projection field if the result is valid.
func withProjectionField(edit func(p *Projection)) CameraBuilderOption {
	return func(c *cameraImpl) {
		p := c.projection
		edit(&p)
		if p.Valid() {
			c.projection = p
		}
	}
}
