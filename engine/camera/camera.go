package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// Projection holds the perspective frustum parameters.
type Projection struct {
	// Fov is the vertical field of view in radians.
	Fov float32
	// Aspect is width / height.
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultProjection is the viewer's perspective: 75 degrees, aspect 1, near 0.01, far 2000.
var DefaultProjection = Projection{
	Fov:    75 * math32.Pi / 180,
	Aspect: 1,
	Near:   0.01,
	Far:    2000,
}

// Valid reports whether the projection describes a usable frustum:
// fov in (0, pi), a finite positive aspect and 0 < near < far.
func (p Projection) Valid() bool {
	return p.Fov > 0 && p.Fov < math32.Pi &&
		p.Aspect > 0 && !math32.IsInf(p.Aspect, 0) &&
		p.Near > 0 && p.Far > p.Near && !math32.IsInf(p.Far, 0)
}

type cameraImpl struct {
	mu *sync.Mutex

	up         [3]float32
	projection Projection

	// eye and target are the controller pose read by the last update.
	eye    [3]float32
	target [3]float32

	view     [16]float32
	proj     [16]float32
	viewProj [16]float32

	controller CameraController
}

// Camera is a perspective camera. Position and target come from an attached
// CameraController; the camera only turns them into matrices on Update.
type Camera interface {
	// Up returns the camera's up vector.
	//
	// Returns:
	//   - x, y, z: up vector components
	Up() (x, y, z float32)

	// Projection returns the frustum parameters.
	//
	// Returns:
	//   - Projection: fov, aspect, near and far
	Projection() Projection

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Position returns the world-space eye position used for the last matrix update.
	//
	// Returns:
	//   - [3]float32: the eye position
	Position() [3]float32

	// Target returns the look-at point used for the last matrix update.
	//
	// Returns:
	//   - [3]float32: the target
	Target() [3]float32

	// ViewMatrix returns the view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the projection matrix (column-major, depth in [0, 1]).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view (column-major).
	ViewProjectionMatrix() [16]float32

	// Frustum returns the clip planes of the current view-projection matrix.
	//
	// Returns:
	//   - common.Frustum: the world-space frustum
	Frustum() common.Frustum

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// Update reads the controller pose and recomputes the matrices.
	// Call once per frame after the controller has been updated.
	// Does nothing without a controller.
	Update()

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - x, y, z: up vector components
	SetUp(x, y, z float32)

	// SetProjection replaces every frustum parameter at once.
	// Invalid projections (see Projection.Valid) are ignored.
	//
	// Parameters:
	//   - p: the new projection
	//
	// Returns:
	//   - bool: true if the projection was applied
	SetProjection(p Projection) bool

	// SetFov sets the vertical field of view in radians. Values outside (0, pi) are ignored.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	// Non-positive or non-finite values are ignored.
	SetAspect(aspect float32)

	// SetNear sets the near plane. Values not in (0, far) are ignored.
	SetNear(near float32)

	// SetFar sets the far plane. Values not greater than near are ignored.
	SetFar(far float32)

	// SetController attaches a CameraController and reads its pose.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with DefaultProjection and +Y up.
// Options that would produce an invalid projection are ignored.
// Attach a controller with WithController or SetController before the
// view matrix carries a pose.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		up:         [3]float32{0, 1, 0},
		projection: DefaultProjection,
	}
	common.Identity(c.view[:])
	for _, option := range options {
		option(c)
	}
	c.refresh()
	return c
}

func (c *cameraImpl) Up() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *cameraImpl) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Fov() float32    { return c.Projection().Fov }
func (c *cameraImpl) Aspect() float32 { return c.Projection().Aspect }
func (c *cameraImpl) Near() float32   { return c.Projection().Near }
func (c *cameraImpl) Far() float32    { return c.Projection().Far }

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProj[:])
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != nil {
		c.refresh()
	}
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.refresh()
}

func (c *cameraImpl) SetProjection(p Projection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyProjection(p)
}

func (c *cameraImpl) SetFov(fov float32) {
	c.editProjection(func(p *Projection) { p.Fov = fov })
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.editProjection(func(p *Projection) { p.Aspect = aspect })
}

func (c *cameraImpl) SetNear(near float32) {
	c.editProjection(func(p *Projection) { p.Near = near })
}

func (c *cameraImpl) SetFar(far float32) {
	c.editProjection(func(p *Projection) { p.Far = far })
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.refresh()
}

// editProjection applies one field change if the result stays valid.
func (c *cameraImpl) editProjection(edit func(p *Projection)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.projection
	edit(&p)
	c.applyProjection(p)
}

// applyProjection stores p and refreshes the matrices. Caller must hold the mutex.
func (c *cameraImpl) applyProjection(p Projection) bool {
	if !p.Valid() {
		return false
	}
	c.projection = p
	c.refresh()
	return true
}

// refresh recomputes the projection and, with a controller attached, the view.
// Caller must hold the mutex.
func (c *cameraImpl) refresh() {
	p := c.projection
	common.Perspective(c.proj[:], p.Fov, p.Aspect, p.Near, p.Far)

	if c.controller != nil {
		px, py, pz := c.controller.Position()
		tx, ty, tz := c.controller.Target()
		c.eye = [3]float32{px, py, pz}
		c.target = [3]float32{tx, ty, tz}
		common.LookAt(c.view[:], px, py, pz, tx, ty, tz, c.up[0], c.up[1], c.up[2])
	}

	common.Mul4(c.viewProj[:], c.proj[:], c.view[:])
}
