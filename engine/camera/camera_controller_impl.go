package camera

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
)

const (
	// polarEpsilon keeps the polar angle away from the poles where the azimuth is undefined.
	polarEpsilon = 1e-6

	// settleThreshold is the magnitude below which pending input is discarded.
	settleThreshold = 1e-6

	// boundsTolerance absorbs float rounding when deciding whether a pose needs clamping.
	boundsTolerance = 1e-5

	// maxZoomLog bounds the applied log dolly scale so exp stays finite.
	maxZoomLog = 30

	// maxPendingZoom bounds accumulation so opposing notches still cancel without overflow.
	maxPendingZoom = 1e6
)

// zoomNotchLog is ln(0.95), the log scale of one zoom-in notch.
var zoomNotchLog = math32.Log(0.95)

// orbitControlsImpl is the single implementation of OrbitControls.
// Pending input is stored per channel (azimuth, polar, pan xyz, log dolly scale). With damping,
// each channel relaxes towards zero through a critically damped spring and the amount it
// moved this update is applied to the pose.
type orbitControlsImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	// Constraints
	minDistance float32
	maxDistance float32
	minPolar    float32
	maxPolar    float32

	// Behaviour
	enableDamping   bool
	dampingFactor   float32
	enablePan       bool
	rotateSpeed     float32
	zoomSpeed       float32
	panSpeed        float32
	autoRotate      bool
	autoRotateSpeed float32

	// Pending input
	pendingTheta float32
	pendingPhi   float32
	pendingPan   [3]float32
	// pendingZoom is the natural log of the pending dolly scale.
	pendingZoom float32

	// Spring velocities for the damped channels
	velTheta float32
	velPhi   float32
	velPan   [3]float32

	spring      harmonica.Spring
	springDelta time.Duration
}

// Compile-time interface compliance check
var _ OrbitControls = &orbitControlsImpl{}

// NewOrbitControls creates orbit controls with the viewer's defaults: target (0, 2, -0.5),
// distance in [0.1, 20], polar angle in [0.5, 1.5], damping on with factor 0.05, pan on,
// auto-rotate off.
//
// Parameters:
//   - options: functional options to configure the controls
//
// Returns:
//   - OrbitControls: the newly created controls
func NewOrbitControls(options ...OrbitControlsOption) OrbitControls {
	oc := &orbitControlsImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 12, 0},
		target:   [3]float32{0, 2, -0.5},

		minDistance: 0.1,
		maxDistance: 20,
		minPolar:    0.5,
		maxPolar:    1.5,

		enableDamping:   true,
		dampingFactor:   0.05,
		enablePan:       true,
		rotateSpeed:     1,
		zoomSpeed:       1,
		panSpeed:        1,
		autoRotateSpeed: 2,

	}

	for _, option := range options {
		option(oc)
	}

	if oc.minDistance > oc.maxDistance {
		oc.minDistance, oc.maxDistance = oc.maxDistance, oc.minDistance
	}
	if oc.minPolar > oc.maxPolar {
		oc.minPolar, oc.maxPolar = oc.maxPolar, oc.minPolar
	}
	return oc
}

// --- internal helpers ---

// spherical returns radius, polar (from +Y) and azimuth (around Y from +Z) of position - target.
// Caller must hold the mutex.
func (oc *orbitControlsImpl) spherical() (radius, phi, theta float32) {
	offset := common.Sub3(oc.position, oc.target)
	radius = common.Length3(offset)
	if radius == 0 {
		return 0, 0, 0
	}
	theta = math32.Atan2(offset[0], offset[2])
	phi = math32.Acos(common.Clamp(offset[1]/radius, -1, 1))
	return radius, phi, theta
}

// localAxes computes the camera's right and up axes consistent with the LookAt matrix.
// If position and target coincide, or the view is vertical, the returned vectors are zero.
// Caller must hold the mutex.
func (oc *orbitControlsImpl) localAxes() (right, up [3]float32) {
	// backward = normalize(position - target), matching LookAt's z-axis
	backward := common.Normalize3(common.Sub3(oc.position, oc.target))
	if backward == [3]float32{} {
		return
	}

	// right = normalize(cross(worldUp, backward)) where worldUp = (0, 1, 0)
	right = common.Normalize3([3]float32{backward[2], 0, -backward[0]})
	if right == [3]float32{} {
		return
	}

	// up = cross(backward, right), matching LookAt's y-axis
	up = common.Cross3(backward, right)
	return
}

// settled reports whether no input is pending. Caller must hold the mutex.
func (oc *orbitControlsImpl) settled() bool {
	return oc.pendingTheta == 0 && oc.pendingPhi == 0 &&
		oc.pendingPan == [3]float32{} && oc.pendingZoom == 0 &&
		oc.velTheta == 0 && oc.velPhi == 0 && oc.velPan == [3]float32{}
}

// inBounds reports whether a pose already satisfies the distance and polar constraints.
func (oc *orbitControlsImpl) inBounds(radius, phi float32) bool {
	return radius >= oc.minDistance-boundsTolerance && radius <= oc.maxDistance+boundsTolerance &&
		phi >= oc.minPolar-boundsTolerance && phi <= oc.maxPolar+boundsTolerance
}

// springFor returns a critically damped spring stepping by dt.
// Caller must hold the mutex.
func (oc *orbitControlsImpl) springFor(dt time.Duration) harmonica.Spring {
	if dt <= 0 {
		dt = time.Second / 60
	}
	if dt != oc.springDelta {
		oc.spring = harmonica.NewSpring(dt.Seconds(), float64(oc.dampingFactor)*180, 1.0)
		oc.springDelta = dt
	}
	return oc.spring
}

// relax moves one pending channel towards zero and returns the share to apply now.
func relax(spring harmonica.Spring, pending, vel *float32) float32 {
	if *pending == 0 && *vel == 0 {
		return 0
	}
	np, nv := spring.Update(float64(*pending), float64(*vel), 0)
	next, nextVel := float32(np), float32(nv)
	if math32.Abs(next) < settleThreshold && math32.Abs(nextVel) < settleThreshold {
		next, nextVel = 0, 0
	}
	applied := *pending - next
	*pending, *vel = next, nextVel
	return applied
}

func isFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// take applies the whole pending channel at once.
func take(pending *float32) float32 {
	v := *pending
	*pending = 0
	return v
}

// --- CameraController methods ---

func (oc *orbitControlsImpl) Position() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position[0], oc.position[1], oc.position[2]
}

func (oc *orbitControlsImpl) SetPosition(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !common.IsFinite3([3]float32{x, y, z}) {
		return
	}
	oc.position = [3]float32{x, y, z}
}

func (oc *orbitControlsImpl) Target() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target[0], oc.target[1], oc.target[2]
}

func (oc *orbitControlsImpl) SetTarget(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !common.IsFinite3([3]float32{x, y, z}) {
		return
	}
	oc.target = [3]float32{x, y, z}
}

func (oc *orbitControlsImpl) Update(dt time.Duration) bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	if oc.autoRotate {
		seconds := float32(dt.Seconds())
		if seconds <= 0 {
			seconds = 1.0 / 60.0
		}
		oc.pendingTheta -= 2 * math32.Pi / 60 * oc.autoRotateSpeed * seconds
	}

	radius, phi, theta := oc.spherical()
	if oc.settled() && oc.inBounds(radius, phi) {
		return false
	}

	var dTheta, dPhi float32
	var dPan [3]float32
	if oc.enableDamping {
		spring := oc.springFor(dt)
		dTheta = relax(spring, &oc.pendingTheta, &oc.velTheta)
		dPhi = relax(spring, &oc.pendingPhi, &oc.velPhi)
		for i := range dPan {
			dPan[i] = relax(spring, &oc.pendingPan[i], &oc.velPan[i])
		}
	} else {
		dTheta = take(&oc.pendingTheta)
		dPhi = take(&oc.pendingPhi)
		for i := range dPan {
			dPan[i] = take(&oc.pendingPan[i])
		}
	}

	if !isFinite(phi) {
		phi = oc.minPolar
	}
	theta += dTheta
	phi = common.Clamp(phi+dPhi, oc.minPolar, oc.maxPolar)
	phi = common.Clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)

	if radius == 0 || !isFinite(radius) {
		radius = oc.minDistance
	}
	if !isFinite(theta) {
		theta = 0
	}
	radius *= math32.Exp(common.Clamp(oc.pendingZoom, -maxZoomLog, maxZoomLog))
	oc.pendingZoom = 0
	radius = common.Clamp(radius, oc.minDistance, oc.maxDistance)

	prevPosition, prevTarget := oc.position, oc.target
	oc.target = common.Add3(oc.target, dPan)

	sinPhi := math32.Sin(phi)
	oc.position = common.Add3(oc.target, [3]float32{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	})

	return oc.position != prevPosition || oc.target != prevTarget
}

// --- OrbitControls input methods ---

func (oc *orbitControlsImpl) Rotate(dx, dy, viewportHeight float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if viewportHeight <= 0 || !common.IsFinite3([3]float32{dx, dy, viewportHeight}) {
		return
	}
	oc.pendingTheta -= 2 * math32.Pi * dx / viewportHeight * oc.rotateSpeed
	oc.pendingPhi -= 2 * math32.Pi * dy / viewportHeight * oc.rotateSpeed
}

func (oc *orbitControlsImpl) Pan(dx, dy, viewportHeight, fovY float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enablePan || viewportHeight <= 0 || !common.IsFinite3([3]float32{dx, dy, viewportHeight}) {
		return
	}

	// half the visible height at the target's depth
	targetDistance := common.Length3(common.Sub3(oc.position, oc.target)) * math32.Tan(fovY/2)
	right, up := oc.localAxes()

	left := common.Scale3(right, -2*dx*targetDistance/viewportHeight*oc.panSpeed)
	upward := common.Scale3(up, 2*dy*targetDistance/viewportHeight*oc.panSpeed)
	oc.pendingPan = common.Add3(oc.pendingPan, common.Add3(left, upward))
}

func (oc *orbitControlsImpl) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if delta == 0 || math32.IsNaN(delta) || math32.IsInf(delta, 0) {
		return
	}
	oc.pendingZoom = common.Clamp(oc.pendingZoom+zoomNotchLog*oc.zoomSpeed*delta, -maxPendingZoom, maxPendingZoom)
}

// --- OrbitControls queries ---

func (oc *orbitControlsImpl) Distance() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return common.Length3(common.Sub3(oc.position, oc.target))
}

func (oc *orbitControlsImpl) PolarAngle() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	_, phi, _ := oc.spherical()
	return phi
}

func (oc *orbitControlsImpl) AzimuthAngle() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	_, _, theta := oc.spherical()
	return theta
}

func (oc *orbitControlsImpl) DistanceBounds() (minDistance, maxDistance float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.minDistance, oc.maxDistance
}

func (oc *orbitControlsImpl) PolarBounds() (minPolar, maxPolar float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.minPolar, oc.maxPolar
}

func (oc *orbitControlsImpl) DampingEnabled() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.enableDamping
}

func (oc *orbitControlsImpl) SetAutoRotate(enabled bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.autoRotate = enabled
}

func (oc *orbitControlsImpl) AutoRotate() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.autoRotate
}

func (oc *orbitControlsImpl) Settled() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.settled() && !oc.autoRotate
}
