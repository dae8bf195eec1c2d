package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable cutoff.
	LightTypePoint LightType = iota

	// LightTypeSpot represents a light that emits in a cone from a position towards a target.
	// Attenuates with both distance and angle from the cone axis. The cone edge is softened
	// by the penumbra.
	LightTypeSpot
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	lightType  LightType
	position   [3]float32
	target     [3]float32
	color      [3]float32
	intensity  float32
	distance   float32 // 0 means unlimited
	angle      float32 // outer cone half-angle in radians
	penumbra   float32 // share of the cone that fades out, in [0, 1]
	decay      float32
	enabled    bool
	castShadow bool
	shadowBias float32
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities that contribute to the final pixel color during the
// lit pass. Spot lights aim at a target point and may render a shadow map from a
// perspective shadow camera whose frustum matches the cone. Point lights ignore the
// cone and shadow settings.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (point or spot)
	Type() LightType

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Target returns the world-space point the light is aimed at.
	//
	// Returns:
	//   - [3]float32: target as (x, y, z)
	Target() [3]float32

	// Direction returns the normalized direction from position to target.
	// A light whose target coincides with its position points straight down.
	//
	// Returns:
	//   - [3]float32: unit direction
	Direction() [3]float32

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Distance returns the attenuation cutoff distance. Zero means no cutoff.
	//
	// Returns:
	//   - float32: the cutoff distance
	Distance() float32

	// Angle returns the outer cone half-angle in radians.
	//
	// Returns:
	//   - float32: the angle
	Angle() float32

	// Penumbra returns the fraction of the cone that fades towards the edge.
	//
	// Returns:
	//   - float32: the penumbra in [0, 1]
	Penumbra() float32

	// Decay returns the distance attenuation exponent.
	//
	// Returns:
	//   - float32: the decay exponent
	Decay() float32

	// ConeCosines returns the cosines of the outer and inner cone half-angles.
	// The inner angle is angle * (1 - penumbra).
	//
	// Returns:
	//   - outer: cos(angle)
	//   - inner: cos(angle * (1 - penumbra))
	ConeCosines() (outer, inner float32)

	// Enabled returns whether the light is active for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// CastShadow returns whether the light renders a shadow map.
	// Only spot lights cast shadows.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastShadow() bool

	// ShadowBias returns the depth bias added before shadow comparison.
	//
	// Returns:
	//   - float32: the bias in normalized depth units
	ShadowBias() float32

	// ShadowCamera returns the perspective parameters of the light's shadow camera:
	// fov is twice the cone angle, aspect is 1, near is DefaultShadowNear and far is
	// the light distance (or DefaultShadowFar when the distance is unlimited).
	//
	// Returns:
	//   - fovY, aspect, near, far: the projection parameters
	ShadowCamera() (fovY, aspect, near, far float32)

	// ShadowViewProjection returns the column-major view-projection matrix of the
	// shadow camera, looking from the light position to its target.
	//
	// Returns:
	//   - [16]float32: the matrix
	ShadowViewProjection() [16]float32

	// SetPosition sets the world-space position of the light.
	SetPosition(x, y, z float32)

	// SetTarget sets the world-space point the light is aimed at.
	SetTarget(x, y, z float32)

	// SetColor sets the linear RGB color of the light.
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetDistance sets the attenuation cutoff distance. Negative values are ignored.
	SetDistance(distance float32)

	// SetCone sets the outer cone half-angle and the penumbra.
	//
	// Parameters:
	//   - angle: half-angle in radians, clamped to (0, pi/2]
	//   - penumbra: clamped to [0, 1]
	SetCone(angle, penumbra float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)

	// SetCastShadow sets whether the light renders a shadow map.
	SetCastShadow(castShadow bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type. Defaults follow a white spot light
// at the origin aimed at the origin: intensity 1, no distance cutoff, angle pi/3,
// penumbra 0, decay 2, no shadows, bias 0.
//
// Parameters:
//   - lightType: the kind of light to create (point or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		lightType: lightType,
		color:     [3]float32{1, 1, 1},
		intensity: 1,
		angle:     math32.Pi / 3,
		decay:     2,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.angle, l.penumbra = clampCone(l.angle, l.penumbra)
	if l.lightType != LightTypeSpot {
		l.castShadow = false
	}
	return l
}

// clampCone keeps the cone inside a hemisphere and the penumbra inside [0, 1].
func clampCone(angle, penumbra float32) (float32, float32) {
	if !(angle > 0) {
		angle = 1e-3
	}
	return common.Clamp(angle, 1e-3, math32.Pi/2), common.Clamp(penumbra, 0, 1)
}

// direction computes the aim vector. Caller must hold the mutex.
func (l *lightImpl) direction() [3]float32 {
	d := common.Normalize3(common.Sub3(l.target, l.position))
	if d == [3]float32{} {
		return [3]float32{0, -1, 0}
	}
	return d
}

// shadowFar returns the far plane of the shadow camera. Caller must hold the mutex.
func (l *lightImpl) shadowFar() float32 {
	if l.distance > 0 {
		return l.distance
	}
	return DefaultShadowFar
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Target() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction()
}

func (l *lightImpl) Color() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Distance() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.distance
}

func (l *lightImpl) Angle() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.angle
}

func (l *lightImpl) Penumbra() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.penumbra
}

func (l *lightImpl) Decay() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decay
}

func (l *lightImpl) ConeCosines() (outer, inner float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return math32.Cos(l.angle), math32.Cos(l.angle * (1 - l.penumbra))
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) CastShadow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.castShadow
}

func (l *lightImpl) ShadowBias() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shadowBias
}

func (l *lightImpl) ShadowCamera() (fovY, aspect, near, far float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return 2 * l.angle, 1, DefaultShadowNear, l.shadowFar()
}

func (l *lightImpl) ShadowViewProjection() [16]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	up := [3]float32{0, 1, 0}
	// LookAt degenerates when the aim is vertical.
	if d := l.direction(); math32.Abs(d[1]) > 0.999 {
		up = [3]float32{0, 0, 1}
	}

	var view, proj, out [16]float32
	common.LookAt(view[:],
		l.position[0], l.position[1], l.position[2],
		l.target[0], l.target[1], l.target[2],
		up[0], up[1], up[2],
	)
	common.Perspective(proj[:], 2*l.angle, 1, DefaultShadowNear, l.shadowFar())
	common.Mul4(out[:], proj[:], view[:])
	return out
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetTarget(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetDistance(distance float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if distance >= 0 {
		l.distance = distance
	}
}

func (l *lightImpl) SetCone(angle, penumbra float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.angle, l.penumbra = clampCone(angle, penumbra)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) SetCastShadow(castShadow bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castShadow = castShadow && l.lightType == LightTypeSpot
}
