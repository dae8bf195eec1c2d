package light

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// LightBuilderOption configures a light in NewLight.
type LightBuilderOption func(*lightImpl)

// WithPosition places the light in world space.
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithTarget aims a spot or directional light. Lights aim at the origin by default.
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = [3]float32{x, y, z}
	}
}

// WithColor sets the light color in linear RGB.
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithHexColor sets the light color from a packed sRGB value such as 0xffffff.
//
// Parameters:
//   - hex: the 0xRRGGBB color
//
// Returns:
//   - LightBuilderOption: the option
func WithHexColor(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.HexColor(hex)
	}
}

// WithIntensity sets the intensity multiplier. Negative values are ignored.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		if intensity >= 0 {
			l.intensity = intensity
		}
	}
}

// WithDistance sets the attenuation cutoff, 0 for none. The shadow camera's far
// plane uses it too. Negative values are ignored.
func WithDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		if distance >= 0 {
			l.distance = distance
		}
	}
}

// WithCone sets the spot cone.
//
// Parameters:
//   - angle: outer half-angle in radians, clamped to (0, pi/2]
//   - penumbra: share of the cone that fades out, clamped to [0, 1]
//
// Returns:
//   - LightBuilderOption: the option
func WithCone(angle, penumbra float32) LightBuilderOption {
	return func(l *lightImpl) {
		if angle > 0 {
			l.angle = min(angle, math32.Pi/2)
		}
		l.penumbra = common.Clamp(penumbra, 0, 1)
	}
}

// WithDecay sets the distance attenuation exponent. Negative values are ignored.
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		if decay >= 0 {
			l.decay = decay
		}
	}
}

// WithEnabled toggles the light. Disabled lights are skipped when uniforms are packed.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastShadow enables a shadow map for the light.
//
// Parameters:
//   - castShadow: true to render a shadow map
//   - bias: depth bias added before comparison, negative values push the test towards the light
//
// Returns:
//   - LightBuilderOption: the option
func WithCastShadow(castShadow bool, bias float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.castShadow = castShadow
		l.shadowBias = bias
	}
}
