package tween

import "github.com/fogleman/ease"

// Easing maps linear progress k in [0, 1] to eased progress.
// Every easing in this package maps 0 to 0 and 1 to 1.
type Easing func(k float32) float32

// fromEase adapts a float64 curve from the ease package.
func fromEase(f func(t float64) float64) Easing {
	return func(k float32) float32 {
		return float32(f(float64(k)))
	}
}

var (
	// Linear applies no easing.
	Linear Easing = fromEase(ease.Linear)

	// QuadraticIn accelerates from zero velocity.
	QuadraticIn Easing = fromEase(ease.InQuad)

	// QuadraticOut decelerates to zero velocity: k * (2 - k).
	QuadraticOut Easing = fromEase(ease.OutQuad)

	// QuadraticInOut accelerates until halfway, then decelerates.
	QuadraticInOut Easing = fromEase(ease.InOutQuad)

	// CubicOut decelerates more sharply than QuadraticOut.
	CubicOut Easing = fromEase(ease.OutCubic)

	// CubicInOut is the cubic counterpart of QuadraticInOut.
	CubicInOut Easing = fromEase(ease.InOutCubic)

	// SineInOut follows half a cosine wave.
	SineInOut Easing = fromEase(ease.InOutSine)
)

// EasingByName resolves a configuration name to an easing function.
//
// Parameters:
//   - name: one of "linear", "quadratic-in", "quadratic-out", "quadratic-in-out",
//     "cubic-out", "cubic-in-out", "sine-in-out"
//
// Returns:
//   - Easing: the easing function
//   - bool: false if the name is unknown
func EasingByName(name string) (Easing, bool) {
	e, ok := easingsByName[name]
	return e, ok
}

var easingsByName = map[string]Easing{
	"linear":           Linear,
	"quadratic-in":     QuadraticIn,
	"quadratic-out":    QuadraticOut,
	"quadratic-in-out": QuadraticInOut,
	"cubic-out":        CubicOut,
	"cubic-in-out":     CubicInOut,
	"sine-in-out":      SineInOut,
}
