package common

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp restricts v to the closed range [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// SRGBToLinear converts a single sRGB-encoded channel in [0, 1] to linear light.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB converts a single linear channel in [0, 1] to sRGB encoding.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 1/2.4) - 0.055
}

// HexColor converts a 0xRRGGBB value into linear RGB components.
// Hex colors are authored in sRGB, the renderer lights in linear space.
//
// Parameters:
//   - hex: the packed sRGB color
//
// Returns:
//   - [3]float32: linear RGB in [0, 1]
func HexColor(hex uint32) [3]float32 {
	r := float32((hex>>16)&0xff) / 255
	g := float32((hex>>8)&0xff) / 255
	b := float32(hex&0xff) / 255
	return [3]float32{SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b)}
}

// ParseHexColor parses "#rrggbb", "rrggbb" or "0xrrggbb" into a packed color.
//
// Parameters:
//   - s: the color string
//
// Returns:
//   - uint32: the packed 0xRRGGBB value
//   - error: error if the string is not a 6-digit hex color
func ParseHexColor(s string) (uint32, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#"), "0x")
	if len(trimmed) != 6 {
		return 0, fmt.Errorf("color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}
