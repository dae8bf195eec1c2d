package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightSize is the size in bytes of one marshaled GPULight.
const GPULightSize = 128

// GPULightSource is the WGSL definition of the Light struct.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct in the renderer's mesh shader.
// Size: 128 bytes (WGSL uniform aligned).
type GPULight struct {
	Position   [3]float32  // offset   0: world-space position
	Distance   float32     // offset  12: attenuation cutoff, 0 for none
	Direction  [3]float32  // offset  16: normalized aim direction
	ConeOuter  float32     // offset  28: cos(angle)
	Radiance   [3]float32  // offset  32: color * intensity
	ConeInner  float32     // offset  44: cos(angle * (1 - penumbra))
	CastShadow uint32      // offset  48: 1 = sample the shadow layer of this light
	ShadowBias float32     // offset  52: depth bias
	TexelSize  float32     // offset  56: 1 / shadow map size, for PCF offsets
	Decay      float32     // offset  60: distance attenuation exponent
	ViewProj   [16]float32 // offset  64: shadow camera view-projection
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the light into buf, which must hold at least GPULightSize bytes.
//
// Parameters:
//   - buf: the destination buffer
func (g *GPULight) MarshalTo(buf []byte) {
	putVec4(buf[0:], g.Position, g.Distance)
	putVec4(buf[16:], g.Direction, g.ConeOuter)
	putVec4(buf[32:], g.Radiance, g.ConeInner)
	binary.LittleEndian.PutUint32(buf[48:], g.CastShadow)
	binary.LittleEndian.PutUint32(buf[52:], math.Float32bits(g.ShadowBias))
	binary.LittleEndian.PutUint32(buf[56:], math.Float32bits(g.TexelSize))
	binary.LittleEndian.PutUint32(buf[60:], math.Float32bits(g.Decay))
	for i, v := range g.ViewProj {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

func putVec4(buf []byte, xyz [3]float32, w float32) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(xyz[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(xyz[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(xyz[2]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(w))
}

// ToGPULight converts a Light interface value into its GPU-aligned representation.
// Point lights get cone cosines that admit every direction.
//
// Parameters:
//   - l: the Light to convert
//   - shadowMapSize: edge length of the shadow map in texels
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light, shadowMapSize int) GPULight {
	radiance := l.Color()
	intensity := l.Intensity()
	for i := range radiance {
		radiance[i] *= intensity
	}

	g := GPULight{
		Position:  l.Position(),
		Distance:  l.Distance(),
		Direction: l.Direction(),
		Radiance:  radiance,
		Decay:     l.Decay(),
	}
	if l.Type() == LightTypeSpot {
		g.ConeOuter, g.ConeInner = l.ConeCosines()
	} else {
		g.ConeOuter, g.ConeInner = -2, -1
	}
	if l.CastShadow() {
		g.CastShadow = 1
		g.ShadowBias = l.ShadowBias()
		g.ViewProj = l.ShadowViewProjection()
		if shadowMapSize > 0 {
			g.TexelSize = 1 / float32(shadowMapSize)
		}
	}
	return g
}

// MarshalLights writes up to MaxLights enabled lights into buf, in order, and returns how
// many were written. buf must hold MaxLights*GPULightSize bytes; unused slots are zeroed.
//
// Parameters:
//   - buf: the destination buffer
//   - lights: the scene lights
//   - shadowMapSize: edge length of the shadow map in texels
//
// Returns:
//   - int: the number of lights written
func MarshalLights(buf []byte, lights []Light, shadowMapSize int) int {
	clear(buf[:MaxLights*GPULightSize])
	written := 0
	for _, l := range lights {
		if written >= MaxLights {
			break
		}
		if !l.Enabled() {
			continue
		}
		g := ToGPULight(l, shadowMapSize)
		g.MarshalTo(buf[written*GPULightSize:])
		written++
	}
	return written
}
