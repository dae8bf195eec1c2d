package common

import "github.com/chewxy/math32"

// Plane represents a plane in 3D space: dot(Normal, p) + Distance = 0.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six clip planes of a camera, oriented so the positive
// half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix
// using the Gribb/Hartmann method adapted to WebGPU clip space, where depth is in [0, w]
// so the near plane is row 2 alone rather than row 3 + row 2.
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	// row(i) returns (m[i][0], m[i][1], m[i][2], m[i][3]) of a column-major matrix.
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6][4]float32{}
	for k := 0; k < 4; k++ {
		combos[FrustumLeft][k] = r3[k] + r0[k]
		combos[FrustumRight][k] = r3[k] - r0[k]
		combos[FrustumBottom][k] = r3[k] + r1[k]
		combos[FrustumTop][k] = r3[k] - r1[k]
		combos[FrustumNear][k] = r2[k]
		combos[FrustumFar][k] = r3[k] - r2[k]
	}

	var f Frustum
	for i, c := range combos {
		f.Planes[i] = Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
		f.normalizePlane(i)
	}
	return f
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := Length3(p.Normal)
	if length > 0 {
		p.Normal = Scale3(p.Normal, 1/length)
		p.Distance /= length
	}
}

// IntersectsAABB reports whether an axis-aligned box is at least partially inside the frustum.
// Conservative: boxes near frustum corners may report true while invisible.
//
// Parameters:
//   - minB, maxB: the box corners in world space
//
// Returns:
//   - bool: false only if the box is fully outside one plane
func (f *Frustum) IntersectsAABB(minB, maxB [3]float32) bool {
	for _, p := range f.Planes {
		// the box corner furthest along the plane normal
		var v [3]float32
		for k := 0; k < 3; k++ {
			if p.Normal[k] >= 0 {
				v[k] = maxB[k]
			} else {
				v[k] = minB[k]
			}
		}
		if Dot3(p.Normal, v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// TransformAABB returns the world-space box enclosing a local box transformed by m.
//
// Parameters:
//   - m: column-major model matrix
//   - minB, maxB: the local box corners
//
// Returns:
//   - [3]float32, [3]float32: the transformed box corners
func TransformAABB(m []float32, minB, maxB [3]float32) ([3]float32, [3]float32) {
	outMin := [3]float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	outMax := [3]float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for i := 0; i < 8; i++ {
		corner := [3]float32{minB[0], minB[1], minB[2]}
		if i&1 != 0 {
			corner[0] = maxB[0]
		}
		if i&2 != 0 {
			corner[1] = maxB[1]
		}
		if i&4 != 0 {
			corner[2] = maxB[2]
		}
		p := TransformPoint(m, corner)
		for k := 0; k < 3; k++ {
			outMin[k] = min(outMin[k], p[k])
			outMax[k] = max(outMax[k], p[k])
		}
	}
	return outMin, outMax
}
