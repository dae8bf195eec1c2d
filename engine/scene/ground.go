package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// GroundSize is the edge length of the ground plane in world units.
	GroundSize = 100

	// GroundSegments is the number of grid cells along each edge of the ground plane.
	GroundSegments = 32

	// GroundColor is the sRGB color of the ground plane.
	GroundColor = 0x555555
)

// NewPlaneMesh builds a width x height grid in the XY plane facing +Z, centred on the origin.
// Rows run from +Y to -Y; UV v is 1 on the top row.
//
// Parameters:
//   - width, height: plane size
//   - widthSegments, heightSegments: grid cells per edge, at least 1
//   - material: the surface material
//
// Returns:
//   - model.Mesh: the plane mesh
func NewPlaneMesh(width, height float32, widthSegments, heightSegments int, material *model.Material) model.Mesh {
	gridX, gridY := max(widthSegments, 1), max(heightSegments, 1)
	segW, segH := width/float32(gridX), height/float32(gridY)

	vertices := make([]model.GPUVertex, 0, (gridX+1)*(gridY+1))
	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - width/2
			vertices = append(vertices, model.GPUVertex{
				Position: [3]float32{x, -y, 0},
				Normal:   [3]float32{0, 0, 1},
				TexCoord: [2]float32{float32(ix) / float32(gridX), 1 - float32(iy)/float32(gridY)},
			})
		}
	}

	row := uint32(gridX + 1)
	indices := make([]uint32, 0, gridX*gridY*6)
	for iy := uint32(0); iy < uint32(gridY); iy++ {
		for ix := uint32(0); ix < uint32(gridX); ix++ {
			a := ix + row*iy
			b := ix + row*(iy+1)
			c := ix + 1 + row*(iy+1)
			d := ix + 1 + row*iy
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return model.NewMesh(
		model.WithName("plane"),
		model.WithVertices(vertices),
		model.WithIndices(indices),
		model.WithMaterial(material),
	)
}

// NewGround creates the floor the model stands on: a 100 x 100 plane with 32 x 32 cells,
// laid flat by rotating -pi/2 about X, double sided, grey 0x555555, receiving but not
// casting shadows.
//
// Returns:
//   - Node: the ground node
func NewGround() Node {
	c := common.HexColor(GroundColor)
	material := &model.Material{
		Name:            "ground",
		BaseColorFactor: [4]float32{c[0], c[1], c[2], 1},
		Metallic:        0,
		Roughness:       1,
		DoubleSided:     true,
		AlphaMode:       model.AlphaModeOpaque,
		AlphaCutoff:     0.5,
	}
	return NewNode(
		WithName("ground"),
		WithMesh(NewPlaneMesh(GroundSize, GroundSize, GroundSegments, GroundSegments, material)),
		WithRotation(mgl32.QuatRotate(-math32.Pi/2, mgl32.Vec3{1, 0, 0})),
		WithShadows(false, true),
	)
}
