package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube() model.Mesh {
	return model.NewMesh(model.WithVertices([]model.GPUVertex{
		{Position: [3]float32{-0.5, -0.5, -0.5}},
		{Position: [3]float32{0.5, 0.5, 0.5}},
		{Position: [3]float32{0.5, -0.5, 0.5}},
	}))
}

func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d", i)
	}
}

func TestNodeWorldMatrixComposesParents(t *testing.T) {
	child := NewNode(WithPosition(1, 0, 0))
	root := NewNode(
		WithPosition(0, 2, -0.5),
		WithRotation(mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 1, 0})),
		WithChildren(child),
	)

	assert.Equal(t, root, child.Parent())
	p := child.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assertVec3InDelta(t, mgl32.Vec3{0, 2, -1.5}, p)
}

func TestNodeMatrixOverridesTRS(t *testing.T) {
	n := NewNode(WithPosition(5, 5, 5), WithMatrix(mgl32.Translate3D(1, 2, 3)))
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), n.LocalMatrix())

	n.SetPosition(0, 1, 0)
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), n.LocalMatrix(), "TRS setters drop the matrix")
}

func TestNodeAddRejectsReparentAndCycles(t *testing.T) {
	a := NewNode(WithName("a"))
	b := NewNode(WithName("b"))
	c := NewNode(WithName("c"))

	require.NoError(t, a.Add(b))
	require.NoError(t, b.Add(c))

	assert.ErrorIs(t, a.Add(c), ErrNodeAttached)
	assert.ErrorIs(t, c.Add(a), ErrNodeCycle)
	assert.ErrorIs(t, a.Add(a), ErrNodeCycle)
	assert.Len(t, a.Children(), 1)
}

func TestNodeTraverseSkipsSubtree(t *testing.T) {
	leaf := NewNode(WithName("leaf"))
	hidden := NewNode(WithName("hidden"), WithChildren(leaf))
	root := NewNode(WithName("root"), WithChildren(hidden, NewNode(WithName("other"))))

	var names []string
	root.Traverse(func(n Node) bool {
		names = append(names, n.Name())
		return n.Name() != "hidden"
	})
	assert.Equal(t, []string{"root", "hidden", "other"}, names)
}

func TestSceneMeshNodes(t *testing.T) {
	s := NewScene(WithSceneName("viewer"))
	mesh := unitCube()

	visible := NewNode(WithName("visible"), WithMesh(mesh), WithPosition(0, 1, 0), WithShadows(true, true))
	hiddenChild := NewNode(WithMesh(mesh))
	hidden := NewNode(WithChildren(hiddenChild))
	hidden.SetVisible(false)
	group := NewNode(WithPosition(0, 2, 0), WithChildren(visible))
	require.NoError(t, s.Add(group, hidden))

	instances := s.MeshNodes()
	require.Len(t, instances, 1)
	assert.Equal(t, visible, instances[0].Node)
	assert.True(t, instances[0].CastShadow)
	assert.True(t, instances[0].ReceiveShadow)
	assert.Equal(t, mgl32.Translate3D(0, 3, 0), instances[0].World)

	b := s.Bounds()
	assert.Equal(t, [3]float32{-0.5, 2.5, -0.5}, b.Min)
	assert.Equal(t, [3]float32{0.5, 3.5, 0.5}, b.Max)
}

func TestSceneAddRejectsAttachedNode(t *testing.T) {
	s := NewScene()
	child := NewNode()
	parent := NewNode(WithChildren(child))
	require.Equal(t, parent, child.Parent())
	assert.ErrorIs(t, s.Add(child), ErrNodeAttached)
	assert.Empty(t, s.Nodes())
	assert.True(t, s.Bounds().Empty())
}

func TestSceneLights(t *testing.T) {
	first := light.NewLight(light.LightTypeSpot)
	s := NewScene(WithLights(first))
	second := light.NewLight(light.LightTypeSpot)
	s.AddLight(second)
	s.AddLight(nil)

	assert.Equal(t, []light.Light{first, second}, s.Lights())
}

func TestNewGround(t *testing.T) {
	g := NewGround()

	assert.False(t, g.CastShadow())
	assert.True(t, g.ReceiveShadow())

	mesh := g.Mesh()
	require.NotNil(t, mesh)
	assert.Len(t, mesh.Vertices(), 33*33)
	assert.Equal(t, 32*32*2, mesh.TriangleCount())

	mat := mesh.Material()
	assert.True(t, mat.DoubleSided)
	assert.Equal(t, float32(0), mat.Metallic)
	assert.Equal(t, float32(1), mat.Roughness)
	grey := common.HexColor(GroundColor)
	assert.Equal(t, [4]float32{grey[0], grey[1], grey[2], 1}, mat.BaseColorFactor)

	world := g.WorldMatrix()
	first := mesh.Vertices()[0]
	assert.Equal(t, [2]float32{0, 1}, first.TexCoord)
	p := world.Mul4x1(mgl32.Vec3(first.Position).Vec4(1)).Vec3()
	assertVec3InDelta(t, mgl32.Vec3{-50, 0, -50}, p)

	n := world.Mul4x1(mgl32.Vec3(first.Normal).Vec4(0)).Vec3()
	assertVec3InDelta(t, mgl32.Vec3{0, 1, 0}, n)
}
