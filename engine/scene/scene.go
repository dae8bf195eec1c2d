package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshInstance is a visible mesh node resolved to world space for one frame.
type MeshInstance struct {
	Node          Node
	Mesh          model.Mesh
	World         mgl32.Mat4
	CastShadow    bool
	ReceiveShadow bool
}

// WorldBounds returns the mesh bounds transformed by the instance's world matrix.
//
// Returns:
//   - model.Bounds: the world-space bounds
func (mi MeshInstance) WorldBounds() model.Bounds {
	b := mi.Mesh.Bounds()
	if b.Empty() {
		return b
	}
	lo, hi := common.TransformAABB(mi.World[:], b.Min, b.Max)
	return model.Bounds{Min: lo, Max: hi}
}

type scene struct {
	mu *sync.Mutex

	name   string
	roots  []Node
	lights []light.Light
}

// Scene is the set of root nodes and lights drawn by the renderer.
// Nodes and lights are only ever added.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene's name
	Name() string

	// Add attaches root nodes to the scene.
	//
	// Parameters:
	//   - nodes: the nodes to add; nodes that already have a parent are rejected
	//
	// Returns:
	//   - error: ErrNodeAttached if a node belongs to another subtree
	Add(nodes ...Node) error

	// Nodes returns a snapshot of the root nodes in insertion order.
	//
	// Returns:
	//   - []Node: the roots
	Nodes() []Node

	// AddLight adds a light to the scene.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns a snapshot of the scene lights in insertion order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Traverse walks every root subtree depth-first.
	// Returning false from fn skips the node's children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(n Node) bool)

	// MeshNodes collects the visible mesh nodes with their world matrices.
	// Hidden nodes hide their subtree.
	//
	// Returns:
	//   - []MeshInstance: the drawable meshes in traversal order
	MeshNodes() []MeshInstance

	// Bounds returns the world-space bounds of every visible mesh.
	//
	// Returns:
	//   - model.Bounds: the union of mesh bounds, Empty() if there are none
	Bounds() model.Bounds
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu: &sync.Mutex{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) Add(nodes ...Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Parent() != nil {
			return ErrNodeAttached
		}
		s.mu.Lock()
		s.roots = append(s.roots, n)
		s.mu.Unlock()
	}
	return nil
}

func (s *scene) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Node(nil), s.roots...)
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) Traverse(fn func(n Node) bool) {
	for _, root := range s.Nodes() {
		root.Traverse(fn)
	}
}

func (s *scene) MeshNodes() []MeshInstance {
	var out []MeshInstance
	var walk func(n Node, parent mgl32.Mat4)
	walk = func(n Node, parent mgl32.Mat4) {
		if !n.Visible() {
			return
		}
		world := parent.Mul4(n.LocalMatrix())
		if m := n.Mesh(); m != nil {
			out = append(out, MeshInstance{
				Node:          n,
				Mesh:          m,
				World:         world,
				CastShadow:    n.CastShadow(),
				ReceiveShadow: n.ReceiveShadow(),
			})
		}
		for _, c := range n.Children() {
			walk(c, world)
		}
	}
	for _, root := range s.Nodes() {
		walk(root, mgl32.Ident4())
	}
	return out
}

func (s *scene) Bounds() model.Bounds {
	bounds := model.ComputeBounds(nil)
	first := true
	for _, mi := range s.MeshNodes() {
		b := mi.WorldBounds()
		if b.Empty() {
			continue
		}
		if first {
			bounds = b
			first = false
			continue
		}
		for k := range 3 {
			bounds.Min[k] = min(bounds.Min[k], b.Min[k])
			bounds.Max[k] = max(bounds.Max[k], b.Max[k])
		}
	}
	return bounds
}
