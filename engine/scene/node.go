package scene

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNodeAttached is returned when a node that already has a parent is added elsewhere.
var ErrNodeAttached = errors.New("node already has a parent")

// ErrNodeCycle is returned when adding a node would make it its own ancestor.
var ErrNodeCycle = errors.New("node cannot be added below itself")

var nodeIDs atomic.Uint64

type node struct {
	mu *sync.Mutex

	id   uint64
	name string

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	matrix   *mgl32.Mat4 // overrides TRS when set

	mesh          model.Mesh
	castShadow    bool
	receiveShadow bool
	visible       bool

	parent   *node
	children []*node
}

// Node is an element of the scene graph. It carries a local transform, an optional mesh
// and shadow flags, and owns its children. Nodes are never removed once attached.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node name, usually taken from the model file.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName renames the node.
	SetName(name string)

	// Parent returns the parent node, or nil for a root.
	//
	// Returns:
	//   - Node: the parent or nil
	Parent() Node

	// Children returns a snapshot of the direct children.
	//
	// Returns:
	//   - []Node: the children in insertion order
	Children() []Node

	// Add attaches children to this node.
	//
	// Parameters:
	//   - children: the nodes to attach
	//
	// Returns:
	//   - error: ErrNodeAttached or ErrNodeCycle; children before the failing one stay attached
	Add(children ...Node) error

	// Position returns the local translation.
	Position() mgl32.Vec3

	// SetPosition sets the local translation and drops any explicit matrix.
	SetPosition(x, y, z float32)

	// Rotation returns the local rotation.
	Rotation() mgl32.Quat

	// SetRotation sets the local rotation and drops any explicit matrix.
	SetRotation(q mgl32.Quat)

	// Scale returns the local scale.
	Scale() mgl32.Vec3

	// SetScale sets the local scale and drops any explicit matrix.
	SetScale(x, y, z float32)

	// SetMatrix replaces the TRS transform with an explicit local matrix.
	//
	// Parameters:
	//   - m: the column-major local matrix
	SetMatrix(m mgl32.Mat4)

	// LocalMatrix returns the explicit matrix if set, otherwise T * R * S.
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the product of every ancestor's local matrix and this one.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	WorldMatrix() mgl32.Mat4

	// Mesh returns the attached mesh, or nil for a group node.
	Mesh() model.Mesh

	// SetMesh attaches a mesh to the node.
	SetMesh(mesh model.Mesh)

	// CastShadow reports whether the mesh is drawn into shadow maps.
	CastShadow() bool

	// ReceiveShadow reports whether the mesh samples shadow maps when lit.
	ReceiveShadow() bool

	// SetShadows sets both shadow flags.
	//
	// Parameters:
	//   - cast: draw into shadow maps
	//   - receive: sample shadow maps
	SetShadows(cast, receive bool)

	// Visible reports whether the node and its subtree are drawn.
	Visible() bool

	// SetVisible shows or hides the node and its subtree.
	SetVisible(visible bool)

	// Traverse walks the subtree depth-first, parents before children.
	// Returning false from fn skips the node's children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(n Node) bool)
}

var _ Node = &node{}

// NewNode creates a node with an identity transform, visible, without shadows.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the newly created node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		mu:       &sync.Mutex{},
		id:       nodeIDs.Add(1),
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		visible:  true,
	}
	for _, option := range options {
		option(n)
	}
	return n
}

// local computes the local matrix. Caller must hold the mutex.
func (n *node) local() mgl32.Mat4 {
	if n.matrix != nil {
		return *n.matrix
	}
	t := mgl32.Translate3D(n.position.X(), n.position.Y(), n.position.Z())
	s := mgl32.Scale3D(n.scale.X(), n.scale.Y(), n.scale.Z())
	return t.Mul4(n.rotation.Normalize().Mat4()).Mul4(s)
}

func (n *node) isAncestorOf(other *node) bool {
	for p := other; p != nil; p = p.parentNode() {
		if p == n {
			return true
		}
	}
	return false
}

func (n *node) parentNode() *node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Parent() Node {
	if p := n.parentNode(); p != nil {
		return p
	}
	return nil
}

func (n *node) Children() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) Add(children ...Node) error {
	for _, c := range children {
		child, ok := c.(*node)
		if !ok || child == nil {
			continue
		}
		if child.isAncestorOf(n) {
			return ErrNodeCycle
		}
		child.mu.Lock()
		if child.parent != nil {
			child.mu.Unlock()
			return ErrNodeAttached
		}
		child.parent = n
		child.mu.Unlock()

		n.mu.Lock()
		n.children = append(n.children, child)
		n.mu.Unlock()
	}
	return nil
}

func (n *node) Position() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *node) SetPosition(x, y, z float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = mgl32.Vec3{x, y, z}
	n.matrix = nil
}

func (n *node) Rotation() mgl32.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rotation
}

func (n *node) SetRotation(q mgl32.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = q
	n.matrix = nil
}

func (n *node) Scale() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *node) SetScale(x, y, z float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = mgl32.Vec3{x, y, z}
	n.matrix = nil
}

func (n *node) SetMatrix(m mgl32.Mat4) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matrix = &m
}

func (n *node) LocalMatrix() mgl32.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.local()
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	world := n.LocalMatrix()
	for p := n.parentNode(); p != nil; p = p.parentNode() {
		world = p.LocalMatrix().Mul4(world)
	}
	return world
}

func (n *node) Mesh() model.Mesh {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mesh
}

func (n *node) SetMesh(mesh model.Mesh) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mesh = mesh
}

func (n *node) CastShadow() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.castShadow
}

func (n *node) ReceiveShadow() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.receiveShadow
}

func (n *node) SetShadows(cast, receive bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.castShadow = cast
	n.receiveShadow = receive
}

func (n *node) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = visible
}

func (n *node) Traverse(fn func(n Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Traverse(fn)
	}
}
