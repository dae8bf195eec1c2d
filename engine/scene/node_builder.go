package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(*node)

// WithName sets the node name.
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithPosition sets the local translation.
//
// Parameters:
//   - x, y, z: the translation
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the local rotation.
//
// Parameters:
//   - q: the rotation quaternion
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *node) {
		n.rotation = q
	}
}

// WithScale sets the local scale.
//
// Parameters:
//   - x, y, z: the scale factors
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithScale(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.scale = mgl32.Vec3{x, y, z}
	}
}

// WithMatrix sets an explicit local matrix in place of TRS.
//
// Parameters:
//   - m: the column-major local matrix
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMatrix(m mgl32.Mat4) NodeBuilderOption {
	return func(n *node) {
		n.matrix = &m
	}
}

// WithMesh attaches a mesh.
func WithMesh(mesh model.Mesh) NodeBuilderOption {
	return func(n *node) {
		n.mesh = mesh
	}
}

// WithShadows sets the shadow flags.
//
// Parameters:
//   - cast: draw into shadow maps
//   - receive: sample shadow maps
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithShadows(cast, receive bool) NodeBuilderOption {
	return func(n *node) {
		n.castShadow = cast
		n.receiveShadow = receive
	}
}

// WithChildren attaches children at construction. Children that already have a parent are skipped.
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			child, ok := c.(*node)
			if !ok || child == nil || child.parentNode() != nil {
				continue
			}
			child.mu.Lock()
			child.parent = n
			child.mu.Unlock()
			n.children = append(n.children, child)
		}
	}
}
