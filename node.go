package assimp

import (
	"iter"
	"runtime"

	"github.com/wippyai/assimp-go/ffi"
)

// Node is a view of one node of the scene hierarchy.
//
// Views are small values: copying one copies a pointer pair. A view keeps
// its scene alive on its own, independently of the handle it came from.
type Node struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Node]
}

func newNode(a *anchor, p *ffi.Node) (Node, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Node{}, false
	}
	return Node{a: a, ptr: ptr}, true
}

func (n Node) raw() *ffi.Node {
	return n.ptr.Get()
}

// Raw returns the foreign node. The pointer is valid while n is reachable.
func (n Node) Raw() *ffi.Node {
	return n.raw()
}

// Name returns the node name.
func (n Node) Name() string {
	defer runtime.KeepAlive(n.a)
	return n.raw().Name.String()
}

// Transformation returns the transform relative to the parent node.
func (n Node) Transformation() ffi.Matrix4x4 {
	defer runtime.KeepAlive(n.a)
	return n.raw().Transformation
}

// Parent returns the parent node, or false for the root.
func (n Node) Parent() (Node, bool) {
	return newNode(n.a, n.raw().Parent)
}

// NumChildren returns the number of child nodes.
func (n Node) NumChildren() int {
	defer runtime.KeepAlive(n.a)
	return int(n.raw().NumChildren)
}

// Child returns child i, or false when i is out of range.
func (n Node) Child(i int) (Node, bool) {
	r := n.raw()
	return newNode(n.a, ffi.At(r.Children, r.NumChildren, i))
}

// Children iterates over the direct children.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := range n.NumChildren() {
			c, ok := n.Child(i)
			if ok && !yield(c) {
				return
			}
		}
	}
}

// NumMeshes returns the number of meshes referenced by this node.
func (n Node) NumMeshes() int {
	defer runtime.KeepAlive(n.a)
	return int(n.raw().NumMeshes)
}

// MeshIndices returns the scene mesh indices of this node without copying.
// The slice is valid only while n or an open handle of its scene is reachable.
func (n Node) MeshIndices() []uint32 {
	r := n.raw()
	return ffi.Slice(r.Meshes, r.NumMeshes)
}

// Mesh returns the i-th mesh referenced by this node, or false when i or
// the stored scene index is out of range.
func (n Node) Mesh(i int) (Mesh, bool) {
	idx := n.MeshIndices()
	if i < 0 || i >= len(idx) {
		return Mesh{}, false
	}
	return meshAt(n.a, int(idx[i]))
}

// Meshes iterates over the meshes referenced by this node.
func (n Node) Meshes() iter.Seq[Mesh] {
	return func(yield func(Mesh) bool) {
		for i := range n.NumMeshes() {
			m, ok := n.Mesh(i)
			if ok && !yield(m) {
				return
			}
		}
	}
}

// FindNode searches this node and its descendants depth-first.
func (n Node) FindNode(name string) (Node, bool) {
	var found Node
	var ok bool
	n.walk(0, func(c Node, _ int) bool {
		if c.Name() == name {
			found, ok = c, true
			return false
		}
		return true
	})
	return found, ok
}

// GlobalTransformation returns the transform relative to the root,
// combining every ancestor's transform.
func (n Node) GlobalTransformation() ffi.Matrix4x4 {
	m := n.Transformation()
	for p, ok := n.Parent(); ok; p, ok = p.Parent() {
		m = mulMatrix(p.Transformation(), m)
	}
	return m
}

// walk visits n and its descendants. It returns false once fn stopped.
func (n Node) walk(depth int, fn func(Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for c := range n.Children() {
		if !c.walk(depth+1, fn) {
			return false
		}
	}
	return true
}

func mulMatrix(a, b ffi.Matrix4x4) ffi.Matrix4x4 {
	ra := [4][4]float32{
		{a.A1, a.A2, a.A3, a.A4},
		{a.B1, a.B2, a.B3, a.B4},
		{a.C1, a.C2, a.C3, a.C4},
		{a.D1, a.D2, a.D3, a.D4},
	}
	rb := [4][4]float32{
		{b.A1, b.A2, b.A3, b.A4},
		{b.B1, b.B2, b.B3, b.B4},
		{b.C1, b.C2, b.C3, b.C4},
		{b.D1, b.D2, b.D3, b.D4},
	}
	var r [4][4]float32
	for i := range 4 {
		for j := range 4 {
			for k := range 4 {
				r[i][j] += ra[i][k] * rb[k][j]
			}
		}
	}
	return ffi.Matrix4x4{
		A1: r[0][0], A2: r[0][1], A3: r[0][2], A4: r[0][3],
		B1: r[1][0], B2: r[1][1], B3: r[1][2], B4: r[1][3],
		C1: r[2][0], C2: r[2][1], C3: r[2][2], C4: r[2][3],
		D1: r[3][0], D2: r[3][1], D3: r[3][2], D4: r[3][3],
	}
}
