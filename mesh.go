package assimp

import (
	"iter"
	"runtime"

	"github.com/wippyai/assimp-go/ffi"
)

// Mesh is a view of one mesh. Bulk accessors return slices that alias
// foreign memory; they never copy.
type Mesh struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Mesh]
}

func newMesh(a *anchor, p *ffi.Mesh) (Mesh, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Mesh{}, false
	}
	return Mesh{a: a, ptr: ptr}, true
}

func meshAt(a *anchor, i int) (Mesh, bool) {
	s := a.scene()
	return newMesh(a, ffi.At(s.Meshes, s.NumMeshes, i))
}

func (m Mesh) raw() *ffi.Mesh {
	return m.ptr.Get()
}

// Raw returns the foreign mesh. The pointer is valid while m is reachable.
func (m Mesh) Raw() *ffi.Mesh {
	return m.raw()
}

// Name returns the mesh name.
func (m Mesh) Name() string {
	defer runtime.KeepAlive(m.a)
	return m.raw().Name.String()
}

// PrimitiveTypes returns the primitive kinds used by the faces.
func (m Mesh) PrimitiveTypes() ffi.PrimitiveType {
	defer runtime.KeepAlive(m.a)
	return m.raw().PrimitiveTypes
}

// NumVertices returns the number of vertices.
func (m Mesh) NumVertices() int {
	defer runtime.KeepAlive(m.a)
	return int(m.raw().NumVertices)
}

// NumFaces returns the number of faces.
func (m Mesh) NumFaces() int {
	defer runtime.KeepAlive(m.a)
	return int(m.raw().NumFaces)
}

// Vertices returns the vertex positions.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) Vertices() []ffi.Vector3 {
	r := m.raw()
	return ffi.Slice(r.Vertices, r.NumVertices)
}

// Normals returns the vertex normals, or nil when the mesh has none.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) Normals() []ffi.Vector3 {
	r := m.raw()
	return ffi.Slice(r.Normals, r.NumVertices)
}

// Tangents returns the vertex tangents, or nil.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) Tangents() []ffi.Vector3 {
	r := m.raw()
	return ffi.Slice(r.Tangents, r.NumVertices)
}

// Bitangents returns the vertex bitangents, or nil.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) Bitangents() []ffi.Vector3 {
	r := m.raw()
	return ffi.Slice(r.Bitangents, r.NumVertices)
}

// HasNormals reports whether the mesh carries normals.
func (m Mesh) HasNormals() bool {
	defer runtime.KeepAlive(m.a)
	return m.raw().Normals != nil && m.raw().NumVertices > 0
}

// TextureCoords returns UV channel ch, or nil when the channel is absent.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) TextureCoords(ch int) []ffi.Vector3 {
	if ch < 0 || ch >= ffi.MaxTextureCoords {
		return nil
	}
	r := m.raw()
	return ffi.Slice(r.TextureCoords[ch], r.NumVertices)
}

// NumUVComponents returns the number of meaningful components of UV
// channel ch (2 for regular UVs, 3 for cube maps).
func (m Mesh) NumUVComponents(ch int) int {
	if ch < 0 || ch >= ffi.MaxTextureCoords {
		return 0
	}
	defer runtime.KeepAlive(m.a)
	return int(m.raw().NumUVComponents[ch])
}

// NumUVChannels returns the number of leading UV channels present.
func (m Mesh) NumUVChannels() int {
	defer runtime.KeepAlive(m.a)
	r := m.raw()
	n := 0
	for n < ffi.MaxTextureCoords && r.TextureCoords[n] != nil {
		n++
	}
	return n
}

// Colors returns vertex color set set, or nil when the set is absent.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) Colors(set int) []ffi.Color4 {
	if set < 0 || set >= ffi.MaxColorSets {
		return nil
	}
	r := m.raw()
	return ffi.Slice(r.Colors[set], r.NumVertices)
}

// NumColorSets returns the number of leading vertex color sets present.
func (m Mesh) NumColorSets() int {
	defer runtime.KeepAlive(m.a)
	r := m.raw()
	n := 0
	for n < ffi.MaxColorSets && r.Colors[n] != nil {
		n++
	}
	return n
}

// RawFaces returns the face records without copying.
// The slice is valid only while m or an open handle of its scene is reachable.
func (m Mesh) RawFaces() []ffi.Face {
	r := m.raw()
	return ffi.Slice(r.Faces, r.NumFaces)
}

// Face returns face i, or false when i is out of range.
func (m Mesh) Face(i int) (Face, bool) {
	faces := m.RawFaces()
	if i < 0 || i >= len(faces) {
		return Face{}, false
	}
	return newFace(m.a, &faces[i])
}

// Faces iterates over all faces.
func (m Mesh) Faces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for i := range m.NumFaces() {
			f, ok := m.Face(i)
			if ok && !yield(f) {
				return
			}
		}
	}
}

// AppendIndices appends the indices of every face to dst.
func (m Mesh) AppendIndices(dst []uint32) []uint32 {
	defer runtime.KeepAlive(m.a)
	for _, f := range m.RawFaces() {
		dst = append(dst, ffi.Slice(f.Indices, f.NumIndices)...)
	}
	return dst
}

// MaterialIndex returns the index of the mesh material in the scene.
func (m Mesh) MaterialIndex() int {
	defer runtime.KeepAlive(m.a)
	return int(m.raw().MaterialIndex)
}

// Material returns the mesh material, or false when the index is out of
// range.
func (m Mesh) Material() (Material, bool) {
	return materialAt(m.a, m.MaterialIndex())
}

// AABB returns the bounding box. It is zero unless the scene was processed
// with GenBoundingBoxes.
func (m Mesh) AABB() ffi.AABB {
	defer runtime.KeepAlive(m.a)
	return m.raw().AABB
}

// NumBones returns the number of bones.
func (m Mesh) NumBones() int {
	defer runtime.KeepAlive(m.a)
	return int(m.raw().NumBones)
}

// Bone returns bone i, or false when i is out of range.
func (m Mesh) Bone(i int) (Bone, bool) {
	r := m.raw()
	return newBone(m.a, ffi.At(r.Bones, r.NumBones, i))
}

// Bones iterates over all bones.
func (m Mesh) Bones() iter.Seq[Bone] {
	return func(yield func(Bone) bool) {
		for i := range m.NumBones() {
			b, ok := m.Bone(i)
			if ok && !yield(b) {
				return
			}
		}
	}
}

// Face is a view of one mesh face.
type Face struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Face]
}

func newFace(a *anchor, p *ffi.Face) (Face, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Face{}, false
	}
	return Face{a: a, ptr: ptr}, true
}

// NumIndices returns the number of vertex indices.
func (f Face) NumIndices() int {
	defer runtime.KeepAlive(f.a)
	return int(f.ptr.Get().NumIndices)
}

// Indices returns the vertex indices without copying.
// The slice is valid only while f or an open handle of its scene is reachable.
func (f Face) Indices() []uint32 {
	r := f.ptr.Get()
	return ffi.Slice(r.Indices, r.NumIndices)
}

// Index returns vertex index i, or false when i is out of range.
func (f Face) Index(i int) (uint32, bool) {
	defer runtime.KeepAlive(f.a)
	idx := f.Indices()
	if i < 0 || i >= len(idx) {
		return 0, false
	}
	return idx[i], true
}

// Bone is a view of one bone of a skinned mesh.
type Bone struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Bone]
}

func newBone(a *anchor, p *ffi.Bone) (Bone, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Bone{}, false
	}
	return Bone{a: a, ptr: ptr}, true
}

// Name returns the bone name, which matches the name of the node it drives.
func (b Bone) Name() string {
	defer runtime.KeepAlive(b.a)
	return b.ptr.Get().Name.String()
}

// NumWeights returns the number of vertex weights.
func (b Bone) NumWeights() int {
	defer runtime.KeepAlive(b.a)
	return int(b.ptr.Get().NumWeights)
}

// Weights returns the vertex weights without copying.
// The slice is valid only while b or an open handle of its scene is reachable.
func (b Bone) Weights() []ffi.VertexWeight {
	r := b.ptr.Get()
	return ffi.Slice(r.Weights, r.NumWeights)
}

// Weight returns weight i, or false when i is out of range.
func (b Bone) Weight(i int) (ffi.VertexWeight, bool) {
	defer runtime.KeepAlive(b.a)
	w := b.Weights()
	if i < 0 || i >= len(w) {
		return ffi.VertexWeight{}, false
	}
	return w[i], true
}

// OffsetMatrix returns the mesh-space to bone-space transform.
func (b Bone) OffsetMatrix() ffi.Matrix4x4 {
	defer runtime.KeepAlive(b.a)
	return b.ptr.Get().OffsetMatrix
}

// Node returns the node driven by this bone. The importer link is used
// when present; otherwise the hierarchy is searched by name.
func (b Bone) Node() (Node, bool) {
	if n, ok := newNode(b.a, b.ptr.Get().Node); ok {
		return n, true
	}
	root, ok := newNode(b.a, b.a.scene().RootNode)
	if !ok {
		return Node{}, false
	}
	return root.FindNode(b.Name())
}

// Armature returns the root node of the skeleton, when the importer
// populated it.
func (b Bone) Armature() (Node, bool) {
	return newNode(b.a, b.ptr.Get().Armature)
}
