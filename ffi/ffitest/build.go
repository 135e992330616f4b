package ffitest

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/assimp-go/ffi"
)

// SceneDesc describes a scene for Build and AddFile.
type SceneDesc struct {
	Name       string
	Flags      ffi.SceneFlags
	Root       *NodeDesc
	Meshes     []MeshDesc
	Materials  []MaterialDesc
	Animations []AnimationDesc
	Textures   []TextureDesc
	Cameras    []CameraDesc
	Lights     []LightDesc
}

// NodeDesc describes a node. A zero Transform becomes the identity.
type NodeDesc struct {
	Name      string
	Transform ffi.Matrix4x4
	Meshes    []uint32
	Children  []*NodeDesc
}

// MeshDesc describes a mesh. Faces hold vertex indices; a face with three
// indices is a triangle.
type MeshDesc struct {
	Name      string
	Vertices  []ffi.Vector3
	Normals   []ffi.Vector3
	TexCoords []ffi.Vector3
	Colors    []ffi.Color4
	Faces     [][]uint32
	Material  uint32
	Bones     []BoneDesc
}

// BoneDesc describes a bone. Node names the node the bone drives.
type BoneDesc struct {
	Name    string
	Node    string
	Weights []ffi.VertexWeight
	Offset  ffi.Matrix4x4
}

// MaterialDesc describes a material. Raw properties are appended verbatim
// after the typed ones.
type MaterialDesc struct {
	Name      string
	Diffuse   *ffi.Color4
	Shininess *float32
	TwoSided  *int32
	Textures  map[ffi.TextureType][]string
	Raw       []RawProperty
}

// RawProperty is a material property with caller-chosen payload bytes.
type RawProperty struct {
	Key      string
	Semantic uint32
	Index    uint32
	Type     ffi.PropertyTypeInfo
	Data     []byte
}

// AnimationDesc describes an animation.
type AnimationDesc struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []ChannelDesc
}

// ChannelDesc describes the keys of one animated node.
type ChannelDesc struct {
	Node      string
	Positions []ffi.VectorKey
	Rotations []ffi.QuatKey
	Scalings  []ffi.VectorKey
}

// TextureDesc describes an embedded texture. Compressed wins over Texels.
type TextureDesc struct {
	Filename   string
	FormatHint string
	Compressed []byte
	Width      uint32
	Height     uint32
	Texels     []ffi.Texel
}

// CameraDesc describes a camera.
type CameraDesc struct {
	Name          string
	Position      ffi.Vector3
	Up            ffi.Vector3
	LookAt        ffi.Vector3
	HorizontalFOV float32
	Near, Far     float32
	Aspect        float32
}

// LightDesc describes a light.
type LightDesc struct {
	Name      string
	Type      ffi.LightSourceType
	Position  ffi.Vector3
	Direction ffi.Vector3
	Diffuse   ffi.Color3
	InnerCone float32
	OuterCone float32
}

// Build lays desc out in Go memory using the foreign struct layout.
func Build(desc *SceneDesc) *ffi.Scene {
	s := &ffi.Scene{
		Flags: desc.Flags,
		Name:  ffi.MakeString(desc.Name),
	}

	nodes := make(map[string]*ffi.Node)
	root := desc.Root
	if root == nil {
		root = &NodeDesc{Name: "root"}
		for i := range desc.Meshes {
			root.Meshes = append(root.Meshes, uint32(i))
		}
	}
	s.RootNode = buildNode(root, nil, nodes)

	meshes := make([]*ffi.Mesh, len(desc.Meshes))
	for i := range desc.Meshes {
		meshes[i] = buildMesh(&desc.Meshes[i], s.RootNode, nodes)
	}
	s.NumMeshes, s.Meshes = ptrArray(meshes)

	materials := make([]*ffi.Material, 0, len(desc.Materials))
	for i := range desc.Materials {
		materials = append(materials, buildMaterial(&desc.Materials[i]))
	}
	s.NumMaterials, s.Materials = ptrArray(materials)

	anims := make([]*ffi.Animation, len(desc.Animations))
	for i := range desc.Animations {
		anims[i] = buildAnimation(&desc.Animations[i])
	}
	s.NumAnimations, s.Animations = ptrArray(anims)

	textures := make([]*ffi.Texture, len(desc.Textures))
	for i := range desc.Textures {
		textures[i] = buildTexture(&desc.Textures[i])
	}
	s.NumTextures, s.Textures = ptrArray(textures)

	cameras := make([]*ffi.Camera, len(desc.Cameras))
	for i, c := range desc.Cameras {
		cameras[i] = &ffi.Camera{
			Name:          ffi.MakeString(c.Name),
			Position:      c.Position,
			Up:            c.Up,
			LookAt:        c.LookAt,
			HorizontalFOV: c.HorizontalFOV,
			ClipPlaneNear: c.Near,
			ClipPlaneFar:  c.Far,
			Aspect:        c.Aspect,
		}
	}
	s.NumCameras, s.Cameras = ptrArray(cameras)

	lights := make([]*ffi.Light, len(desc.Lights))
	for i, l := range desc.Lights {
		lights[i] = &ffi.Light{
			Name:           ffi.MakeString(l.Name),
			Type:           l.Type,
			Position:       l.Position,
			Direction:      l.Direction,
			ColorDiffuse:   l.Diffuse,
			AngleInnerCone: l.InnerCone,
			AngleOuterCone: l.OuterCone,
		}
	}
	s.NumLights, s.Lights = ptrArray(lights)

	return s
}

func buildNode(d *NodeDesc, parent *ffi.Node, nodes map[string]*ffi.Node) *ffi.Node {
	n := &ffi.Node{
		Name:           ffi.MakeString(d.Name),
		Transformation: d.Transform,
		Parent:         parent,
	}
	if n.Transformation == (ffi.Matrix4x4{}) {
		n.Transformation = ffi.Identity
	}
	if _, dup := nodes[d.Name]; !dup {
		nodes[d.Name] = n
	}
	if len(d.Meshes) > 0 {
		idx := append([]uint32(nil), d.Meshes...)
		n.NumMeshes = uint32(len(idx))
		n.Meshes = &idx[0]
	}
	children := make([]*ffi.Node, len(d.Children))
	for i, c := range d.Children {
		children[i] = buildNode(c, n, nodes)
	}
	n.NumChildren, n.Children = ptrArray(children)
	return n
}

func buildMesh(d *MeshDesc, root *ffi.Node, nodes map[string]*ffi.Node) *ffi.Mesh {
	m := &ffi.Mesh{
		Name:          ffi.MakeString(d.Name),
		MaterialIndex: d.Material,
	}
	if len(d.Vertices) > 0 {
		v := append([]ffi.Vector3(nil), d.Vertices...)
		m.NumVertices = uint32(len(v))
		m.Vertices = &v[0]
	}
	if len(d.Normals) > 0 {
		v := append([]ffi.Vector3(nil), d.Normals...)
		m.Normals = &v[0]
	}
	if len(d.TexCoords) > 0 {
		v := append([]ffi.Vector3(nil), d.TexCoords...)
		m.TextureCoords[0] = &v[0]
		m.NumUVComponents[0] = 2
	}
	if len(d.Colors) > 0 {
		v := append([]ffi.Color4(nil), d.Colors...)
		m.Colors[0] = &v[0]
	}
	if len(d.Faces) > 0 {
		faces := make([]ffi.Face, len(d.Faces))
		for i, f := range d.Faces {
			faces[i] = makeFace(f)
			m.PrimitiveTypes |= primitiveFor(len(f))
		}
		m.NumFaces = uint32(len(faces))
		m.Faces = &faces[0]
	}
	bones := make([]*ffi.Bone, len(d.Bones))
	for i := range d.Bones {
		b := &d.Bones[i]
		bone := &ffi.Bone{
			Name:         ffi.MakeString(b.Name),
			OffsetMatrix: b.Offset,
			Armature:     root,
			Node:         nodes[b.Node],
		}
		if len(b.Weights) > 0 {
			w := append([]ffi.VertexWeight(nil), b.Weights...)
			bone.NumWeights = uint32(len(w))
			bone.Weights = &w[0]
		}
		bones[i] = bone
	}
	m.NumBones, m.Bones = ptrArray(bones)
	return m
}

func makeFace(indices []uint32) ffi.Face {
	if len(indices) == 0 {
		return ffi.Face{}
	}
	idx := append([]uint32(nil), indices...)
	return ffi.Face{NumIndices: uint32(len(idx)), Indices: &idx[0]}
}

func primitiveFor(n int) ffi.PrimitiveType {
	switch n {
	case 1:
		return ffi.PrimitivePoint
	case 2:
		return ffi.PrimitiveLine
	case 3:
		return ffi.PrimitiveTriangle
	default:
		return ffi.PrimitivePolygon
	}
}

func buildMaterial(d *MaterialDesc) *ffi.Material {
	var props []*ffi.MaterialProperty
	props = append(props, StringProperty(ffi.MatKeyName, 0, 0, d.Name))
	if d.Diffuse != nil {
		c := *d.Diffuse
		props = append(props, FloatProperty(ffi.MatKeyColorDiffuse, c.R, c.G, c.B, c.A))
	}
	if d.Shininess != nil {
		props = append(props, FloatProperty(ffi.MatKeyShininess, *d.Shininess))
	}
	if d.TwoSided != nil {
		props = append(props, IntProperty(ffi.MatKeyTwoSided, *d.TwoSided))
	}
	for t := ffi.TextureNone; t <= ffi.TextureUnknown; t++ {
		for i, path := range d.Textures[t] {
			props = append(props, StringProperty(ffi.MatKeyTextureFile, uint32(t), uint32(i), path))
		}
	}
	for _, r := range d.Raw {
		p := &ffi.MaterialProperty{
			Key:        ffi.MakeString(r.Key),
			Semantic:   r.Semantic,
			Index:      r.Index,
			DataLength: uint32(len(r.Data)),
			Type:       r.Type,
		}
		if len(r.Data) > 0 {
			data := append([]byte(nil), r.Data...)
			p.Data = &data[0]
		}
		props = append(props, p)
	}
	n, arr := ptrArray(props)
	return &ffi.Material{Properties: arr, NumProperties: n, NumAllocated: n}
}

// StringProperty encodes v the way material strings are stored: a 32-bit
// length, the bytes and a terminating NUL.
func StringProperty(key string, semantic, index uint32, v string) *ffi.MaterialProperty {
	data := make([]byte, 4+len(v)+1)
	binary.NativeEndian.PutUint32(data, uint32(len(v)))
	copy(data[4:], v)
	return &ffi.MaterialProperty{
		Key:        ffi.MakeString(key),
		Semantic:   semantic,
		Index:      index,
		DataLength: uint32(len(data)),
		Type:       ffi.PTIString,
		Data:       &data[0],
	}
}

// FloatProperty encodes an array of floats.
func FloatProperty(key string, vals ...float32) *ffi.MaterialProperty {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return rawProperty(key, ffi.PTIFloat, data)
}

// IntProperty encodes an array of 32-bit integers.
func IntProperty(key string, vals ...int32) *ffi.MaterialProperty {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(data[4*i:], uint32(v))
	}
	return rawProperty(key, ffi.PTIInteger, data)
}

func rawProperty(key string, typ ffi.PropertyTypeInfo, data []byte) *ffi.MaterialProperty {
	p := &ffi.MaterialProperty{
		Key:        ffi.MakeString(key),
		DataLength: uint32(len(data)),
		Type:       typ,
	}
	if len(data) > 0 {
		p.Data = &data[0]
	}
	return p
}

func buildAnimation(d *AnimationDesc) *ffi.Animation {
	a := &ffi.Animation{
		Name:           ffi.MakeString(d.Name),
		Duration:       d.Duration,
		TicksPerSecond: d.TicksPerSecond,
	}
	channels := make([]*ffi.NodeAnim, len(d.Channels))
	for i, c := range d.Channels {
		ch := &ffi.NodeAnim{NodeName: ffi.MakeString(c.Node)}
		if len(c.Positions) > 0 {
			k := append([]ffi.VectorKey(nil), c.Positions...)
			ch.NumPositionKeys, ch.PositionKeys = uint32(len(k)), &k[0]
		}
		if len(c.Rotations) > 0 {
			k := append([]ffi.QuatKey(nil), c.Rotations...)
			ch.NumRotationKeys, ch.RotationKeys = uint32(len(k)), &k[0]
		}
		if len(c.Scalings) > 0 {
			k := append([]ffi.VectorKey(nil), c.Scalings...)
			ch.NumScalingKeys, ch.ScalingKeys = uint32(len(k)), &k[0]
		}
		channels[i] = ch
	}
	a.NumChannels, a.Channels = ptrArray(channels)
	return a
}

func buildTexture(d *TextureDesc) *ffi.Texture {
	t := &ffi.Texture{Filename: ffi.MakeString(d.Filename)}
	copy(t.FormatHint[:ffi.HintMaxTextureLen-1], d.FormatHint)
	switch {
	case len(d.Compressed) > 0:
		// compressed payloads are stored byte-wise behind the texel pointer
		n := (len(d.Compressed) + 3) / 4
		texels := make([]ffi.Texel, n)
		raw := texelBytes(texels)
		copy(raw, d.Compressed)
		t.Width = uint32(len(d.Compressed))
		t.Data = &texels[0]
	case len(d.Texels) > 0:
		texels := append([]ffi.Texel(nil), d.Texels...)
		t.Width, t.Height = d.Width, d.Height
		t.Data = &texels[0]
	}
	return t
}

func texelBytes(t []ffi.Texel) []byte {
	if len(t) == 0 {
		return nil
	}
	return ffi.Slice((*byte)(&t[0].B), uint32(len(t)*4))
}

func ptrArray[T any](items []*T) (uint32, **T) {
	if len(items) == 0 {
		return 0, nil
	}
	return uint32(len(items)), &items[0]
}
