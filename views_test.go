package assimp

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
	"github.com/wippyai/assimp-go/ffi/ffitest"
)

func ptrTo[T any](v T) *T { return &v }

func translation(x, y, z float32) ffi.Matrix4x4 {
	m := ffi.Identity
	m.A4, m.B4, m.C4 = x, y, z
	return m
}

// richScene has a two-level hierarchy, a skinned quad, two materials and
// one of every other entity kind.
func richScene() *ffitest.SceneDesc {
	return &ffitest.SceneDesc{
		Name: "rich",
		Root: &ffitest.NodeDesc{
			Name: "root",
			Children: []*ffitest.NodeDesc{
				{
					Name:      "body",
					Transform: translation(1, 0, 0),
					Meshes:    []uint32{0},
					Children: []*ffitest.NodeDesc{
						{Name: "arm", Transform: translation(0, 2, 0)},
					},
				},
				{Name: "lamp", Meshes: []uint32{1}},
			},
		},
		Meshes: []ffitest.MeshDesc{
			{
				Name:      "quad",
				Vertices:  []ffi.Vector3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
				Normals:   []ffi.Vector3{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}},
				TexCoords: []ffi.Vector3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
				Faces:     [][]uint32{{0, 1, 2}, {0, 2, 3}},
				Bones: []ffitest.BoneDesc{
					{
						Name:    "arm",
						Node:    "arm",
						Weights: []ffi.VertexWeight{{VertexID: 2, Weight: 1}, {VertexID: 3, Weight: 0.5}},
						Offset:  ffi.Identity,
					},
				},
			},
			{
				Name:     "bulb",
				Vertices: []ffi.Vector3{{}, {X: 1}},
				Faces:    [][]uint32{{0, 1}},
				Material: 1,
			},
		},
		Materials: []ffitest.MaterialDesc{
			{
				Name:      "skin",
				Diffuse:   &ffi.Color4{R: 1, G: 0.5, B: 0.25, A: 1},
				Shininess: ptrTo[float32](32),
				TwoSided:  ptrTo[int32](1),
				Textures: map[ffi.TextureType][]string{
					ffi.TextureDiffuse: {"*0", "textures/detail.png"},
				},
			},
			{Name: "glass"},
		},
		Animations: []ffitest.AnimationDesc{
			{
				Name:           "wave",
				Duration:       50,
				TicksPerSecond: 0,
				Channels: []ffitest.ChannelDesc{
					{
						Node:      "arm",
						Positions: []ffi.VectorKey{{Time: 0}, {Time: 50, Value: ffi.Vector3{Y: 1}}},
						Rotations: []ffi.QuatKey{{Time: 0, Value: ffi.Quaternion{W: 1}}},
					},
				},
			},
		},
		Textures: []ffitest.TextureDesc{
			{Filename: "skin.png", FormatHint: "png", Compressed: []byte{0x89, 'P', 'N', 'G', 1, 2}},
			{Filename: "textures/detail.png", FormatHint: "rgba8888", Width: 2, Height: 1,
				Texels: []ffi.Texel{{B: 1, G: 2, R: 3, A: 4}, {B: 5, G: 6, R: 7, A: 8}}},
		},
		Cameras: []ffitest.CameraDesc{
			{
				Name:          "main",
				Position:      ffi.Vector3{Z: 5},
				Up:            ffi.Vector3{Y: 1},
				LookAt:        ffi.Vector3{Z: -1},
				HorizontalFOV: 0.785,
				Near:          0.1,
				Far:           100,
				Aspect:        1.5,
			},
		},
		Lights: []ffitest.LightDesc{
			{
				Name:      "lamp",
				Type:      ffi.LightSpot,
				Position:  ffi.Vector3{Y: 3},
				Direction: ffi.Vector3{Y: -1},
				Diffuse:   ffi.Color3{R: 1, G: 1, B: 1},
				InnerCone: 0.5,
				OuterCone: 0.7,
			},
		},
	}
}

func openRich(t *testing.T) (*ffitest.Library, *Scene) {
	t.Helper()
	lib := ffitest.New()
	s, err := FromRaw(lib, lib.NewImported(richScene()), ImportRelease)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return lib, s
}

func TestNodeHierarchy(t *testing.T) {
	_, s := openRich(t)

	root, ok := s.RootNode()
	require.True(t, ok)
	assert.Equal(t, "root", root.Name())
	_, hasParent := root.Parent()
	assert.False(t, hasParent)

	var names []string
	var depths []int
	s.Walk(func(n Node, depth int) bool {
		names = append(names, n.Name())
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "body", "arm", "lamp"}, names)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	arm, ok := s.FindNode("arm")
	require.True(t, ok)
	parent, ok := arm.Parent()
	require.True(t, ok)
	assert.Equal(t, "body", parent.Name())
	assert.Equal(t, translation(1, 2, 0), arm.GlobalTransformation())

	_, ok = s.FindNode("missing")
	assert.False(t, ok)

	body, _ := s.FindNode("body")
	assert.Equal(t, []uint32{0}, body.MeshIndices())
	m, ok := body.Mesh(0)
	require.True(t, ok)
	assert.Equal(t, "quad", m.Name())
	_, ok = body.Mesh(1)
	assert.False(t, ok)

	stop := 0
	s.Walk(func(Node, int) bool { stop++; return stop < 2 })
	assert.Equal(t, 2, stop)
}

func TestNodeMeshIndexOutOfScene(t *testing.T) {
	lib := ffitest.New()
	desc := &ffitest.SceneDesc{
		Root:   &ffitest.NodeDesc{Name: "root", Meshes: []uint32{5}},
		Meshes: []ffitest.MeshDesc{{Name: "only"}},
	}
	s, err := FromRaw(lib, lib.NewImported(desc), ImportRelease)
	require.NoError(t, err)
	defer s.Close()

	root, _ := s.RootNode()
	_, ok := root.Mesh(0)
	assert.False(t, ok)
	for range root.Meshes() {
		t.Fatal("dangling mesh index yielded a mesh")
	}
}

func TestMeshViews(t *testing.T) {
	_, s := openRich(t)
	m, ok := s.Mesh(0)
	require.True(t, ok)

	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 2, m.NumFaces())
	assert.Equal(t, ffi.PrimitiveTriangle, m.PrimitiveTypes())
	assert.True(t, m.HasNormals())
	assert.Len(t, m.Normals(), 4)
	assert.Nil(t, m.Tangents())
	assert.Equal(t, 1, m.NumUVChannels())
	assert.Equal(t, 2, m.NumUVComponents(0))
	assert.Len(t, m.TextureCoords(0), 4)
	assert.Nil(t, m.TextureCoords(1))
	assert.Nil(t, m.TextureCoords(-1))
	assert.Nil(t, m.TextureCoords(ffi.MaxTextureCoords))
	assert.Equal(t, 0, m.NumColorSets())
	assert.Nil(t, m.Colors(0))

	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.AppendIndices(nil))
	var faces [][]uint32
	for f := range m.Faces() {
		faces = append(faces, f.Indices())
	}
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}}, faces)

	mat, ok := m.Material()
	require.True(t, ok)
	name, err := mat.Name()
	require.NoError(t, err)
	assert.Equal(t, "skin", name)

	bulb, _ := s.Mesh(1)
	assert.Equal(t, ffi.PrimitiveLine, bulb.PrimitiveTypes())
	assert.False(t, bulb.HasNormals())
	assert.Equal(t, 1, bulb.MaterialIndex())
}

func TestMeshSlicesAreZeroCopy(t *testing.T) {
	_, s := openRich(t)
	m, _ := s.Mesh(0)
	raw := m.Raw()

	assert.Same(t, raw.Vertices, unsafe.SliceData(m.Vertices()))
	assert.Same(t, raw.Normals, unsafe.SliceData(m.Normals()))
	assert.Same(t, raw.TextureCoords[0], unsafe.SliceData(m.TextureCoords(0)))
	assert.Same(t, raw.Faces, unsafe.SliceData(m.RawFaces()))

	f, _ := m.Face(1)
	assert.Same(t, ffi.Slice(raw.Faces, raw.NumFaces)[1].Indices, unsafe.SliceData(f.Indices()))

	b, _ := m.Bone(0)
	rawBone := ffi.At(raw.Bones, raw.NumBones, 0)
	assert.Same(t, rawBone.Weights, unsafe.SliceData(b.Weights()))

	root, _ := s.FindNode("body")
	assert.Same(t, root.Raw().Meshes, unsafe.SliceData(root.MeshIndices()))
}

func TestBones(t *testing.T) {
	_, s := openRich(t)
	m, _ := s.Mesh(0)
	require.Equal(t, 1, m.NumBones())

	b, ok := m.Bone(0)
	require.True(t, ok)
	assert.Equal(t, "arm", b.Name())
	assert.Equal(t, 2, b.NumWeights())
	w, ok := b.Weight(1)
	require.True(t, ok)
	assert.Equal(t, ffi.VertexWeight{VertexID: 3, Weight: 0.5}, w)
	_, ok = b.Weight(2)
	assert.False(t, ok)
	assert.Equal(t, ffi.Identity, b.OffsetMatrix())

	n, ok := b.Node()
	require.True(t, ok)
	assert.Equal(t, "arm", n.Name())
	arm, ok := b.Armature()
	require.True(t, ok)
	assert.Equal(t, "root", arm.Name())

	count := 0
	for range m.Bones() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestMaterialDecoding(t *testing.T) {
	_, s := openRich(t)
	mat, ok := s.Material(0)
	require.True(t, ok)

	c, err := mat.Color(ffi.MatKeyColorDiffuse)
	require.NoError(t, err)
	assert.Equal(t, ffi.Color4{R: 1, G: 0.5, B: 0.25, A: 1}, c)

	shininess, err := mat.Float(ffi.MatKeyShininess)
	require.NoError(t, err)
	assert.Equal(t, float32(32), shininess)

	twoSided, err := mat.Int(ffi.MatKeyTwoSided)
	require.NoError(t, err)
	assert.Equal(t, int32(1), twoSided)

	asFloat, err := mat.Float(ffi.MatKeyTwoSided)
	require.NoError(t, err)
	assert.Equal(t, float32(1), asFloat)

	assert.Equal(t, 2, mat.TextureCount(ffi.TextureDiffuse))
	assert.Equal(t, 0, mat.TextureCount(ffi.TextureNormals))
	p0, err := mat.TexturePath(ffi.TextureDiffuse, 0)
	require.NoError(t, err)
	assert.Equal(t, "*0", p0)
	p1, err := mat.TexturePath(ffi.TextureDiffuse, 1)
	require.NoError(t, err)
	assert.Equal(t, "textures/detail.png", p1)

	_, err = mat.TexturePath(ffi.TextureDiffuse, 2)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = mat.Float(ffi.MatKeyOpacity)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = mat.Float(ffi.MatKeyName)
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	_, err = mat.StringValue(ffi.MatKeyShininess)
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	name, err := mat.StringValue(ffi.MatKeyName)
	require.NoError(t, err)
	viaName, err := mat.Name()
	require.NoError(t, err)
	assert.Equal(t, viaName, name)
	_, isStringer := any(mat).(fmt.Stringer)
	assert.False(t, isStringer, "fmt would call Material.String")

	keys := map[string]bool{}
	for p := range mat.Properties() {
		keys[p.Key()] = true
	}
	assert.True(t, keys[ffi.MatKeyName])
	assert.True(t, keys[ffi.MatKeyTextureFile])
}

func TestMalformedMaterialPayloads(t *testing.T) {
	lengthPrefixed := func(n uint32, body string) []byte {
		b := binary.NativeEndian.AppendUint32(nil, n)
		return append(append(b, body...), 0)
	}
	double := binary.NativeEndian.AppendUint64(nil, math.Float64bits(2.5))

	lib := ffitest.New()
	desc := &ffitest.SceneDesc{
		Materials: []ffitest.MaterialDesc{{
			Name: "odd",
			Raw: []ffitest.RawProperty{
				{Key: "short", Type: ffi.PTIString, Data: []byte{1, 0}},
				{Key: "overlong", Type: ffi.PTIString, Data: lengthPrefixed(40, "abc")},
				{Key: "badutf8", Type: ffi.PTIString, Data: lengthPrefixed(2, "\xff\xfe")},
				{Key: "ragged", Type: ffi.PTIFloat, Data: []byte{0, 0, 128}},
				{Key: "buffer", Type: ffi.PTIBuffer, Data: []byte{1, 2, 3, 4}},
				{Key: "double", Type: ffi.PTIDouble, Data: double},
				{Key: "empty", Type: ffi.PTIFloat},
				{Key: "rgb", Type: ffi.PTIFloat, Data: floats(0.1, 0.2, 0.3)},
			},
		}},
	}
	s, err := FromRaw(lib, lib.NewImported(desc), ImportRelease)
	require.NoError(t, err)
	defer s.Close()
	mat, _ := s.Material(0)

	for _, key := range []string{"short", "overlong"} {
		_, err := mat.StringValue(key)
		assert.ErrorIs(t, err, errors.ErrInvalidData, key)
	}
	_, err = mat.StringValue("badutf8")
	assert.ErrorIs(t, err, errors.ErrInvalidUTF8)

	_, err = mat.Float("ragged")
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	_, err = mat.Int("buffer")
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	_, err = mat.Float("empty")
	assert.ErrorIs(t, err, errors.ErrInvalidData)

	d, err := mat.Float("double")
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), d)
	i, err := mat.Int("double")
	require.NoError(t, err)
	assert.Equal(t, int32(2), i)

	rgb, err := mat.Color("rgb")
	require.NoError(t, err)
	assert.Equal(t, ffi.Color4{R: 0.1, G: 0.2, B: 0.3, A: 1}, rgb)

	p, ok := mat.Find("buffer", ffi.TextureNone, 0)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, p.Data())
	assert.Equal(t, ffi.PTIBuffer, p.Type())
}

func floats(vals ...float32) []byte {
	var b []byte
	for _, v := range vals {
		b = binary.NativeEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func TestTextures(t *testing.T) {
	_, s := openRich(t)
	require.Equal(t, 2, s.NumTextures())

	png, ok := s.EmbeddedTexture("*0")
	require.True(t, ok)
	assert.True(t, png.Compressed())
	assert.Equal(t, "png", png.FormatHint())
	data, err := png.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 1, 2}, data)
	_, err = png.Texels()
	assert.ErrorIs(t, err, errors.ErrInvalidData)

	detail, ok := s.EmbeddedTexture(`C:\art\detail.png`)
	require.True(t, ok)
	assert.False(t, detail.Compressed())
	assert.Equal(t, 2, detail.Width())
	assert.Equal(t, 1, detail.Height())
	texels, err := detail.Texels()
	require.NoError(t, err)
	assert.Equal(t, []ffi.Texel{{B: 1, G: 2, R: 3, A: 4}, {B: 5, G: 6, R: 7, A: 8}}, texels)
	assert.Same(t, detail.ptr.Get().Data, unsafe.SliceData(texels))
	_, err = detail.Bytes()
	assert.ErrorIs(t, err, errors.ErrInvalidData)

	for _, missing := range []string{"*2", "*x", "nothing.png"} {
		_, ok := s.EmbeddedTexture(missing)
		assert.False(t, ok, missing)
	}
}

func TestAnimations(t *testing.T) {
	_, s := openRich(t)
	an, ok := s.Animation(0)
	require.True(t, ok)

	assert.Equal(t, "wave", an.Name())
	assert.Equal(t, float64(50), an.Duration())
	assert.Zero(t, an.TicksPerSecond())
	assert.Equal(t, 2.0, an.Seconds())

	ch, ok := an.FindChannel("arm")
	require.True(t, ok)
	assert.Equal(t, "arm", ch.NodeName())
	assert.Len(t, ch.PositionKeys(), 2)
	assert.Equal(t, ffi.Quaternion{W: 1}, ch.RotationKeys()[0].Value)
	assert.Nil(t, ch.ScalingKeys())
	n, ok := ch.Node()
	require.True(t, ok)
	assert.Equal(t, "arm", n.Name())

	_, ok = an.FindChannel("body")
	assert.False(t, ok)
}

func TestCamerasAndLights(t *testing.T) {
	_, s := openRich(t)

	cam, ok := s.Camera(0)
	require.True(t, ok)
	assert.Equal(t, "main", cam.Name())
	assert.Equal(t, ffi.Vector3{Z: 5}, cam.Position())
	assert.Equal(t, ffi.Vector3{Y: 1}, cam.Up())
	assert.Equal(t, ffi.Vector3{Z: -1}, cam.LookAt())
	near, far := cam.ClipPlanes()
	assert.Equal(t, float32(0.1), near)
	assert.Equal(t, float32(100), far)
	assert.Equal(t, float32(1.5), cam.Aspect())

	light, ok := s.Light(0)
	require.True(t, ok)
	assert.Equal(t, "lamp", light.Name())
	assert.Equal(t, ffi.LightSpot, light.Type())
	assert.Equal(t, ffi.Vector3{Y: -1}, light.Direction())
	inner, outer := light.Cone()
	assert.Equal(t, float32(0.5), inner)
	assert.Equal(t, float32(0.7), outer)
}

func TestSceneMetadata(t *testing.T) {
	_, s := openRich(t)
	assert.Equal(t, "rich", s.Name())
	assert.False(t, s.Incomplete())
	assert.Equal(t, 2, s.NumMeshes())
	assert.Equal(t, 2, s.NumMaterials())

	var names []string
	for m := range s.Meshes() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"quad", "bulb"}, names)

	var matNames []string
	for m := range s.Materials() {
		name, err := m.Name()
		require.NoError(t, err)
		matNames = append(matNames, name)
		if len(matNames) == 1 {
			break
		}
	}
	assert.Equal(t, []string{"skin"}, matNames)
}
