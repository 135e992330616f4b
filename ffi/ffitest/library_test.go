package ffitest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/assimp-go/ffi"
)

const triangleOBJ = `# one triangle
o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func triangleDesc() *SceneDesc {
	return &SceneDesc{
		Name: "tri",
		Meshes: []MeshDesc{{
			Name:     "tri",
			Vertices: []ffi.Vector3{{X: 0}, {X: 1}, {Y: 1}},
			Faces:    [][]uint32{{0, 1, 2}},
		}},
		Materials: []MaterialDesc{{Name: "DefaultMaterial"}},
	}
}

func TestImportMemoryOBJ(t *testing.T) {
	lib := New()
	s := lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, nil)
	require.NotNil(t, s, lib.ErrorString())

	require.Equal(t, uint32(1), s.NumMeshes)
	m := ffi.At(s.Meshes, s.NumMeshes, 0)
	require.NotNil(t, m)
	assert.Equal(t, "tri", m.Name.String())
	assert.Equal(t, uint32(3), m.NumVertices)
	assert.Equal(t, uint32(1), m.NumFaces)
	assert.Equal(t, ffi.PrimitiveTriangle, m.PrimitiveTypes)
	assert.Equal(t, ffi.Vector3{X: 1}, ffi.Slice(m.Vertices, m.NumVertices)[1])

	face := ffi.Slice(m.Faces, m.NumFaces)[0]
	assert.Equal(t, []uint32{0, 1, 2}, ffi.Slice(face.Indices, face.NumIndices))

	require.NotNil(t, s.RootNode)
	require.Equal(t, uint32(1), s.RootNode.NumChildren)
	child := ffi.At(s.RootNode.Children, s.RootNode.NumChildren, 0)
	assert.Same(t, s.RootNode, child.Parent)
	assert.Equal(t, uint32(1), s.NumMaterials)

	assert.Equal(t, 1, lib.Imports())
	assert.Equal(t, 1, lib.Live())
}

func TestImportMemoryErrors(t *testing.T) {
	lib := New()

	assert.Nil(t, lib.ImportMemory(nil, "obj", 0, nil, nil))
	assert.NotEmpty(t, lib.ErrorString())

	assert.Nil(t, lib.ImportMemory([]byte(triangleOBJ), "fbx", 0, nil, nil))
	assert.Contains(t, lib.ErrorString(), "No suitable reader")

	assert.Nil(t, lib.ImportMemory([]byte("v 0 0 0\nf 1 2 9\n"), "", 0, nil, nil))
	assert.Contains(t, lib.ErrorString(), "out of range")

	assert.Nil(t, lib.ImportMemory([]byte("# nothing\n"), "", 0, nil, nil))
	assert.Equal(t, 0, lib.Live())
}

func TestParseOBJ(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
g quad
f 1/1/1 2/2/1 3/3/1 -1/-1/1
usemtl blue
o other
f 1 2 3
`
	desc, err := ParseOBJ("scene", []byte(src))
	require.NoError(t, err)
	require.Len(t, desc.Meshes, 2)
	require.Len(t, desc.Materials, 2)
	assert.Equal(t, "red", desc.Materials[0].Name)
	assert.Equal(t, "blue", desc.Materials[1].Name)

	quad := desc.Meshes[0]
	assert.Equal(t, "quad", quad.Name)
	assert.Len(t, quad.Vertices, 4)
	assert.Len(t, quad.TexCoords, 4)
	assert.Len(t, quad.Normals, 4)
	assert.Equal(t, [][]uint32{{0, 1, 2, 3}}, quad.Faces)
	assert.Equal(t, ffi.Vector3{Y: 1}, quad.Vertices[3])
	assert.Equal(t, uint32(0), quad.Material)

	assert.Equal(t, "other", desc.Meshes[1].Name)
	assert.Equal(t, uint32(1), desc.Meshes[1].Material)

	require.Len(t, desc.Root.Children, 2)
	assert.Equal(t, []uint32{1}, desc.Root.Children[1].Meshes)
}

func TestImportFile(t *testing.T) {
	lib := New()
	lib.AddFile("virtual.dae", triangleDesc())

	s := lib.ImportFile("virtual.dae", 0, nil, nil, nil)
	require.NotNil(t, s)
	assert.Equal(t, "tri", s.Name.String())

	again := lib.ImportFile("virtual.dae", 0, nil, nil, nil)
	require.NotNil(t, again)
	assert.NotSame(t, s, again)

	fsys := fstest.MapFS{"models/tri.obj": {Data: []byte(triangleOBJ)}}
	fromFS := lib.ImportFile("models/tri.obj", 0, fsys, nil, nil)
	require.NotNil(t, fromFS, lib.ErrorString())
	assert.Equal(t, "tri", fromFS.RootNode.Name.String())

	assert.Nil(t, lib.ImportFile("models/missing.obj", 0, fsys, nil, nil))
	assert.Contains(t, lib.ErrorString(), "Unable to open file")
}

func TestReleaseProtocol(t *testing.T) {
	lib := New()
	imported := lib.NewImported(triangleDesc())
	copied := lib.CopyScene(imported)
	require.NotNil(t, copied)
	assert.NotSame(t, imported, copied)

	lib.FreeScene(copied)
	lib.ReleaseImport(imported)
	assert.Empty(t, lib.Violations())
	assert.Equal(t, 1, lib.Releases())
	assert.Equal(t, 1, lib.Frees())
	assert.Equal(t, 0, lib.Live())
	assert.True(t, lib.Released(imported))
}

func TestReleaseViolations(t *testing.T) {
	lib := New()
	imported := lib.NewImported(triangleDesc())
	copied := lib.NewCopied(triangleDesc())

	lib.FreeScene(imported)
	lib.ReleaseImport(copied)
	lib.ReleaseImport(copied)
	lib.ReleaseImport(&ffi.Scene{})
	lib.FreeScene(nil)

	v := lib.Violations()
	require.Len(t, v, 5)
	assert.Contains(t, v[0], "FreeScene on import scene")
	assert.Contains(t, v[1], "ReleaseImport on copy scene")
	assert.Contains(t, v[2], "released scene")
	assert.Contains(t, v[3], "unknown scene")
	assert.Contains(t, v[4], "null scene")
}

func TestReleasePoisons(t *testing.T) {
	lib := New()
	s := lib.NewImported(triangleDesc())
	m := ffi.At(s.Meshes, s.NumMeshes, 0)
	root := s.RootNode

	lib.ReleaseImport(s)
	assert.Equal(t, uint32(0), s.NumMeshes)
	assert.Nil(t, s.RootNode)
	assert.Equal(t, uint32(0), m.NumVertices)
	assert.Nil(t, m.Vertices)
	assert.Equal(t, "", root.Name.String())
}

func TestCopySceneIsDeep(t *testing.T) {
	desc := triangleDesc()
	desc.Root = &NodeDesc{
		Name:     "root",
		Children: []*NodeDesc{{Name: "joint", Meshes: []uint32{0}}},
	}
	desc.Meshes[0].Bones = []BoneDesc{{
		Name:    "joint",
		Node:    "joint",
		Weights: []ffi.VertexWeight{{VertexID: 1, Weight: 1}},
	}}

	lib := New()
	s := lib.NewImported(desc)
	c := lib.CopyScene(s)
	require.NotNil(t, c)

	sm := ffi.At(s.Meshes, s.NumMeshes, 0)
	cm := ffi.At(c.Meshes, c.NumMeshes, 0)
	assert.NotSame(t, sm, cm)
	assert.NotSame(t, sm.Vertices, cm.Vertices)
	assert.Equal(t, ffi.Slice(sm.Vertices, 3), ffi.Slice(cm.Vertices, 3))

	cb := ffi.At(cm.Bones, cm.NumBones, 0)
	cjoint := ffi.At(c.RootNode.Children, c.RootNode.NumChildren, 0)
	assert.Same(t, cjoint, cb.Node)
	assert.Same(t, c.RootNode, cjoint.Parent)

	lib.ReleaseImport(s)
	assert.Equal(t, uint32(3), cm.NumVertices)
	assert.Equal(t, "joint", cjoint.Name.String())
}

func TestApplyPostProcessing(t *testing.T) {
	lib := New()
	s := lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, nil)
	require.NotNil(t, s)

	out := lib.ApplyPostProcessing(s, stepFlipWindingOrder|stepGenBoundingBoxes)
	require.Same(t, s, out)

	m := ffi.At(out.Meshes, out.NumMeshes, 0)
	face := ffi.Slice(m.Faces, m.NumFaces)[0]
	assert.Equal(t, []uint32{2, 1, 0}, ffi.Slice(face.Indices, face.NumIndices))
	assert.Equal(t, ffi.AABB{Max: ffi.Vector3{X: 1, Y: 1}}, m.AABB)
	assert.Equal(t, uint32(stepFlipWindingOrder|stepGenBoundingBoxes), lib.LastPostProcessFlags())
}

func TestApplyPostProcessingTriangulate(t *testing.T) {
	desc := triangleDesc()
	desc.Meshes[0].Vertices = append(desc.Meshes[0].Vertices, ffi.Vector3{X: 1, Y: 1})
	desc.Meshes[0].Faces = [][]uint32{{0, 1, 3, 2}}

	lib := New()
	s := lib.NewImported(desc)
	require.NotNil(t, lib.ApplyPostProcessing(s, stepTriangulate))

	m := ffi.At(s.Meshes, s.NumMeshes, 0)
	assert.Equal(t, uint32(2), m.NumFaces)
	assert.Equal(t, ffi.PrimitiveTriangle, m.PrimitiveTypes)
}

func TestApplyPostProcessingReplaces(t *testing.T) {
	lib := New()
	lib.PostProcessReplaces = true
	s := lib.NewImported(triangleDesc())

	out := lib.ApplyPostProcessing(s, stepFlipUVs)
	require.NotNil(t, out)
	assert.NotSame(t, s, out)
	assert.True(t, lib.Released(s))
	assert.False(t, lib.Released(out))

	lib.ReleaseImport(out)
	assert.Empty(t, lib.Violations())
}

func TestApplyPostProcessingFailure(t *testing.T) {
	t.Run("input survives", func(t *testing.T) {
		lib := New()
		lib.FailPostProcess = true
		s := lib.NewImported(triangleDesc())

		assert.Nil(t, lib.ApplyPostProcessing(s, 0))
		assert.Contains(t, lib.ErrorString(), "injected")
		assert.False(t, lib.PostProcessInvalidated(s))
	})

	t.Run("input invalidated", func(t *testing.T) {
		lib := New()
		lib.FailPostProcess = true
		lib.InvalidateOnFailure = true
		s := lib.NewImported(triangleDesc())

		assert.Nil(t, lib.ApplyPostProcessing(s, 0))
		assert.True(t, lib.PostProcessInvalidated(s))
		assert.Equal(t, 0, lib.Releases())

		lib.ReleaseImport(s)
		require.Len(t, lib.Violations(), 1)
	})

	t.Run("validation", func(t *testing.T) {
		desc := triangleDesc()
		desc.Meshes[0].Faces = [][]uint32{{0, 1, 7}}
		lib := New()
		s := lib.NewImported(desc)

		assert.Nil(t, lib.ApplyPostProcessing(s, stepValidate))
		assert.Contains(t, lib.ErrorString(), "validation failed")
	})
}

func TestProgress(t *testing.T) {
	lib := New()
	lib.ProgressMessages = []string{"", "half", "done"}

	var pcts []float32
	var msgs []string
	cb := &ffi.ProgressCallback{
		Proc: func(p float32, msg *byte, ud uintptr) bool {
			assert.Equal(t, uintptr(42), ud)
			pcts = append(pcts, p)
			msgs = append(msgs, ffi.GoString(msg))
			return true
		},
		UserData: 42,
	}
	require.NotNil(t, lib.ImportMemory([]byte(triangleOBJ), "", 0, nil, cb))
	assert.Equal(t, []float32{0, 0.5, 1}, pcts)
	assert.Equal(t, []string{"", "half", "done"}, msgs)
	assert.Equal(t, 3, lib.ProgressCalls())
}

func TestProgressCancel(t *testing.T) {
	lib := New()
	calls := 0
	cb := &ffi.ProgressCallback{Proc: func(float32, *byte, uintptr) bool {
		calls++
		return calls < 2
	}}
	assert.Nil(t, lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, cb))
	assert.Equal(t, 2, calls)
	assert.Contains(t, lib.ErrorString(), "cancelled")
	assert.Equal(t, 0, lib.Live())
}

func TestLastProperties(t *testing.T) {
	name := []byte(ffi.PropGlobalScaleFactor + "\x00")
	recs := make([]ffi.PropertyRecord, 1)
	recs[0].Name = &name[0]
	recs[0].Kind = ffi.PropertyFloat
	recs[0].SetFloat(2)

	lib := New()
	s := lib.ImportMemory([]byte(triangleOBJ), "", stepGlobalScale, recs, nil)
	require.NotNil(t, s)

	props := lib.LastProperties()
	require.Len(t, props, 1)
	assert.Equal(t, ffi.PropGlobalScaleFactor, props[0].Name)
	assert.Equal(t, float32(2), props[0].Float)

	m := ffi.At(s.Meshes, s.NumMeshes, 0)
	assert.Equal(t, ffi.Vector3{X: 2}, ffi.Slice(m.Vertices, m.NumVertices)[1])
}

func TestMaterialProperties(t *testing.T) {
	diffuse := ffi.Color4{R: 1, A: 1}
	desc := triangleDesc()
	desc.Materials[0] = MaterialDesc{
		Name:     "red",
		Diffuse:  &diffuse,
		Textures: map[ffi.TextureType][]string{ffi.TextureDiffuse: {"a.png", "b.png"}},
	}
	s := Build(desc)
	mat := ffi.At(s.Materials, s.NumMaterials, 0)
	require.NotNil(t, mat)
	require.Equal(t, uint32(4), mat.NumProperties)

	name := ffi.At(mat.Properties, mat.NumProperties, 0)
	assert.Equal(t, ffi.MatKeyName, name.Key.String())
	assert.Equal(t, ffi.PTIString, name.Type)
	data := ffi.Slice(name.Data, name.DataLength)
	assert.Equal(t, []byte{3, 0, 0, 0, 'r', 'e', 'd', 0}, data)

	tex := ffi.At(mat.Properties, mat.NumProperties, 3)
	assert.Equal(t, ffi.MatKeyTextureFile, tex.Key.String())
	assert.Equal(t, uint32(ffi.TextureDiffuse), tex.Semantic)
	assert.Equal(t, uint32(1), tex.Index)
}

func TestExtensionAndVersion(t *testing.T) {
	lib := New()
	assert.True(t, lib.IsExtensionSupported(".obj"))
	assert.True(t, lib.IsExtensionSupported("*.OBJ"))
	assert.False(t, lib.IsExtensionSupported("fbx"))

	major, minor, rev := lib.Version()
	assert.Equal(t, [3]uint32{5, 4, 3}, [3]uint32{major, minor, rev})
}
