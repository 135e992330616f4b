//go:build darwin || linux || freebsd

package native

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
	"github.com/wippyai/assimp-go/internal/handles"
)

const triangleOBJ = "o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func openLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open("")
	if err != nil {
		t.Skipf("libassimp not available: %v", err)
	}
	return lib
}

func TestFSPath(t *testing.T) {
	tests := map[string]string{
		"models/a.obj":     "models/a.obj",
		"./models/a.obj":   "models/a.obj",
		"/models/a.obj":    "models/a.obj",
		`models\tex\b.png`: "models/tex/b.png",
		"models/../a.obj":  "a.obj",
		"":                 ".",
		"/":                ".",
	}
	for in, want := range tests {
		assert.Equal(t, want, fsPath(in), in)
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/libassimp.so")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot load libassimp")
}

func TestImportMemory(t *testing.T) {
	lib := openLibrary(t)

	calls := 0
	cb := &ffi.ProgressCallback{Proc: func(float32, *byte, uintptr) bool { calls++; return true }}
	s := lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, cb)
	require.NotNil(t, s, lib.ErrorString())
	defer lib.ReleaseImport(s)

	assert.Equal(t, 2, calls)
	assert.Equal(t, uint32(1), s.NumMeshes)
	m := *ffi.At(s.Meshes, s.NumMeshes, 0)
	assert.Equal(t, uint32(3), m.NumVertices)
	assert.Equal(t, uint32(1), m.NumFaces)

	major, _, _ := lib.Version()
	assert.NotZero(t, major)
	assert.True(t, lib.IsExtensionSupported("obj"))
	assert.False(t, lib.IsExtensionSupported("definitely-not-a-format"))
}

func TestImportFileFromFS(t *testing.T) {
	lib := openLibrary(t)
	fsys := fstest.MapFS{"models/tri.obj": {Data: []byte(triangleOBJ)}}

	s := lib.ImportFile("models/tri.obj", 0, fsys, nil, nil)
	require.NotNil(t, s, lib.ErrorString())
	lib.ReleaseImport(s)
	assert.Zero(t, openFiles.Len())
	assert.Zero(t, mounts.Len())

	assert.Nil(t, lib.ImportFile("models/missing.obj", 0, fsys, nil, nil))
	assert.NotEmpty(t, lib.ErrorString())
}

func TestMountClosedTable(t *testing.T) {
	saved := mounts
	mounts = handles.NewTable[*mount]()
	require.NoError(t, mounts.Close())
	defer func() { mounts = saved }()

	_, err := mountFS(fstest.MapFS{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.NotErrorIs(t, err, errors.ErrForeign)
	assert.ErrorIs(t, err, handles.ErrClosed)
}

func TestImportCancelled(t *testing.T) {
	lib := openLibrary(t)
	stop := &ffi.ProgressCallback{Proc: func(float32, *byte, uintptr) bool { return false }}

	assert.Nil(t, lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, stop))
	assert.Equal(t, msgCancelled, lib.ErrorString())
}

func TestCopyAndPostProcessInvalidation(t *testing.T) {
	lib := openLibrary(t)
	s := lib.ImportMemory([]byte(triangleOBJ), "obj", 0, nil, nil)
	require.NotNil(t, s, lib.ErrorString())

	c := lib.CopyScene(s)
	require.NotNil(t, c)
	assert.False(t, lib.PostProcessInvalidated(c))
	assert.True(t, lib.PostProcessInvalidated(s))

	// copies carry no importer, so post-processing them fails without
	// freeing them
	assert.Nil(t, lib.ApplyPostProcessing(c, 0x8))
	assert.False(t, lib.PostProcessInvalidated(c))
	lib.FreeScene(c)

	out := lib.ApplyPostProcessing(s, 0x8)
	require.NotNil(t, out, lib.ErrorString())
	lib.ReleaseImport(out)
}

func TestImportProperties(t *testing.T) {
	lib := openLibrary(t)
	var rec ffi.PropertyRecord
	name := []byte(ffi.PropGlobalScaleFactor + "\x00")
	rec.Name = &name[0]
	rec.Kind = ffi.PropertyFloat
	rec.SetFloat(2)

	s := lib.ImportMemory([]byte(triangleOBJ), "obj", 0x8000000, []ffi.PropertyRecord{rec}, nil)
	require.NotNil(t, s, lib.ErrorString())
	defer lib.ReleaseImport(s)
	m := ffi.At(s.Meshes, s.NumMeshes, 0)
	v := ffi.Slice(m.Vertices, m.NumVertices)
	assert.Equal(t, float32(2), v[1].X)
}
