//go:build darwin || linux || freebsd

package native

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// EnvLibrary names the environment variable consulted by Open when no
// path is given.
const EnvLibrary = "ASSIMP_LIBRARY"

const (
	msgCancelled = "Import cancelled by progress handler"
	msgCopy      = "Unable to copy scene"
)

var (
	msgImporting = []byte("Importing\x00")
	msgDone      = []byte("Done\x00")
)

// Library is a loaded libassimp. It is safe for concurrent use.
type Library struct {
	handle uintptr
	path   string

	importFile   func(path string, flags uint32, io *fileIO, store uintptr) *ffi.Scene
	importMemory func(buf *byte, length, flags uint32, hint string, store uintptr) *ffi.Scene
	applyPP      func(s *ffi.Scene, flags uint32) *ffi.Scene
	releaseScene func(s *ffi.Scene)
	copyScene    func(in *ffi.Scene, out **ffi.Scene)
	freeScene    func(s *ffi.Scene)
	errorString  func() string

	createStore  func() uintptr
	releaseStore func(store uintptr)
	setInteger   func(store uintptr, name string, v int32)
	setFloat     func(store uintptr, name string, v float32)
	setString    func(store uintptr, name string, v *ffi.String)
	setMatrix    func(store uintptr, name string, v *ffi.Matrix4x4)

	versionMajor    func() uint32
	versionMinor    func() uint32
	versionRevision func() uint32
	extSupported    func(ext string) int32

	mu      sync.Mutex
	lastErr string
	copied  map[uintptr]struct{}
}

var (
	_ ffi.Library            = (*Library)(nil)
	_ ffi.InvalidationProber = (*Library)(nil)
	_ ffi.ExtensionChecker   = (*Library)(nil)
	_ ffi.Versioner          = (*Library)(nil)
)

// Open loads libassimp from path. An empty path tries $ASSIMP_LIBRARY and
// then the platform's usual library names.
func Open(path string) (*Library, error) {
	candidates := libraryNames()
	switch {
	case path != "":
		candidates = []string{path}
	case os.Getenv(EnvLibrary) != "":
		candidates = []string{os.Getenv(EnvLibrary)}
	}

	var errs []error
	for _, name := range candidates {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lib, err := bind(h, name)
		if err != nil {
			_ = purego.Dlclose(h)
			return nil, err
		}
		major, minor, rev := lib.Version()
		Logger().Info("loaded assimp",
			zap.String("path", name),
			zap.String("version", fmt.Sprintf("%d.%d.%d", major, minor, rev)))
		return lib, nil
	}
	return nil, errors.Load("cannot load libassimp (tried "+strings.Join(candidates, ", ")+")", stderrors.Join(errs...))
}

func libraryNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"libassimp.dylib",
			"libassimp.6.dylib",
			"libassimp.5.dylib",
			"/opt/homebrew/lib/libassimp.dylib",
			"/usr/local/lib/libassimp.dylib",
		}
	default:
		return []string{
			"libassimp.so",
			"libassimp.so.6",
			"libassimp.so.5",
		}
	}
}

func bind(h uintptr, path string) (*Library, error) {
	l := &Library{handle: h, path: path, copied: make(map[uintptr]struct{})}
	symbols := []struct {
		fptr any
		name string
	}{
		{&l.importFile, "aiImportFileExWithProperties"},
		{&l.importMemory, "aiImportFileFromMemoryWithProperties"},
		{&l.applyPP, "aiApplyPostProcessing"},
		{&l.releaseScene, "aiReleaseImport"},
		{&l.copyScene, "aiCopyScene"},
		{&l.freeScene, "aiFreeScene"},
		{&l.errorString, "aiGetErrorString"},
		{&l.createStore, "aiCreatePropertyStore"},
		{&l.releaseStore, "aiReleasePropertyStore"},
		{&l.setInteger, "aiSetImportPropertyInteger"},
		{&l.setFloat, "aiSetImportPropertyFloat"},
		{&l.setString, "aiSetImportPropertyString"},
		{&l.setMatrix, "aiSetImportPropertyMatrix"},
		{&l.versionMajor, "aiGetVersionMajor"},
		{&l.versionMinor, "aiGetVersionMinor"},
		{&l.versionRevision, "aiGetVersionRevision"},
		{&l.extSupported, "aiIsExtensionSupported"},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(h, s.name)
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("%s: missing symbol %s", path, s.name), err)
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return l, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

func (l *Library) ImportFile(path string, flags uint32, fsys fs.FS, props []ffi.PropertyRecord, progress *ffi.ProgressCallback) *ffi.Scene {
	return l.runImport(props, progress, func(store uintptr) *ffi.Scene {
		if fsys == nil {
			return l.importFile(path, flags, nil, store)
		}
		m, err := mountFS(fsys)
		if err != nil {
			l.setError(err.Error())
			return nil
		}
		defer m.unmount()
		return l.importFile(path, flags, &m.io, store)
	})
}

func (l *Library) ImportMemory(data []byte, hint string, flags uint32, props []ffi.PropertyRecord, progress *ffi.ProgressCallback) *ffi.Scene {
	if len(data) == 0 || uint64(len(data)) > math.MaxUint32 {
		l.setError("Invalid parameters passed to ReadFileFromMemory()")
		return nil
	}
	return l.runImport(props, progress, func(store uintptr) *ffi.Scene {
		s := l.importMemory(&data[0], uint32(len(data)), flags, hint, store)
		runtime.KeepAlive(data)
		return s
	})
}

// runImport polls progress around one import call made with a property
// store holding props.
func (l *Library) runImport(props []ffi.PropertyRecord, progress *ffi.ProgressCallback, call func(store uintptr) *ffi.Scene) *ffi.Scene {
	if !progress.Invoke(0, &msgImporting[0]) {
		l.setError(msgCancelled)
		return nil
	}

	store := l.createStore()
	defer l.releaseStore(store)
	l.applyProperties(store, props)

	s := call(store)
	if s == nil {
		l.captureError()
		return nil
	}
	if !progress.Invoke(1, &msgDone[0]) {
		l.releaseScene(s)
		l.setError(msgCancelled)
		return nil
	}
	return s
}

func (l *Library) applyProperties(store uintptr, props []ffi.PropertyRecord) {
	for i := range props {
		p := ffi.DecodeRecord(&props[i])
		switch p.Kind {
		case ffi.PropertyInteger, ffi.PropertyBool:
			l.setInteger(store, p.Name, p.Int)
		case ffi.PropertyFloat:
			l.setFloat(store, p.Name, p.Float)
		case ffi.PropertyString:
			s := ffi.MakeString(p.String)
			l.setString(store, p.Name, &s)
		case ffi.PropertyMatrix:
			m := p.Matrix
			l.setMatrix(store, p.Name, &m)
		default:
			Logger().Warn("skipping import property of unknown kind",
				zap.String("name", p.Name),
				zap.Stringer("kind", p.Kind))
		}
	}
}

func (l *Library) ReleaseImport(s *ffi.Scene) {
	if s == nil {
		return
	}
	l.releaseScene(s)
}

func (l *Library) CopyScene(s *ffi.Scene) *ffi.Scene {
	if s == nil {
		l.setError(msgCopy)
		return nil
	}
	var out *ffi.Scene
	l.copyScene(s, &out)
	if out == nil {
		l.setError(msgCopy)
		return nil
	}
	l.mu.Lock()
	l.copied[addr(out)] = struct{}{}
	l.mu.Unlock()
	return out
}

func (l *Library) FreeScene(s *ffi.Scene) {
	if s == nil {
		return
	}
	l.mu.Lock()
	delete(l.copied, addr(s))
	l.mu.Unlock()
	l.freeScene(s)
}

func (l *Library) ApplyPostProcessing(s *ffi.Scene, flags uint32) *ffi.Scene {
	out := l.applyPP(s, flags)
	if out == nil {
		l.captureError()
		return nil
	}
	if out != s {
		l.mu.Lock()
		if _, ok := l.copied[addr(s)]; ok {
			delete(l.copied, addr(s))
			l.copied[addr(out)] = struct{}{}
		}
		l.mu.Unlock()
	}
	return out
}

// PostProcessInvalidated reports whether a failed ApplyPostProcessing call
// freed s. libassimp frees imported scenes on failure and never copies.
func (l *Library) PostProcessInvalidated(s *ffi.Scene) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, copied := l.copied[addr(s)]
	return !copied
}

// ErrorString returns the error recorded by the latest failed call on l.
//
// libassimp keeps a single process-wide error string; it is copied right
// after each failure, so concurrent failures may still report each
// other's message.
func (l *Library) ErrorString() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Library) captureError() {
	l.setError(l.errorString())
}

func (l *Library) setError(msg string) {
	l.mu.Lock()
	l.lastErr = msg
	l.mu.Unlock()
}

func (l *Library) IsExtensionSupported(ext string) bool {
	ext = strings.TrimPrefix(strings.TrimPrefix(ext, "*"), ".")
	if ext == "" {
		return false
	}
	return l.extSupported("."+ext) != 0
}

func (l *Library) Version() (major, minor, revision uint32) {
	return l.versionMajor(), l.versionMinor(), l.versionRevision()
}

func addr(s *ffi.Scene) uintptr {
	return uintptr(unsafe.Pointer(s))
}
