package ffitest

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/wippyai/assimp-go/ffi"
)

type origin int

const (
	originImport origin = iota + 1
	originCopy
)

func (o origin) String() string {
	if o == originCopy {
		return "copy"
	}
	return "import"
}

type record struct {
	origin   origin
	released bool
}

// DefaultProgressMessages are reported by imports when ProgressMessages is
// nil. An empty entry is passed to the callback as a null message.
var DefaultProgressMessages = []string{"", "Loading file", "Building scene", "Done"}

// Library is an instrumented ffi.Library backed by Go memory.
// Knob fields must be set before the library is shared between goroutines.
type Library struct {
	// FailPostProcess makes every ApplyPostProcessing call fail.
	FailPostProcess bool

	// InvalidateOnFailure releases the input of a failed
	// ApplyPostProcessing call, as libassimp does for imported scenes.
	InvalidateOnFailure bool

	// PostProcessReplaces makes ApplyPostProcessing return a new scene and
	// retire its input.
	PostProcessReplaces bool

	// ProgressMessages are the progress steps of every import.
	ProgressMessages []string

	mu            sync.Mutex
	files         map[string]*SceneDesc
	scenes        map[*ffi.Scene]*record
	lastErr       string
	violations    []string
	lastProps     []ffi.DecodedProperty
	lastPPFlags   uint32
	imports       int
	releases      int
	copies        int
	frees         int
	postProcesses int
	progressCalls int
}

var (
	_ ffi.Library            = (*Library)(nil)
	_ ffi.InvalidationProber = (*Library)(nil)
	_ ffi.ExtensionChecker   = (*Library)(nil)
	_ ffi.Versioner          = (*Library)(nil)
)

// New returns an empty library.
func New() *Library {
	return &Library{
		files:  make(map[string]*SceneDesc),
		scenes: make(map[*ffi.Scene]*record),
	}
}

// AddFile registers desc under name. ImportFile(name) builds a fresh scene
// from it on every call.
func (l *Library) AddFile(name string, desc *SceneDesc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[name] = desc
}

// NewImported builds desc and registers it as if ImportFile returned it.
func (l *Library) NewImported(desc *SceneDesc) *ffi.Scene {
	s := Build(desc)
	l.register(s, originImport)
	return s
}

// NewCopied builds desc and registers it as if CopyScene returned it.
func (l *Library) NewCopied(desc *SceneDesc) *ffi.Scene {
	s := Build(desc)
	l.register(s, originCopy)
	return s
}

func (l *Library) ImportFile(name string, flags uint32, fsys fs.FS, props []ffi.PropertyRecord, progress *ffi.ProgressCallback) *ffi.Scene {
	opts := l.beginImport(props)
	desc, err := l.resolve(name, fsys)
	if err != nil {
		l.fail(err.Error())
		return nil
	}
	return l.finishImport(desc, flags, opts, progress)
}

func (l *Library) ImportMemory(data []byte, hint string, flags uint32, props []ffi.PropertyRecord, progress *ffi.ProgressCallback) *ffi.Scene {
	opts := l.beginImport(props)
	if len(data) == 0 {
		l.fail("Invalid parameters passed to ReadFileFromMemory()")
		return nil
	}
	if hint != "" && !strings.EqualFold(hint, "obj") {
		l.fail(fmt.Sprintf("No suitable reader found for the file format of file \"$$$___magic___$$$.%s\".", hint))
		return nil
	}
	desc, err := ParseOBJ("$$$___magic___$$$", data)
	if err != nil {
		l.fail(err.Error())
		return nil
	}
	return l.finishImport(desc, flags, opts, progress)
}

func (l *Library) beginImport(props []ffi.PropertyRecord) stepOptions {
	decoded := make([]ffi.DecodedProperty, len(props))
	var opts stepOptions
	for i := range props {
		decoded[i] = ffi.DecodeRecord(&props[i])
		if decoded[i].Name == ffi.PropGlobalScaleFactor && decoded[i].Kind == ffi.PropertyFloat {
			opts.scale = decoded[i].Float
		}
	}
	l.mu.Lock()
	l.imports++
	l.lastProps = decoded
	l.mu.Unlock()
	return opts
}

func (l *Library) resolve(name string, fsys fs.FS) (*SceneDesc, error) {
	l.mu.Lock()
	desc, ok := l.files[name]
	l.mu.Unlock()
	if ok {
		return desc, nil
	}

	var data []byte
	var err error
	if fsys != nil {
		data, err = fs.ReadFile(fsys, name)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("Unable to open file \"%s\".", name)
	}
	ext := strings.ToLower(path.Ext(name))
	if ext != ".obj" {
		return nil, fmt.Errorf("No suitable reader found for the file format of file \"%s\".", name)
	}
	return ParseOBJ(strings.TrimSuffix(path.Base(name), path.Ext(name)), data)
}

func (l *Library) finishImport(desc *SceneDesc, flags uint32, opts stepOptions, progress *ffi.ProgressCallback) *ffi.Scene {
	msgs := l.ProgressMessages
	if msgs == nil {
		msgs = DefaultProgressMessages
	}
	for i, msg := range msgs {
		pct := float32(1)
		if len(msgs) > 1 {
			pct = float32(i) / float32(len(msgs)-1)
		}
		l.mu.Lock()
		l.progressCalls++
		l.mu.Unlock()
		if !progress.Invoke(pct, cString(msg)) {
			l.fail("Import cancelled by progress handler")
			return nil
		}
	}

	s := Build(desc)
	if err := applySteps(s, flags, opts); err != nil {
		l.fail(err.Error())
		return nil
	}
	l.register(s, originImport)
	return s
}

func cString(s string) *byte {
	if s == "" {
		return nil
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &buf[0]
}

func (l *Library) ReleaseImport(s *ffi.Scene) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	l.releaseLocked(s, originImport, "ReleaseImport")
}

func (l *Library) FreeScene(s *ffi.Scene) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frees++
	l.releaseLocked(s, originCopy, "FreeScene")
}

func (l *Library) releaseLocked(s *ffi.Scene, want origin, op string) {
	rec := l.checkLocked(s, op)
	if rec == nil {
		return
	}
	if rec.origin != want {
		l.violations = append(l.violations, fmt.Sprintf("%s on %s scene %p", op, rec.origin, s))
	}
	rec.released = true
	poison(s)
}

// checkLocked returns the record of a live scene and records a violation
// for null, unknown or released pointers.
func (l *Library) checkLocked(s *ffi.Scene, op string) *record {
	if s == nil {
		l.violations = append(l.violations, op+" on null scene")
		return nil
	}
	rec, ok := l.scenes[s]
	if !ok {
		l.violations = append(l.violations, fmt.Sprintf("%s on unknown scene %p", op, s))
		return nil
	}
	if rec.released {
		l.violations = append(l.violations, fmt.Sprintf("%s on released scene %p", op, s))
		return nil
	}
	return rec
}

func (l *Library) CopyScene(s *ffi.Scene) *ffi.Scene {
	l.mu.Lock()
	l.copies++
	rec := l.checkLocked(s, "CopyScene")
	l.mu.Unlock()
	if rec == nil {
		l.fail("Unable to copy scene")
		return nil
	}
	out := deepCopy(s)
	l.register(out, originCopy)
	return out
}

func (l *Library) ApplyPostProcessing(s *ffi.Scene, flags uint32) *ffi.Scene {
	l.mu.Lock()
	l.postProcesses++
	l.lastPPFlags = flags
	rec := l.checkLocked(s, "ApplyPostProcessing")
	l.mu.Unlock()
	if rec == nil {
		l.fail("Unable to find the Assimp::Importer for this aiScene")
		return nil
	}

	if l.FailPostProcess {
		l.failPostProcess(s, "post-processing failed: injected failure")
		return nil
	}

	target := s
	if l.PostProcessReplaces {
		target = deepCopy(s)
	}
	if err := applySteps(target, flags, stepOptions{}); err != nil {
		l.failPostProcess(s, err.Error())
		return nil
	}
	if target != s {
		l.mu.Lock()
		rec.released = true
		l.scenes[target] = &record{origin: rec.origin}
		poison(s)
		l.mu.Unlock()
	}
	return target
}

func (l *Library) failPostProcess(s *ffi.Scene, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = msg
	if l.InvalidateOnFailure {
		if rec := l.scenes[s]; rec != nil && !rec.released {
			rec.released = true
			poison(s)
		}
	}
}

// PostProcessInvalidated reports whether s was released by a failed
// ApplyPostProcessing call (or is otherwise no longer live).
func (l *Library) PostProcessInvalidated(s *ffi.Scene) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.scenes[s]
	return !ok || rec.released
}

func (l *Library) IsExtensionSupported(ext string) bool {
	ext = strings.TrimPrefix(strings.TrimPrefix(ext, "*"), ".")
	return strings.EqualFold(ext, "obj")
}

func (l *Library) Version() (major, minor, revision uint32) {
	return 5, 4, 3
}

func (l *Library) ErrorString() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func (l *Library) register(s *ffi.Scene, o origin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenes[s] = &record{origin: o}
}

func (l *Library) fail(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = msg
}

// Imports returns the number of ImportFile and ImportMemory calls.
func (l *Library) Imports() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.imports
}

// Releases returns the number of ReleaseImport calls.
func (l *Library) Releases() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.releases
}

// Copies returns the number of CopyScene calls.
func (l *Library) Copies() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copies
}

// Frees returns the number of FreeScene calls.
func (l *Library) Frees() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frees
}

// PostProcesses returns the number of ApplyPostProcessing calls.
func (l *Library) PostProcesses() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.postProcesses
}

// LastPostProcessFlags returns the flags of the latest ApplyPostProcessing
// call.
func (l *Library) LastPostProcessFlags() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastPPFlags
}

// ProgressCalls returns the number of progress notifications delivered.
func (l *Library) ProgressCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progressCalls
}

// LastProperties returns the properties passed to the latest import.
func (l *Library) LastProperties() []ffi.DecodedProperty {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ffi.DecodedProperty(nil), l.lastProps...)
}

// Violations returns every protocol violation seen so far.
func (l *Library) Violations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.violations...)
}

// Released reports whether s was released, by the caller or by a failed
// post-processing call.
func (l *Library) Released(s *ffi.Scene) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.scenes[s]
	return ok && rec.released
}

// Live returns the number of scenes not yet released.
func (l *Library) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, rec := range l.scenes {
		if !rec.released {
			n++
		}
	}
	return n
}
