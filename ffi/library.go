package ffi

import "io/fs"

// ProgressProc is the fixed-signature progress slot. percentage is in
// [0, 1], message may be nil, userData is passed back unchanged from the
// ProgressCallback it was registered with. Returning false asks the
// library to abort.
type ProgressProc func(percentage float32, message *byte, userData uintptr) bool

// ProgressCallback pairs a ProgressProc with its opaque user data.
type ProgressCallback struct {
	Proc     ProgressProc
	UserData uintptr
}

// Invoke calls the callback. A nil callback always continues.
func (c *ProgressCallback) Invoke(percentage float32, message *byte) bool {
	if c == nil || c.Proc == nil {
		return true
	}
	return c.Proc(percentage, message, c.UserData)
}

// Library is the foreign scene-import ABI.
//
// Every method is synchronous. Returned scenes are owned by the caller
// and must be released with the matching protocol: ReleaseImport for
// ImportFile/ImportMemory results, FreeScene for CopyScene results.
// ApplyPostProcessing works in place and may return a different pointer;
// a nil return signals failure and leaves the validity of the input
// unspecified.
type Library interface {
	// ImportFile reads path through fsys (the OS file system when nil).
	ImportFile(path string, flags uint32, fsys fs.FS, props []PropertyRecord, progress *ProgressCallback) *Scene

	// ImportMemory reads a scene from data. hint is a file extension
	// helping format detection and may be empty.
	ImportMemory(data []byte, hint string, flags uint32, props []PropertyRecord, progress *ProgressCallback) *Scene

	ReleaseImport(s *Scene)
	CopyScene(s *Scene) *Scene
	FreeScene(s *Scene)
	ApplyPostProcessing(s *Scene, flags uint32) *Scene

	// ErrorString returns the text of the last failure, or "".
	ErrorString() string
}

// InvalidationProber is implemented by libraries that can tell whether a
// failed ApplyPostProcessing call freed its input.
type InvalidationProber interface {
	PostProcessInvalidated(s *Scene) bool
}

// ExtensionChecker is implemented by libraries that can report whether a
// file extension (".obj", "fbx") has an importer.
type ExtensionChecker interface {
	IsExtensionSupported(ext string) bool
}

// Versioner is implemented by libraries that report their version.
type Versioner interface {
	Version() (major, minor, revision uint32)
}
