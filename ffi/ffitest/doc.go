// Package ffitest provides an instrumented, in-memory ffi.Library.
//
// Scenes are built in Go memory with the exact ffi struct layout, so the
// binding reads them the same way it reads scenes produced by libassimp.
// The library records every foreign call and checks the release protocol:
//
//	lib := ffitest.New()
//	lib.AddFile("tri.obj", &ffitest.SceneDesc{...})
//
//	// ... exercise the binding ...
//
//	lib.Releases()   // ReleaseImport calls
//	lib.Frees()      // FreeScene calls
//	lib.Violations() // wrong protocol, double release, unknown pointer
//
// Released scenes are poisoned (counts zeroed, pointers cleared) so a read
// through a dangling view shows up as missing data rather than passing
// silently.
//
// ImportMemory understands a subset of Wavefront OBJ (o/g, v, vn, vt, f,
// usemtl). ImportFile serves scenes registered with AddFile and otherwise
// parses .obj files read through the supplied fs.FS or the OS.
//
// Failure injection:
//
//	lib.FailPostProcess = true       // ApplyPostProcessing returns nil
//	lib.InvalidateOnFailure = true   // ... after releasing its input
//	lib.ProgressMessages = []string{"", "\xff"} // progress payloads
package ffitest
