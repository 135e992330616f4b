// Package assimp is a memory-safe binding around the Open Asset Import
// Library (assimp) C API.
//
// Imported scenes stay in foreign memory. The package wraps them in a
// reference-counted, thread-shareable handle and exposes the object graph
// through zero-copy views: vertex, index and key arrays are returned as Go
// slices aliasing the foreign buffers.
//
// # Architecture Overview
//
//	assimp/              Scene handle, views, Importer, post-processing,
//	│                    progress bridge, property marshaling
//	├── ffi/             foreign struct layouts, Ptr[T], the Library ABI
//	├── ffi/native/      libassimp loaded at run time through purego
//	├── ffi/ffitest/     instrumented in-memory Library for tests
//	├── errors/          structured error types
//	└── internal/        handle table, CLI config and logging
//
// # Quick Start
//
//	lib, err := native.Open("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	imp := assimp.NewImporter(lib)
//
//	scene, err := imp.ReadFile(ctx, "model.obj", assimp.Triangulate|assimp.GenNormals)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scene.Close()
//
//	for mesh := range scene.Meshes() {
//	    fmt.Println(mesh.Name(), mesh.NumVertices(), len(mesh.Vertices()))
//	}
//
// # Ownership
//
// A scene pointer is released with the protocol matching how it was
// produced: ReleaseImport for imported scenes, FreeScene for deep copies.
// Every Scene handle owns one reference. Clone adds one, Close drops one,
// and the foreign release runs exactly once, after the last reference is
// gone. Handles that are never closed are released when garbage collected.
//
// Views (Node, Mesh, Material, ...) keep the scene alive on their own, so
// they remain valid after the handle that produced them is closed. Slices
// returned by views alias foreign memory and are valid only while the view
// (or another reference to the scene) is reachable.
//
// # Post-processing
//
// PostProcess consumes its input handle. A handle that holds the only
// reference is transformed in place. A shared scene is deep-copied first,
// so other holders never observe the mutation. When the foreign call
// fails, the input pointer may already be invalid; it is leaked rather
// than released twice, unless the library can report that it survived.
//
// # Thread Safety
//
// Scene handles and views are safe for concurrent reads. Clone and Close
// may be called from any goroutine. The foreign memory is never mutated
// while more than one reference exists.
package assimp
