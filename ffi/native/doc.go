// Package native implements ffi.Library on top of a shared libassimp,
// loaded at run time with purego. No cgo toolchain is needed to build it.
//
// Open locates the library (an explicit path, the ASSIMP_LIBRARY
// environment variable, then the platform's usual names) and binds the
// C API entry points:
//
//	aiImportFileExWithProperties          ImportFile
//	aiImportFileFromMemoryWithProperties  ImportMemory
//	aiApplyPostProcessing                 ApplyPostProcessing
//	aiReleaseImport                       ReleaseImport
//	aiCopyScene / aiFreeScene             CopyScene / FreeScene
//	aiCreatePropertyStore and friends     import properties
//
// Import properties are replayed onto a fresh aiPropertyStore for every
// call. A non-nil fs.FS is exposed to the importer as an aiFileIO whose
// callbacks read from it, so referenced files (materials, textures) come
// from the same file system.
//
// The C API has no progress hook. The progress callback is polled once
// before the import and once after it; cancelling at either point makes
// the import return nil.
//
// aiApplyPostProcessing frees an imported scene when it fails but leaves a
// copied scene alone. The library tracks the scenes it copied and reports
// this through ffi.InvalidationProber. Post-processing a copied scene
// always fails with libassimp, since copies carry no importer.
package native
