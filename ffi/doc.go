// Package ffi contains pure-Go representations of the C structs produced by
// the Open Asset Import Library (assimp) and the Go form of its C ABI.
//
// The struct definitions mirror the field layout of assimp's public headers
// (scene.h, mesh.h, material.h, anim.h, camera.h, light.h, texture.h) on
// 64-bit platforms, so a pointer returned by the native library can be read
// through them directly. Nothing in this package copies foreign memory:
// Slice and At turn a pointer/length pair into a Go slice or element without
// allocating, and String.Bytes returns a view of an aiString's buffer.
//
// Views returned by Slice alias memory owned by the foreign library. They are
// valid only while the scene that owns them is alive; the root package
// enforces that by keeping a reference-counted handle next to every view.
//
// # Library
//
// Library is the foreign ABI consumed by the binding. Two implementations
// ship with this module:
//
//	ffi/native   libassimp loaded at runtime through purego (no cgo)
//	ffi/ffitest  an instrumented in-memory implementation for tests
//
// # Release protocols
//
// A scene returned by ImportFile or ImportMemory must be released with
// ReleaseImport. A scene returned by CopyScene must be released with
// FreeScene. The two are not interchangeable.
package ffi
