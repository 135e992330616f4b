package ffi

import (
	"fmt"
	"unsafe"
)

// Ptr is a non-null, non-owning reference to a foreign value.
//
// A Ptr never wraps nil: NewPtr refuses it and MustPtr panics. The zero Ptr
// is the "absent" state and reports Valid() == false. Copying a Ptr copies
// the address only; ownership and lifetime are tracked by whoever holds the
// scene the value belongs to.
type Ptr[T any] struct {
	p *T
}

// NewPtr wraps p. It reports false if p is nil.
func NewPtr[T any](p *T) (Ptr[T], bool) {
	if p == nil {
		return Ptr[T]{}, false
	}
	return Ptr[T]{p: p}, true
}

// MustPtr wraps p and panics if p is nil.
func MustPtr[T any](p *T) Ptr[T] {
	if p == nil {
		var zero T
		panic(fmt.Sprintf("ffi: nil %T pointer", zero))
	}
	return Ptr[T]{p: p}
}

// Get returns the raw pointer. It panics on the zero Ptr.
func (p Ptr[T]) Get() *T {
	if p.p == nil {
		panic("ffi: use of zero Ptr")
	}
	return p.p
}

// Valid reports whether p was constructed from a non-nil pointer.
func (p Ptr[T]) Valid() bool {
	return p.p != nil
}

// Addr returns the address for logging and identity comparisons.
func (p Ptr[T]) Addr() uintptr {
	return uintptr(unsafe.Pointer(p.p))
}

// Slice returns a view of n elements starting at p without copying.
// It returns nil when p is nil or n is zero.
func Slice[T any](p *T, n uint32) []T {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

// At returns element i of a foreign array of n pointers, or nil when the
// array is nil, i is out of range or the slot itself is nil.
func At[T any](arr **T, n uint32, i int) *T {
	if arr == nil || i < 0 || uint64(i) >= uint64(n) {
		return nil
	}
	return unsafe.Slice(arr, n)[i]
}
