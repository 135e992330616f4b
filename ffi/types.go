package ffi

import "unsafe"

const (
	// MaxStringLen is the capacity of String.Data including the terminator.
	MaxStringLen = 1024

	MaxColorSets        = 8
	MaxTextureCoords    = 8
	HintMaxTextureLen   = 9
	maxCStringScanBytes = 1 << 20
)

// Vector2 mirrors aiVector2D.
type Vector2 struct {
	X, Y float32
}

// Vector3 mirrors aiVector3D.
type Vector3 struct {
	X, Y, Z float32
}

// Color3 mirrors aiColor3D.
type Color3 struct {
	R, G, B float32
}

// Color4 mirrors aiColor4D.
type Color4 struct {
	R, G, B, A float32
}

// Quaternion mirrors aiQuaternion. Note the W-first layout.
type Quaternion struct {
	W, X, Y, Z float32
}

// Matrix4x4 mirrors aiMatrix4x4 (row-major).
type Matrix4x4 struct {
	A1, A2, A3, A4 float32
	B1, B2, B3, B4 float32
	C1, C2, C3, C4 float32
	D1, D2, D3, D4 float32
}

// Identity is the 4x4 identity matrix.
var Identity = Matrix4x4{
	A1: 1,
	B2: 1,
	C3: 1,
	D4: 1,
}

// AABB mirrors aiAABB.
type AABB struct {
	Min, Max Vector3
}

// String mirrors aiString: a length-prefixed, NUL-terminated UTF-8 buffer.
type String struct {
	Length uint32
	Data   [MaxStringLen]byte
}

// Bytes returns the string contents without copying.
func (s *String) Bytes() []byte {
	n := s.Length
	if n >= MaxStringLen {
		n = MaxStringLen - 1
	}
	return s.Data[:n:n]
}

// String copies the contents into a Go string.
func (s *String) String() string {
	return string(s.Bytes())
}

// Set stores v, truncating it to fit. It reports whether v fit.
func (s *String) Set(v string) bool {
	n := copy(s.Data[:MaxStringLen-1], v)
	s.Data[n] = 0
	s.Length = uint32(n)
	return n == len(v)
}

// MakeString returns a String holding v.
func MakeString(v string) String {
	var s String
	s.Set(v)
	return s
}

// GoString copies a NUL-terminated C string. A nil pointer yields "".
func GoString(p *byte) string {
	return string(CStringBytes(p))
}

// CStringBytes returns the bytes of a NUL-terminated C string without the
// terminator and without copying. A nil pointer yields nil.
func CStringBytes(p *byte) []byte {
	if p == nil {
		return nil
	}
	n := 0
	for n < maxCStringScanBytes && *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return unsafe.Slice(p, n)
}
