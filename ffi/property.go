package ffi

import "unsafe"

// PropertyKind tags the value held by a PropertyRecord.
type PropertyKind int32

const (
	PropertyInteger PropertyKind = iota
	PropertyFloat
	PropertyBool
	PropertyString
	PropertyMatrix
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyInteger:
		return "integer"
	case PropertyFloat:
		return "float"
	case PropertyBool:
		return "bool"
	case PropertyString:
		return "string"
	case PropertyMatrix:
		return "matrix"
	default:
		return "invalid"
	}
}

// PropertyRecord mirrors the tagged record accepted by the property-store
// entry points:
//
//	struct {
//	    const char* name;
//	    int32_t     kind;
//	    union { int32_t i; float f; const char* s; const aiMatrix4x4* m; } value;
//	};
//
// Integer, float and bool values are stored inline. String and matrix
// values point into buffers owned by whoever built the record, which must
// keep them alive and in place until the foreign call returns.
type PropertyRecord struct {
	Name  *byte
	Kind  PropertyKind
	_     [4]byte
	Value [8]byte
}

// Int returns the inline integer (also used for bool).
func (r *PropertyRecord) Int() int32 {
	return *(*int32)(unsafe.Pointer(&r.Value))
}

// SetInt stores an inline integer.
func (r *PropertyRecord) SetInt(v int32) {
	r.Value = [8]byte{}
	*(*int32)(unsafe.Pointer(&r.Value)) = v
}

// Float returns the inline float.
func (r *PropertyRecord) Float() float32 {
	return *(*float32)(unsafe.Pointer(&r.Value))
}

// SetFloat stores an inline float.
func (r *PropertyRecord) SetFloat(v float32) {
	r.Value = [8]byte{}
	*(*float32)(unsafe.Pointer(&r.Value)) = v
}

// Pointer returns the out-of-line value pointer.
func (r *PropertyRecord) Pointer() unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&r.Value))
}

// SetPointer stores an out-of-line value pointer.
func (r *PropertyRecord) SetPointer(p unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Pointer(&r.Value)) = p
}

// NameString copies the record name.
func (r *PropertyRecord) NameString() string {
	return GoString(r.Name)
}

// DecodedProperty is a Go copy of a PropertyRecord.
type DecodedProperty struct {
	Name   string
	Kind   PropertyKind
	Int    int32
	Float  float32
	Bool   bool
	String string
	Matrix Matrix4x4
}

// DecodeRecord copies the name and value out of r. Out-of-line values are
// read through their pointers, so r's backing buffers must still be alive.
func DecodeRecord(r *PropertyRecord) DecodedProperty {
	d := DecodedProperty{
		Name: r.NameString(),
		Kind: r.Kind,
	}
	switch r.Kind {
	case PropertyInteger:
		d.Int = r.Int()
	case PropertyFloat:
		d.Float = r.Float()
	case PropertyBool:
		d.Int = r.Int()
		d.Bool = d.Int != 0
	case PropertyString:
		d.String = GoString((*byte)(r.Pointer()))
	case PropertyMatrix:
		if m := (*Matrix4x4)(r.Pointer()); m != nil {
			d.Matrix = *m
		}
	}
	return d
}
