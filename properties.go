package assimp

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// Property is one named import setting. Build values with IntProperty,
// FloatProperty, BoolProperty, StringProperty or MatrixProperty.
type Property struct {
	Name   string
	Kind   ffi.PropertyKind
	Int    int32
	Float  float32
	Bool   bool
	String string
	Matrix ffi.Matrix4x4
}

func IntProperty(name string, v int32) Property {
	return Property{Name: name, Kind: ffi.PropertyInteger, Int: v}
}

func FloatProperty(name string, v float32) Property {
	return Property{Name: name, Kind: ffi.PropertyFloat, Float: v}
}

func BoolProperty(name string, v bool) Property {
	return Property{Name: name, Kind: ffi.PropertyBool, Bool: v}
}

func StringProperty(name, v string) Property {
	return Property{Name: name, Kind: ffi.PropertyString, String: v}
}

func MatrixProperty(name string, v ffi.Matrix4x4) Property {
	return Property{Name: name, Kind: ffi.PropertyMatrix, Matrix: v}
}

// PropertyFromValue converts a decoded configuration value (as produced by
// YAML or JSON decoders) into a Property. A list of 16 numbers becomes a
// row-major matrix.
func PropertyFromValue(name string, v any) (Property, error) {
	switch x := v.(type) {
	case bool:
		return BoolProperty(name, x), nil
	case int:
		return intProperty(name, int64(x))
	case int32:
		return IntProperty(name, x), nil
	case int64:
		return intProperty(name, x)
	case uint64:
		if x > 1<<31-1 {
			return Property{}, outOfRange(name, v)
		}
		return IntProperty(name, int32(x)), nil
	case float32:
		return FloatProperty(name, x), nil
	case float64:
		return FloatProperty(name, float32(x)), nil
	case string:
		return StringProperty(name, x), nil
	case ffi.Matrix4x4:
		return MatrixProperty(name, x), nil
	case []any:
		if len(x) != 16 {
			return Property{}, errors.InvalidParameter(errors.PhaseEncode, []string{name}, v,
				fmt.Sprintf("matrix needs 16 values, got %d", len(x)))
		}
		var vals [16]float32
		for i, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return Property{}, errors.InvalidParameter(errors.PhaseEncode, []string{name, strconv.Itoa(i)}, e, err.Error())
			}
			vals[i] = f
		}
		return MatrixProperty(name, *(*ffi.Matrix4x4)(unsafe.Pointer(&vals))), nil
	default:
		return Property{}, errors.InvalidParameter(errors.PhaseEncode, []string{name}, v,
			fmt.Sprintf("unsupported property type %T", v))
	}
}

func intProperty(name string, v int64) (Property, error) {
	if v < -1<<31 || v > 1<<31-1 {
		return Property{}, outOfRange(name, v)
	}
	return IntProperty(name, int32(v)), nil
}

func outOfRange(name string, v any) error {
	return errors.InvalidParameter(errors.PhaseEncode, []string{name}, v, "integer does not fit in 32 bits")
}

func toFloat(v any) (float32, error) {
	switch x := v.(type) {
	case int:
		return float32(x), nil
	case int64:
		return float32(x), nil
	case float64:
		return float32(x), nil
	case float32:
		return x, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// EncodedProperties is a property list in the foreign record layout.
//
// Records hold pointers into the bundle's own string and matrix buffers.
// Those buffers are pinned until Close, so the bundle must stay open for
// the whole foreign call it was built for.
type EncodedProperties struct {
	Records []ffi.PropertyRecord

	names    [][]byte
	strings  [][]byte
	matrices []ffi.Matrix4x4
	pinner   runtime.Pinner
}

// EncodeProperties encodes props. Names must be non-empty; names and
// string values must not contain NUL bytes, and string values must fit a
// foreign string.
//
// All auxiliary buffers are built first; record pointers are patched in a
// second pass, once no buffer can move anymore.
func EncodeProperties(props []Property) (*EncodedProperties, error) {
	e := &EncodedProperties{
		Records: make([]ffi.PropertyRecord, len(props)),
		names:   make([][]byte, len(props)),
		strings: make([][]byte, len(props)),
	}

	// aux maps record i to its slot in matrices, or -1.
	aux := make([]int, len(props))
	for i, p := range props {
		aux[i] = -1
		path := []string{"properties", strconv.Itoa(i)}
		if p.Name == "" {
			return nil, errors.InvalidParameter(errors.PhaseEncode, path, p.Name, "property name is empty")
		}
		if strings.IndexByte(p.Name, 0) >= 0 {
			return nil, errors.InvalidParameter(errors.PhaseEncode, append(path, "name"), p.Name, "property name contains a NUL byte")
		}
		e.names[i] = cBytes(p.Name)

		r := &e.Records[i]
		r.Kind = p.Kind
		switch p.Kind {
		case ffi.PropertyInteger:
			r.SetInt(p.Int)
		case ffi.PropertyFloat:
			r.SetFloat(p.Float)
		case ffi.PropertyBool:
			if p.Bool {
				r.SetInt(1)
			} else {
				r.SetInt(0)
			}
		case ffi.PropertyString:
			if strings.IndexByte(p.String, 0) >= 0 {
				return nil, errors.InvalidParameter(errors.PhaseEncode, append(path, "value"), p.String, "string value contains a NUL byte")
			}
			if len(p.String) >= ffi.MaxStringLen {
				return nil, errors.InvalidParameter(errors.PhaseEncode, append(path, "value"), len(p.String),
					fmt.Sprintf("string value longer than %d bytes", ffi.MaxStringLen-1))
			}
			e.strings[i] = cBytes(p.String)
		case ffi.PropertyMatrix:
			aux[i] = len(e.matrices)
			e.matrices = append(e.matrices, p.Matrix)
		default:
			return nil, errors.InvalidParameter(errors.PhaseEncode, append(path, "kind"), p.Kind, "unknown property kind")
		}
	}

	// Second pass: every buffer is final.
	for i := range e.Records {
		r := &e.Records[i]
		r.Name = &e.names[i][0]
		e.pinner.Pin(r.Name)
		switch {
		case e.strings[i] != nil:
			b := &e.strings[i][0]
			e.pinner.Pin(b)
			r.SetPointer(unsafe.Pointer(b))
		case aux[i] >= 0:
			m := &e.matrices[aux[i]]
			e.pinner.Pin(m)
			r.SetPointer(unsafe.Pointer(m))
		}
	}
	return e, nil
}

func cBytes(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// Decode reads the records back. It is valid until Close.
func (e *EncodedProperties) Decode() []ffi.DecodedProperty {
	out := make([]ffi.DecodedProperty, len(e.Records))
	for i := range e.Records {
		out[i] = ffi.DecodeRecord(&e.Records[i])
	}
	return out
}

// Close unpins the buffers. The records must not be used afterwards.
// Close on a nil bundle is a no-op.
func (e *EncodedProperties) Close() {
	if e == nil {
		return
	}
	e.pinner.Unpin()
}
