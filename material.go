package assimp

import (
	"encoding/binary"
	"iter"
	"math"
	"runtime"
	"unicode/utf8"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// Material is a view of one material. Values are stored as a list of keyed
// properties; the typed getters decode them the way aiGetMaterial* does.
type Material struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Material]
}

func newMaterial(a *anchor, p *ffi.Material) (Material, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Material{}, false
	}
	return Material{a: a, ptr: ptr}, true
}

func materialAt(a *anchor, i int) (Material, bool) {
	s := a.scene()
	return newMaterial(a, ffi.At(s.Materials, s.NumMaterials, i))
}

// NumProperties returns the number of properties.
func (m Material) NumProperties() int {
	defer runtime.KeepAlive(m.a)
	return int(m.ptr.Get().NumProperties)
}

// Property returns property i, or false when i is out of range.
func (m Material) Property(i int) (MaterialProperty, bool) {
	r := m.ptr.Get()
	return newMaterialProperty(m.a, ffi.At(r.Properties, r.NumProperties, i))
}

// Properties iterates over all properties.
func (m Material) Properties() iter.Seq[MaterialProperty] {
	return func(yield func(MaterialProperty) bool) {
		for i := range m.NumProperties() {
			p, ok := m.Property(i)
			if ok && !yield(p) {
				return
			}
		}
	}
}

// Find returns the property with the given key, texture type and index.
// Non-texture keys use TextureNone and index 0.
func (m Material) Find(key string, semantic ffi.TextureType, index int) (MaterialProperty, bool) {
	defer runtime.KeepAlive(m.a)
	for p := range m.Properties() {
		r := p.ptr.Get()
		if r.Semantic == uint32(semantic) && int(r.Index) == index && string(r.Key.Bytes()) == key {
			return p, true
		}
	}
	return MaterialProperty{}, false
}

func (m Material) find(key string, semantic ffi.TextureType, index int) (MaterialProperty, error) {
	p, ok := m.Find(key, semantic, index)
	if !ok {
		return MaterialProperty{}, errors.NotFound(errors.PhaseDecode, "material property", key)
	}
	return p, nil
}

// Name returns the material name.
func (m Material) Name() (string, error) {
	return m.StringValue(ffi.MatKeyName)
}

// StringValue decodes the string property key.
func (m Material) StringValue(key string) (string, error) {
	p, err := m.find(key, ffi.TextureNone, 0)
	if err != nil {
		return "", err
	}
	return p.StringValue()
}

// Float decodes the first value of the numeric property key.
func (m Material) Float(key string) (float32, error) {
	p, err := m.find(key, ffi.TextureNone, 0)
	if err != nil {
		return 0, err
	}
	v, err := p.Floats()
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, errors.InvalidData(errors.PhaseDecode, []string{key}, "empty numeric property")
	}
	return v[0], nil
}

// Int decodes the first value of the integer property key.
func (m Material) Int(key string) (int32, error) {
	p, err := m.find(key, ffi.TextureNone, 0)
	if err != nil {
		return 0, err
	}
	v, err := p.Ints()
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, errors.InvalidData(errors.PhaseDecode, []string{key}, "empty integer property")
	}
	return v[0], nil
}

// Color decodes a color property. Three-component colors get alpha 1.
func (m Material) Color(key string) (ffi.Color4, error) {
	p, err := m.find(key, ffi.TextureNone, 0)
	if err != nil {
		return ffi.Color4{}, err
	}
	v, err := p.Floats()
	if err != nil {
		return ffi.Color4{}, err
	}
	switch {
	case len(v) >= 4:
		return ffi.Color4{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
	case len(v) == 3:
		return ffi.Color4{R: v[0], G: v[1], B: v[2], A: 1}, nil
	default:
		return ffi.Color4{}, errors.InvalidData(errors.PhaseDecode, []string{key}, "color needs 3 or 4 components")
	}
}

// TextureCount returns the number of textures of type t.
func (m Material) TextureCount(t ffi.TextureType) int {
	defer runtime.KeepAlive(m.a)
	n := 0
	for p := range m.Properties() {
		r := p.ptr.Get()
		if r.Semantic == uint32(t) && string(r.Key.Bytes()) == ffi.MatKeyTextureFile {
			n = max(n, int(r.Index)+1)
		}
	}
	return n
}

// TexturePath returns the file path of texture i of type t. Embedded
// textures use the "*N" form accepted by Scene.EmbeddedTexture.
func (m Material) TexturePath(t ffi.TextureType, i int) (string, error) {
	p, err := m.find(ffi.MatKeyTextureFile, t, i)
	if err != nil {
		return "", err
	}
	return p.StringValue()
}

// MaterialProperty is a view of one material property.
type MaterialProperty struct {
	a   *anchor
	ptr ffi.Ptr[ffi.MaterialProperty]
}

func newMaterialProperty(a *anchor, p *ffi.MaterialProperty) (MaterialProperty, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return MaterialProperty{}, false
	}
	return MaterialProperty{a: a, ptr: ptr}, true
}

// Key returns the property key, e.g. "$clr.diffuse".
func (p MaterialProperty) Key() string {
	defer runtime.KeepAlive(p.a)
	return p.ptr.Get().Key.String()
}

// Semantic returns the texture type for texture properties.
func (p MaterialProperty) Semantic() ffi.TextureType {
	defer runtime.KeepAlive(p.a)
	return ffi.TextureType(p.ptr.Get().Semantic)
}

// Index returns the texture index for texture properties.
func (p MaterialProperty) Index() int {
	defer runtime.KeepAlive(p.a)
	return int(p.ptr.Get().Index)
}

// Type returns the stored payload type.
func (p MaterialProperty) Type() ffi.PropertyTypeInfo {
	defer runtime.KeepAlive(p.a)
	return p.ptr.Get().Type
}

// Data returns the raw payload without copying.
// The slice is valid only while p or an open handle of its scene is reachable.
func (p MaterialProperty) Data() []byte {
	r := p.ptr.Get()
	return ffi.Slice(r.Data, r.DataLength)
}

func (p MaterialProperty) invalid(detail string) error {
	return errors.InvalidData(errors.PhaseDecode, []string{p.Key()}, detail)
}

// StringValue decodes a string payload: a 32-bit length, the bytes and a NUL.
func (p MaterialProperty) StringValue() (string, error) {
	defer runtime.KeepAlive(p.a)
	if p.Type() != ffi.PTIString {
		return "", p.invalid("not a string property (" + p.Type().String() + ")")
	}
	data := p.Data()
	if len(data) < 5 {
		return "", p.invalid("string payload too short")
	}
	n := binary.NativeEndian.Uint32(data)
	if uint64(n)+5 > uint64(len(data)) || n >= ffi.MaxStringLen {
		return "", p.invalid("string length exceeds payload")
	}
	b := data[4 : 4+n]
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, []string{p.Key()}, b)
	}
	return string(b), nil
}

// Floats decodes a float or double array. Integer payloads are converted.
func (p MaterialProperty) Floats() ([]float32, error) {
	defer runtime.KeepAlive(p.a)
	data := p.Data()
	switch p.Type() {
	case ffi.PTIFloat:
		if len(data)%4 != 0 {
			return nil, p.invalid("float payload is not a multiple of 4 bytes")
		}
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.NativeEndian.Uint32(data[4*i:]))
		}
		return out, nil
	case ffi.PTIDouble:
		if len(data)%8 != 0 {
			return nil, p.invalid("double payload is not a multiple of 8 bytes")
		}
		out := make([]float32, len(data)/8)
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.NativeEndian.Uint64(data[8*i:])))
		}
		return out, nil
	case ffi.PTIInteger:
		ints, err := p.Ints()
		if err != nil {
			return nil, err
		}
		out := make([]float32, len(ints))
		for i, v := range ints {
			out[i] = float32(v)
		}
		return out, nil
	default:
		return nil, p.invalid("not a numeric property (" + p.Type().String() + ")")
	}
}

// Ints decodes an integer array. Float payloads are truncated.
func (p MaterialProperty) Ints() ([]int32, error) {
	defer runtime.KeepAlive(p.a)
	data := p.Data()
	switch p.Type() {
	case ffi.PTIInteger:
		if len(data)%4 != 0 {
			return nil, p.invalid("integer payload is not a multiple of 4 bytes")
		}
		out := make([]int32, len(data)/4)
		for i := range out {
			out[i] = int32(binary.NativeEndian.Uint32(data[4*i:]))
		}
		return out, nil
	case ffi.PTIFloat, ffi.PTIDouble:
		floats, err := p.Floats()
		if err != nil {
			return nil, err
		}
		out := make([]int32, len(floats))
		for i, v := range floats {
			out[i] = int32(v)
		}
		return out, nil
	default:
		return nil, p.invalid("not a numeric property (" + p.Type().String() + ")")
	}
}
