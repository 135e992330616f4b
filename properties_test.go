package assimp

import (
	"fmt"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

func TestEncodePropertiesRoundTrip(t *testing.T) {
	props := []Property{
		IntProperty("a", 7),
		StringProperty("s", "hello"),
		MatrixProperty("m", ffi.Identity),
		FloatProperty("f", 1.5),
		BoolProperty("b", true),
	}
	enc, err := EncodeProperties(props)
	require.NoError(t, err)
	defer enc.Close()

	got := enc.Decode()
	require.Len(t, got, 5)
	assert.Equal(t, ffi.DecodedProperty{Name: "a", Kind: ffi.PropertyInteger, Int: 7}, got[0])
	assert.Equal(t, ffi.DecodedProperty{Name: "s", Kind: ffi.PropertyString, String: "hello"}, got[1])
	assert.Equal(t, ffi.DecodedProperty{Name: "m", Kind: ffi.PropertyMatrix, Matrix: ffi.Identity}, got[2])
	assert.Equal(t, ffi.DecodedProperty{Name: "f", Kind: ffi.PropertyFloat, Float: 1.5}, got[3])
	assert.Equal(t, ffi.DecodedProperty{Name: "b", Kind: ffi.PropertyBool, Int: 1, Bool: true}, got[4])
}

func TestEncodedPointersReferenceOwnBuffers(t *testing.T) {
	var props []Property
	for i := range 40 {
		m := ffi.Identity
		m.A4 = float32(i)
		props = append(props,
			MatrixProperty(fmt.Sprintf("m%d", i), m),
			StringProperty(fmt.Sprintf("s%d", i), strings.Repeat("x", i)))
	}
	enc, err := EncodeProperties(props)
	require.NoError(t, err)
	defer enc.Close()

	for i := range 40 {
		mr := &enc.Records[2*i]
		assert.Equal(t, unsafe.Pointer(&enc.matrices[i]), mr.Pointer())
		assert.Same(t, &enc.names[2*i][0], mr.Name)
		assert.Equal(t, float32(i), (*ffi.Matrix4x4)(mr.Pointer()).A4)

		sr := &enc.Records[2*i+1]
		assert.Equal(t, unsafe.Pointer(&enc.strings[2*i+1][0]), sr.Pointer())
		assert.Equal(t, strings.Repeat("x", i), ffi.GoString((*byte)(sr.Pointer())))
	}
}

func TestEncodePropertiesErrors(t *testing.T) {
	tests := []struct {
		name string
		prop Property
		path string
	}{
		{"empty name", IntProperty("", 1), "properties.1"},
		{"NUL in name", IntProperty("a\x00b", 1), "properties.1.name"},
		{"NUL in value", StringProperty("s", "he\x00llo"), "properties.1.value"},
		{"value too long", StringProperty("s", strings.Repeat("y", ffi.MaxStringLen)), "properties.1.value"},
		{"unknown kind", Property{Name: "k", Kind: ffi.PropertyKind(99)}, "properties.1.kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := EncodeProperties([]Property{IntProperty("ok", 1), tt.prop})
			require.Error(t, err)
			assert.Nil(t, enc)
			assert.ErrorIs(t, err, errors.ErrInvalidParameter)

			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errors.PhaseEncode, e.Phase)
			assert.Equal(t, tt.path, strings.Join(e.Path, "."))
		})
	}
}

func TestEncodeLongestString(t *testing.T) {
	v := strings.Repeat("z", ffi.MaxStringLen-1)
	enc, err := EncodeProperties([]Property{StringProperty("s", v)})
	require.NoError(t, err)
	defer enc.Close()
	assert.Equal(t, v, enc.Decode()[0].String)
}

func TestEncodeEmpty(t *testing.T) {
	enc, err := EncodeProperties(nil)
	require.NoError(t, err)
	assert.Empty(t, enc.Records)
	enc.Close()

	var nilEnc *EncodedProperties
	nilEnc.Close()
}

func TestPropertyFromValue(t *testing.T) {
	identity := make([]any, 16)
	for i := range identity {
		identity[i] = 0
	}
	identity[0], identity[5], identity[10], identity[15] = 1, 1.0, int64(1), float32(1)

	tests := []struct {
		value any
		want  Property
	}{
		{true, BoolProperty("p", true)},
		{42, IntProperty("p", 42)},
		{int64(-3), IntProperty("p", -3)},
		{uint64(9), IntProperty("p", 9)},
		{0.5, FloatProperty("p", 0.5)},
		{"text", StringProperty("p", "text")},
		{ffi.Identity, MatrixProperty("p", ffi.Identity)},
		{identity, MatrixProperty("p", ffi.Identity)},
	}
	for _, tt := range tests {
		got, err := PropertyFromValue("p", tt.value)
		require.NoError(t, err, "%T", tt.value)
		assert.Equal(t, tt.want, got, "%T", tt.value)
	}

	for _, bad := range []any{
		int64(1) << 40,
		uint64(1) << 32,
		[]any{1, 2, 3},
		append(make([]any, 15), "x"),
		map[string]any{},
		nil,
	} {
		_, err := PropertyFromValue("p", bad)
		assert.ErrorIs(t, err, errors.ErrInvalidParameter, "%#v", bad)
	}
}
