package assimp

import (
	"path"
	"runtime"
	"strconv"
	"strings"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// Texture is a view of one embedded texture. A compressed texture holds
// an encoded file (png, jpg, ...) and reports its size in Width; an
// uncompressed one holds Width*Height texels.
type Texture struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Texture]
}

func newTexture(a *anchor, p *ffi.Texture) (Texture, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Texture{}, false
	}
	return Texture{a: a, ptr: ptr}, true
}

func textureAt(a *anchor, i int) (Texture, bool) {
	s := a.scene()
	return newTexture(a, ffi.At(s.Textures, s.NumTextures, i))
}

func embeddedTexture(a *anchor, p string) (Texture, bool) {
	if rest, ok := strings.CutPrefix(p, "*"); ok {
		i, err := strconv.Atoi(rest)
		if err != nil {
			return Texture{}, false
		}
		return textureAt(a, i)
	}
	s := a.scene()
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	for i := range int(s.NumTextures) {
		t, ok := textureAt(a, i)
		if !ok {
			continue
		}
		name := path.Base(strings.ReplaceAll(t.Filename(), "\\", "/"))
		if name == base {
			return t, true
		}
	}
	return Texture{}, false
}

// Filename returns the original file name of the texture, if known.
func (t Texture) Filename() string {
	defer runtime.KeepAlive(t.a)
	return t.ptr.Get().Filename.String()
}

// FormatHint returns the format hint: a file extension such as "png" for
// compressed textures, or a channel layout such as "rgba8888".
func (t Texture) FormatHint() string {
	defer runtime.KeepAlive(t.a)
	h := t.ptr.Get().FormatHint[:]
	n := 0
	for n < len(h) && h[n] != 0 {
		n++
	}
	return string(h[:n])
}

// Compressed reports whether the texture holds an encoded file.
func (t Texture) Compressed() bool {
	defer runtime.KeepAlive(t.a)
	return t.ptr.Get().Height == 0
}

// Width returns the width in texels, or the byte size when compressed.
func (t Texture) Width() int {
	defer runtime.KeepAlive(t.a)
	return int(t.ptr.Get().Width)
}

// Height returns the height in texels, or 0 when compressed.
func (t Texture) Height() int {
	defer runtime.KeepAlive(t.a)
	return int(t.ptr.Get().Height)
}

func (t Texture) invalid(detail string) error {
	return errors.InvalidData(errors.PhaseDecode, []string{"texture", t.Filename()}, detail)
}

// Bytes returns the encoded file of a compressed texture without copying.
// The slice is valid only while t or an open handle of its scene is reachable.
func (t Texture) Bytes() ([]byte, error) {
	r := t.ptr.Get()
	if r.Height != 0 {
		return nil, t.invalid("texture is not compressed")
	}
	if r.Width == 0 {
		return nil, nil
	}
	if r.Data == nil {
		return nil, t.invalid("compressed texture has no data")
	}
	return ffi.Slice(&r.Data.B, r.Width), nil
}

// Texels returns the BGRA texels of an uncompressed texture without
// copying, row by row.
// The slice is valid only while t or an open handle of its scene is reachable.
func (t Texture) Texels() ([]ffi.Texel, error) {
	r := t.ptr.Get()
	if r.Height == 0 {
		return nil, t.invalid("texture is compressed")
	}
	n := uint64(r.Width) * uint64(r.Height)
	if n > 1<<31 {
		return nil, t.invalid("texture dimensions overflow")
	}
	if r.Data == nil {
		return nil, t.invalid("texture has no texel data")
	}
	return ffi.Slice(r.Data, uint32(n)), nil
}
