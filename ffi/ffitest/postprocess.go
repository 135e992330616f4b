package ffitest

import (
	"fmt"
	"math"

	"github.com/wippyai/assimp-go/ffi"
)

// Post-processing bits the fake understands. The values match the
// aiPostProcessSteps constants.
const (
	stepMakeLeftHanded   = 0x4
	stepTriangulate      = 0x8
	stepValidate         = 0x400
	stepFlipUVs          = 0x800000
	stepFlipWindingOrder = 0x1000000
	stepGlobalScale      = 0x8000000
	stepGenBoundingBoxes = 0x80000000
)

type stepOptions struct {
	scale float32
}

// applySteps runs the supported steps in place. Triangulate replaces face
// arrays, every other step rewrites existing arrays.
func applySteps(s *ffi.Scene, flags uint32, opts stepOptions) error {
	meshes := ffi.Slice(s.Meshes, s.NumMeshes)
	if flags&stepValidate != 0 {
		if err := validate(s); err != nil {
			return err
		}
	}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if flags&stepTriangulate != 0 {
			triangulate(m)
		}
		if flags&stepGlobalScale != 0 && opts.scale != 0 {
			vs := ffi.Slice(m.Vertices, m.NumVertices)
			for i := range vs {
				vs[i].X *= opts.scale
				vs[i].Y *= opts.scale
				vs[i].Z *= opts.scale
			}
		}
		if flags&stepMakeLeftHanded != 0 {
			for _, arr := range []*ffi.Vector3{m.Vertices, m.Normals} {
				vs := ffi.Slice(arr, m.NumVertices)
				for i := range vs {
					vs[i].Z = -vs[i].Z
				}
			}
		}
		if flags&stepFlipUVs != 0 {
			for _, uv := range m.TextureCoords {
				vs := ffi.Slice(uv, m.NumVertices)
				for i := range vs {
					vs[i].Y = 1 - vs[i].Y
				}
			}
		}
		if flags&stepFlipWindingOrder != 0 {
			for _, f := range ffi.Slice(m.Faces, m.NumFaces) {
				idx := ffi.Slice(f.Indices, f.NumIndices)
				for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
					idx[i], idx[j] = idx[j], idx[i]
				}
			}
		}
		if flags&stepGenBoundingBoxes != 0 {
			m.AABB = bounds(ffi.Slice(m.Vertices, m.NumVertices))
		}
	}
	if flags&stepValidate != 0 {
		s.Flags |= ffi.SceneValidated
	}
	return nil
}

func validate(s *ffi.Scene) error {
	if s.RootNode == nil {
		return fmt.Errorf("validation failed: scene has no root node")
	}
	for mi, m := range ffi.Slice(s.Meshes, s.NumMeshes) {
		if m == nil {
			return fmt.Errorf("validation failed: mesh %d is null", mi)
		}
		if m.MaterialIndex >= s.NumMaterials && s.NumMaterials > 0 {
			return fmt.Errorf("validation failed: mesh %d material index %d out of range", mi, m.MaterialIndex)
		}
		for fi, f := range ffi.Slice(m.Faces, m.NumFaces) {
			for _, idx := range ffi.Slice(f.Indices, f.NumIndices) {
				if idx >= m.NumVertices {
					return fmt.Errorf("validation failed: mesh %d face %d index %d out of range", mi, fi, idx)
				}
			}
		}
	}
	return nil
}

func triangulate(m *ffi.Mesh) {
	faces := ffi.Slice(m.Faces, m.NumFaces)
	needed := false
	for _, f := range faces {
		if f.NumIndices > 3 {
			needed = true
			break
		}
	}
	if !needed {
		return
	}
	var out []ffi.Face
	m.PrimitiveTypes = 0
	for _, f := range faces {
		idx := ffi.Slice(f.Indices, f.NumIndices)
		if len(idx) <= 3 {
			out = append(out, f)
			m.PrimitiveTypes |= primitiveFor(len(idx))
			continue
		}
		for i := 1; i+1 < len(idx); i++ {
			out = append(out, makeFace([]uint32{idx[0], idx[i], idx[i+1]}))
		}
		m.PrimitiveTypes |= ffi.PrimitiveTriangle
	}
	m.NumFaces = uint32(len(out))
	m.Faces = &out[0]
}

func bounds(vs []ffi.Vector3) ffi.AABB {
	if len(vs) == 0 {
		return ffi.AABB{}
	}
	inf := float32(math.Inf(1))
	box := ffi.AABB{
		Min: ffi.Vector3{X: inf, Y: inf, Z: inf},
		Max: ffi.Vector3{X: -inf, Y: -inf, Z: -inf},
	}
	for _, v := range vs {
		box.Min.X = min(box.Min.X, v.X)
		box.Min.Y = min(box.Min.Y, v.Y)
		box.Min.Z = min(box.Min.Z, v.Z)
		box.Max.X = max(box.Max.X, v.X)
		box.Max.Y = max(box.Max.Y, v.Y)
		box.Max.Z = max(box.Max.Z, v.Z)
	}
	return box
}
