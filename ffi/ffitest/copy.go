package ffitest

import "github.com/wippyai/assimp-go/ffi"

// deepCopy duplicates every array reachable from src.
func deepCopy(src *ffi.Scene) *ffi.Scene {
	dst := *src
	dst.Private = nil

	nodes := make(map[*ffi.Node]*ffi.Node)
	dst.RootNode = copyNode(src.RootNode, nil, nodes)

	dst.Meshes = copyPtrs(src.Meshes, src.NumMeshes, func(m *ffi.Mesh) *ffi.Mesh {
		return copyMesh(m, nodes)
	})
	dst.Materials = copyPtrs(src.Materials, src.NumMaterials, copyMaterial)
	dst.Animations = copyPtrs(src.Animations, src.NumAnimations, copyAnimation)
	dst.Textures = copyPtrs(src.Textures, src.NumTextures, copyTexture)
	dst.Cameras = copyPtrs(src.Cameras, src.NumCameras, func(c *ffi.Camera) *ffi.Camera {
		out := *c
		return &out
	})
	dst.Lights = copyPtrs(src.Lights, src.NumLights, func(l *ffi.Light) *ffi.Light {
		out := *l
		return &out
	})
	return &dst
}

func copyPtrs[T any](arr **T, n uint32, fn func(*T) *T) **T {
	src := ffi.Slice(arr, n)
	if src == nil {
		return nil
	}
	out := make([]*T, len(src))
	for i, p := range src {
		if p != nil {
			out[i] = fn(p)
		}
	}
	return &out[0]
}

func copyArray[T any](p *T, n uint32) *T {
	src := ffi.Slice(p, n)
	if src == nil {
		return nil
	}
	out := append([]T(nil), src...)
	return &out[0]
}

func copyNode(n *ffi.Node, parent *ffi.Node, nodes map[*ffi.Node]*ffi.Node) *ffi.Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Parent = parent
	out.Meshes = copyArray(n.Meshes, n.NumMeshes)
	nodes[n] = &out
	out.Children = copyPtrs(n.Children, n.NumChildren, func(c *ffi.Node) *ffi.Node {
		return copyNode(c, &out, nodes)
	})
	return &out
}

func copyMesh(m *ffi.Mesh, nodes map[*ffi.Node]*ffi.Node) *ffi.Mesh {
	out := *m
	out.Vertices = copyArray(m.Vertices, m.NumVertices)
	out.Normals = copyArray(m.Normals, m.NumVertices)
	out.Tangents = copyArray(m.Tangents, m.NumVertices)
	out.Bitangents = copyArray(m.Bitangents, m.NumVertices)
	for i := range m.Colors {
		out.Colors[i] = copyArray(m.Colors[i], m.NumVertices)
	}
	for i := range m.TextureCoords {
		out.TextureCoords[i] = copyArray(m.TextureCoords[i], m.NumVertices)
	}
	faces := ffi.Slice(m.Faces, m.NumFaces)
	if faces != nil {
		nf := make([]ffi.Face, len(faces))
		for i, f := range faces {
			nf[i] = ffi.Face{
				NumIndices: f.NumIndices,
				Indices:    copyArray(f.Indices, f.NumIndices),
			}
		}
		out.Faces = &nf[0]
	}
	out.Bones = copyPtrs(m.Bones, m.NumBones, func(b *ffi.Bone) *ffi.Bone {
		nb := *b
		nb.Weights = copyArray(b.Weights, b.NumWeights)
		nb.Node = nodes[b.Node]
		nb.Armature = nodes[b.Armature]
		return &nb
	})
	out.TextureCoordsNames = nil
	return &out
}

func copyMaterial(m *ffi.Material) *ffi.Material {
	out := *m
	out.Properties = copyPtrs(m.Properties, m.NumProperties, func(p *ffi.MaterialProperty) *ffi.MaterialProperty {
		np := *p
		np.Data = copyArray(p.Data, p.DataLength)
		return &np
	})
	out.NumAllocated = out.NumProperties
	return &out
}

func copyAnimation(a *ffi.Animation) *ffi.Animation {
	out := *a
	out.Channels = copyPtrs(a.Channels, a.NumChannels, func(c *ffi.NodeAnim) *ffi.NodeAnim {
		nc := *c
		nc.PositionKeys = copyArray(c.PositionKeys, c.NumPositionKeys)
		nc.RotationKeys = copyArray(c.RotationKeys, c.NumRotationKeys)
		nc.ScalingKeys = copyArray(c.ScalingKeys, c.NumScalingKeys)
		return &nc
	})
	out.MeshChannels, out.NumMeshChannels = nil, 0
	out.MorphMeshChannels, out.NumMorphMeshChannels = nil, 0
	return &out
}

func copyTexture(t *ffi.Texture) *ffi.Texture {
	out := *t
	n := t.Width * t.Height
	if t.Height == 0 {
		n = (t.Width + 3) / 4
	}
	out.Data = copyArray(t.Data, n)
	return &out
}

// poison clears everything reachable from s so reads through stale views
// observe an empty scene.
func poison(s *ffi.Scene) {
	for _, m := range ffi.Slice(s.Meshes, s.NumMeshes) {
		if m == nil {
			continue
		}
		faces := ffi.Slice(m.Faces, m.NumFaces)
		for i := range faces {
			faces[i] = ffi.Face{}
		}
		for _, b := range ffi.Slice(m.Bones, m.NumBones) {
			if b != nil {
				*b = ffi.Bone{}
			}
		}
		*m = ffi.Mesh{}
	}
	for _, mat := range ffi.Slice(s.Materials, s.NumMaterials) {
		if mat != nil {
			*mat = ffi.Material{}
		}
	}
	for _, a := range ffi.Slice(s.Animations, s.NumAnimations) {
		if a != nil {
			*a = ffi.Animation{}
		}
	}
	for _, t := range ffi.Slice(s.Textures, s.NumTextures) {
		if t != nil {
			*t = ffi.Texture{}
		}
	}
	for _, c := range ffi.Slice(s.Cameras, s.NumCameras) {
		if c != nil {
			*c = ffi.Camera{}
		}
	}
	for _, l := range ffi.Slice(s.Lights, s.NumLights) {
		if l != nil {
			*l = ffi.Light{}
		}
	}
	poisonNode(s.RootNode)
	*s = ffi.Scene{}
}

func poisonNode(n *ffi.Node) {
	if n == nil {
		return
	}
	for _, c := range ffi.Slice(n.Children, n.NumChildren) {
		poisonNode(c)
	}
	*n = ffi.Node{}
}
