package ffi

import "unsafe"

// Scene mirrors aiScene.
type Scene struct {
	Flags         SceneFlags
	RootNode      *Node
	NumMeshes     uint32
	Meshes        **Mesh
	NumMaterials  uint32
	Materials     **Material
	NumAnimations uint32
	Animations    **Animation
	NumTextures   uint32
	Textures      **Texture
	NumLights     uint32
	Lights        **Light
	NumCameras    uint32
	Cameras       **Camera
	MetaData      unsafe.Pointer // aiMetadata*
	Name          String
	NumSkeletons  uint32
	Skeletons     unsafe.Pointer // aiSkeleton**
	Private       unsafe.Pointer
}

// Node mirrors aiNode.
type Node struct {
	Name           String
	Transformation Matrix4x4
	Parent         *Node
	NumChildren    uint32
	Children       **Node
	NumMeshes      uint32
	Meshes         *uint32
	MetaData       unsafe.Pointer // aiMetadata*
}

// Face mirrors aiFace.
type Face struct {
	NumIndices uint32
	Indices    *uint32
}

// VertexWeight mirrors aiVertexWeight.
type VertexWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone mirrors aiBone as built with armature population enabled (the
// default), which adds the Armature and Node fields.
type Bone struct {
	Name         String
	NumWeights   uint32
	Armature     *Node
	Node         *Node
	Weights      *VertexWeight
	OffsetMatrix Matrix4x4
}

// Mesh mirrors aiMesh.
type Mesh struct {
	PrimitiveTypes     PrimitiveType
	NumVertices        uint32
	NumFaces           uint32
	Vertices           *Vector3
	Normals            *Vector3
	Tangents           *Vector3
	Bitangents         *Vector3
	Colors             [MaxColorSets]*Color4
	TextureCoords      [MaxTextureCoords]*Vector3
	NumUVComponents    [MaxTextureCoords]uint32
	Faces              *Face
	NumBones           uint32
	Bones              **Bone
	MaterialIndex      uint32
	Name               String
	NumAnimMeshes      uint32
	AnimMeshes         unsafe.Pointer // aiAnimMesh**
	Method             uint32
	AABB               AABB
	TextureCoordsNames **String
}

// MaterialProperty mirrors aiMaterialProperty.
type MaterialProperty struct {
	Key        String
	Semantic   uint32
	Index      uint32
	DataLength uint32
	Type       PropertyTypeInfo
	Data       *byte
}

// Material mirrors aiMaterial.
type Material struct {
	Properties    **MaterialProperty
	NumProperties uint32
	NumAllocated  uint32
}

// Texel mirrors aiTexel (BGRA byte order).
type Texel struct {
	B, G, R, A uint8
}

// Texture mirrors aiTexture. A Height of zero marks a compressed texture
// whose Width is the size of Data in bytes.
type Texture struct {
	Width      uint32
	Height     uint32
	FormatHint [HintMaxTextureLen]byte
	Data       *Texel
	Filename   String
}

// VectorKey mirrors aiVectorKey.
type VectorKey struct {
	Time          float64
	Value         Vector3
	Interpolation uint32
}

// QuatKey mirrors aiQuatKey.
type QuatKey struct {
	Time          float64
	Value         Quaternion
	Interpolation uint32
}

// NodeAnim mirrors aiNodeAnim.
type NodeAnim struct {
	NodeName        String
	NumPositionKeys uint32
	PositionKeys    *VectorKey
	NumRotationKeys uint32
	RotationKeys    *QuatKey
	NumScalingKeys  uint32
	ScalingKeys     *VectorKey
	PreState        AnimBehaviour
	PostState       AnimBehaviour
}

// Animation mirrors aiAnimation.
type Animation struct {
	Name                 String
	Duration             float64
	TicksPerSecond       float64
	NumChannels          uint32
	Channels             **NodeAnim
	NumMeshChannels      uint32
	MeshChannels         unsafe.Pointer // aiMeshAnim**
	NumMorphMeshChannels uint32
	MorphMeshChannels    unsafe.Pointer // aiMeshMorphAnim**
}

// Camera mirrors aiCamera.
type Camera struct {
	Name              String
	Position          Vector3
	Up                Vector3
	LookAt            Vector3
	HorizontalFOV     float32
	ClipPlaneNear     float32
	ClipPlaneFar      float32
	Aspect            float32
	OrthographicWidth float32
}

// Light mirrors aiLight.
type Light struct {
	Name                 String
	Type                 LightSourceType
	Position             Vector3
	Direction            Vector3
	Up                   Vector3
	AttenuationConstant  float32
	AttenuationLinear    float32
	AttenuationQuadratic float32
	ColorDiffuse         Color3
	ColorSpecular        Color3
	ColorAmbient         Color3
	AngleInnerCone       float32
	AngleOuterCone       float32
	Size                 Vector2
}
