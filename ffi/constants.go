package ffi

// SceneFlags mirrors the AI_SCENE_FLAGS_* bits of aiScene.mFlags.
type SceneFlags uint32

const (
	SceneIncomplete        SceneFlags = 0x1
	SceneValidated         SceneFlags = 0x2
	SceneValidationWarning SceneFlags = 0x4
	SceneNonVerboseFormat  SceneFlags = 0x8
	SceneTerrain           SceneFlags = 0x10
	SceneAllowShared       SceneFlags = 0x20
)

// PrimitiveType mirrors aiPrimitiveType.
type PrimitiveType uint32

const (
	PrimitivePoint    PrimitiveType = 0x1
	PrimitiveLine     PrimitiveType = 0x2
	PrimitiveTriangle PrimitiveType = 0x4
	PrimitivePolygon  PrimitiveType = 0x8
	PrimitiveNGon     PrimitiveType = 0x10
)

// PropertyTypeInfo mirrors aiPropertyTypeInfo.
type PropertyTypeInfo uint32

const (
	PTIFloat   PropertyTypeInfo = 0x1
	PTIDouble  PropertyTypeInfo = 0x2
	PTIString  PropertyTypeInfo = 0x3
	PTIInteger PropertyTypeInfo = 0x4
	PTIBuffer  PropertyTypeInfo = 0x5
)

func (t PropertyTypeInfo) String() string {
	switch t {
	case PTIFloat:
		return "float"
	case PTIDouble:
		return "double"
	case PTIString:
		return "string"
	case PTIInteger:
		return "integer"
	case PTIBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// LightSourceType mirrors aiLightSourceType.
type LightSourceType uint32

const (
	LightUndefined   LightSourceType = 0
	LightDirectional LightSourceType = 1
	LightPoint       LightSourceType = 2
	LightSpot        LightSourceType = 3
	LightAmbient     LightSourceType = 4
	LightArea        LightSourceType = 5
)

func (t LightSourceType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightAmbient:
		return "ambient"
	case LightArea:
		return "area"
	default:
		return "undefined"
	}
}

// AnimBehaviour mirrors aiAnimBehaviour.
type AnimBehaviour uint32

const (
	AnimBehaviourDefault  AnimBehaviour = 0
	AnimBehaviourConstant AnimBehaviour = 1
	AnimBehaviourLinear   AnimBehaviour = 2
	AnimBehaviourRepeat   AnimBehaviour = 3
)

// TextureType mirrors aiTextureType.
type TextureType uint32

const (
	TextureNone             TextureType = 0
	TextureDiffuse          TextureType = 1
	TextureSpecular         TextureType = 2
	TextureAmbient          TextureType = 3
	TextureEmissive         TextureType = 4
	TextureHeight           TextureType = 5
	TextureNormals          TextureType = 6
	TextureShininess        TextureType = 7
	TextureOpacity          TextureType = 8
	TextureDisplacement     TextureType = 9
	TextureLightmap         TextureType = 10
	TextureReflection       TextureType = 11
	TextureBaseColor        TextureType = 12
	TextureNormalCamera     TextureType = 13
	TextureEmissionColor    TextureType = 14
	TextureMetalness        TextureType = 15
	TextureDiffuseRoughness TextureType = 16
	TextureAmbientOcclusion TextureType = 17
	TextureUnknown          TextureType = 18
)

// Material property keys as used by aiGetMaterial*. The semantic and index
// of non-texture keys are always zero.
const (
	MatKeyName          = "?mat.name"
	MatKeyTwoSided      = "$mat.twosided"
	MatKeyShadingModel  = "$mat.shadingm"
	MatKeyOpacity       = "$mat.opacity"
	MatKeyShininess     = "$mat.shininess"
	MatKeyColorDiffuse  = "$clr.diffuse"
	MatKeyColorAmbient  = "$clr.ambient"
	MatKeyColorSpecular = "$clr.specular"
	MatKeyColorEmissive = "$clr.emissive"
	MatKeyTextureFile   = "$tex.file"
)

// Import property names understood by the importer property store.
const (
	PropGlobalScaleFactor   = "GLOBAL_SCALE_FACTOR"
	PropRemoveComponents    = "PP_RVC_FLAGS"
	PropSplitVertexLimit    = "PP_SLM_VERTEX_LIMIT"
	PropSplitTriangleLimit  = "PP_SLM_TRIANGLE_LIMIT"
	PropKeepHierarchy       = "PP_PTV_KEEP_HIERARCHY"
	PropRootTransformation  = "PP_PTV_ROOT_TRANSFORMATION"
	PropMaxSmoothingAngle   = "PP_GSN_MAX_SMOOTHING_ANGLE"
	PropFBXReadAllMaterials = "IMPORT_FBX_READ_ALL_MATERIALS"
)
