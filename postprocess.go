package assimp

import (
	"fmt"
	"math/bits"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// PostProcess is a set of post-processing steps (aiPostProcessSteps).
type PostProcess uint32

const (
	CalcTangentSpace         PostProcess = 0x1
	JoinIdenticalVertices    PostProcess = 0x2
	MakeLeftHanded           PostProcess = 0x4
	Triangulate              PostProcess = 0x8
	RemoveComponent          PostProcess = 0x10
	GenNormals               PostProcess = 0x20
	GenSmoothNormals         PostProcess = 0x40
	SplitLargeMeshes         PostProcess = 0x80
	PreTransformVertices     PostProcess = 0x100
	LimitBoneWeights         PostProcess = 0x200
	ValidateDataStructure    PostProcess = 0x400
	ImproveCacheLocality     PostProcess = 0x800
	RemoveRedundantMaterials PostProcess = 0x1000
	FixInfacingNormals       PostProcess = 0x2000
	PopulateArmatureData     PostProcess = 0x4000
	SortByPType              PostProcess = 0x8000
	FindDegenerates          PostProcess = 0x10000
	FindInvalidData          PostProcess = 0x20000
	GenUVCoords              PostProcess = 0x40000
	TransformUVCoords        PostProcess = 0x80000
	FindInstances            PostProcess = 0x100000
	OptimizeMeshes           PostProcess = 0x200000
	OptimizeGraph            PostProcess = 0x400000
	FlipUVs                  PostProcess = 0x800000
	FlipWindingOrder         PostProcess = 0x1000000
	SplitByBoneCount         PostProcess = 0x2000000
	Debone                   PostProcess = 0x4000000
	GlobalScale              PostProcess = 0x8000000
	EmbedTextures            PostProcess = 0x10000000
	ForceGenNormals          PostProcess = 0x20000000
	DropNormals              PostProcess = 0x40000000
	GenBoundingBoxes         PostProcess = 0x80000000
)

// Presets matching the aiProcessPreset_* and aiProcess_ConvertToLeftHanded
// macros.
const (
	ConvertToLeftHanded = MakeLeftHanded | FlipUVs | FlipWindingOrder

	TargetRealtimeFast = CalcTangentSpace | GenNormals | JoinIdenticalVertices |
		Triangulate | GenUVCoords | SortByPType

	TargetRealtimeQuality = CalcTangentSpace | GenSmoothNormals | JoinIdenticalVertices |
		ImproveCacheLocality | LimitBoneWeights | RemoveRedundantMaterials |
		SplitLargeMeshes | Triangulate | GenUVCoords | SortByPType |
		FindDegenerates | FindInvalidData

	TargetRealtimeMaxQuality = TargetRealtimeQuality | FindInstances |
		ValidateDataStructure | OptimizeMeshes
)

var postProcessNames = [32]string{
	"CalcTangentSpace",
	"JoinIdenticalVertices",
	"MakeLeftHanded",
	"Triangulate",
	"RemoveComponent",
	"GenNormals",
	"GenSmoothNormals",
	"SplitLargeMeshes",
	"PreTransformVertices",
	"LimitBoneWeights",
	"ValidateDataStructure",
	"ImproveCacheLocality",
	"RemoveRedundantMaterials",
	"FixInfacingNormals",
	"PopulateArmatureData",
	"SortByPType",
	"FindDegenerates",
	"FindInvalidData",
	"GenUVCoords",
	"TransformUVCoords",
	"FindInstances",
	"OptimizeMeshes",
	"OptimizeGraph",
	"FlipUVs",
	"FlipWindingOrder",
	"SplitByBoneCount",
	"Debone",
	"GlobalScale",
	"EmbedTextures",
	"ForceGenNormals",
	"DropNormals",
	"GenBoundingBoxes",
}

var postProcessPresets = map[string]PostProcess{
	"ConvertToLeftHanded":      ConvertToLeftHanded,
	"TargetRealtimeFast":       TargetRealtimeFast,
	"TargetRealtimeQuality":    TargetRealtimeQuality,
	"TargetRealtimeMaxQuality": TargetRealtimeMaxQuality,
}

// String lists the set steps separated by "|".
func (p PostProcess) String() string {
	if p == 0 {
		return "None"
	}
	var names []string
	for v := uint32(p); v != 0; v &= v - 1 {
		names = append(names, postProcessNames[bits.TrailingZeros32(v)])
	}
	return strings.Join(names, "|")
}

// ParsePostProcess converts step and preset names, case-insensitively,
// into a flag set.
func ParsePostProcess(names ...string) (PostProcess, error) {
	var out PostProcess
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || strings.EqualFold(name, "None") {
			continue
		}
		flag, ok := lookupPostProcess(name)
		if !ok {
			return 0, errors.InvalidParameter(errors.PhasePostProcess, []string{"steps"}, name,
				fmt.Sprintf("unknown post-processing step %q", name))
		}
		out |= flag
	}
	return out, nil
}

func lookupPostProcess(name string) (PostProcess, bool) {
	for i, n := range postProcessNames {
		if strings.EqualFold(n, name) {
			return PostProcess(1) << i, true
		}
	}
	for n, v := range postProcessPresets {
		if strings.EqualFold(n, name) {
			return v, true
		}
	}
	return 0, false
}

// PostProcess applies flags to the scene and returns a handle to the
// result. The receiver is consumed: it is closed whether or not the call
// succeeds.
//
// A handle holding the only reference to its scene is transformed in
// place; views of the receiver that are no longer reachable do not count.
// Otherwise (other handles, or live views) the scene is deep-copied
// first and the copy is transformed, so other holders never observe the
// change. On success the result keeps the release protocol of the pointer
// that was transformed.
//
// When the foreign call fails its input may already have been freed. The
// input is then leaked, unless the library implements
// ffi.InvalidationProber and reports that it is still valid.
func (s *Scene) PostProcess(flags PostProcess) (*Scene, error) {
	in, err := s.take()
	if err != nil {
		return nil, err
	}
	lib := in.lib
	s.reclaimViews()

	var p *ffi.Scene
	var protocol ReleaseProtocol
	if in.steal() {
		p, protocol = in.ptr.Get(), in.protocol
	} else {
		Logger().Debug("copying shared scene before post-processing",
			zap.Uintptr("ptr", in.ptr.Addr()),
			zap.Stringer("flags", flags))
		p = lib.CopyScene(in.ptr.Get())
		if p == nil {
			msg := lib.ErrorString()
			in.release()
			return nil, errors.InvalidScene(errors.PhaseCopy, msg)
		}
		in.release()
		protocol = FreeScene
	}

	out := lib.ApplyPostProcessing(p, uint32(flags))
	if out == nil {
		msg := lib.ErrorString()
		abandon(lib, p, protocol)
		return nil, errors.InvalidScene(errors.PhasePostProcess, msg)
	}
	in, err = newSceneInner(lib, out, protocol)
	if err != nil {
		return nil, err
	}
	return newHandle(in), nil
}

// abandon disposes of the input of a failed post-processing call.
func abandon(lib ffi.Library, p *ffi.Scene, protocol ReleaseProtocol) {
	if prober, ok := lib.(ffi.InvalidationProber); ok && !prober.PostProcessInvalidated(p) {
		Logger().Debug("releasing scene that survived failed post-processing",
			zap.Stringer("protocol", protocol),
			zap.Uintptr("ptr", ffi.MustPtr(p).Addr()))
		releaseForeign(lib, p, protocol)
		return
	}
	Logger().Warn("leaking scene after failed post-processing",
		zap.Stringer("protocol", protocol),
		zap.Uintptr("ptr", ffi.MustPtr(p).Addr()))
}
