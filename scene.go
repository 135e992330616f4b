package assimp

import (
	"iter"
	"runtime"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// ReleaseProtocol records how a foreign scene must be freed.
type ReleaseProtocol uint8

const (
	// ImportRelease scenes came from an import and are freed with
	// ReleaseImport.
	ImportRelease ReleaseProtocol = iota + 1
	// FreeScene scenes came from CopyScene and are freed with FreeScene.
	FreeScene
)

func (p ReleaseProtocol) String() string {
	switch p {
	case ImportRelease:
		return "import-release"
	case FreeScene:
		return "free-scene"
	default:
		return "invalid"
	}
}

// sceneInner owns one foreign scene pointer. refs counts Scene handles and
// view anchors; the release call runs when it drops to zero.
type sceneInner struct {
	lib      ffi.Library
	ptr      ffi.Ptr[ffi.Scene]
	protocol ReleaseProtocol
	refs     atomic.Int64
}

func newSceneInner(lib ffi.Library, p *ffi.Scene, protocol ReleaseProtocol) (*sceneInner, error) {
	if lib == nil {
		return nil, errors.InvalidParameter(errors.PhaseAccess, []string{"lib"}, nil, "library is nil")
	}
	if protocol != ImportRelease && protocol != FreeScene {
		return nil, errors.InvalidParameter(errors.PhaseAccess, []string{"protocol"}, protocol, "unknown release protocol")
	}
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return nil, errors.NullPointer(errors.PhaseAccess, "scene", "")
	}
	in := &sceneInner{lib: lib, ptr: ptr, protocol: protocol}
	in.refs.Store(1)
	return in, nil
}

// acquire adds a reference. It refuses once the count has reached zero, so
// a released or stolen scene is never resurrected.
func (in *sceneInner) acquire() bool {
	for {
		n := in.refs.Load()
		if n <= 0 {
			return false
		}
		if in.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (in *sceneInner) release() {
	switch n := in.refs.Add(-1); {
	case n == 0:
		in.teardown()
	case n < 0:
		panic("assimp: scene reference count underflow")
	}
}

// steal takes the only reference without releasing the pointer.
func (in *sceneInner) steal() bool {
	return in.refs.CompareAndSwap(1, 0)
}

func (in *sceneInner) teardown() {
	Logger().Debug("releasing scene",
		zap.Stringer("protocol", in.protocol),
		zap.Uintptr("ptr", in.ptr.Addr()))
	releaseForeign(in.lib, in.ptr.Get(), in.protocol)
}

func releaseForeign(lib ffi.Library, p *ffi.Scene, protocol ReleaseProtocol) {
	switch protocol {
	case ImportRelease:
		lib.ReleaseImport(p)
	case FreeScene:
		lib.FreeScene(p)
	}
}

// anchor is the reference views hold on their scene. One anchor is shared
// by every view derived from the same handle; the reference it owns is
// dropped when the anchor is garbage collected.
type anchor struct {
	inner   *sceneInner
	ref     *anchorRef
	cleanup runtime.Cleanup
}

// anchorRef is the reference owned by an anchor. It lives apart from the
// anchor so the handle can drop it once the anchor is unreachable, without
// waiting for the cleanup to run. Whichever comes first drops it.
type anchorRef struct {
	inner   *sceneInner
	dropped atomic.Bool
}

func (r *anchorRef) drop() {
	if r.dropped.CompareAndSwap(false, true) {
		r.inner.release()
	}
}

// viewSlot is a handle's link to its current anchor.
type viewSlot struct {
	anchor weak.Pointer[anchor]
	ref    *anchorRef
}

func newAnchor(in *sceneInner) *anchor {
	r := &anchorRef{inner: in}
	a := &anchor{inner: in, ref: r}
	a.cleanup = runtime.AddCleanup(a, (*anchorRef).drop, r)
	return a
}

// discard drops the anchor's reference right away.
func (a *anchor) discard() {
	a.cleanup.Stop()
	a.ref.drop()
}

func (a *anchor) scene() *ffi.Scene {
	return a.inner.ptr.Get()
}

// Scene is a reference-counted handle to a foreign scene.
//
// Each handle owns one reference. Clone returns a new handle sharing the
// scene; Close drops this handle's reference. Using a closed handle panics.
// A Scene is safe for concurrent use.
type Scene struct {
	inner   *sceneInner
	closed  atomic.Bool
	cleanup runtime.Cleanup
	views   atomic.Pointer[viewSlot]
}

// FromRaw wraps a scene pointer returned by lib. protocol must match how
// the pointer was produced. The handle takes ownership of the pointer.
func FromRaw(lib ffi.Library, p *ffi.Scene, protocol ReleaseProtocol) (*Scene, error) {
	in, err := newSceneInner(lib, p, protocol)
	if err != nil {
		return nil, err
	}
	return newHandle(in), nil
}

// newHandle wraps a reference the caller already owns.
func newHandle(in *sceneInner) *Scene {
	s := &Scene{inner: in}
	s.cleanup = runtime.AddCleanup(s, (*sceneInner).release, in)
	return s
}

// live returns the inner scene or panics if the handle is closed.
func (s *Scene) live() *sceneInner {
	if s.closed.Load() {
		panic("assimp: use of closed Scene")
	}
	return s.inner
}

func (s *Scene) raw() *ffi.Scene {
	return s.live().ptr.Get()
}

// Clone returns a new handle to the same scene. No foreign call is made.
func (s *Scene) Clone() *Scene {
	in := s.live()
	if !in.acquire() {
		panic("assimp: clone of released Scene")
	}
	return newHandle(in)
}

// Close drops this handle's reference. The scene is released when the
// last reference is gone. Close is idempotent.
func (s *Scene) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cleanup.Stop()
	s.inner.release()
	return nil
}

// take marks the handle closed and hands its reference to the caller.
func (s *Scene) take() (*sceneInner, error) {
	if !s.closed.CompareAndSwap(false, true) {
		return nil, errors.Closed(errors.PhasePostProcess, "scene handle")
	}
	s.cleanup.Stop()
	return s.inner, nil
}

// anchor returns the view anchor of this handle, creating it on first use.
func (s *Scene) anchor() *anchor {
	in := s.live()
	for {
		slot := s.views.Load()
		if slot != nil {
			if a := slot.anchor.Value(); a != nil {
				return a
			}
		}
		if !in.acquire() {
			panic("assimp: view of released Scene")
		}
		a := newAnchor(in)
		next := &viewSlot{anchor: weak.Make(a), ref: a.ref}
		if s.views.CompareAndSwap(slot, next) {
			return a
		}
		a.discard()
	}
}

// reclaimViews drops the reference of this handle's anchor when no view
// still reaches it. A collection is forced only when that anchor is the
// sole reference besides the handle's own, since then it decides whether
// the scene can be taken without a copy. The handle must already be closed.
func (s *Scene) reclaimViews() {
	slot := s.views.Swap(nil)
	if slot == nil || slot.ref.dropped.Load() {
		return
	}
	if slot.anchor.Value() != nil && s.inner.refs.Load() == 2 {
		runtime.GC()
	}
	if slot.anchor.Value() == nil {
		slot.ref.drop()
	}
}

// Protocol reports how the scene will be released.
func (s *Scene) Protocol() ReleaseProtocol {
	return s.live().protocol
}

// Library returns the library the scene belongs to.
func (s *Scene) Library() ffi.Library {
	return s.live().lib
}

// Raw returns the foreign scene. The pointer is valid while s is open.
func (s *Scene) Raw() *ffi.Scene {
	return s.raw()
}

// Flags returns the scene flags set by the importer.
func (s *Scene) Flags() ffi.SceneFlags {
	defer runtime.KeepAlive(s)
	return s.raw().Flags
}

// Incomplete reports whether the importer flagged the scene as incomplete.
func (s *Scene) Incomplete() bool {
	return s.Flags()&ffi.SceneIncomplete != 0
}

// Name returns the scene name.
func (s *Scene) Name() string {
	defer runtime.KeepAlive(s)
	return s.raw().Name.String()
}

// RootNode returns the root of the node hierarchy.
func (s *Scene) RootNode() (Node, bool) {
	return newNode(s.anchor(), s.raw().RootNode)
}

// FindNode searches the hierarchy depth-first for a node named name.
func (s *Scene) FindNode(name string) (Node, bool) {
	root, ok := s.RootNode()
	if !ok {
		return Node{}, false
	}
	return root.FindNode(name)
}

// Walk visits every node depth-first, parents before children, until fn
// returns false.
func (s *Scene) Walk(fn func(n Node, depth int) bool) {
	root, ok := s.RootNode()
	if !ok {
		return
	}
	root.walk(0, fn)
}

// NumMeshes returns the number of meshes.
func (s *Scene) NumMeshes() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumMeshes)
}

// Mesh returns mesh i, or false when i is out of range.
func (s *Scene) Mesh(i int) (Mesh, bool) {
	return meshAt(s.anchor(), i)
}

// Meshes iterates over all meshes.
func (s *Scene) Meshes() iter.Seq[Mesh] {
	return items(s.anchor(), s.NumMeshes(), meshAt)
}

// NumMaterials returns the number of materials.
func (s *Scene) NumMaterials() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumMaterials)
}

// Material returns material i, or false when i is out of range.
func (s *Scene) Material(i int) (Material, bool) {
	return materialAt(s.anchor(), i)
}

// Materials iterates over all materials.
func (s *Scene) Materials() iter.Seq[Material] {
	return items(s.anchor(), s.NumMaterials(), materialAt)
}

// NumAnimations returns the number of animations.
func (s *Scene) NumAnimations() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumAnimations)
}

// Animation returns animation i, or false when i is out of range.
func (s *Scene) Animation(i int) (Animation, bool) {
	return animationAt(s.anchor(), i)
}

// Animations iterates over all animations.
func (s *Scene) Animations() iter.Seq[Animation] {
	return items(s.anchor(), s.NumAnimations(), animationAt)
}

// NumTextures returns the number of embedded textures.
func (s *Scene) NumTextures() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumTextures)
}

// Texture returns embedded texture i, or false when i is out of range.
func (s *Scene) Texture(i int) (Texture, bool) {
	return textureAt(s.anchor(), i)
}

// Textures iterates over all embedded textures.
func (s *Scene) Textures() iter.Seq[Texture] {
	return items(s.anchor(), s.NumTextures(), textureAt)
}

// EmbeddedTexture resolves a material texture path. "*N" selects texture
// N; any other path matches a texture by its file name.
func (s *Scene) EmbeddedTexture(path string) (Texture, bool) {
	return embeddedTexture(s.anchor(), path)
}

// NumCameras returns the number of cameras.
func (s *Scene) NumCameras() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumCameras)
}

// Camera returns camera i, or false when i is out of range.
func (s *Scene) Camera(i int) (Camera, bool) {
	return cameraAt(s.anchor(), i)
}

// Cameras iterates over all cameras.
func (s *Scene) Cameras() iter.Seq[Camera] {
	return items(s.anchor(), s.NumCameras(), cameraAt)
}

// NumLights returns the number of lights.
func (s *Scene) NumLights() int {
	defer runtime.KeepAlive(s)
	return int(s.raw().NumLights)
}

// Light returns light i, or false when i is out of range.
func (s *Scene) Light(i int) (Light, bool) {
	return lightAt(s.anchor(), i)
}

// Lights iterates over all lights.
func (s *Scene) Lights() iter.Seq[Light] {
	return items(s.anchor(), s.NumLights(), lightAt)
}

// DeepCopy returns an independent copy of the scene, released with
// FreeScene.
func (s *Scene) DeepCopy() (*Scene, error) {
	in := s.live()
	p := in.lib.CopyScene(in.ptr.Get())
	runtime.KeepAlive(s)
	if p == nil {
		return nil, errors.InvalidScene(errors.PhaseCopy, in.lib.ErrorString())
	}
	return FromRaw(in.lib, p, FreeScene)
}

// items iterates over the n elements produced by at.
func items[T any](a *anchor, n int, at func(*anchor, int) (T, bool)) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range n {
			v, ok := at(a, i)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}
