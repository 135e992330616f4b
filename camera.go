package assimp

import (
	"runtime"

	"github.com/wippyai/assimp-go/ffi"
)

// Camera is a view of one camera. Its name matches the node that places
// it in the scene.
type Camera struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Camera]
}

func cameraAt(a *anchor, i int) (Camera, bool) {
	s := a.scene()
	ptr, ok := ffi.NewPtr(ffi.At(s.Cameras, s.NumCameras, i))
	if !ok {
		return Camera{}, false
	}
	return Camera{a: a, ptr: ptr}, true
}

// Name returns the camera name.
func (c Camera) Name() string {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().Name.String()
}

// Value returns a copy of the camera parameters.
func (c Camera) Value() ffi.Camera {
	defer runtime.KeepAlive(c.a)
	return *c.ptr.Get()
}

// Position returns the position relative to the camera node.
func (c Camera) Position() ffi.Vector3 {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().Position
}

// LookAt returns the viewing direction relative to the camera node.
func (c Camera) LookAt() ffi.Vector3 {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().LookAt
}

// Up returns the up vector relative to the camera node.
func (c Camera) Up() ffi.Vector3 {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().Up
}

// HorizontalFOV returns half the horizontal field of view, in radians.
func (c Camera) HorizontalFOV() float32 {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().HorizontalFOV
}

// ClipPlanes returns the near and far clip distances.
func (c Camera) ClipPlanes() (near, far float32) {
	defer runtime.KeepAlive(c.a)
	r := c.ptr.Get()
	return r.ClipPlaneNear, r.ClipPlaneFar
}

// Aspect returns the width/height ratio, or 0 when unspecified.
func (c Camera) Aspect() float32 {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().Aspect
}

// Light is a view of one light source.
type Light struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Light]
}

func lightAt(a *anchor, i int) (Light, bool) {
	s := a.scene()
	ptr, ok := ffi.NewPtr(ffi.At(s.Lights, s.NumLights, i))
	if !ok {
		return Light{}, false
	}
	return Light{a: a, ptr: ptr}, true
}

// Name returns the light name.
func (l Light) Name() string {
	defer runtime.KeepAlive(l.a)
	return l.ptr.Get().Name.String()
}

// Type returns the light source type.
func (l Light) Type() ffi.LightSourceType {
	defer runtime.KeepAlive(l.a)
	return l.ptr.Get().Type
}

// Value returns a copy of the light parameters.
func (l Light) Value() ffi.Light {
	defer runtime.KeepAlive(l.a)
	return *l.ptr.Get()
}

// Position returns the position relative to the light node.
func (l Light) Position() ffi.Vector3 {
	defer runtime.KeepAlive(l.a)
	return l.ptr.Get().Position
}

// Direction returns the direction of directional and spot lights.
func (l Light) Direction() ffi.Vector3 {
	defer runtime.KeepAlive(l.a)
	return l.ptr.Get().Direction
}

// Diffuse returns the diffuse color.
func (l Light) Diffuse() ffi.Color3 {
	defer runtime.KeepAlive(l.a)
	return l.ptr.Get().ColorDiffuse
}

// Attenuation returns the constant, linear and quadratic factors.
func (l Light) Attenuation() (constant, linear, quadratic float32) {
	defer runtime.KeepAlive(l.a)
	r := l.ptr.Get()
	return r.AttenuationConstant, r.AttenuationLinear, r.AttenuationQuadratic
}

// Cone returns the inner and outer cone angles of a spot light, in radians.
func (l Light) Cone() (inner, outer float32) {
	defer runtime.KeepAlive(l.a)
	r := l.ptr.Get()
	return r.AngleInnerCone, r.AngleOuterCone
}
