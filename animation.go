package assimp

import (
	"iter"
	"runtime"

	"github.com/wippyai/assimp-go/ffi"
)

// defaultTicksPerSecond is used when the file does not specify a rate.
const defaultTicksPerSecond = 25.0

// Animation is a view of one node animation.
type Animation struct {
	a   *anchor
	ptr ffi.Ptr[ffi.Animation]
}

func newAnimation(a *anchor, p *ffi.Animation) (Animation, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return Animation{}, false
	}
	return Animation{a: a, ptr: ptr}, true
}

func animationAt(a *anchor, i int) (Animation, bool) {
	s := a.scene()
	return newAnimation(a, ffi.At(s.Animations, s.NumAnimations, i))
}

// Name returns the animation name.
func (an Animation) Name() string {
	defer runtime.KeepAlive(an.a)
	return an.ptr.Get().Name.String()
}

// Duration returns the duration in ticks.
func (an Animation) Duration() float64 {
	defer runtime.KeepAlive(an.a)
	return an.ptr.Get().Duration
}

// TicksPerSecond returns the tick rate, or 0 when the file omits it.
func (an Animation) TicksPerSecond() float64 {
	defer runtime.KeepAlive(an.a)
	return an.ptr.Get().TicksPerSecond
}

// Seconds returns the duration in seconds. A missing tick rate counts as
// 25 ticks per second.
func (an Animation) Seconds() float64 {
	tps := an.TicksPerSecond()
	if tps <= 0 {
		tps = defaultTicksPerSecond
	}
	return an.Duration() / tps
}

// NumChannels returns the number of animated nodes.
func (an Animation) NumChannels() int {
	defer runtime.KeepAlive(an.a)
	return int(an.ptr.Get().NumChannels)
}

// Channel returns channel i, or false when i is out of range.
func (an Animation) Channel(i int) (NodeAnimation, bool) {
	r := an.ptr.Get()
	return newNodeAnimation(an.a, ffi.At(r.Channels, r.NumChannels, i))
}

// Channels iterates over all channels.
func (an Animation) Channels() iter.Seq[NodeAnimation] {
	return func(yield func(NodeAnimation) bool) {
		for i := range an.NumChannels() {
			c, ok := an.Channel(i)
			if ok && !yield(c) {
				return
			}
		}
	}
}

// FindChannel returns the channel animating the node named node.
func (an Animation) FindChannel(node string) (NodeAnimation, bool) {
	for c := range an.Channels() {
		if c.NodeName() == node {
			return c, true
		}
	}
	return NodeAnimation{}, false
}

// NodeAnimation is a view of the keys animating one node.
type NodeAnimation struct {
	a   *anchor
	ptr ffi.Ptr[ffi.NodeAnim]
}

func newNodeAnimation(a *anchor, p *ffi.NodeAnim) (NodeAnimation, bool) {
	ptr, ok := ffi.NewPtr(p)
	if !ok {
		return NodeAnimation{}, false
	}
	return NodeAnimation{a: a, ptr: ptr}, true
}

// NodeName returns the name of the animated node.
func (c NodeAnimation) NodeName() string {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().NodeName.String()
}

// Node resolves the animated node in the scene hierarchy.
func (c NodeAnimation) Node() (Node, bool) {
	root, ok := newNode(c.a, c.a.scene().RootNode)
	if !ok {
		return Node{}, false
	}
	return root.FindNode(c.NodeName())
}

// PositionKeys returns the position keys without copying.
// The slice is valid only while c or an open handle of its scene is reachable.
func (c NodeAnimation) PositionKeys() []ffi.VectorKey {
	r := c.ptr.Get()
	return ffi.Slice(r.PositionKeys, r.NumPositionKeys)
}

// RotationKeys returns the rotation keys without copying.
// The slice is valid only while c or an open handle of its scene is reachable.
func (c NodeAnimation) RotationKeys() []ffi.QuatKey {
	r := c.ptr.Get()
	return ffi.Slice(r.RotationKeys, r.NumRotationKeys)
}

// ScalingKeys returns the scaling keys without copying.
// The slice is valid only while c or an open handle of its scene is reachable.
func (c NodeAnimation) ScalingKeys() []ffi.VectorKey {
	r := c.ptr.Get()
	return ffi.Slice(r.ScalingKeys, r.NumScalingKeys)
}

// PreState returns the behaviour before the first key.
func (c NodeAnimation) PreState() ffi.AnimBehaviour {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().PreState
}

// PostState returns the behaviour after the last key.
func (c NodeAnimation) PostState() ffi.AnimBehaviour {
	defer runtime.KeepAlive(c.a)
	return c.ptr.Get().PostState
}
