package assimp

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
	"github.com/wippyai/assimp-go/internal/handles"
)

// ProgressHandler receives import progress. percentage is in [0, 1] and
// message is empty when the library sent none. Returning false cancels
// the import.
type ProgressHandler interface {
	Update(percentage float32, message string) bool
}

// ProgressFunc adapts a function to ProgressHandler.
type ProgressFunc func(percentage float32, message string) bool

func (f ProgressFunc) Update(percentage float32, message string) bool {
	return f(percentage, message)
}

// progressStates maps the user-data value handed to the library to the
// state of the call in flight.
var progressStates = handles.NewTable[*progressState]()

// progressState is the per-call state behind the trampoline. Calls are
// serialized by mu.
type progressState struct {
	mu       sync.Mutex
	handler  ProgressHandler
	ctx      context.Context
	stopped  bool
	panicked any
	ctxErr   error
	calls    int
}

// progressBridge is one registered handler.
type progressBridge struct {
	state    *progressState
	handle   handles.Handle
	callback ffi.ProgressCallback
}

// newProgressBridge registers h for the duration of one foreign call.
// It returns nil when there is nothing to observe.
func newProgressBridge(ctx context.Context, h ProgressHandler) (*progressBridge, error) {
	if h == nil && ctx.Done() == nil {
		return nil, nil
	}
	st := &progressState{handler: h, ctx: ctx}
	handle, err := progressStates.Insert(st)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseProgress, errors.KindInvalidParameter, err, "register progress handler")
	}
	return &progressBridge{
		state:  st,
		handle: handle,
		callback: ffi.ProgressCallback{
			Proc:     progressTrampoline,
			UserData: uintptr(handle),
		},
	}, nil
}

// Callback returns the callback to pass to the library. A nil bridge
// yields a nil callback.
func (b *progressBridge) Callback() *ffi.ProgressCallback {
	if b == nil {
		return nil
	}
	return &b.callback
}

// Close unregisters the handler. It must run after the foreign call
// returned.
func (b *progressBridge) Close() {
	if b == nil {
		return
	}
	progressStates.Remove(b.handle)
}

// Cancelled reports whether the handler stopped the call, and why.
func (b *progressBridge) Cancelled(phase errors.Phase) (bool, error) {
	if b == nil {
		return false, nil
	}
	st := b.state
	st.mu.Lock()
	defer st.mu.Unlock()
	switch {
	case !st.stopped:
		return false, nil
	case st.panicked != nil:
		return true, errors.Cancelled(phase, fmt.Errorf("progress handler panicked: %v", st.panicked))
	case st.ctxErr != nil:
		return true, errors.Cancelled(phase, st.ctxErr)
	default:
		return true, errors.Cancelled(phase, nil)
	}
}

// progressTrampoline is the fixed-signature entry point the library calls.
// It never lets a panic escape.
func progressTrampoline(percentage float32, message *byte, userData uintptr) bool {
	if userData > math.MaxUint32 {
		return false
	}
	st, ok := progressStates.Get(handles.Handle(userData))
	if !ok {
		return false
	}
	return st.update(percentage, message)
}

func (st *progressState) update(percentage float32, message *byte) (cont bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return false
	}
	st.calls++

	defer func() {
		if r := recover(); r != nil {
			Logger().Error("progress handler panicked; cancelling import",
				zap.Any("panic", r))
			st.panicked = r
			st.stopped = true
			cont = false
		}
	}()

	if err := st.ctx.Err(); err != nil {
		st.ctxErr = err
		st.stopped = true
		return false
	}
	if st.handler == nil {
		return true
	}
	cont = st.handler.Update(clampPercentage(percentage), decodeMessage(message))
	if !cont {
		st.stopped = true
	}
	return cont
}

func clampPercentage(p float32) float32 {
	switch {
	case math.IsNaN(float64(p)) || p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// decodeMessage copies a progress message. Null and invalid UTF-8
// messages both read as no message.
func decodeMessage(p *byte) string {
	b := ffi.CStringBytes(p)
	if len(b) == 0 || !utf8.Valid(b) {
		return ""
	}
	return string(b)
}
