package assimp

import (
	"context"
	stderrors "errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi/ffitest"
)

type progressRecorder struct {
	mu       sync.Mutex
	percents []float32
	messages []string
	stopAt   int
}

func (r *progressRecorder) Update(p float32, msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percents = append(r.percents, p)
	r.messages = append(r.messages, msg)
	return r.stopAt == 0 || len(r.percents) < r.stopAt
}

func readTriangle(ctx context.Context, lib *ffitest.Library, opts ...ImportOption) (*Scene, error) {
	return NewImporter(lib).ReadMemory(ctx, []byte(triangleOBJ), "obj", 0, opts...)
}

func TestProgressReportsEveryStep(t *testing.T) {
	lib := ffitest.New()
	rec := &progressRecorder{}

	s, err := readTriangle(context.Background(), lib, WithProgress(rec))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"", "Loading file", "Building scene", "Done"}, rec.messages)
	require.Len(t, rec.percents, 4)
	assert.Equal(t, float32(0), rec.percents[0])
	assert.Equal(t, float32(1), rec.percents[3])
	assert.Equal(t, 0, progressStates.Len())
}

func TestProgressCancelOnFirstCall(t *testing.T) {
	lib := ffitest.New()
	rec := &progressRecorder{stopAt: 1}

	s, err := readTriangle(context.Background(), lib, WithProgress(rec))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errors.ErrCancelled)
	assert.Len(t, rec.percents, 1)
	assert.Equal(t, 1, lib.ProgressCalls())
	assert.Equal(t, 0, lib.Live())
	assert.Equal(t, 0, progressStates.Len())
}

func TestProgressNoCallsAfterStop(t *testing.T) {
	rec := &progressRecorder{stopAt: 1}
	b, err := newProgressBridge(context.Background(), rec)
	require.NoError(t, err)
	defer b.Close()
	cb := b.Callback()

	assert.False(t, cb.Invoke(0, nil))
	assert.False(t, cb.Invoke(0.5, nil))
	assert.False(t, cb.Invoke(1, nil))
	assert.Len(t, rec.percents, 1)

	cancelled, cerr := b.Cancelled(errors.PhaseImport)
	assert.True(t, cancelled)
	assert.ErrorIs(t, cerr, errors.ErrCancelled)
}

func TestProgressPanicIsContained(t *testing.T) {
	lib := ffitest.New()
	calls := 0
	h := ProgressFunc(func(float32, string) bool {
		calls++
		if calls == 2 {
			panic("handler exploded")
		}
		return true
	})

	_, err := readTriangle(context.Background(), lib, WithProgress(h))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCancelled)
	assert.Contains(t, err.Error(), "handler exploded")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, lib.ProgressCalls())

	s, err := readTriangle(context.Background(), lib, WithProgress(&progressRecorder{}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumMeshes())
	require.NoError(t, s.Close())
	assert.Empty(t, lib.Violations())
}

func TestProgressMessageDecoding(t *testing.T) {
	lib := ffitest.New()
	lib.ProgressMessages = []string{"", "Reading \xff\xfe", "Fine"}
	rec := &progressRecorder{}

	s, err := readTriangle(context.Background(), lib, WithProgress(rec))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, []string{"", "", "Fine"}, rec.messages)
	assert.Equal(t, []float32{0, 0.5, 1}, rec.percents)
}

func TestProgressContextCancellation(t *testing.T) {
	t.Run("cancelled during import", func(t *testing.T) {
		lib := ffitest.New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := 0
		h := ProgressFunc(func(float32, string) bool {
			calls++
			cancel()
			return true
		})
		_, err := readTriangle(ctx, lib, WithProgress(h))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrCancelled)
		assert.True(t, stderrors.Is(err, context.Canceled))
		assert.Equal(t, 1, calls)
		assert.Equal(t, 2, lib.ProgressCalls())
	})

	t.Run("cancelled before import", func(t *testing.T) {
		lib := ffitest.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := readTriangle(ctx, lib)
		assert.ErrorIs(t, err, errors.ErrCancelled)
		assert.Equal(t, 0, lib.Imports())
	})

	t.Run("context without handler", func(t *testing.T) {
		lib := ffitest.New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := readTriangle(ctx, lib)
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.Equal(t, len(ffitest.DefaultProgressMessages), lib.ProgressCalls())
	})
}

func TestProgressTrampolineUnknownHandle(t *testing.T) {
	assert.False(t, progressTrampoline(0.5, nil, 0))
	assert.False(t, progressTrampoline(0.5, nil, 12345))
	wide := uint64(math.MaxUint32) + 1
	assert.False(t, progressTrampoline(0.5, nil, uintptr(wide)))
}

func TestNilBridge(t *testing.T) {
	b, err := newProgressBridge(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Nil(t, b.Callback())
	cancelled, cerr := b.Cancelled(errors.PhaseImport)
	assert.False(t, cancelled)
	assert.NoError(t, cerr)
	b.Close()
}

func TestClampPercentage(t *testing.T) {
	assert.Equal(t, float32(0), clampPercentage(float32(math.NaN())))
	assert.Equal(t, float32(0), clampPercentage(-2))
	assert.Equal(t, float32(1), clampPercentage(7))
	assert.Equal(t, float32(0.25), clampPercentage(0.25))
}
