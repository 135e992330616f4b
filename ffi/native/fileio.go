//go:build darwin || linux || freebsd

package native

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
	"github.com/wippyai/assimp-go/internal/handles"
)

// fileIO mirrors aiFileIO.
type fileIO struct {
	OpenProc  uintptr
	CloseProc uintptr
	UserData  uintptr
}

// file mirrors aiFile.
type file struct {
	ReadProc     uintptr
	WriteProc    uintptr
	TellProc     uintptr
	FileSizeProc uintptr
	SeekProc     uintptr
	FlushProc    uintptr
	UserData     uintptr
}

// aiOrigin and aiReturn values.
const (
	originSet = 0
	originCur = 1
	originEnd = 2

	returnSuccess int32 = 0
	returnFailure int32 = -1
)

// mount exposes one fs.FS for the duration of one import. UserData of its
// fileIO is the mount's handle.
type mount struct {
	fsys   fs.FS
	io     fileIO
	handle handles.Handle
	pinner runtime.Pinner

	mu    sync.Mutex
	files map[handles.Handle]struct{}
}

// openFile is one file handed to the importer. UserData of its aiFile is
// the openFile's handle.
type openFile struct {
	r      *bytes.Reader
	file   file
	mount  *mount
	pinner runtime.Pinner
}

var (
	mounts    = handles.NewTable[*mount]()
	openFiles = handles.NewTable[*openFile]()

	procsOnce sync.Once
	procs     struct {
		open, close                          uintptr
		read, write, tell, size, seek, flush uintptr
	}
)

// callbacks are created once; purego never frees them.
func initProcs() {
	procsOnce.Do(func() {
		procs.open = purego.NewCallback(fsOpen)
		procs.close = purego.NewCallback(fsClose)
		procs.read = purego.NewCallback(fileRead)
		procs.write = purego.NewCallback(fileWrite)
		procs.tell = purego.NewCallback(fileTell)
		procs.size = purego.NewCallback(fileSize)
		procs.seek = purego.NewCallback(fileSeek)
		procs.flush = purego.NewCallback(fileFlush)
	})
}

func mountFS(fsys fs.FS) (*mount, error) {
	initProcs()
	m := &mount{fsys: fsys, files: make(map[handles.Handle]struct{})}
	h, err := mounts.Insert(m)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindClosed, err, "register file system")
	}
	m.handle = h
	m.io = fileIO{OpenProc: procs.open, CloseProc: procs.close, UserData: uintptr(h)}
	m.pinner.Pin(&m.io)
	return m, nil
}

// unmount closes files the importer left open and unregisters m.
func (m *mount) unmount() {
	m.mu.Lock()
	left := make([]handles.Handle, 0, len(m.files))
	for h := range m.files {
		left = append(left, h)
	}
	m.mu.Unlock()
	for _, h := range left {
		closeFile(h)
	}
	mounts.Remove(m.handle)
	m.pinner.Unpin()
}

// fsPath maps an importer path onto fs.FS path syntax.
func fsPath(name string) string {
	name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "."
	}
	return name
}

func recoverProc(proc string) {
	if r := recover(); r != nil {
		Logger().Error("file system callback panicked",
			zap.String("proc", proc),
			zap.Any("panic", r))
	}
}

func fsOpen(fio *fileIO, name, mode *byte) (ret uintptr) {
	defer recoverProc("open")
	m, ok := mounts.Get(handles.Handle(fio.UserData))
	if !ok {
		return 0
	}
	if strings.ContainsAny(ffi.GoString(mode), "wa+") {
		return 0
	}
	p := fsPath(ffi.GoString(name))
	data, err := fs.ReadFile(m.fsys, p)
	if err != nil {
		Logger().Debug("file system open failed", zap.String("path", p), zap.Error(err))
		return 0
	}

	of := &openFile{r: bytes.NewReader(data), mount: m}
	h, err := openFiles.Insert(of)
	if err != nil {
		return 0
	}
	of.file = file{
		ReadProc:     procs.read,
		WriteProc:    procs.write,
		TellProc:     procs.tell,
		FileSizeProc: procs.size,
		SeekProc:     procs.seek,
		FlushProc:    procs.flush,
		UserData:     uintptr(h),
	}
	of.pinner.Pin(&of.file)
	m.mu.Lock()
	m.files[h] = struct{}{}
	m.mu.Unlock()
	return uintptr(unsafe.Pointer(&of.file))
}

func fsClose(_ *fileIO, f *file) {
	defer recoverProc("close")
	if f != nil {
		closeFile(handles.Handle(f.UserData))
	}
}

func closeFile(h handles.Handle) {
	of, ok := openFiles.Remove(h)
	if !ok {
		return
	}
	of.mount.mu.Lock()
	delete(of.mount.files, h)
	of.mount.mu.Unlock()
	of.pinner.Unpin()
}

func lookup(f *file) (*openFile, bool) {
	if f == nil {
		return nil, false
	}
	return openFiles.Get(handles.Handle(f.UserData))
}

// fileRead reads whole items, like fread.
func fileRead(f *file, buf unsafe.Pointer, size, count uintptr) (ret uintptr) {
	defer recoverProc("read")
	of, ok := lookup(f)
	if !ok || buf == nil || size == 0 || count == 0 {
		return 0
	}
	items := min(count, uintptr(of.r.Len())/size)
	if items == 0 {
		return 0
	}
	dst := unsafe.Slice((*byte)(buf), items*size)
	n, _ := io.ReadFull(of.r, dst)
	return uintptr(n) / size
}

func fileWrite(_ *file, _ unsafe.Pointer, _, _ uintptr) uintptr {
	return 0
}

func fileTell(f *file) (ret uintptr) {
	defer recoverProc("tell")
	of, ok := lookup(f)
	if !ok {
		return 0
	}
	return uintptr(of.r.Size()) - uintptr(of.r.Len())
}

func fileSize(f *file) (ret uintptr) {
	defer recoverProc("size")
	of, ok := lookup(f)
	if !ok {
		return 0
	}
	return uintptr(of.r.Size())
}

func fileSeek(f *file, offset uintptr, origin uintptr) (ret int32) {
	ret = returnFailure
	defer recoverProc("seek")
	of, ok := lookup(f)
	if !ok {
		return returnFailure
	}
	var whence int
	switch uint32(origin) {
	case originSet:
		whence = io.SeekStart
	case originCur:
		whence = io.SeekCurrent
	case originEnd:
		whence = io.SeekEnd
	default:
		return returnFailure
	}
	// size_t offsets wrap for backwards seeks
	pos, err := of.r.Seek(int64(offset), whence)
	if err != nil || pos > of.r.Size() {
		return returnFailure
	}
	return returnSuccess
}

func fileFlush(_ *file) {}
