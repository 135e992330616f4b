package assimp

import (
	"context"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// maxHintLen is the longest format hint ReadFileFromMemory accepts.
const maxHintLen = 200

// ImportOption configures one import call.
type ImportOption func(*importConfig)

type importConfig struct {
	progress ProgressHandler
	props    []Property
	fsys     fs.FS
}

// WithProgress reports progress to h. Returning false from h cancels the
// import.
func WithProgress(h ProgressHandler) ImportOption {
	return func(c *importConfig) {
		c.progress = h
	}
}

// WithProperties passes import settings to the library.
func WithProperties(props ...Property) ImportOption {
	return func(c *importConfig) {
		c.props = append(c.props, props...)
	}
}

// WithFileSystem reads the file and every file it references through
// fsys instead of the operating system.
func WithFileSystem(fsys fs.FS) ImportOption {
	return func(c *importConfig) {
		c.fsys = fsys
	}
}

// Importer reads scenes through a foreign library.
// An Importer is safe for concurrent use if its library is.
type Importer struct {
	lib ffi.Library
}

// NewImporter returns an importer backed by lib.
func NewImporter(lib ffi.Library) *Importer {
	return &Importer{lib: lib}
}

// Library returns the underlying library.
func (imp *Importer) Library() ffi.Library {
	return imp.lib
}

// ReadFile imports the file at path and applies flags.
//
// ctx is observed through the progress callback: once it is done, the
// next progress poll cancels the import.
func (imp *Importer) ReadFile(ctx context.Context, path string, flags PostProcess, opts ...ImportOption) (*Scene, error) {
	if path == "" || strings.IndexByte(path, 0) >= 0 {
		return nil, errors.InvalidParameter(errors.PhaseImport, []string{"path"}, path, "path is empty or contains a NUL byte")
	}
	cfg := buildImportConfig(opts)
	return imp.read(ctx, cfg, "file "+path, func(props []ffi.PropertyRecord, cb *ffi.ProgressCallback) *ffi.Scene {
		return imp.lib.ImportFile(path, uint32(flags), cfg.fsys, props, cb)
	})
}

// ReadMemory imports a scene from data. hint is a file extension such as
// "obj" that helps format detection; it may be empty.
func (imp *Importer) ReadMemory(ctx context.Context, data []byte, hint string, flags PostProcess, opts ...ImportOption) (*Scene, error) {
	if len(data) == 0 {
		return nil, errors.InvalidParameter(errors.PhaseImport, []string{"data"}, nil, "buffer is empty")
	}
	hint = strings.TrimPrefix(hint, ".")
	if strings.IndexByte(hint, 0) >= 0 || len(hint) > maxHintLen {
		return nil, errors.InvalidParameter(errors.PhaseImport, []string{"hint"}, hint, "format hint is too long or contains a NUL byte")
	}
	cfg := buildImportConfig(opts)
	return imp.read(ctx, cfg, "memory buffer", func(props []ffi.PropertyRecord, cb *ffi.ProgressCallback) *ffi.Scene {
		return imp.lib.ImportMemory(data, hint, uint32(flags), props, cb)
	})
}

func buildImportConfig(opts []ImportOption) *importConfig {
	cfg := &importConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// read runs one import with its property bundle and progress bridge alive
// for exactly the duration of the foreign call.
func (imp *Importer) read(ctx context.Context, cfg *importConfig, what string, call func([]ffi.PropertyRecord, *ffi.ProgressCallback) *ffi.Scene) (*Scene, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(errors.PhaseImport, err)
	}

	var records []ffi.PropertyRecord
	if len(cfg.props) > 0 {
		enc, err := EncodeProperties(cfg.props)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		records = enc.Records
	}

	bridge, err := newProgressBridge(ctx, cfg.progress)
	if err != nil {
		return nil, err
	}
	defer bridge.Close()

	p := call(records, bridge.Callback())

	if cancelled, cerr := bridge.Cancelled(errors.PhaseImport); cancelled {
		if p != nil {
			// the library finished anyway; the result is not wanted
			imp.lib.ReleaseImport(p)
		}
		return nil, cerr
	}
	if p == nil {
		return nil, errors.NullPointer(errors.PhaseImport, what, imp.lib.ErrorString())
	}

	s, err := FromRaw(imp.lib, p, ImportRelease)
	if err != nil {
		return nil, err
	}
	Logger().Debug("imported scene",
		zap.String("source", what),
		zap.Int("meshes", s.NumMeshes()))
	return s, nil
}

// PostProcess applies flags to s, consuming it. See Scene.PostProcess.
func (imp *Importer) PostProcess(s *Scene, flags PostProcess) (*Scene, error) {
	return s.PostProcess(flags)
}

// Copy returns an independent deep copy of s. See Scene.DeepCopy.
func (imp *Importer) Copy(s *Scene) (*Scene, error) {
	return s.DeepCopy()
}

// IsExtensionSupported reports whether the library can import files with
// extension ext. It reports false when the library cannot tell.
func (imp *Importer) IsExtensionSupported(ext string) bool {
	c, ok := imp.lib.(ffi.ExtensionChecker)
	return ok && c.IsExtensionSupported(ext)
}

// Version returns the library version, when the library reports one.
func (imp *Importer) Version() (major, minor, revision uint32, ok bool) {
	v, ok := imp.lib.(ffi.Versioner)
	if !ok {
		return 0, 0, 0, false
	}
	major, minor, revision = v.Version()
	return major, minor, revision, true
}
