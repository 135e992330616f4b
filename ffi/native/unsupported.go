//go:build !(darwin || linux || freebsd)

package native

import (
	"github.com/wippyai/assimp-go/errors"
	"github.com/wippyai/assimp-go/ffi"
)

// EnvLibrary names the environment variable consulted by Open when no
// path is given.
const EnvLibrary = "ASSIMP_LIBRARY"

// Open reports that run-time loading is not available on this platform.
func Open(string) (ffi.Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "loading libassimp at run time is not supported on this platform")
}
