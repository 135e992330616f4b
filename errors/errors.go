package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseImport      Phase = "import"      // file or memory import
	PhasePostProcess Phase = "postprocess" // in-place scene transformation
	PhaseCopy        Phase = "copy"        // deep copy of a scene
	PhaseEncode      Phase = "encode"      // Go values to foreign records
	PhaseDecode      Phase = "decode"      // foreign payloads to Go values
	PhaseProgress    Phase = "progress"    // progress callback bridge
	PhaseAccess      Phase = "access"      // scene and view accessors
	PhaseLoad        Phase = "load"        // native library loading
)

// Kind categorizes the error
type Kind string

const (
	KindNullPointer      Kind = "null_pointer"
	KindInvalidScene     Kind = "invalid_scene"
	KindInvalidParameter Kind = "invalid_parameter"
	KindForeign          Kind = "foreign"
	KindCancelled        Kind = "cancelled"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidUTF8      Kind = "invalid_utf8"
	KindUnsupported      Kind = "unsupported"
	KindClosed           Kind = "closed"
	KindNotFound         Kind = "not_found"
)

// Sentinels for errors.Is that match by Kind in any Phase.
var (
	ErrNullPointer      = &Error{Kind: KindNullPointer}
	ErrInvalidScene     = &Error{Kind: KindInvalidScene}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrCancelled        = &Error{Kind: KindCancelled}
	ErrClosed           = &Error{Kind: KindClosed}
	ErrInvalidData      = &Error{Kind: KindInvalidData}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidUTF8      = &Error{Kind: KindInvalidUTF8}
	ErrForeign          = &Error{Kind: KindForeign}
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NullPointer creates an error for a foreign call that returned nothing usable.
// lastError is the foreign library's own error text and may be empty; when
// set it becomes the Foreign cause.
func NullPointer(phase Phase, what, lastError string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullPointer,
		Detail: what + " is null",
		Cause:  foreignCause(phase, lastError),
	}
}

// InvalidScene creates an error for a failed foreign scene operation
func InvalidScene(phase Phase, lastError string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidScene,
		Detail: "foreign operation failed",
		Cause:  foreignCause(phase, lastError),
	}
}

// InvalidParameter creates an error for a name or value that cannot be
// encoded for the foreign side
func InvalidParameter(phase Phase, path []string, value any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidParameter,
		Path:   path,
		Value:  value,
		Detail: detail,
	}
}

// Foreign carries the foreign library's last error text unchanged
func Foreign(phase Phase, lastError string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindForeign,
		Detail: lastError,
	}
}

func foreignCause(phase Phase, lastError string) error {
	if lastError == "" {
		return nil
	}
	return Foreign(phase, lastError)
}

// Cancelled creates an error for an operation stopped by its progress handler.
// cause is non-nil when the handler panicked or its context was done.
func Cancelled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCancelled,
		Detail: "cancelled by progress handler",
		Cause:  cause,
	}
}

// InvalidData creates an error for a malformed foreign payload
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed creates an error for an operation on a released scene handle
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " already released",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a native library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindForeign,
		Detail: detail,
		Cause:  cause,
	}
}
