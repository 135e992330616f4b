// Package errors provides structured error types for the assimp-go library.
//
// Errors are categorized by Phase (which operation failed) and Kind (error
// category). The Error type carries a field path, a human-readable detail,
// the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindInvalidParameter).
//		Path("properties", "PP_SLM_VERTEX_LIMIT").
//		Value(name).
//		Detail("name contains a NUL byte").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NullPointer(errors.PhaseImport, "aiScene", lastError)
//	err := errors.InvalidScene(errors.PhasePostProcess, lastError)
//
// Foreign failures never panic across the boundary; they surface here. The
// foreign library's own last-error text travels unchanged as a KindForeign
// cause, so errors.Is(err, errors.ErrForeign) tells whether libassimp gave
// a reason.
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any error of their Kind regardless of Phase:
//
//	if errors.Is(err, errors.ErrCancelled) { ... }
package errors
