package registry

import (
	"github.com/samber/oops"
)

// Error codes for registry failures.
const (
	CodeLoadFailed       = "LOAD_FAILED"
	CodeNotLoaded        = "NOT_LOADED"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeInternal         = "INTERNAL"
)

// ErrLoadFailed reports that the engine could not construct a handle.
func ErrLoadFailed(path string, cause error) error {
	return oops.Code(CodeLoadFailed).
		With("path", path).
		Wrapf(cause, "could not load model %s", path)
}

// ErrNotLoaded reports an unload of a path that has no entry.
func ErrNotLoaded(path string) error {
	return oops.Code(CodeNotLoaded).
		With("path", path).
		Errorf("model not loaded: %s", path)
}

// ErrGenerationFailed reports a failure inside a loaded handle.
func ErrGenerationFailed(path string, cause error) error {
	return oops.Code(CodeGenerationFailed).
		With("path", path).
		Wrapf(cause, "generation failed for %s", path)
}

// ErrClosed is returned by every operation once the registry is torn down.
func ErrClosed() error {
	return oops.Code(CodeInternal).Errorf("registry closed")
}

// errWait reports that the caller gave up waiting for a model.
func errWait(path string, cause error) error {
	return oops.Code(CodeInternal).
		With("path", path).
		Wrapf(cause, "waiting for model %s", path)
}

// errPanic converts a recovered engine panic into an internal error.
func errPanic(path, op string, v any) error {
	return oops.Code(CodeInternal).
		With("path", path).
		With("op", op).
		Errorf("engine panic during %s of %s: %v", op, path, v)
}

// Code returns the registry error code carried by err, or "".
func Code(err error) string {
	o, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if c, ok := any(o.Code()).(string); ok {
		return c
	}
	return ""
}

// IsLoadFailed reports whether err is a load failure.
func IsLoadFailed(err error) bool { return Code(err) == CodeLoadFailed }

// IsNotLoaded reports whether err is an unload of an absent path.
func IsNotLoaded(err error) bool { return Code(err) == CodeNotLoaded }

// IsGenerationFailed reports whether err came from inside a handle.
func IsGenerationFailed(err error) bool { return Code(err) == CodeGenerationFailed }

// IsInternal reports whether err is an internal failure (closed registry,
// abandoned wait, engine panic).
func IsInternal(err error) bool { return Code(err) == CodeInternal }
