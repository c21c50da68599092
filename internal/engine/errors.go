package engine

import "errors"

// dependencyUnavailableError signals a missing runtime dependency (e.g.,
// llama.cpp not compiled in) so callers can tell it apart from a bad model file.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var target dependencyUnavailableError
	return errors.As(err, &target)
}

// insufficientMemoryError is returned by the memory guard.
type insufficientMemoryError struct{ msg string }

func (e insufficientMemoryError) Error() string { return e.msg }

// IsInsufficientMemory reports whether err came from the memory guard.
func IsInsufficientMemory(err error) bool {
	var target insufficientMemoryError
	return errors.As(err, &target)
}
