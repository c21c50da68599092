package dispatch

import (
	"github.com/samber/oops"

	"inferplug/internal/registry"
	"inferplug/pkg/types"
)

// Error codes owned by the dispatcher. Registry failures keep their own codes.
const (
	CodeUsage          = "USAGE"
	CodeMethodNotFound = "METHOD_NOT_FOUND"
)

// ErrUsage reports insufficient or malformed caller input. msg is shown to
// the caller verbatim.
func ErrUsage(msg string) error {
	return oops.Code(CodeUsage).Errorf("%s", msg)
}

// ErrInvalidPayload reports a payload that failed to parse or validate.
func ErrInvalidPayload(method string, cause error) error {
	return oops.Code(CodeUsage).
		With("method", method).
		Wrapf(cause, "invalid %s payload", method)
}

// ErrMethodNotFound reports an unknown method on a known service.
func ErrMethodNotFound(service, method string) error {
	return oops.Code(CodeMethodNotFound).
		With("service", service).
		With("method", method).
		Errorf("method not found: %s", method)
}

// ErrServiceNotFound reports an unknown service id.
func ErrServiceNotFound(service string) error {
	return oops.Code(CodeMethodNotFound).
		With("service", service).
		Errorf("service not found: %s", service)
}

// ErrUnknownCommand reports an unknown CLI subcommand.
func ErrUnknownCommand(name string) error {
	return oops.Code(CodeMethodNotFound).
		With("command", name).
		Errorf("unknown command: %s", name)
}

// IsUsage reports whether err is a caller input error.
func IsUsage(err error) bool { return registry.Code(err) == CodeUsage }

// IsMethodNotFound reports whether err names an unknown service, method or
// subcommand.
func IsMethodNotFound(err error) bool { return registry.Code(err) == CodeMethodNotFound }

// KindOf classifies err for logs and the boundary envelope. Errors without
// a code are internal.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	if c := registry.Code(err); c != "" {
		return c
	}
	return registry.CodeInternal
}

// ToServiceError converts err into the boundary envelope. Only unknown
// methods map to method_not_found; everything else is an invocation error.
func ToServiceError(err error) *types.ServiceError {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	code := types.CodeInvocationError
	if kind == CodeMethodNotFound {
		code = types.CodeMethodNotFound
	}
	return &types.ServiceError{Code: code, Kind: kind, Message: err.Error()}
}
