package plugin

import (
	"github.com/samber/oops"

	"inferplug/internal/registry"
)

// ErrNotInitialized is returned by calls made before Init or after Cleanup.
func ErrNotInitialized() error {
	return oops.Code(registry.CodeInternal).Errorf("plugin not initialized")
}

func errPanic(service, method string, v any) error {
	return oops.Code(registry.CodeInternal).
		With("service", service).
		With("method", method).
		Errorf("internal error in %s.%s: %v", service, method, v)
}
