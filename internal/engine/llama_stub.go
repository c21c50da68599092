//go:build !llama

package engine

// This file provides a no-CGO stub for the llama backend. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real backend lives in llama.go (tagged 'llama').

import (
	"context"
	"strings"
)

// llamaBuilt indicates whether this binary was compiled with real llama support.
var llamaBuilt = false

// llamaEngine refuses every load without the 'llama' build tag. This avoids
// any mocked inference in production binaries built without CGO support.
type llamaEngine struct {
	opts Options
}

// NewLlama returns the llama backend (stub in this build).
func NewLlama(opts Options) Engine {
	return &llamaEngine{opts: opts.withDefaults()}
}

func (e *llamaEngine) Load(ctx context.Context, path string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, errEmptyPath
	}
	return nil, ErrDependencyUnavailable(stubReason)
}
