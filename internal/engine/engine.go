// Package engine defines the contract the registry needs from an inference
// backend, plus the backends compiled into this binary.
//
//   - engine.go: Engine and Handle interfaces, Options.
//   - llama.go: in-process go-llama.cpp backend (build tag `llama`).
//   - llama_stub.go: CGO-free stub that refuses to load (no `llama` tag).
//   - memguard.go: decorator refusing loads that would not fit in free memory.
//   - sanity.go: availability report for status endpoints.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"inferplug/pkg/types"
)

// Engine constructs model handles from a model path.
type Engine interface {
	// Load constructs a handle for path. The returned error is the engine's
	// reason and is surfaced to callers verbatim.
	Load(ctx context.Context, path string) (Handle, error)
}

// Handle owns one loaded model. A Handle is not safe for concurrent use;
// callers must serialize Generate and Info.
type Handle interface {
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Info() types.ModelInfo
	// Close releases the model. The handle must not be used afterwards.
	Close() error
}

var errEmptyPath = errors.New("model path is empty")

const stubReason = "llama support not built (missing 'llama' build tag)"

// Func adapts a plain function to Engine.
type Func func(ctx context.Context, path string) (Handle, error)

// Load implements Engine.
func (f Func) Load(ctx context.Context, path string) (Handle, error) { return f(ctx, path) }

// Options configure the built-in llama backend.
type Options struct {
	ContextSize int
	Threads     int
	GPULayers   int
	// Token budget used when a request leaves MaxTokens unset.
	DefaultMaxTokens int
}

const (
	defaultContextSize = 2048
	defaultMaxTokens   = 256
)

func (o Options) withDefaults() Options {
	if o.ContextSize <= 0 {
		o.ContextSize = defaultContextSize
	}
	if o.Threads <= 0 {
		o.Threads = 1
	}
	if o.DefaultMaxTokens <= 0 {
		o.DefaultMaxTokens = defaultMaxTokens
	}
	return o
}

// fileInfo builds the metadata snapshot shared by the backends: the file name
// and its size on disk. Stat failures report size 0.
func fileInfo(path string) types.ModelInfo {
	info := types.ModelInfo{Name: filepath.Base(path), Loaded: true}
	if fi, err := os.Stat(path); err == nil {
		info.Size = fi.Size()
	}
	return info
}
