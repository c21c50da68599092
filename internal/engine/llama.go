//go:build llama

package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"inferplug/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaEngine holds global config used to initialize a model.
type llamaEngine struct {
	opts Options
}

// NewLlama returns the in-process go-llama.cpp backend.
func NewLlama(opts Options) Engine {
	return &llamaEngine{opts: opts.withDefaults()}
}

// llamaHandle owns the loaded model.
type llamaHandle struct {
	model *llama.LLama
	path  string
	info  types.ModelInfo
	opts  Options
}

func (e *llamaEngine) Load(ctx context.Context, path string) (Handle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	mo := []llama.ModelOption{
		llama.SetContext(e.opts.ContextSize),
	}
	if e.opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(e.opts.GPULayers))
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaHandle{model: m, path: path, info: fileInfo(path), opts: e.opts}, nil
}

func (h *llamaHandle) Generate(_ context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	if h.model == nil {
		return types.GenerateResponse{}, fmt.Errorf("llama model not initialized")
	}
	maxTokens := h.opts.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	// Count tokens through the callback. A prediction always runs to its
	// token budget or a stop condition.
	produced := 0
	h.model.SetTokenCallback(func(string) bool {
		produced++
		return produced < maxTokens
	})

	text, err := h.model.Predict(req.Prompt, predictOptions(req, maxTokens, h.opts.Threads)...)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	resp := types.GenerateResponse{
		Text:            text,
		TokensGenerated: produced,
		Stopped:         produced < maxTokens,
		StopReason:      "stop",
	}
	if !resp.Stopped {
		resp.StopReason = "length"
	}
	return resp, nil
}

func (h *llamaHandle) Info() types.ModelInfo { return h.info }

func (h *llamaHandle) Close() error {
	if h.model != nil {
		h.model.Free()
		h.model = nil
	}
	return nil
}

// predictOptions converts a request into go-llama.cpp options.
func predictOptions(req types.GenerateRequest, maxTokens, threads int) []llama.PredictOption {
	temp := llama.DefaultOptions.Temperature
	if req.Temperature != nil {
		temp = float32(*req.Temperature)
	}
	return []llama.PredictOption{
		llama.SetTokens(max(1, maxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTemperature(temp),
		llama.SetTopP(llama.DefaultOptions.TopP),
		llama.SetTopK(llama.DefaultOptions.TopK),
		llama.SetPenalty(llama.DefaultOptions.Penalty),
	}
}
