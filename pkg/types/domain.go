package types

// GenerateRequest is a single generation against a loaded model.
// Nil optionals mean "use the engine default".
type GenerateRequest struct {
	// Prompt text to complete.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens *int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// GenerateResponse is the result of one generation call.
type GenerateResponse struct {
	// Generated text.
	Text string `json:"text"`
	// Number of tokens produced.
	// example: 16
	TokensGenerated int `json:"tokens_generated" example:"16"`
	// True when generation ended on a terminal condition rather than truncation.
	Stopped bool `json:"stopped"`
	// Why generation ended (e.g. stop, length).
	// example: stop
	StopReason string `json:"stop_reason" example:"stop"`
}

// ModelInfo is a metadata snapshot of a loaded model.
type ModelInfo struct {
	// Human-readable model name.
	// example: tinyllama.Q4_K_M.gguf
	Name string `json:"name" example:"tinyllama.Q4_K_M.gguf"`
	// Size of the model in bytes.
	// example: 669000000
	Size int64 `json:"size" example:"669000000"`
	// Always true for a model held by the registry.
	Loaded bool `json:"loaded"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
