package types

// GenerateArgs is the payload of the structured "generate" method.
type GenerateArgs struct {
	ModelPath   string   `json:"model_path" jsonschema:"required,minLength=1"`
	Prompt      string   `json:"prompt" jsonschema:"required"`
	MaxTokens   *int     `json:"max_tokens,omitempty" jsonschema:"minimum=1"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"minimum=0"`
}

// CommandRequest is the payload of the CLI "run_command" method. Flags are
// already split into Options by the caller ("--max-tokens 16" -> {"max-tokens": "16"}).
type CommandRequest struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// CommandDescriptor documents one CLI subcommand.
type CommandDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}

// ServiceMethod documents one invokable method of a service.
type ServiceMethod struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ServiceDescriptor identifies a service the plugin registers with its host.
type ServiceDescriptor struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
}

// PluginInfo describes the plugin itself.
type PluginInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Version        string `json:"version"`
	Kind           string `json:"kind"`
	Author         string `json:"author,omitempty"`
	Description    string `json:"description,omitempty"`
	MinHostVersion string `json:"min_host_version,omitempty"`
}

// Boundary error codes understood by the host.
const (
	CodeMethodNotFound  = "method_not_found"
	CodeInvocationError = "invocation_error"
)

// ServiceError is the error envelope returned across the plugin boundary.
type ServiceError struct {
	// Host-facing code: method_not_found or invocation_error.
	Code string `json:"code"`
	// Error class (USAGE, LOAD_FAILED, NOT_LOADED, GENERATION_FAILED, INTERNAL, METHOD_NOT_FOUND).
	Kind string `json:"kind,omitempty"`
	// Human-readable message.
	Message string `json:"message"`
}

func (e *ServiceError) Error() string { return e.Message }

// ErrorResponse is a consistent JSON error payload for the admin HTTP API.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Error class when the error came from the plugin boundary.
	// example: NOT_LOADED
	Kind string `json:"kind,omitempty" example:"NOT_LOADED"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelsResponse wraps the list of loaded model paths returned by GET /models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// EntryStatus summarizes one registry entry for /status.
type EntryStatus struct {
	// Registry key of the model.
	// example: /models/tinyllama.gguf
	Path string `json:"path" example:"/models/tinyllama.gguf"`
	// Lifecycle state (ready, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of calls currently holding the model (0 or 1).
	Inflight int `json:"inflight"`
	// Load time (unix seconds).
	LoadedAt int64 `json:"loaded_at_unix"`
	// Last time the model served a call (unix seconds).
	LastUsed int64 `json:"last_used_unix"`
	// Completed generations against this entry.
	Generations uint64 `json:"generations"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Entries []EntryStatus `json:"entries"`
	// Registry lifecycle state (open, closed).
	// example: open
	State string `json:"state" example:"open"`
	// Loads performed since start.
	LoadsTotal uint64 `json:"loads_total"`
	// Seconds since the registry was created.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Engine availability as reported by the sanity check.
	Engine EngineReport `json:"engine"`
}

// EngineReport describes the inference backend compiled into the binary.
type EngineReport struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}
