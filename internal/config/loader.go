package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the plugin binary.
// Zero values mean "unspecified"; ApplyDefaults fills them in.
type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
	// AdminAddr enables the admin HTTP server when non-empty.
	AdminAddr            string   `json:"admin_addr" yaml:"admin_addr" toml:"admin_addr"`
	// AdminMaxBodyBytes caps admin request bodies; 0 keeps the 1 MiB default.
	AdminMaxBodyBytes int64 `json:"admin_max_body_bytes" yaml:"admin_max_body_bytes" toml:"admin_max_body_bytes"`
	InvokeTimeoutSeconds int      `json:"invoke_timeout_seconds" yaml:"invoke_timeout_seconds" toml:"invoke_timeout_seconds"`
	Preload              []string `json:"preload" yaml:"preload" toml:"preload"`
	PreloadDir           string   `json:"preload_dir" yaml:"preload_dir" toml:"preload_dir"`
	// MinFreeMemoryMB is kept free when loading; 0 disables the check.
	MinFreeMemoryMB int        `json:"min_free_memory_mb" yaml:"min_free_memory_mb" toml:"min_free_memory_mb"`
	Llama           LlamaConfig `json:"llama" yaml:"llama" toml:"llama"`
	CORS            CORSConfig  `json:"cors" yaml:"cors" toml:"cors"`
}

// LlamaConfig tunes the llama.cpp backend.
type LlamaConfig struct {
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size"`
	Threads     int `json:"threads" yaml:"threads" toml:"threads"`
	GPULayers   int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
}

// CORSConfig is only honored by the admin server.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// Default returns a config with every default applied.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	if c.InvokeTimeoutSeconds < 0 {
		c.InvokeTimeoutSeconds = 0
	}
	if c.CORS.Enabled && len(c.CORS.Methods) == 0 {
		c.CORS.Methods = []string{"GET", "POST", "OPTIONS"}
	}
}

// Validate rejects values the binary cannot run with.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log_format %q (want json or console)", c.LogFormat)
	}
	if c.AdminMaxBodyBytes < 0 {
		return fmt.Errorf("admin_max_body_bytes must be >= 0")
	}
	if c.MinFreeMemoryMB < 0 {
		return fmt.Errorf("min_free_memory_mb must be >= 0")
	}
	if c.Llama.ContextSize < 0 || c.Llama.Threads < 0 || c.Llama.GPULayers < 0 {
		return fmt.Errorf("llama settings must be >= 0")
	}
	return nil
}

// InvokeTimeout returns the per-invocation timeout; 0 means none.
func (c Config) InvokeTimeout() time.Duration {
	return time.Duration(c.InvokeTimeoutSeconds) * time.Second
}

// ParseLevel maps a config level name to a zerolog level. "off" disables logging.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log_level %q", s)
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
