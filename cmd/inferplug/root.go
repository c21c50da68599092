package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferplug/internal/config"
	"inferplug/internal/engine"
	"inferplug/internal/plugin"
	"inferplug/internal/registry"
)

// app carries state resolved by the root command for its subcommands.
type app struct {
	configPath string
	cfg        config.Config
	log        zerolog.Logger
	stderr     io.Writer
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&app{stderr: os.Stderr}) }

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "inferplug",
		Short:         "Local LLM inference plugin",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       plugin.Version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", envStr("INFERPLUG_CONFIG", ""), "Config file (.yaml, .yml, .json, .toml)")
	pf.String("log-level", "", "Log level: debug|info|warn|error|off")
	pf.String("log-format", "", "Log format: json|console")
	pf.String("admin-addr", "", "Admin HTTP listen address, e.g. 127.0.0.1:9090 (empty disables)")
	pf.StringSlice("preload", nil, "Model paths to load at init (repeatable or comma-separated)")
	pf.String("preload-dir", "", "Directory whose *.gguf files are loaded at init")
	pf.Int("invoke-timeout", 0, "Seconds an invocation may wait for a model slot or load; a running generation is never cut short (0 = no limit)")
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.resolve(cmd)
	}

	root.AddCommand(
		newServeCmd(a),
		newAdminCmd(a),
		newRunCmd(a),
		newInvokeCmd(a),
		newMethodsCmd(a),
		newSchemaCmd(),
	)
	return root
}

// resolve loads the config file, applies environment and flag overrides, and
// builds the logger.
func (a *app) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	applyEnv(&cfg)
	flags := cmd.Flags()
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	if f := flags.Lookup("log-format"); f != nil && f.Changed {
		cfg.LogFormat = f.Value.String()
	}
	if f := flags.Lookup("admin-addr"); f != nil && f.Changed {
		cfg.AdminAddr = f.Value.String()
	}
	if flags.Changed("preload") {
		cfg.Preload, _ = flags.GetStringSlice("preload")
	}
	if f := flags.Lookup("preload-dir"); f != nil && f.Changed {
		cfg.PreloadDir = f.Value.String()
	}
	if flags.Changed("invoke-timeout") {
		cfg.InvokeTimeoutSeconds, _ = flags.GetInt("invoke-timeout")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	log, err := newLogger(cfg, a.stderr)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// applyEnv lets INFERPLUG_* variables override file values.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("INFERPLUG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("INFERPLUG_ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
	if v := os.Getenv("INFERPLUG_ADMIN_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AdminMaxBodyBytes = n
		}
	}
	if v := os.Getenv("INFERPLUG_PRELOAD"); v != "" {
		cfg.Preload = splitCSV(v)
	}
	if v := os.Getenv("INFERPLUG_PRELOAD_DIR"); v != "" {
		cfg.PreloadDir = v
	}
	if v := os.Getenv("INFERPLUG_CORS_ORIGINS"); v != "" {
		cfg.CORS.Enabled = true
		cfg.CORS.Origins = splitCSV(v)
	}
}

// newLogger builds the process logger. Output always goes to w (stderr),
// since go-plugin owns stdout.
func newLogger(cfg config.Config, w io.Writer) (zerolog.Logger, error) {
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "inferplug").Logger(), nil
}

// newPlugin wires the production engine, metrics and event log into a plugin.
func (a *app) newPlugin() *plugin.Plugin {
	eng := engine.WithMemoryGuard(engine.NewLlama(engine.Options{
		ContextSize: a.cfg.Llama.ContextSize,
		Threads:     a.cfg.Llama.Threads,
		GPULayers:   a.cfg.Llama.GPULayers,
	}), a.cfg.MinFreeMemoryMB, nil)
	return plugin.New(plugin.Config{
		Engine:        eng,
		Logger:        &a.log,
		Metrics:       prometheus.DefaultRegisterer,
		Publisher:     registry.LogPublisher{Logger: a.log},
		Preload:       a.cfg.Preload,
		PreloadDir:    a.cfg.PreloadDir,
		InvokeTimeout: a.cfg.InvokeTimeout(),
	})
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
