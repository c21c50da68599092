// Package plugin owns the plugin lifecycle: Init allocates the model
// registry and registers the inference and CLI services, Invoke routes
// boundary calls to them, Cleanup releases every loaded model.
package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"inferplug/internal/common/fsutil"
	"inferplug/internal/discovery"
	"inferplug/internal/dispatch"
	"inferplug/internal/engine"
	"inferplug/internal/registry"
	"inferplug/pkg/types"
)

// Identity reported to the host.
const (
	ID             = "inferplug.llm"
	Name           = "Local LLM"
	Kind           = "service"
	Author         = "inferplug"
	MinHostVersion = "1.0.0"
)

// Version is set at build time.
var Version = "0.1.0"

// Config wires the plugin's collaborators.
type Config struct {
	// Engine constructs model handles. Required by Init.
	Engine    engine.Engine
	Logger    *zerolog.Logger
	Metrics   prometheus.Registerer
	Publisher registry.EventPublisher
	// Preload paths are loaded by Init, then every model in PreloadDir.
	Preload    []string
	PreloadDir string
	// InvokeTimeout bounds how long one invocation waits for a model. 0 disables it.
	InvokeTimeout time.Duration
}

// Plugin is the lifecycle object handed to the host.
type Plugin struct {
	cfg Config
	log zerolog.Logger

	mu       sync.RWMutex
	reg      *registry.Registry
	services map[string]dispatch.Service
}

// New returns an uninitialized plugin.
func New(cfg Config) *Plugin {
	p := &Plugin{cfg: cfg, log: zerolog.Nop()}
	if cfg.Logger != nil {
		p.log = cfg.Logger.With().Str("component", "plugin").Logger()
	}
	return p
}

// Info describes the plugin.
func (p *Plugin) Info() types.PluginInfo {
	return types.PluginInfo{
		ID:             ID,
		Name:           Name,
		Version:        Version,
		Kind:           Kind,
		Author:         Author,
		Description:    "Local LLM inference over llama.cpp models",
		MinHostVersion: MinHostVersion,
	}
}

// Init allocates the registry and registers the services. Preload failures
// are logged and skipped; only a registry that cannot be built fails Init.
// Calling Init on an initialized plugin is a no-op.
func (p *Plugin) Init(ctx context.Context) error {
	p.mu.Lock()
	if p.reg != nil {
		p.mu.Unlock()
		return nil
	}
	reg, err := registry.New(registry.Config{
		Engine:    p.cfg.Engine,
		Logger:    &p.log,
		Publisher: p.cfg.Publisher,
		Metrics:   p.cfg.Metrics,
	})
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("init registry: %w", err)
	}
	services := make(map[string]dispatch.Service)
	for _, s := range dispatch.New(reg).Services(Version, ID) {
		services[s.Descriptor.ID] = s
	}
	p.reg, p.services = reg, services
	p.mu.Unlock()

	p.log.Info().Str("version", Version).Int("services", len(services)).Msg("plugin initialized")
	p.preload(ctx, reg)
	return nil
}

func (p *Plugin) preload(ctx context.Context, reg *registry.Registry) {
	paths := append([]string(nil), p.cfg.Preload...)
	if dir := p.cfg.PreloadDir; dir != "" {
		expanded, err := fsutil.ExpandHome(dir)
		switch {
		case err != nil:
			p.log.Warn().Str("dir", dir).Err(err).Msg("preload dir skipped")
		case !fsutil.IsDir(expanded):
			p.log.Warn().Str("dir", dir).Msg("preload dir does not exist")
		default:
			found, err := discovery.LoadDir(expanded)
			if err != nil {
				p.log.Warn().Str("dir", dir).Err(err).Msg("preload scan failed")
			}
			paths = append(paths, found...)
		}
	}
	for _, path := range paths {
		if err := reg.Load(ctx, path); err != nil {
			p.log.Warn().Str("path", path).Err(err).Msg("preload failed")
			continue
		}
	}
}

// Cleanup releases every loaded model and drops the registry. It waits for
// in-flight generations until ctx is done.
func (p *Plugin) Cleanup(ctx context.Context) error {
	p.mu.Lock()
	reg := p.reg
	p.reg, p.services = nil, nil
	p.mu.Unlock()
	if reg == nil {
		return nil
	}
	err := reg.Close(ctx)
	p.log.Info().Err(err).Msg("plugin cleaned up")
	return err
}

// Registry returns the live registry, or nil before Init and after Cleanup.
func (p *Plugin) Registry() *registry.Registry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg
}

// Ready reports whether Init has run and Cleanup has not.
func (p *Plugin) Ready() bool { return p.Registry() != nil }

// Services describes the registered services, ordered by id.
func (p *Plugin) Services() []types.ServiceDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]types.ServiceDescriptor, 0, len(p.services))
	for _, id := range []string{dispatch.ServiceCLI, dispatch.ServiceInference} {
		if s, ok := p.services[id]; ok {
			out = append(out, s.Descriptor)
		}
	}
	return out
}

func (p *Plugin) service(id string) (dispatch.Service, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.services == nil {
		return dispatch.Service{}, ErrNotInitialized()
	}
	s, ok := p.services[id]
	if !ok {
		return dispatch.Service{}, dispatch.ErrServiceNotFound(id)
	}
	return s, nil
}

// ListMethods enumerates the methods of a service.
func (p *Plugin) ListMethods(service string) ([]types.ServiceMethod, *types.ServiceError) {
	s, err := p.service(service)
	if err != nil {
		return nil, dispatch.ToServiceError(err)
	}
	return append([]types.ServiceMethod(nil), s.Methods...), nil
}

// Invoke calls method on service with JSON args. Every failure, including a
// panic, comes back as a ServiceError.
func (p *Plugin) Invoke(ctx context.Context, service, method string, args []byte) (out string, serr *types.ServiceError) {
	rid := ulid.Make().String()
	l := p.log.With().Str("request_id", rid).Str("service", service).Str("method", method).Logger()
	ctx = l.WithContext(ctx)
	if t := p.cfg.InvokeTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			l.Error().Interface("panic", v).Msg("invoke panic")
			out, serr = "", dispatch.ToServiceError(errPanic(service, method, v))
		}
	}()

	s, err := p.service(service)
	if err == nil {
		out, err = s.Invoke(ctx, method, args)
	}
	if err != nil {
		serr = dispatch.ToServiceError(err)
		l.Debug().Str("kind", serr.Kind).Dur("dur", time.Since(start)).Msg("invoke failed")
		return "", serr
	}
	l.Debug().Dur("dur", time.Since(start)).Msg("invoke done")
	return out, nil
}

// Status snapshots the registry. Before Init it reports a closed, empty registry.
func (p *Plugin) Status() types.StatusResponse {
	if reg := p.Registry(); reg != nil {
		return reg.Status()
	}
	return types.StatusResponse{Entries: []types.EntryStatus{}, State: "closed", Engine: engine.SanityCheck()}
}

// Models lists the paths of loaded models.
func (p *Plugin) Models() []string {
	if reg := p.Registry(); reg != nil {
		return reg.List()
	}
	return []string{}
}
