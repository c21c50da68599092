package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"inferplug/internal/engine"
)

// Registry maps model paths to loaded handles. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool

	// loads collapses concurrent loads of the same path into one construction.
	loads singleflight.Group
	// retiring tracks handles waiting for their in-flight call before Close.
	retiring sync.WaitGroup

	engine    engine.Engine
	log       zerolog.Logger
	publisher EventPublisher
	metrics   *metrics

	startTime  time.Time
	loadsTotal atomic.Uint64
}

var errNoEngine = errors.New("registry: engine is required")

// New constructs an empty registry.
func New(cfg Config) (*Registry, error) {
	if cfg.Engine == nil {
		return nil, errNoEngine
	}
	r := &Registry{
		entries:   make(map[string]*entry),
		engine:    cfg.Engine,
		log:       zerolog.Nop(),
		publisher: noopPublisher{},
		metrics:   newMetrics(cfg.Metrics),
		startTime: time.Now(),
	}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "registry").Logger()
	}
	if cfg.Publisher != nil {
		r.publisher = cfg.Publisher
	}
	return r, nil
}

// List returns a snapshot of loaded paths, sorted lexicographically.
func (r *Registry) List() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for p := range r.entries {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of loaded models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// lookup returns the entry for path, if any, and whether the registry is closed.
func (r *Registry) lookup(path string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[path], r.closed
}
