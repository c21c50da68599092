package registry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	loads       *prometheus.CounterVec
	unloads     prometheus.Counter
	generations *prometheus.CounterVec
	loadDur     prometheus.Histogram
	genDur      prometheus.Histogram
	loaded      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "loads_total",
			Help:      "Model loads by result",
		}, []string{"result"}),
		unloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "unloads_total",
			Help:      "Model unloads",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "generations_total",
			Help:      "Generations by result",
		}, []string{"result"}),
		loadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "load_duration_seconds",
			Help:      "Duration of model loads in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		genDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generations in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inferplug",
			Subsystem: "registry",
			Name:      "loaded_models",
			Help:      "Models currently loaded",
		}),
	}
	if reg != nil {
		m.loads = registerOrReuse(reg, m.loads)
		m.unloads = registerOrReuse(reg, m.unloads)
		m.generations = registerOrReuse(reg, m.generations)
		m.loadDur = registerOrReuse(reg, m.loadDur)
		m.genDur = registerOrReuse(reg, m.genDur)
		m.loaded = registerOrReuse(reg, m.loaded)
	}
	return m
}

// registerOrReuse registers c, or returns the collector already registered
// under the same descriptor so several registries can share a Registerer.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (m *metrics) observeLoad(ok bool, d time.Duration) {
	m.loads.WithLabelValues(result(ok)).Inc()
	if ok {
		m.loadDur.Observe(d.Seconds())
	}
}

func (m *metrics) observeGeneration(ok bool, d time.Duration) {
	m.generations.WithLabelValues(result(ok)).Inc()
	m.genDur.Observe(d.Seconds())
}

func (m *metrics) setLoaded(n int) { m.loaded.Set(float64(n)) }

func (m *metrics) unload(remaining int) {
	m.unloads.Inc()
	m.setLoaded(remaining)
}
