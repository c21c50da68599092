package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"inferplug/internal/engine"
)

// Config encapsulates all tunables for Registry construction.
type Config struct {
	// Engine constructs handles. Required.
	Engine engine.Engine
	// Logger receives registry logs. Nil disables logging.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Nil drops them.
	Publisher EventPublisher
	// Metrics is where collectors are registered. Nil keeps them unregistered.
	Metrics prometheus.Registerer
}
