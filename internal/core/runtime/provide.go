package runtime

import (
	"github.com/zeusync/scenebridge/internal/core/events/bus"
	"github.com/zeusync/scenebridge/internal/core/native/memstore"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
)

// ProvideHost assembles a host on the in-memory engine from cfg.
func ProvideHost(cfg Config, logger log.Log) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	engine := memstore.New(memstore.WithLogger(logger.With(log.String("component", "engine"))))
	return NewHost(engine, registry,
		WithLogger(logger),
		WithMetrics(metrics.New(cfg.Metrics)),
		WithEventBus(bus.New()),
		WithTickRate(cfg.TickRate),
	), nil
}
