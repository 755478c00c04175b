package metrics

import (
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/health"
	"github.com/prometheus/client_golang/prometheus"
)

// New registers a *prometheus.Registry, *HTTPMetrics and *HealthMetrics in
// the container. Health gauges follow every registry refresh.
func New() core.Option {
	return func(rt *core.Runtime) error {
		reg := NewRegistry()
		httpMetrics := NewHTTPMetrics(reg)
		healthMetrics := NewHealthMetrics(reg)

		health.Use(rt).OnChange(healthMetrics.Update)

		for _, target := range []any{reg, httpMetrics, healthMetrics} {
			if err := rt.Provide(target); err != nil {
				return fmt.Errorf("metrics: %w", err)
			}
		}
		if err := rt.Provide(func(r *prometheus.Registry) prometheus.Gatherer { return r }); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}

		rt.Logger.WithCategory("metrics").Debug("Prometheus registry ready")
		return nil
	}
}
