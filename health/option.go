package health

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/logging"
)

// Use returns the runtime's registry, creating it on first use. Options
// that own a connection call it to contribute an indicator.
func Use(rt *core.Runtime) *Registry {
	return core.UseFeature(rt, func() *Registry { return NewRegistry(0) })
}

// Contribute registers ind with the runtime's registry.
func Contribute(rt *core.Runtime, ind Indicator) error {
	return Use(rt).Register(ind)
}

// New exposes the registry in the container and refreshes it once the
// application has started.
func New() core.Option {
	return func(rt *core.Runtime) error {
		registry := Use(rt)
		if err := rt.Provide(registry); err != nil {
			return fmt.Errorf("health: %w", err)
		}

		logger := rt.Logger.WithCategory("health")
		registry.OnChange(func(r Report) {
			if !r.Up() {
				fields := make([]logging.Field, 0, len(r.Components))
				for name, c := range r.Components {
					if c.Status != StatusUp {
						fields = append(fields, logging.Field{Key: name, Value: c.Error})
					}
				}
				logger.Warn("Health check is DOWN", fields...)
			}
		})

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			registry.Refresh(ctx)
			return nil
		})
		return nil
	}
}
