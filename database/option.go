package database

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"github.com/erpcompany/erp/logging"
	"gorm.io/gorm"
)

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithDatabase adds an instance.
func WithDatabase(name string, dialector gorm.Dialector, opts ...func(*DatabaseOptions)) BuilderOption {
	return func(b *Builder) {
		var configure func(*DatabaseOptions)
		if len(opts) > 0 {
			configure = func(o *DatabaseOptions) {
				for _, opt := range opts {
					opt(o)
				}
			}
		}
		b.Add(name, dialector, configure)
	}
}

// New opens the configured databases and registers the factory plus every
// *gorm.DB (named, and unnamed for DefaultName) in the container. Each
// instance contributes a health indicator; all are closed on stop.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.Logger.WithCategory("database")
		factory, err := builder.Build(logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if factory == nil {
			return nil
		}

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			logger.Info("Closing database connections")
			return factory.Close()
		})

		if err := rt.Provide(factory); err != nil {
			return fmt.Errorf("database: %w", err)
		}

		var regErr error
		factory.Each(func(name string, db *gorm.DB) {
			if regErr != nil {
				return
			}
			if regErr = rt.Provide(db, di.WithName(name)); regErr != nil {
				return
			}
			if name == DefaultName {
				if regErr = rt.Provide(db); regErr != nil {
					return
				}
			}
			regErr = health.Contribute(rt, NewIndicator(factory, name))
		})
		if regErr != nil {
			return fmt.Errorf("database: register instance: %w", regErr)
		}

		logger.Debug("Database instances ready", logging.Field{Key: "count", Value: len(builder.order)})
		return nil
	}
}
