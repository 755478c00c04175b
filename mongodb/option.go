package mongodb

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type BuilderOption func(*Builder)

// WithClient adds a client connecting to uri.
func WithClient(name string, uri string, opts ...func(*MongoOptions)) BuilderOption {
	return func(b *Builder) {
		var configure func(*MongoOptions)
		if len(opts) > 0 {
			configure = func(o *MongoOptions) {
				for _, opt := range opts {
					opt(o)
				}
			}
		}
		b.Add(name, uri, configure)
	}
}

// New connects the configured clients and registers the factory plus every
// *mongo.Client in the container.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.Logger.WithCategory("mongodb")
		factory, err := builder.Build(logger)
		if err != nil {
			return fmt.Errorf("mongodb: %w", err)
		}
		if factory == nil {
			return nil
		}

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			logger.Info("Closing mongo clients")
			return factory.Close(ctx)
		})

		if err := rt.Provide(factory); err != nil {
			return fmt.Errorf("mongodb: %w", err)
		}

		var regErr error
		factory.Each(func(name string, client *mongo.Client) {
			if regErr != nil {
				return
			}
			if regErr = rt.Provide(client, di.WithName(name)); regErr != nil {
				return
			}
			if name == DefaultName {
				if regErr = rt.Provide(client); regErr != nil {
					return
				}
			}
			regErr = health.Contribute(rt, NewIndicator(name, client))
		})
		if regErr != nil {
			return fmt.Errorf("mongodb: register client: %w", regErr)
		}
		return nil
	}
}
