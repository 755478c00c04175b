package redis

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"github.com/redis/go-redis/v9"
)

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// WithClient adds a client.
func WithClient(name string, opts ...func(*RedisClientOptions)) BuilderOption {
	return func(b *Builder) {
		var configure func(*RedisClientOptions)
		if len(opts) > 0 {
			configure = func(o *RedisClientOptions) {
				for _, opt := range opts {
					opt(o)
				}
			}
		}
		b.AddClient(name, configure)
	}
}

// New connects the configured clients and registers the factory and every
// *redis.Client (named, and unnamed for DefaultName) in the container.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.Logger.WithCategory("redis")
		factory, err := builder.Build(logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		if factory == nil {
			return nil
		}

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			logger.Info("Closing redis clients")
			return factory.Close()
		})

		if err := rt.Provide(factory); err != nil {
			return fmt.Errorf("redis: %w", err)
		}

		var regErr error
		factory.Each(func(name string, client *redis.Client) {
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
			return fmt.Errorf("redis: register client: %w", regErr)
		}
		return nil
	}
}
