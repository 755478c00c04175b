package etcd

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type BuilderOption func(*Builder)

// WithClient adds a client.
func WithClient(name string, opts ...func(*EtcdClientOptions)) BuilderOption {
	return func(b *Builder) {
		var configure func(*EtcdClientOptions)
		if len(opts) > 0 {
			configure = func(o *EtcdClientOptions) {
				for _, opt := range opts {
					opt(o)
				}
			}
		}
		b.AddClient(name, configure)
	}
}

// New creates the configured clients and registers the factory plus every
// *clientv3.Client in the container.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder()
		for _, opt := range opts {
			opt(builder)
		}

		logger := rt.Logger.WithCategory("etcd")
		factory, err := builder.Build(logger)
		if err != nil {
			return fmt.Errorf("etcd: %w", err)
		}
		if factory == nil {
			return nil
		}

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			logger.Info("Closing etcd clients")
			return factory.Close()
		})

		if err := rt.Provide(factory); err != nil {
			return fmt.Errorf("etcd: %w", err)
		}

		var regErr error
		factory.Each(func(name string, client *clientv3.Client) {
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
			return fmt.Errorf("etcd: register client: %w", regErr)
		}
		return nil
	}
}
