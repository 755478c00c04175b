package web

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
)

type BuilderOption func(*Builder)

// WithPort sets the listen port; 0 picks a free one.
func WithPort(port int) BuilderOption {
	return func(b *Builder) {
		b.UsePort(port)
	}
}

func WithHost(host string) BuilderOption {
	return func(b *Builder) {
		b.UseHost(host)
	}
}

func WithMode(mode string) BuilderOption {
	return func(b *Builder) {
		b.SetMode(mode)
	}
}

func WithControllers(controllers ...any) BuilderOption {
	return func(b *Builder) {
		b.AddControllers(controllers...)
	}
}

// WithManagement adds the /health, /info and /metrics controller.
func WithManagement() BuilderOption {
	return WithControllers(&ManagementController{})
}

// New registers the *Host in the container. The port is bound during
// start so a conflict aborts startup; serving errors fail the runtime.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := NewBuilder().UseLogger(rt.Logger.WithCategory("web"))
		for _, opt := range opts {
			opt(builder)
		}

		if err := builder.RegisterServices(rt.Container); err != nil {
			return fmt.Errorf("web: %w", err)
		}

		host := builder.Build(rt.Container)
		if err := rt.Provide(host); err != nil {
			return fmt.Errorf("web: %w", err)
		}

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			if err := host.Listen(); err != nil {
				return err
			}
			go func() {
				if err := host.Serve(); err != nil {
					rt.Fail(fmt.Errorf("web: %w", err))
				}
			}()
			return nil
		})
		rt.Lifecycle.OnStop(host.Stop)
		return nil
	}
}
