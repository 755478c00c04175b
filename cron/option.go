package cron

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/core"
)

type BuilderOption func(*Builder)

func WithSeconds() BuilderOption {
	return func(b *Builder) {
		b.WithSeconds()
	}
}

func WithLocation(location string) BuilderOption {
	return func(b *Builder) {
		b.WithLocation(location)
	}
}

func EnableCronLogger() BuilderOption {
	return func(b *Builder) {
		b.EnableCronLogger()
	}
}

// AddJob adds a job through New.
func AddJob(spec, name string, handler any) BuilderOption {
	return func(b *Builder) {
		b.AddJob(spec, name, handler)
	}
}

// Job schedules handler on the runtime's scheduler. It only takes effect
// when New is applied too.
func Job(spec, name string, handler any) core.Option {
	return func(rt *core.Runtime) error {
		if name == "" {
			return fmt.Errorf("cron: job name is required")
		}
		use(rt).AddJob(spec, name, handler)
		return nil
	}
}

// New registers the *Scheduler in the container and runs it for the
// lifetime of the application. Jobs are scheduled at start.
func New(opts ...BuilderOption) core.Option {
	return func(rt *core.Runtime) error {
		builder := use(rt)
		if builder.installed {
			return fmt.Errorf("cron: scheduler already configured")
		}
		builder.installed = true

		for _, opt := range opts {
			opt(builder)
		}

		svc, err := newScheduler(builder, rt.Container, rt.Logger.WithCategory("cron"))
		if err != nil {
			return fmt.Errorf("cron: %w", err)
		}
		if err := rt.Provide(svc); err != nil {
			return fmt.Errorf("cron: %w", err)
		}

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			return svc.Start(ctx)
		})
		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			return svc.Stop(ctx)
		})
		return nil
	}
}
