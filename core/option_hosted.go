package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/erpcompany/erp/di"
)

var hostedServiceType = di.TypeOf[HostedService]()

// WithHostedService registers constructor in the container and ties the
// resulting HostedService to the lifecycle. Start runs in a goroutine; an
// error from it fails the runtime.
func WithHostedService(constructor any, opts ...di.Option) Option {
	return func(rt *Runtime) error {
		serviceType, err := di.Provide(rt.Container, constructor, opts...)
		if err != nil {
			return fmt.Errorf("core: hosted service: %w", err)
		}
		if !serviceType.Implements(hostedServiceType) {
			return fmt.Errorf("core: hosted service %v does not implement core.HostedService", serviceType)
		}

		var (
			mu      sync.Mutex
			running HostedService
			cancel  context.CancelFunc
		)

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			val, err := rt.Container.Get(serviceType)
			if err != nil {
				return fmt.Errorf("core: resolve hosted service %v: %w", serviceType, err)
			}
			svc := val.(HostedService)

			// detached from the start context; lives until Stop
			svcCtx, svcCancel := context.WithCancel(context.Background())

			mu.Lock()
			running, cancel = svc, svcCancel
			mu.Unlock()

			go func() {
				if err := svc.Start(svcCtx); err != nil {
					rt.Fail(fmt.Errorf("hosted service %v: %w", serviceType, err))
				}
			}()
			return nil
		})

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			mu.Lock()
			svc, svcCancel := running, cancel
			mu.Unlock()

			if svc == nil {
				return nil
			}
			defer svcCancel()
			if err := svc.Stop(ctx); err != nil {
				return fmt.Errorf("stop %v: %w", serviceType, err)
			}
			return nil
		})

		return nil
	}
}

// WorkerFunc is a blocking background task that returns when ctx is done.
type WorkerFunc func(ctx context.Context) error

// WithWorker runs fn for the lifetime of the application. Returning a
// non-nil error other than context.Canceled fails the runtime.
func WithWorker(name string, fn WorkerFunc) Option {
	return func(rt *Runtime) error {
		var (
			cancel context.CancelFunc
			done   chan struct{}
		)

		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			var workerCtx context.Context
			workerCtx, cancel = context.WithCancel(context.Background())
			done = make(chan struct{})

			go func() {
				defer close(done)
				if err := fn(workerCtx); err != nil && workerCtx.Err() == nil {
					rt.Fail(fmt.Errorf("worker %s: %w", name, err))
				}
			}()
			return nil
		})

		rt.Lifecycle.OnStop(func(ctx context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("worker %s: %w", name, ctx.Err())
			}
		})

		return nil
	}
}
