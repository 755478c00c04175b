package core

import (
	"sync"

	"github.com/erpcompany/erp/config"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/logging"
)

// Runtime is the state every Option works on.
type Runtime struct {
	// Name is the application name, used in logs and /info.
	Name string

	// Exclusions lists auto-configurations that must not be applied.
	Exclusions []string

	// Args are the parsed startup arguments.
	Args *Arguments

	Config config.Configuration
	Logger logging.Logger

	// Features holds build-time builders shared between options.
	Features FeatureCollection

	Container di.Container
	Lifecycle *LifecycleEvents

	// ErrorHandler receives errors from hosted services and stop hooks.
	ErrorHandler func(err error)

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	errMu        sync.Mutex
	err          error
}

// NewRuntime returns a runtime with empty configuration and a discarding
// logger. The launcher replaces both before applying options.
func NewRuntime() *Runtime {
	rt := &Runtime{
		Name:       "application",
		Args:       &Arguments{},
		Config:     config.Empty(),
		Logger:     logging.NewNopLogger(),
		Container:  di.NewContainer(),
		Lifecycle:  NewLifecycle(),
		shutdownCh: make(chan struct{}),
	}
	rt.ErrorHandler = func(err error) {
		rt.Logger.Error("Runtime error", logging.Err(err))
	}
	return rt
}

// Shutdown asks the application to stop. Safe to call more than once.
func (rt *Runtime) Shutdown() {
	rt.shutdownOnce.Do(func() {
		close(rt.shutdownCh)
	})
}

// Fail records err as the exit error, reports it and requests shutdown.
// Only the first error is kept.
func (rt *Runtime) Fail(err error) {
	rt.errMu.Lock()
	if rt.err == nil {
		rt.err = err
	}
	rt.errMu.Unlock()

	if rt.ErrorHandler != nil {
		rt.ErrorHandler(err)
	}
	rt.Shutdown()
}

// Err returns the first error passed to Fail.
func (rt *Runtime) Err() error {
	rt.errMu.Lock()
	defer rt.errMu.Unlock()
	return rt.err
}

// Done is closed once shutdown was requested.
func (rt *Runtime) Done() <-chan struct{} {
	return rt.shutdownCh
}

// Provide registers a constructor, pointer or type in the container.
func (rt *Runtime) Provide(target any, opts ...di.Option) error {
	_, err := di.Provide(rt.Container, target, opts...)
	return err
}

// Invoke calls fn with arguments resolved from the built container.
func (rt *Runtime) Invoke(fn any) error {
	return di.Invoke(rt.Container, fn)
}

func (rt *Runtime) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(rt); err != nil {
			return err
		}
	}
	return nil
}

// Excluded reports whether name was passed to WithExclude.
func (rt *Runtime) Excluded(name string) bool {
	for _, e := range rt.Exclusions {
		if e == name {
			return true
		}
	}
	return false
}

// As binds a registration to the interface T.
func As[T any]() di.Option {
	return di.As[T]()
}
