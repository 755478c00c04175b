package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erpcompany/erp/autoconfig"
	"github.com/erpcompany/erp/config"
	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/logging"
)

// KeyShutdownTimeout bounds the stop hooks.
const KeyShutdownTimeout = "shutdown.timeout"

const defaultShutdownTimeout = 30 * time.Second

// Run starts the application and blocks until SIGINT, SIGTERM or a
// runtime-requested shutdown. args are the raw startup arguments,
// typically os.Args[1:].
func Run(args []string, opts ...core.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, args, opts...)
}

// RunContext is Run bounded by ctx instead of OS signals.
//
// The runtime is assembled in this order: arguments, configuration,
// logging, core services, caller options, auto-configuration, container
// build, start hooks. Any error up to and including the start hooks is
// returned before the application is considered started. After shutdown,
// the first error a hosted service or worker failed with is returned.
func RunContext(ctx context.Context, args []string, opts ...core.Option) error {
	started := time.Now()

	parsed, err := core.ParseArguments(args)
	if err != nil {
		return err
	}

	cfg, err := config.Bootstrap(parsed, config.Defaults())
	if err != nil {
		return err
	}

	shutdownTimeout, err := readShutdownTimeout(cfg)
	if err != nil {
		return err
	}

	factory, err := logging.FromConfig(cfg)
	if err != nil {
		return err
	}
	defer factory.Close()

	rt := core.NewRuntime()
	rt.Args = parsed
	rt.Config = cfg
	rt.Logger = factory.CreateLogger("app")

	if err := provideCore(rt, factory); err != nil {
		return err
	}

	if err := rt.Apply(opts...); err != nil {
		return err
	}

	info := core.NewApplicationInfo(rt.Name, config.Profiles(cfg), started)
	if err := rt.Provide(info); err != nil {
		return fmt.Errorf("app: %w", err)
	}

	registry, err := autoconfig.ForRuntime(rt)
	if err != nil {
		return err
	}
	if _, err := registry.Run(rt); err != nil {
		shutdown(rt, shutdownTimeout)
		return err
	}

	if err := rt.Container.Build(); err != nil {
		shutdown(rt, shutdownTimeout)
		return err
	}

	if err := rt.Lifecycle.Start(ctx); err != nil {
		shutdown(rt, shutdownTimeout)
		return fmt.Errorf("app: start: %w", err)
	}

	rt.Logger.Info(fmt.Sprintf("Started %s in %s", rt.Name, time.Since(started).Round(time.Millisecond)),
		logging.Field{Key: "instance", Value: info.Instance},
		logging.Field{Key: "profiles", Value: info.Profiles})

	select {
	case <-ctx.Done():
		rt.Logger.Info("Shutdown requested")
	case <-rt.Done():
		rt.Logger.Info("Runtime requested shutdown")
	}

	shutdown(rt, shutdownTimeout)
	return rt.Err()
}

// provideCore registers the services every application has.
func provideCore(rt *core.Runtime, factory logging.LoggerFactory) error {
	targets := []any{
		func() config.Configuration { return rt.Config },
		func() logging.Logger { return rt.Logger },
		func() logging.LoggerFactory { return factory },
		func() di.Container { return rt.Container },
		rt.Args,
	}
	for _, t := range targets {
		if err := rt.Provide(t); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}
	return nil
}

// shutdown runs the stop hooks within timeout. Errors are logged.
func shutdown(rt *core.Runtime, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rt.Lifecycle.Stop(ctx); err != nil {
		rt.Logger.Error("Shutdown completed with errors", logging.Err(err))
		return
	}
	rt.Logger.Info("Shutdown complete")
}

func readShutdownTimeout(cfg config.Configuration) (time.Duration, error) {
	d, err := cfg.GetDuration(KeyShutdownTimeout)
	if errors.Is(err, config.ErrKeyNotFound) {
		return defaultShutdownTimeout, nil
	}
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("app: %s must be positive", KeyShutdownTimeout)
	}
	return d, nil
}
