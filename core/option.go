package core

import (
	"fmt"
	"strings"

	"github.com/erpcompany/erp/di"
)

// Option mutates the runtime before the container is built. It is the
// only extension point of the runtime.
type Option func(rt *Runtime) error

// WithName sets the application name.
func WithName(name string) Option {
	return func(rt *Runtime) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("core: application name must not be empty")
		}
		rt.Name = name
		return nil
	}
}

// WithExclude keeps the named auto-configurations from being applied.
func WithExclude(names ...string) Option {
	return func(rt *Runtime) error {
		for _, name := range names {
			if !rt.Excluded(name) {
				rt.Exclusions = append(rt.Exclusions, name)
			}
		}
		return nil
	}
}

// WithProvider registers a service, see di.Provide.
func WithProvider(target any, opts ...di.Option) Option {
	return func(rt *Runtime) error {
		if err := rt.Provide(target, opts...); err != nil {
			return fmt.Errorf("core: provide %T: %w", target, err)
		}
		return nil
	}
}

// WithOptions groups options into one.
func WithOptions(opts ...Option) Option {
	return func(rt *Runtime) error {
		return rt.Apply(opts...)
	}
}
