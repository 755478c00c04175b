package core

import (
	"context"
	"errors"
	"sync"
)

// LifecycleEvents holds start and stop hooks. Start hooks run in
// registration order, stop hooks in reverse.
type LifecycleEvents struct {
	mu      sync.Mutex
	onStart []func(context.Context) error
	onStop  []func(context.Context) error
}

func NewLifecycle() *LifecycleEvents {
	return &LifecycleEvents{}
}

func (l *LifecycleEvents) OnStart(fn func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStart = append(l.onStart, fn)
}

func (l *LifecycleEvents) OnStop(fn func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onStop = append(l.onStop, fn)
}

// Start runs start hooks and stops at the first error.
func (l *LifecycleEvents) Start(ctx context.Context) error {
	for _, fn := range l.snapshot(l.onStart) {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop runs every stop hook, even after failures, and joins their errors.
func (l *LifecycleEvents) Stop(ctx context.Context) error {
	hooks := l.snapshot(l.onStop)

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *LifecycleEvents) snapshot(hooks []func(context.Context) error) []func(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]func(context.Context) error{}, hooks...)
}
