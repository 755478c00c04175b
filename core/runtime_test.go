package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erpcompany/erp/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleOrder(t *testing.T) {
	l := NewLifecycle()
	var order []string

	l.OnStart(func(context.Context) error { order = append(order, "start-1"); return nil })
	l.OnStart(func(context.Context) error { order = append(order, "start-2"); return nil })
	l.OnStop(func(context.Context) error { order = append(order, "stop-1"); return nil })
	l.OnStop(func(context.Context) error { order = append(order, "stop-2"); return errors.New("stop-2 failed") })

	require.NoError(t, l.Start(context.Background()))
	err := l.Stop(context.Background())

	assert.EqualError(t, err, "stop-2 failed")
	assert.Equal(t, []string{"start-1", "start-2", "stop-2", "stop-1"}, order)
}

func TestLifecycleStartStopsAtFirstError(t *testing.T) {
	l := NewLifecycle()
	boom := errors.New("boom")
	called := false

	l.OnStart(func(context.Context) error { return boom })
	l.OnStart(func(context.Context) error { called = true; return nil })

	assert.ErrorIs(t, l.Start(context.Background()), boom)
	assert.False(t, called)
}

func TestRuntimeOptions(t *testing.T) {
	rt := NewRuntime()

	require.NoError(t, rt.Apply(
		WithName("sales"),
		WithExclude("datasource", "redis"),
		WithExclude("datasource"),
	))

	assert.Equal(t, "sales", rt.Name)
	assert.Equal(t, []string{"datasource", "redis"}, rt.Exclusions)
	assert.True(t, rt.Excluded("datasource"))
	assert.False(t, rt.Excluded("web"))

	assert.Error(t, WithName(" ")(rt))
}

func TestRuntimeFailKeepsFirstError(t *testing.T) {
	rt := NewRuntime()
	first := errors.New("first")

	rt.Fail(first)
	rt.Fail(errors.New("second"))

	assert.Same(t, first, rt.Err())
	select {
	case <-rt.Done():
	default:
		t.Fatal("runtime should be shutting down")
	}
}

func TestFeatureCollection(t *testing.T) {
	type builder struct{ n int }
	rt := NewRuntime()

	assert.Nil(t, GetFeature[*builder](rt))

	b := UseFeature(rt, func() *builder { return &builder{n: 1} })
	again := UseFeature(rt, func() *builder { return &builder{n: 2} })

	assert.Same(t, b, again)
	assert.Same(t, b, GetFeature[*builder](rt))
}

type namer interface{ Name() string }

type staticNamer string

func (n staticNamer) Name() string { return string(n) }

func TestFeatureCollectionInterfaceKey(t *testing.T) {
	rt := NewRuntime()

	n := UseFeature[namer](rt, func() namer { return staticNamer("ledger") })

	require.NotNil(t, GetFeature[namer](rt))
	assert.Equal(t, "ledger", GetFeature[namer](rt).Name())
	assert.Equal(t, n, GetFeature[namer](rt))
	assert.Empty(t, GetFeature[staticNamer](rt))
}

type fakeService struct {
	started atomic.Bool
	stopped atomic.Bool
	fail    error
}

func (s *fakeService) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.fail != nil {
		return s.fail
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestWithHostedService(t *testing.T) {
	rt := NewRuntime()
	svc := &fakeService{}

	require.NoError(t, WithHostedService(func() *fakeService { return svc })(rt))
	require.NoError(t, rt.Container.Build())
	require.NoError(t, rt.Lifecycle.Start(context.Background()))

	assert.Eventually(t, svc.started.Load, time.Second, 10*time.Millisecond)

	require.NoError(t, rt.Lifecycle.Stop(context.Background()))
	assert.True(t, svc.stopped.Load())
	assert.NoError(t, rt.Err())
}

func TestWithHostedServiceFailureShutsDown(t *testing.T) {
	rt := NewRuntime()
	boom := errors.New("port in use")

	require.NoError(t, WithHostedService(func() *fakeService { return &fakeService{fail: boom} })(rt))
	require.NoError(t, rt.Container.Build())
	require.NoError(t, rt.Lifecycle.Start(context.Background()))

	select {
	case <-rt.Done():
	case <-time.After(time.Second):
		t.Fatal("expected shutdown")
	}
	assert.ErrorIs(t, rt.Err(), boom)
}

func TestWithHostedServiceRejectsNonService(t *testing.T) {
	rt := NewRuntime()
	type notAService struct{}

	err := WithHostedService(func() *notAService { return &notAService{} })(rt)
	assert.Error(t, err)
}

func TestWithWorker(t *testing.T) {
	rt := NewRuntime()
	var ran atomic.Bool

	require.NoError(t, WithWorker("ticker", func(ctx context.Context) error {
		ran.Store(true)
		<-ctx.Done()
		return ctx.Err()
	})(rt))

	require.NoError(t, rt.Lifecycle.Start(context.Background()))
	assert.Eventually(t, ran.Load, time.Second, 10*time.Millisecond)
	require.NoError(t, rt.Lifecycle.Stop(context.Background()))

	// cancellation on stop is not a failure
	assert.NoError(t, rt.Err())
}

func TestWithProvider(t *testing.T) {
	rt := NewRuntime()
	info := NewApplicationInfo("finance", nil, time.Now())

	require.NoError(t, WithProvider(info)(rt))
	require.NoError(t, rt.Container.Build())

	got, err := di.Resolve[*ApplicationInfo](rt.Container)
	require.NoError(t, err)
	assert.Equal(t, "finance", got.Name)
	assert.NotEmpty(t, got.Instance)
	assert.Equal(t, []string{}, got.Profiles)
}
