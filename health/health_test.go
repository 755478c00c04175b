package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(name string) Indicator {
	return IndicatorFunc(name, func(context.Context) error { return nil })
}

func down(name, msg string) Indicator {
	return IndicatorFunc(name, func(context.Context) error { return errors.New(msg) })
}

func TestEmptyRegistryIsUp(t *testing.T) {
	r := NewRegistry(0)

	report := r.Check(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Empty(t, report.Components)
	assert.True(t, r.Snapshot().Up())
}

func TestRegistryAggregates(t *testing.T) {
	r := NewRegistry(0)
	require.NoError(t, r.Register(up("db")))
	require.NoError(t, r.Register(up("redis")))

	assert.True(t, r.Check(context.Background()).Up())

	require.NoError(t, r.Register(down("mongodb", "no reachable servers")))
	report := r.Check(context.Background())

	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, Component{Status: StatusUp}, report.Components["db"])
	assert.Equal(t, Component{Status: StatusDown, Error: "no reachable servers"}, report.Components["mongodb"])
	assert.Equal(t, []string{"db", "mongodb", "redis"}, r.Names())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(0)
	require.NoError(t, r.Register(up("db")))
	assert.Error(t, r.Register(up("db")))
	assert.Error(t, r.Register(up("")))
}

func TestRegistryTimeoutAndPanic(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	require.NoError(t, r.Register(IndicatorFunc("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))
	require.NoError(t, r.Register(IndicatorFunc("broken", func(context.Context) error {
		panic("nil client")
	})))

	report := r.Check(context.Background())
	assert.Equal(t, StatusDown, report.Components["slow"].Status)
	assert.Contains(t, report.Components["broken"].Error, "nil client")
}

func TestRefreshUpdatesSnapshotAndNotifies(t *testing.T) {
	r := NewRegistry(0)
	require.NoError(t, r.Register(down("db", "closed")))

	var got []Report
	r.OnChange(func(rep Report) { got = append(got, rep) })

	// Check alone leaves the snapshot untouched
	r.Check(context.Background())
	assert.True(t, r.Snapshot().Up())

	r.Refresh(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, StatusDown, got[0].Status)
	assert.Equal(t, StatusDown, r.Snapshot().Status)
}

func TestOptionRegistersRegistry(t *testing.T) {
	rt := core.NewRuntime()
	require.NoError(t, Contribute(rt, down("db", "closed")))
	require.NoError(t, New()(rt))
	require.NoError(t, rt.Container.Build())

	registry, err := di.Resolve[*Registry](rt.Container)
	require.NoError(t, err)
	assert.Same(t, Use(rt), registry)

	require.NoError(t, rt.Lifecycle.Start(context.Background()))
	assert.Equal(t, StatusDown, registry.Snapshot().Status)
}
