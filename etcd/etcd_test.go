package etcd_test

import (
	"context"
	"testing"
	"time"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/etcd"
	"github.com/erpcompany/erp/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func TestOptionsValidate(t *testing.T) {
	opts := etcd.NewDefaultOptions("default")
	require.NoError(t, opts.Validate())

	opts.Endpoints = nil
	assert.Error(t, opts.Validate())

	opts = etcd.NewDefaultOptions("")
	assert.Error(t, opts.Validate())
}

func TestEtcdOptionRegistersClients(t *testing.T) {
	rt := core.NewRuntime()

	// Nothing listens on port 1; clients connect lazily.
	require.NoError(t, etcd.New(
		etcd.WithClient(etcd.DefaultName, func(o *etcd.EtcdClientOptions) {
			o.Endpoints = []string{"127.0.0.1:1"}
			o.DialTimeout = 100 * time.Millisecond
		}),
		etcd.WithClient("locks", func(o *etcd.EtcdClientOptions) {
			o.Endpoints = []string{"127.0.0.1:1"}
			o.DialTimeout = 100 * time.Millisecond
		}),
	)(rt))
	require.NoError(t, rt.Container.Build())

	def, err := di.Resolve[*clientv3.Client](rt.Container)
	require.NoError(t, err)
	locks, err := di.ResolveNamed[*clientv3.Client](rt.Container, "locks")
	require.NoError(t, err)
	assert.NotSame(t, def, locks)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	report := health.Use(rt).Check(ctx)
	assert.Equal(t, health.StatusDown, report.Status)
	assert.Contains(t, report.Components, "etcd")
	assert.Contains(t, report.Components, "etcd:locks")

	require.NoError(t, rt.Lifecycle.Stop(context.Background()))
}

func TestEtcdOptionDuplicateClient(t *testing.T) {
	err := etcd.New(
		etcd.WithClient("a"),
		etcd.WithClient("a"),
	)(core.NewRuntime())
	assert.Error(t, err)
}

func TestEtcdOptionWithoutClients(t *testing.T) {
	rt := core.NewRuntime()
	require.NoError(t, etcd.New()(rt))
	assert.False(t, rt.Container.Has(di.TypeOf[*etcd.EtcdClientFactory](), ""))
}
