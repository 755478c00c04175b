package main

import (
	"context"
	"testing"

	app "github.com/erpcompany/erp"
	"github.com/erpcompany/erp/autoconfig"
	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOptions(t *testing.T) {
	rt := core.NewRuntime()
	require.NoError(t, rt.Apply(options()...))

	assert.Equal(t, "sales", rt.Name)
	assert.True(t, rt.Excluded(autoconfig.DataSource))
}

func TestRunWithoutDataSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		gotName string
		hasDB   bool
		report  *autoconfig.Report
	)
	args := []string{
		"--config.location=" + t.TempDir(),
		"--datasource.url=file:sales?mode=memory&cache=shared",
		"--server.enabled=false",
		"--logging.level=error",
	}
	opts := append(options(), func(rt *core.Runtime) error {
		rt.Lifecycle.OnStart(func(context.Context) error {
			gotName = rt.Name
			hasDB = rt.Container.Has(di.TypeOf[*gorm.DB](), "")
			report = di.MustResolve[*autoconfig.Report](rt.Container)
			cancel()
			return nil
		})
		return nil
	})

	require.NoError(t, app.RunContext(ctx, args, opts...))
	assert.Equal(t, name, gotName)
	assert.False(t, hasDB)
	outcome, _ := report.Outcome(autoconfig.DataSource)
	assert.Equal(t, autoconfig.OutcomeExcluded, outcome)
}
