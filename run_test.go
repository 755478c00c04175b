package app_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	app "github.com/erpcompany/erp"
	"github.com/erpcompany/erp/autoconfig"
	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// onStarted runs fn once the application has started, with the built
// container.
func onStarted(fn func(rt *core.Runtime)) core.Option {
	return func(rt *core.Runtime) error {
		rt.Lifecycle.OnStart(func(ctx context.Context) error {
			fn(rt)
			return nil
		})
		return nil
	}
}

func baseArgs(t *testing.T, extra ...string) []string {
	return append([]string{
		"--config.location=" + t.TempDir(),
		"--server.host=127.0.0.1",
		"--server.port=0",
		"--logging.level=warn",
	}, extra...)
}

func TestRunContextStartsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		report *autoconfig.Report
		info   *core.ApplicationInfo
		args   *core.Arguments
	)
	err := app.RunContext(ctx, baseArgs(t, "--profiles.active=dev", "batch"),
		core.WithName("sales"),
		core.WithExclude(autoconfig.DataSource),
		onStarted(func(rt *core.Runtime) {
			report = di.MustResolve[*autoconfig.Report](rt.Container)
			info = di.MustResolve[*core.ApplicationInfo](rt.Container)
			args = di.MustResolve[*core.Arguments](rt.Container)
			cancel()
		}),
	)
	require.NoError(t, err)

	require.NotNil(t, report)
	assert.Equal(t, []string{"datasource"}, report.Excluded())
	assert.Contains(t, report.Applied(), "web")
	assert.Equal(t, "sales", info.Name)
	assert.Equal(t, []string{"dev"}, info.Profiles)
	assert.NotEmpty(t, info.Instance)
	assert.Equal(t, []string{"batch"}, args.NonOptionArgs())
}

func TestRunContextServesManagementEndpoints(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hosts := make(chan *web.Host, 1)
	done := make(chan error, 1)
	go func() {
		done <- app.RunContext(ctx, baseArgs(t),
			core.WithName("finance"),
			core.WithExclude(autoconfig.DataSource),
			onStarted(func(rt *core.Runtime) {
				hosts <- di.MustResolve[*web.Host](rt.Container)
			}),
		)
	}()

	var host *web.Host
	select {
	case host = <-hosts:
	case err := <-done:
		t.Fatalf("application exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not start")
	}

	// The start hooks of the web host run after ours; wait for the bind.
	require.Eventually(t, func() bool { return host.Address() != "" }, 5*time.Second, 10*time.Millisecond)

	for path, want := range map[string]int{"/health": http.StatusOK, "/info": http.StatusOK, "/metrics": http.StatusOK} {
		resp, err := http.Get("http://" + host.Address() + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("application did not stop")
	}
}

func TestDataSourceExclusionWinsOverConfiguration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hasDB bool
	err := app.RunContext(ctx, baseArgs(t, "--datasource.url=file:app?mode=memory&cache=shared"),
		core.WithName("sales"),
		core.WithExclude(autoconfig.DataSource),
		onStarted(func(rt *core.Runtime) {
			hasDB = rt.Container.Has(di.TypeOf[*gorm.DB](), "")
			cancel()
		}),
	)
	require.NoError(t, err)
	assert.False(t, hasDB)
}

func TestDataSourceConfigured(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *gorm.DB
	err := app.RunContext(ctx, baseArgs(t,
		"--datasource.url=file:configured?mode=memory&cache=shared",
		"--server.enabled=false"),
		onStarted(func(rt *core.Runtime) {
			db = di.MustResolve[*gorm.DB](rt.Container)
			cancel()
		}),
	)
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestRunContextWithoutDataSourceURL(t *testing.T) {
	err := app.RunContext(context.Background(), baseArgs(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, autoconfig.ErrDataSourceURLMissing))
}

func TestAutoConfigurationFailureRunsStopHooks(t *testing.T) {
	boom := errors.New("ledger unavailable")
	stopped := false
	err := app.RunContext(context.Background(), baseArgs(t,
		"--datasource.url=file:partial?mode=memory&cache=shared",
		"--server.enabled=false"),
		func(rt *core.Runtime) error {
			rt.Lifecycle.OnStop(func(context.Context) error {
				stopped = true
				return nil
			})
			return nil
		},
		autoconfig.Register(autoconfig.AutoConfiguration{
			Name:  "ledger",
			Apply: func(*core.Runtime) error { return boom },
		}),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, stopped)
}

func TestRunContextInvalidArgument(t *testing.T) {
	err := app.RunContext(context.Background(), []string{"--=x"})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}

func TestRunContextUnknownExclusion(t *testing.T) {
	err := app.RunContext(context.Background(), baseArgs(t), core.WithExclude("datasources"))
	assert.True(t, errors.Is(err, autoconfig.ErrUnknownAutoConfiguration))
}

func TestWorkerFailureIsReturned(t *testing.T) {
	boom := errors.New("ledger sync failed")
	err := app.RunContext(context.Background(), baseArgs(t, "--server.enabled=false"),
		core.WithExclude(autoconfig.DataSource),
		core.WithWorker("sync", func(ctx context.Context) error { return boom }),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestPortInUseFailsStart(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	err = app.RunContext(context.Background(),
		[]string{"--config.location=" + t.TempDir(), "--server.host=127.0.0.1", "--server.port=" + port},
		core.WithExclude(autoconfig.DataSource),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestInvalidShutdownTimeout(t *testing.T) {
	err := app.RunContext(context.Background(), baseArgs(t, "--shutdown.timeout=soon"))
	assert.Error(t, err)
}
