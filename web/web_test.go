package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"github.com/erpcompany/erp/metrics"
	"github.com/erpcompany/erp/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{}

func (g *greeter) Greet() string { return "hello" }

type greetController struct {
	svc *greeter
}

func newGreetController(svc *greeter) *greetController {
	return &greetController{svc: svc}
}

func (c *greetController) MountRoutes(r gin.IRouter) {
	r.GET("/greet", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, c.svc.Greet())
	})
}

func newHost(t *testing.T, opts ...core.Option) (*core.Runtime, http.Handler) {
	t.Helper()
	rt := core.NewRuntime()
	require.NoError(t, rt.Apply(opts...))
	require.NoError(t, rt.Container.Build())

	host, err := di.Resolve[*web.Host](rt.Container)
	require.NoError(t, err)
	handler, err := host.Handler()
	require.NoError(t, err)
	return rt, handler
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestControllersAreInjected(t *testing.T) {
	_, handler := newHost(t,
		core.WithProvider(&greeter{}),
		web.New(web.WithControllers(newGreetController)),
	)

	w := get(handler, "/greet")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	var down bool
	rt := core.NewRuntime()
	require.NoError(t, health.Contribute(rt, health.IndicatorFunc("db", func(ctx context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	})))
	require.NoError(t, rt.Apply(health.New(), web.New(web.WithManagement())))
	require.NoError(t, rt.Container.Build())

	host := di.MustResolve[*web.Host](rt.Container)
	handler, err := host.Handler()
	require.NoError(t, err)

	w := get(handler, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, health.StatusUp, report.Status)

	down = true
	w = get(handler, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	// /info and /metrics are not mounted without their services.
	assert.Equal(t, http.StatusNotFound, get(handler, "/info").Code)
	assert.Equal(t, http.StatusNotFound, get(handler, "/metrics").Code)
}

func TestInfoEndpoint(t *testing.T) {
	info := core.NewApplicationInfo("sales", []string{"dev"}, time.Now())
	_, handler := newHost(t,
		core.WithProvider(info),
		web.New(web.WithManagement()),
	)

	w := get(handler, "/info")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sales", body["name"])
	assert.Equal(t, info.Instance, body["instance"])
	assert.Equal(t, []any{"dev"}, body["profiles"])
}

func TestMetricsEndpointRecordsRequests(t *testing.T) {
	_, handler := newHost(t,
		core.WithProvider(&greeter{}),
		metrics.New(),
		web.New(web.WithManagement(), web.WithControllers(newGreetController)),
	)

	get(handler, "/greet")
	get(handler, "/greet")
	get(handler, "/missing")

	w := get(handler, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",route="/greet",status="200"} 2`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
	assert.Contains(t, body, "http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestMiddlewareAppliesToEarlierRoutes(t *testing.T) {
	builder := web.NewBuilder().
		Get("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }).
		Use(func(c *gin.Context) {
			c.Header("X-Service", "erp")
			c.Next()
		})
	host := builder.Build(di.NewContainer())

	handler, err := host.Handler()
	require.NoError(t, err)

	w := get(handler, "/ping")
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "erp", w.Header().Get("X-Service"))
}

func TestHostListensOnFreePort(t *testing.T) {
	rt := core.NewRuntime()
	require.NoError(t, rt.Apply(
		health.New(),
		web.New(web.WithHost("127.0.0.1"), web.WithPort(0), web.WithManagement()),
	))
	require.NoError(t, rt.Container.Build())
	require.NoError(t, rt.Lifecycle.Start(context.Background()))

	host := di.MustResolve[*web.Host](rt.Container)
	addr := host.Address()
	require.NotEmpty(t, addr)
	assert.False(t, strings.HasSuffix(addr, ":0"))

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"UP"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Lifecycle.Stop(ctx))
	assert.NoError(t, rt.Err())
}

func TestPortConflictFailsStart(t *testing.T) {
	first := core.NewRuntime()
	require.NoError(t, web.New(web.WithHost("127.0.0.1"), web.WithPort(0))(first))
	require.NoError(t, first.Container.Build())
	require.NoError(t, first.Lifecycle.Start(context.Background()))
	defer first.Lifecycle.Stop(context.Background())

	addr := di.MustResolve[*web.Host](first.Container).Address()
	_, port, _ := strings.Cut(addr, ":")

	second := core.NewRuntime()
	require.NoError(t, web.New(web.WithHost("127.0.0.1"), web.WithPort(mustAtoi(t, port)))(second))
	require.NoError(t, second.Container.Build())
	assert.Error(t, second.Lifecycle.Start(context.Background()))
}


func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
