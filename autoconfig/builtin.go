package autoconfig

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erpcompany/erp/config"
	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/cron"
	"github.com/erpcompany/erp/database"
	"github.com/erpcompany/erp/etcd"
	"github.com/erpcompany/erp/grpcserver"
	"github.com/erpcompany/erp/health"
	"github.com/erpcompany/erp/metrics"
	"github.com/erpcompany/erp/mongodb"
	"github.com/erpcompany/erp/redis"
	"github.com/erpcompany/erp/web"
)

// Built-in names, usable with core.WithExclude.
const (
	DataSource = "datasource"
	Redis      = "redis"
	MongoDB    = "mongodb"
	Etcd       = "etcd"
	Metrics    = "metrics"
	Health     = "health"
	Scheduling = "scheduling"
	Web        = "web"
	GRPC       = "grpc"
)

// HealthRefreshJob is the scheduled job that refreshes the health registry.
const HealthRefreshJob = "health-refresh"

// Defaults returns the built-in auto-configurations in evaluation order.
func Defaults() []AutoConfiguration {
	return []AutoConfiguration{
		{Name: DataSource, Apply: applyDataSource},
		{Name: Redis, Condition: keySet("redis.addr"), Apply: applyRedis},
		{Name: MongoDB, Condition: keySet("mongodb.uri"), Apply: applyMongoDB},
		{Name: Etcd, Condition: keySet("etcd.endpoints"), Apply: applyEtcd},
		{Name: Metrics, Condition: enabled("management.metrics.enabled"), Apply: applyMetrics},
		{Name: Health, Apply: applyHealth},
		{Name: Scheduling, Condition: enabled("scheduling.enabled"), Apply: applyScheduling},
		{Name: Web, Condition: enabled("server.enabled"), Apply: applyWeb},
		{Name: GRPC, Condition: keySet("grpc.port"), Apply: applyGRPC},
	}
}

func applyDataSource(rt *core.Runtime) error {
	cfg := rt.Config
	url := cfg.Get("datasource.url")
	if url == "" {
		return ErrDataSourceURLMissing
	}

	dialector, err := database.Dialect(cfg.Get("datasource.driver"), url)
	if err != nil {
		return err
	}

	maxIdle, err := intOr(cfg, "datasource.max-idle-conns", 10)
	if err != nil {
		return err
	}
	maxOpen, err := intOr(cfg, "datasource.max-open-conns", 100)
	if err != nil {
		return err
	}
	maxLifetime, err := durationOr(cfg, "datasource.max-lifetime", 0)
	if err != nil {
		return err
	}

	return database.New(database.WithDatabase(database.DefaultName, dialector, func(o *database.DatabaseOptions) {
		o.MaxIdleConns = maxIdle
		o.MaxOpenConns = maxOpen
		if maxLifetime > 0 {
			o.MaxLifetime = maxLifetime
		}
	}))(rt)
}

func applyRedis(rt *core.Runtime) error {
	cfg := rt.Config
	db, err := intOr(cfg, "redis.db", 0)
	if err != nil {
		return err
	}
	poolSize, err := intOr(cfg, "redis.pool-size", 10)
	if err != nil {
		return err
	}

	return redis.New(redis.WithClient(redis.DefaultName, func(o *redis.RedisClientOptions) {
		o.Addr = cfg.Get("redis.addr")
		o.Password = cfg.Get("redis.password")
		o.DB = db
		o.PoolSize = poolSize
	}))(rt)
}

func applyMongoDB(rt *core.Runtime) error {
	timeout, err := durationOr(rt.Config, "mongodb.timeout", 0)
	if err != nil {
		return err
	}

	return mongodb.New(mongodb.WithClient(mongodb.DefaultName, rt.Config.Get("mongodb.uri"), func(o *mongodb.MongoOptions) {
		o.Username = rt.Config.Get("mongodb.username")
		o.Password = rt.Config.Get("mongodb.password")
		if timeout > 0 {
			o.Timeout = timeout
		}
	}))(rt)
}

func applyEtcd(rt *core.Runtime) error {
	timeout, err := durationOr(rt.Config, "etcd.dial-timeout", 0)
	if err != nil {
		return err
	}

	return etcd.New(etcd.WithClient(etcd.DefaultName, func(o *etcd.EtcdClientOptions) {
		o.Endpoints = rt.Config.GetStringSlice("etcd.endpoints")
		o.Username = rt.Config.Get("etcd.username")
		o.Password = rt.Config.Get("etcd.password")
		if timeout > 0 {
			o.DialTimeout = timeout
		}
	}))(rt)
}

func applyMetrics(rt *core.Runtime) error {
	return metrics.New()(rt)
}

func applyHealth(rt *core.Runtime) error {
	return health.New()(rt)
}

func applyScheduling(rt *core.Runtime) error {
	var opts []cron.BuilderOption
	if loc := rt.Config.Get("scheduling.location"); loc != "" {
		opts = append(opts, cron.WithLocation(loc))
	}
	if err := cron.New(opts...)(rt); err != nil {
		return err
	}

	spec := rt.Config.Get("management.health.refresh")
	if spec == "" {
		return nil
	}
	registry := health.Use(rt)
	return cron.Job(spec, HealthRefreshJob, func(ctx context.Context) error {
		registry.Refresh(ctx)
		return nil
	})(rt)
}

func applyWeb(rt *core.Runtime) error {
	port, err := intOr(rt.Config, "server.port", 8080)
	if err != nil {
		return err
	}

	opts := []web.BuilderOption{
		web.WithHost(rt.Config.Get("server.host")),
		web.WithPort(port),
		web.WithManagement(),
	}
	if mode := rt.Config.Get("server.mode"); mode != "" {
		opts = append(opts, web.WithMode(mode))
	}
	return web.New(opts...)(rt)
}

func applyGRPC(rt *core.Runtime) error {
	port, err := rt.Config.GetInt("grpc.port")
	if err != nil {
		return err
	}
	return grpcserver.New(
		grpcserver.WithHost(rt.Config.Get("grpc.host")),
		grpcserver.WithPort(port),
	)(rt)
}

// keySet holds when key has a non-empty value.
func keySet(key string) func(*core.Runtime) (bool, string) {
	return func(rt *core.Runtime) (bool, string) {
		if rt.Config.Get(key) == "" {
			return false, key + " is not set"
		}
		return true, ""
	}
}

// enabled holds unless key is explicitly false. A bare --key flag counts
// as true.
func enabled(key string) func(*core.Runtime) (bool, string) {
	return func(rt *core.Runtime) (bool, string) {
		if !rt.Config.Has(key) || strings.TrimSpace(rt.Config.Get(key)) == "" {
			return true, ""
		}
		on, err := rt.Config.GetBool(key)
		if err != nil {
			return false, fmt.Sprintf("%s: %v", key, err)
		}
		if !on {
			return false, key + " is false"
		}
		return true, ""
	}
}

func intOr(cfg config.Configuration, key string, def int) (int, error) {
	if !cfg.Has(key) {
		return def, nil
	}
	return cfg.GetInt(key)
}

func durationOr(cfg config.Configuration, key string, def time.Duration) (time.Duration, error) {
	if !cfg.Has(key) {
		return def, nil
	}
	return cfg.GetDuration(key)
}
