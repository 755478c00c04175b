package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/erpcompany/erp/core"
	"github.com/erpcompany/erp/di"
	"github.com/erpcompany/erp/health"
	"github.com/erpcompany/erp/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheService struct {
	Cache *goredis.Client `di:"cache"`
	Queue *goredis.Client `di:"queue,?"`
}

func TestRedisOption(t *testing.T) {
	mr := miniredis.RunT(t)
	rt := core.NewRuntime()

	require.NoError(t, redis.New(
		redis.WithClient(redis.DefaultName, func(o *redis.RedisClientOptions) { o.Addr = mr.Addr() }),
		redis.WithClient("cache", func(o *redis.RedisClientOptions) {
			o.Addr = mr.Addr()
			o.DB = 1
		}),
	)(rt))

	di.Register[*cacheService](rt.Container)
	require.NoError(t, rt.Container.Build())

	svc, err := di.Resolve[*cacheService](rt.Container)
	require.NoError(t, err)
	require.NotNil(t, svc.Cache)
	assert.Nil(t, svc.Queue)

	ctx := context.Background()
	require.NoError(t, svc.Cache.Set(ctx, "order:1", "open", 0).Err())
	assert.Equal(t, "open", svc.Cache.Get(ctx, "order:1").Val())

	def, err := di.Resolve[*goredis.Client](rt.Container)
	require.NoError(t, err)
	assert.NotSame(t, def, svc.Cache)

	report := health.Use(rt).Check(ctx)
	assert.Equal(t, health.StatusUp, report.Status)
	assert.Contains(t, report.Components, "redis")
	assert.Contains(t, report.Components, "redis:cache")

	mr.Close()
	report = health.Use(rt).Check(ctx)
	assert.Equal(t, health.StatusDown, report.Status)

	require.NoError(t, rt.Lifecycle.Stop(ctx))
}

func TestRedisOptionUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	err := redis.New(redis.WithClient(redis.DefaultName, func(o *redis.RedisClientOptions) {
		o.Addr = addr
		o.MaxRetries = -1
	}))(core.NewRuntime())
	assert.Error(t, err)
}

func TestRedisBuilderDuplicate(t *testing.T) {
	err := redis.New(
		redis.WithClient("a"),
		redis.WithClient("a"),
	)(core.NewRuntime())
	assert.Error(t, err)
}
