package redis

import (
	"context"

	"github.com/erpcompany/erp/health"
	"github.com/redis/go-redis/v9"
)

// NewIndicator pings client. The default client reports as "redis".
func NewIndicator(name string, client *redis.Client) health.Indicator {
	id := "redis"
	if name != DefaultName {
		id += ":" + name
	}
	return health.IndicatorFunc(id, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
