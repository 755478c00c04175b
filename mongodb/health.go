package mongodb

import (
	"context"

	"github.com/erpcompany/erp/health"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func NewIndicator(name string, client *mongo.Client) health.Indicator {
	id := "mongodb"
	if name != DefaultName {
		id += ":" + name
	}
	return health.IndicatorFunc(id, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}
