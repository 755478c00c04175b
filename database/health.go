package database

import (
	"context"

	"github.com/erpcompany/erp/health"
)

type indicator struct {
	factory *DatabaseFactory
	name    string
}

// NewIndicator pings the named instance. The default instance reports as
// "db", others as "db:<name>".
func NewIndicator(factory *DatabaseFactory, name string) health.Indicator {
	return &indicator{factory: factory, name: name}
}

func (i *indicator) Name() string {
	if i.name == DefaultName {
		return "db"
	}
	return "db:" + i.name
}

func (i *indicator) Check(ctx context.Context) error {
	return i.factory.Ping(ctx, i.name)
}
