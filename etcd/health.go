package etcd

import (
	"context"
	"errors"

	"github.com/erpcompany/erp/health"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// NewIndicator is UP when any endpoint answers a status request.
func NewIndicator(name string, client *clientv3.Client) health.Indicator {
	id := "etcd"
	if name != DefaultName {
		id += ":" + name
	}
	return health.IndicatorFunc(id, func(ctx context.Context) error {
		var errs []error
		for _, endpoint := range client.Endpoints() {
			if _, err := client.Status(ctx, endpoint); err != nil {
				errs = append(errs, err)
				continue
			}
			return nil
		}
		if len(errs) == 0 {
			return errors.New("no endpoints")
		}
		return errors.Join(errs...)
	})
}
