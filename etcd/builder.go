package etcd

import (
	"fmt"
	"strings"

	"github.com/erpcompany/erp/logging"
)

type Builder struct {
	configs []EtcdClientOptions
	errors  []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddClient(name string, configure func(*EtcdClientOptions)) *Builder {
	for _, c := range b.configs {
		if c.Name == name {
			b.errors = append(b.errors, fmt.Errorf("etcd client '%s' already configured", name))
			return b
		}
	}

	opts := NewDefaultOptions(name)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid etcd configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Build returns nil when nothing was configured.
func (b *Builder) Build(logger logging.Logger) (*EtcdClientFactory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("etcd configuration errors: %v", b.errors)
	}
	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewEtcdClientFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			_ = factory.Close()
			return nil, err
		}

		logger.Info("Etcd client registered",
			logging.Field{Key: "name", Value: opts.Name},
			logging.Field{Key: "endpoints", Value: strings.Join(opts.Endpoints, ",")})
	}

	return factory, nil
}
