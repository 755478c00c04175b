package mongodb

import (
	"context"
	"fmt"

	"github.com/erpcompany/erp/logging"
)

type Builder struct {
	configs []MongoOptions
	errors  []error
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(name string, uri string, configure func(*MongoOptions)) *Builder {
	for _, c := range b.configs {
		if c.Name == name {
			b.errors = append(b.errors, fmt.Errorf("mongo client '%s' already configured", name))
			return b
		}
	}

	opts := NewDefaultOptions(name, uri)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid mongo configuration for '%s': %w", name, err))
		return b
	}

	b.configs = append(b.configs, *opts)
	return b
}

// Build returns nil when nothing was configured.
func (b *Builder) Build(logger logging.Logger) (*MongoFactory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("mongo configuration errors: %v", b.errors)
	}
	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewMongoFactory()
	for _, opts := range b.configs {
		if err := factory.Register(opts); err != nil {
			_ = factory.Close(context.Background())
			return nil, err
		}
		logger.Info("Mongo client registered", logging.Field{Key: "name", Value: opts.Name})
	}

	return factory, nil
}
