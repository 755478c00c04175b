package database

import (
	"fmt"

	"github.com/erpcompany/erp/logging"
	"gorm.io/gorm"
)

// Builder collects database configurations before anything is opened.
type Builder struct {
	configs map[string]DatabaseOptions
	order   []string
	errors  []error
}

func NewBuilder() *Builder {
	return &Builder{
		configs: make(map[string]DatabaseOptions),
	}
}

// Add configures the instance name. configure may be nil.
func (b *Builder) Add(name string, dialector gorm.Dialector, configure func(*DatabaseOptions)) *Builder {
	if _, exists := b.configs[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("database '%s' already configured", name))
		return b
	}

	opts := NewDefaultOptions(name, dialector)
	if configure != nil {
		configure(opts)
	}

	if err := opts.Validate(); err != nil {
		b.errors = append(b.errors, fmt.Errorf("invalid configuration for '%s': %w", name, err))
		return b
	}

	b.configs[name] = *opts
	b.order = append(b.order, name)
	return b
}

// Build opens every configured instance. It returns nil when nothing was
// configured.
func (b *Builder) Build(logger logging.Logger) (*DatabaseFactory, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("database configuration errors: %v", b.errors)
	}
	if len(b.configs) == 0 {
		return nil, nil
	}

	factory := NewDatabaseFactory()
	for _, name := range b.order {
		opts := b.configs[name]
		if opts.GormConfig.Logger == nil {
			opts.GormConfig.Logger = NewGormLogger(logger)
		}

		if err := factory.Register(opts); err != nil {
			_ = factory.Close()
			return nil, err
		}

		logger.Info("Database registered",
			logging.Field{Key: "name", Value: name},
			logging.Field{Key: "dialector", Value: opts.Dialector.Name()})
	}

	return factory, nil
}
