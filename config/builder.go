package config

import (
	"fmt"
	"sync"
	"time"
)

// ConfigurationSource loads one layer of configuration.
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder merges sources in the order they were added; later
// sources win.
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{
		sources: make([]ConfigurationSource, 0),
	}
}

func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&JsonFileSource{Path: path, Optional: isOptional})
}

func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	isOptional := len(optional) > 0 && optional[0]
	return b.Add(&YamlFileSource{Path: path, Optional: isOptional})
}

func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// AddCommandLine adds the option arguments as a source.
func (b *ConfigurationBuilder) AddCommandLine(args OptionArgs) *ConfigurationBuilder {
	return b.Add(&CommandLineSource{Args: args})
}

// AddEtcd adds keys under opts.Prefix as a source. Timeouts default to 5s.
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// Sources returns the names of the added sources in order.
func (b *ConfigurationBuilder) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.sources))
	for i, s := range b.sources {
		names[i] = s.Name()
	}
	return names
}

func (b *ConfigurationBuilder) Build() (Configuration, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := make(map[string]any)
	for _, source := range b.sources {
		layer, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("config: load source %s: %w", source.Name(), err)
		}
		mergeMaps(data, layer)
	}

	return newConfiguration(data), nil
}

// Empty returns a configuration with no keys.
func Empty() Configuration {
	return newConfiguration(nil)
}
