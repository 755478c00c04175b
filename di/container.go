package di

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Container is the dependency injection container.
type Container interface {
	// Add registers a definition. Fails after Build.
	Add(def *ServiceDefinition) error

	// Build validates the graph and creates every singleton.
	Build() error

	// Get resolves the unnamed registration of typ.
	Get(typ reflect.Type) (any, error)

	// GetNamed resolves the registration of typ under name.
	GetNamed(typ reflect.Type, name string) (any, error)

	// Has reports whether a registration exists.
	Has(typ reflect.Type, name string) bool

	// CreateScope returns a scope for ScopeScoped services.
	CreateScope() Scope

	serviceCount() int
}

type container struct {
	mu              sync.RWMutex
	definitions     map[ServiceKey]*ServiceDefinition
	built           atomic.Bool
	serviceCountVal int

	resolver *resolver
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		definitions: make(map[ServiceKey]*ServiceDefinition),
		resolver:    newResolver(),
	}
}

func (c *container) Add(def *ServiceDefinition) error {
	if c.built.Load() {
		return fmt.Errorf("di: cannot register %v after build", def.Type)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := def.key()
	if _, exists := c.definitions[key]; exists {
		if def.Name == "" {
			return fmt.Errorf("di: service %v already registered", def.Type)
		}
		return fmt.Errorf("di: service %v (name=%s) already registered", def.Type, def.Name)
	}

	c.definitions[key] = def
	return nil
}

func (c *container) Build() error {
	if c.built.Load() {
		return nil
	}

	c.mu.Lock()
	if c.built.Load() {
		c.mu.Unlock()
		return nil
	}

	// IDs index scope slots; sort so they are stable between runs.
	keys := make([]ServiceKey, 0, len(c.definitions))
	for key := range c.definitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type.String() != keys[j].Type.String() {
			return keys[i].Type.String() < keys[j].Type.String()
		}
		return keys[i].Name < keys[j].Name
	})
	for i, key := range keys {
		c.definitions[key].ID = i
	}
	c.serviceCountVal = len(keys)

	order, err := newGraphBuilder(c.definitions).buildOrder(keys)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.built.Store(true)
	c.mu.Unlock()

	// Singletons are created outside the lock; GetNamed reads definitions lock-free.
	for _, key := range order {
		def := c.definitions[key]
		if def.Scope == ScopeSingleton {
			if _, err := c.GetNamed(key.Type, key.Name); err != nil {
				return fmt.Errorf("di: build singleton %v (name=%s): %w", key.Type, key.Name, err)
			}
		}
	}

	return nil
}

func (c *container) Get(typ reflect.Type) (any, error) {
	return c.GetNamed(typ, "")
}

func (c *container) GetNamed(typ reflect.Type, name string) (any, error) {
	if !c.built.Load() {
		return nil, fmt.Errorf("di: container not built")
	}

	def, ok := c.definitions[ServiceKey{Type: typ, Name: name}]
	if !ok {
		return nil, notFound(typ, name)
	}

	switch def.Scope {
	case ScopeSingleton:
		def.singletonOnce.Do(func() {
			def.singletonInst, def.singletonErr = c.resolver.createInstance(c, def)
		})
		return def.singletonInst, def.singletonErr
	case ScopeTransient:
		return c.resolver.createInstance(c, def)
	case ScopeScoped:
		return nil, fmt.Errorf("di: scoped service %v cannot be resolved from the root container, use CreateScope", typ)
	}

	return nil, fmt.Errorf("di: unknown scope %v", def.Scope)
}

func (c *container) Has(typ reflect.Type, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.definitions[ServiceKey{Type: typ, Name: name}]
	return ok
}

func (c *container) CreateScope() Scope {
	return newScope(c)
}

func (c *container) serviceCount() int {
	return c.serviceCountVal
}

func notFound(typ reflect.Type, name string) error {
	if name == "" {
		return fmt.Errorf("di: service %v not found", typ)
	}
	return fmt.Errorf("di: service %v (name=%s) not found", typ, name)
}
