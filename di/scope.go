package di

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Scope holds ScopeScoped instances for one unit of work.
type Scope interface {
	Container
	// Dispose drops every instance created in the scope.
	Dispose()
}

type scopeEntry struct {
	val atomic.Value
	mu  sync.Mutex
}

type scope struct {
	parent  *container
	entries []scopeEntry // indexed by ServiceDefinition.ID
}

func newScope(parent *container) *scope {
	return &scope{
		parent:  parent,
		entries: make([]scopeEntry, parent.serviceCount()),
	}
}

func (s *scope) Add(def *ServiceDefinition) error {
	return fmt.Errorf("di: cannot register services on a scope")
}

func (s *scope) Build() error {
	return nil
}

func (s *scope) CreateScope() Scope {
	return s.parent.CreateScope()
}

func (s *scope) Has(typ reflect.Type, name string) bool {
	return s.parent.Has(typ, name)
}

func (s *scope) Get(typ reflect.Type) (any, error) {
	return s.GetNamed(typ, "")
}

func (s *scope) GetNamed(typ reflect.Type, name string) (any, error) {
	def, ok := s.parent.definitions[ServiceKey{Type: typ, Name: name}]
	if !ok {
		return nil, notFound(typ, name)
	}

	switch def.Scope {
	case ScopeSingleton:
		return s.parent.GetNamed(typ, name)

	case ScopeTransient:
		return s.parent.resolver.createInstance(s, def)

	case ScopeScoped:
		if def.ID < 0 || def.ID >= len(s.entries) {
			return nil, fmt.Errorf("di: invalid service id %d", def.ID)
		}
		entry := &s.entries[def.ID]

		if val := entry.val.Load(); val != nil {
			return val, nil
		}

		entry.mu.Lock()
		defer entry.mu.Unlock()

		if val := entry.val.Load(); val != nil {
			return val, nil
		}

		instance, err := s.parent.resolver.createInstance(s, def)
		if err != nil {
			return nil, err
		}
		entry.val.Store(instance)
		return instance, nil
	}

	return nil, fmt.Errorf("di: unknown scope %v", def.Scope)
}

func (s *scope) Dispose() {
	s.entries = make([]scopeEntry, len(s.entries))
}

func (s *scope) serviceCount() int {
	return s.parent.serviceCount()
}
