package di

import (
	"reflect"
	"sync"
)

// ScopeType is the lifetime of a registered service.
type ScopeType int

const (
	// ScopeSingleton creates one instance per container.
	ScopeSingleton ScopeType = iota
	// ScopeTransient creates a new instance on every resolve.
	ScopeTransient
	// ScopeScoped creates one instance per Scope.
	ScopeScoped
)

func (s ScopeType) String() string {
	switch s {
	case ScopeSingleton:
		return "singleton"
	case ScopeTransient:
		return "transient"
	case ScopeScoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// ServiceKey identifies a registration.
type ServiceKey struct {
	Type reflect.Type
	Name string
}

// FieldInjection describes one `di`-tagged struct field.
type FieldInjection struct {
	Index       int
	Name        string
	Type        reflect.Type
	Optional    bool
	ServiceName string
}

// InjectionSchema is computed once at Build.
type InjectionSchema struct {
	Fields []FieldInjection
	Args   []reflect.Type
}

// ServiceDefinition holds everything the container knows about a service.
type ServiceDefinition struct {
	ID           int
	Type         reflect.Type
	Name         string
	Scope        ScopeType
	ImplType     reflect.Type
	Impl         any
	IsFactory    bool
	IsValue      bool
	InjectFields bool

	Schema *InjectionSchema

	singletonInst any
	singletonErr  error
	singletonOnce sync.Once
}

func (d *ServiceDefinition) key() ServiceKey {
	return ServiceKey{Type: d.Type, Name: d.Name}
}
