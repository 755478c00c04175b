package di

import "reflect"

// Option configures a registration.
type Option func(*ServiceDefinition)

// WithScope sets the lifetime.
func WithScope(scope ScopeType) Option {
	return func(s *ServiceDefinition) {
		s.Scope = scope
	}
}

// WithSingleton is the default lifetime.
func WithSingleton() Option {
	return WithScope(ScopeSingleton)
}

func WithTransient() Option {
	return WithScope(ScopeTransient)
}

func WithScoped() Option {
	return WithScope(ScopeScoped)
}

// WithValue registers an already built instance as a singleton.
func WithValue(v any) Option {
	return func(s *ServiceDefinition) {
		s.Impl = v
		s.IsValue = true
		s.Scope = ScopeSingleton
	}
}

// WithFactory registers fn as the constructor. Its arguments are resolved
// from the container.
func WithFactory(fn any) Option {
	return func(s *ServiceDefinition) {
		s.Impl = fn
		s.IsFactory = true
	}
}

// WithName registers the service under name for `di:"name"` fields and
// ResolveNamed.
func WithName(name string) Option {
	return func(s *ServiceDefinition) {
		s.Name = name
	}
}

// As registers the service under the interface type I instead of the
// constructor's return type.
func As[I any]() Option {
	return func(s *ServiceDefinition) {
		s.Type = reflect.TypeOf((*I)(nil)).Elem()
	}
}

// Use sets the implementation type of an interface registration.
func Use[T any]() Option {
	return func(s *ServiceDefinition) {
		s.ImplType = reflect.TypeOf((*T)(nil)).Elem()
	}
}
