package di

import (
	"fmt"
	"reflect"
)

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide registers target and infers the service type from it:
//
//	func(...) (S, error?)  factory, service type S
//	*Struct                value, fields tagged `di` are injected at Build
//	reflect.Type           struct injection of that type
func Provide(c Container, target any, opts ...Option) (reflect.Type, error) {
	targetVal := reflect.ValueOf(target)
	var def *ServiceDefinition

	if typeVal, ok := target.(reflect.Type); ok {
		def = &ServiceDefinition{
			Type:     typeVal,
			Scope:    ScopeSingleton,
			ImplType: typeVal,
		}
	} else if targetVal.Kind() == reflect.Func {
		fnType := targetVal.Type()
		if fnType.NumOut() == 0 {
			return nil, fmt.Errorf("di: constructor %v must return at least one value", fnType)
		}
		def = &ServiceDefinition{
			Type:      fnType.Out(0),
			Scope:     ScopeSingleton,
			Impl:      target,
			IsFactory: true,
		}
	} else if targetVal.Kind() == reflect.Ptr {
		def = &ServiceDefinition{
			Type:    targetVal.Type(),
			Scope:   ScopeSingleton,
			Impl:    target,
			IsValue: true,
		}
		if elem := targetVal.Type().Elem(); elem.Kind() == reflect.Struct {
			for i := 0; i < elem.NumField(); i++ {
				if _, hasTag := elem.Field(i).Tag.Lookup("di"); hasTag {
					def.InjectFields = true
					break
				}
			}
		}
	} else {
		return nil, fmt.Errorf("di: unsupported registration target %T", target)
	}

	for _, opt := range opts {
		opt(def)
	}

	if err := c.Add(def); err != nil {
		return nil, err
	}
	return def.Type, nil
}

// Invoke calls fn with its arguments resolved from c. A non-nil trailing
// error result is returned.
func Invoke(c Container, fn any) error {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("di: invoke expects a function, got %T", fn)
	}

	args := make([]reflect.Type, fnType.NumIn())
	for i := range args {
		args[i] = fnType.In(i)
	}

	var r *resolver
	switch cc := c.(type) {
	case *container:
		r = cc.resolver
	case *scope:
		r = cc.parent.resolver
	default:
		r = newResolver()
	}

	if _, err := r.call(c, fn, args); err != nil {
		return fmt.Errorf("di: invoke %v: %w", fnType, err)
	}
	return nil
}

// Register registers T. Interface types need Use[Impl]() or WithFactory.
// It panics on duplicate registration.
func Register[T any](c Container, opts ...Option) {
	typ := TypeOf[T]()

	def := &ServiceDefinition{
		Type:     typ,
		Scope:    ScopeSingleton,
		ImplType: typ,
	}
	for _, opt := range opts {
		opt(def)
	}

	if err := c.Add(def); err != nil {
		panic(fmt.Sprintf("di: failed to register %v: %v", typ, err))
	}
}

// Resolve returns the unnamed T from c.
func Resolve[T any](c Container) (T, error) {
	return ResolveNamed[T](c, "")
}

// ResolveNamed returns the T registered under name.
func ResolveNamed[T any](c Container, name string) (T, error) {
	var zero T
	typ := TypeOf[T]()

	val, err := c.GetNamed(typ, name)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	if v, ok := val.(T); ok {
		return v, nil
	}
	return zero, fmt.Errorf("di: resolved value is %T, expected %v", val, typ)
}

// MustResolve is Resolve that panics on error.
func MustResolve[T any](c Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}
