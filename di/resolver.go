package di

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type resolver struct{}

func newResolver() *resolver {
	return &resolver{}
}

// createInstance builds def, resolving dependencies through c so that a
// Scope passed as c keeps scoped dependencies inside it.
func (r *resolver) createInstance(c Container, def *ServiceDefinition) (any, error) {
	if def.IsValue {
		if def.InjectFields {
			val := reflect.ValueOf(def.Impl)
			if val.Kind() == reflect.Ptr && val.Elem().Kind() == reflect.Struct {
				if err := r.injectFields(c, val.Elem(), def.Schema); err != nil {
					return nil, err
				}
			}
		}
		return def.Impl, nil
	}

	if def.IsFactory || (def.Impl != nil && reflect.TypeOf(def.Impl).Kind() == reflect.Func) {
		return r.invokeFunction(c, def.Impl, def.Schema.Args)
	}

	return r.createStruct(c, def)
}

func (r *resolver) invokeFunction(c Container, fn any, argTypes []reflect.Type) (any, error) {
	results, err := r.call(c, fn, argTypes)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("factory returned no values")
	}

	first := results[0]
	if (first.Kind() == reflect.Ptr || first.Kind() == reflect.Interface) && first.IsNil() {
		return nil, fmt.Errorf("factory returned nil %v", first.Type())
	}
	return first.Interface(), nil
}

// call resolves argTypes, invokes fn and converts a trailing non-nil error
// result into err.
func (r *resolver) call(c Container, fn any, argTypes []reflect.Type) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(argTypes))
	for i, argType := range argTypes {
		argVal, err := c.Get(argType)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = valueOf(argVal, argType)
	}

	results := reflect.ValueOf(fn).Call(args)
	if n := len(results); n > 0 {
		last := results[n-1]
		if last.Type().Implements(errorType) && !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}
	return results, nil
}

func (r *resolver) createStruct(c Container, def *ServiceDefinition) (any, error) {
	implType := def.ImplType

	var val reflect.Value
	if implType.Kind() == reflect.Ptr {
		val = reflect.New(implType.Elem())
	} else {
		val = reflect.New(implType)
	}

	if err := r.injectFields(c, val.Elem(), def.Schema); err != nil {
		return nil, err
	}

	if implType.Kind() == reflect.Ptr {
		return val.Interface(), nil
	}
	return val.Elem().Interface(), nil
}

func (r *resolver) injectFields(c Container, structVal reflect.Value, schema *InjectionSchema) error {
	for _, field := range schema.Fields {
		dep, err := c.GetNamed(field.Type, field.ServiceName)
		if err != nil {
			if field.Optional {
				continue
			}
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		structVal.Field(field.Index).Set(valueOf(dep, field.Type))
	}
	return nil
}

// valueOf keeps interface-typed nil values assignable.
func valueOf(v any, typ reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(typ)
	}
	return reflect.ValueOf(v)
}
