package core

import (
	"reflect"
	"sync"
)

// FeatureCollection stores build-time builders keyed by their type.
type FeatureCollection struct {
	features sync.Map
}

func (fc *FeatureCollection) Get(typ reflect.Type) (any, bool) {
	return fc.features.Load(typ)
}

// GetFeature returns the feature of type T, or the zero value.
func GetFeature[T any](rt *Runtime) T {
	var zero T
	if val, ok := rt.Features.Get(reflect.TypeOf((*T)(nil)).Elem()); ok {
		return val.(T)
	}
	return zero
}

// UseFeature returns the feature of type T, creating it with newFn on
// first use. Options call it to share one builder.
func UseFeature[T any](rt *Runtime, newFn func() T) T {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if val, ok := rt.Features.Get(typ); ok {
		return val.(T)
	}
	v := newFn()
	actual, _ := rt.Features.features.LoadOrStore(typ, v)
	return actual.(T)
}
