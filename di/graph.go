package di

import (
	"fmt"
	"reflect"
	"strings"
)

type graphBuilder struct {
	definitions map[ServiceKey]*ServiceDefinition
}

func newGraphBuilder(defs map[ServiceKey]*ServiceDefinition) *graphBuilder {
	return &graphBuilder{definitions: defs}
}

// buildOrder fills every definition's Schema and returns the keys in
// dependency order. Cycles are reported with both ends of the back edge.
func (g *graphBuilder) buildOrder(keys []ServiceKey) ([]ServiceKey, error) {
	dependencies := make(map[ServiceKey][]ServiceKey, len(keys))

	for _, key := range keys {
		deps, err := g.inspectDependencies(g.definitions[key])
		if err != nil {
			return nil, fmt.Errorf("di: inspect dependencies of %v (name=%s): %w", key.Type, key.Name, err)
		}
		dependencies[key] = deps
	}

	visited := make(map[ServiceKey]bool)
	onStack := make(map[ServiceKey]bool)
	order := make([]ServiceKey, 0, len(keys))

	var visit func(ServiceKey) error
	visit = func(u ServiceKey) error {
		visited[u] = true
		onStack[u] = true

		for _, v := range dependencies[u] {
			// Missing dependencies surface at resolve time.
			if _, exists := g.definitions[v]; !exists {
				continue
			}
			if !visited[v] {
				if err := visit(v); err != nil {
					return err
				}
			} else if onStack[v] {
				return fmt.Errorf("di: circular dependency: %v(name=%s) -> %v(name=%s)", u.Type, u.Name, v.Type, v.Name)
			}
		}

		onStack[u] = false
		order = append(order, u)
		return nil
	}

	for _, key := range keys {
		if !visited[key] {
			if err := visit(key); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

func (g *graphBuilder) inspectDependencies(def *ServiceDefinition) ([]ServiceKey, error) {
	def.Schema = &InjectionSchema{}

	if def.IsValue {
		if def.InjectFields && def.Impl != nil {
			return g.analyzeStruct(reflect.TypeOf(def.Impl), def.Schema)
		}
		return nil, nil
	}

	if def.IsFactory || (def.Impl != nil && reflect.TypeOf(def.Impl).Kind() == reflect.Func) {
		return g.analyzeFunction(def.Impl, def.Schema)
	}

	return g.analyzeStruct(def.ImplType, def.Schema)
}

func (g *graphBuilder) analyzeFunction(fn any, schema *InjectionSchema) ([]ServiceKey, error) {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %v", fnType)
	}

	deps := make([]ServiceKey, 0, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		argType := fnType.In(i)
		deps = append(deps, ServiceKey{Type: argType})
		schema.Args = append(schema.Args, argType)
	}
	return deps, nil
}

func (g *graphBuilder) analyzeStruct(typ reflect.Type, schema *InjectionSchema) ([]ServiceKey, error) {
	if typ == nil {
		return nil, nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, nil
	}

	var deps []ServiceKey
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("di")
		if !ok {
			continue
		}

		name, optional := parseTag(tag)
		schema.Fields = append(schema.Fields, FieldInjection{
			Index:       i,
			Name:        field.Name,
			Type:        field.Type,
			Optional:    optional,
			ServiceName: name,
		})

		if !optional {
			deps = append(deps, ServiceKey{Type: field.Type, Name: name})
		}
	}
	return deps, nil
}

// parseTag reads `di:"name,?"`. A bare "?" or "optional" means an optional
// unnamed dependency.
func parseTag(tag string) (name string, optional bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	if name == "?" || name == "optional" {
		return "", true
	}
	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "?", "optional":
			optional = true
		}
	}
	return name, optional
}
