package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// JsonFileSource reads a JSON object from Path.
type JsonFileSource struct {
	Path     string
	Optional bool
}

func (s *JsonFileSource) Name() string {
	return fmt.Sprintf("JsonFile(%s)", s.Path)
}

func (s *JsonFileSource) Load() (map[string]any, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse JSON %s: %w", s.Path, err)
	}
	return result, nil
}

// YamlFileSource reads a YAML mapping from Path.
type YamlFileSource struct {
	Path     string
	Optional bool
}

func (s *YamlFileSource) Name() string {
	return fmt.Sprintf("YamlFile(%s)", s.Path)
}

func (s *YamlFileSource) Load() (map[string]any, error) {
	data, err := readOptional(s.Path, s.Optional)
	if err != nil || data == nil {
		return make(map[string]any), err
	}

	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", s.Path, err)
	}
	if result == nil {
		result = make(map[string]any)
	}
	return result, nil
}

func readOptional(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// EnvironmentVariableSource maps PREFIX_A_B=v to a.b=v. Values that parse
// as numbers or booleans are typed.
type EnvironmentVariableSource struct {
	Prefix string
}

func (s *EnvironmentVariableSource) Name() string {
	return fmt.Sprintf("EnvironmentVariables(%s)", s.Prefix)
}

func (s *EnvironmentVariableSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.Prefix != "" {
			if !strings.HasPrefix(key, s.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.Prefix)
		}
		if key == "" {
			continue
		}

		key = strings.ReplaceAll(strings.ToLower(key), "_", ":")
		setNestedValue(result, key, value)
	}

	return result, nil
}

// InMemorySource serves a copy of Data.
type InMemorySource struct {
	Data map[string]any
}

func (s *InMemorySource) Name() string {
	return "InMemory"
}

func (s *InMemorySource) Load() (map[string]any, error) {
	result := make(map[string]any)
	mergeMaps(result, s.Data)
	return result, nil
}

// OptionArgs is the view of parsed command-line options the configuration
// needs.
type OptionArgs interface {
	OptionNames() []string
	OptionValues(name string) []string
}

// CommandLineSource turns "--a.b=v" options into a.b=v. The last value of
// a repeated option wins; an option without a value maps to "".
type CommandLineSource struct {
	Args OptionArgs
}

func (s *CommandLineSource) Name() string {
	return "CommandLine"
}

func (s *CommandLineSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	if s.Args == nil {
		return result, nil
	}

	for _, name := range s.Args.OptionNames() {
		values := s.Args.OptionValues(name)
		value := ""
		if n := len(values); n > 0 {
			value = values[n-1]
		}
		setNestedValue(result, strings.ReplaceAll(name, ".", ":"), value)
	}
	return result, nil
}

// setNestedValue stores value at a ':' separated path. Strings are typed
// only when the typed value prints back as the same text.
func setNestedValue(data map[string]any, path string, value any) {
	parts := strings.Split(path, ":")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	if s, ok := value.(string); ok {
		value = typedValue(s)
	}
	current[parts[len(parts)-1]] = value
}

func typedValue(s string) any {
	var v any = s
	if i, err := strconv.Atoi(s); err == nil {
		v = i
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		v = f
	} else if b, err := strconv.ParseBool(s); err == nil {
		v = b
	}
	if fmt.Sprint(v) != s {
		return s
	}
	return v
}
