package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Configuration is a read-only view over merged configuration sources.
// Keys are addressed as "a.b.c" or "a:b:c".
type Configuration interface {
	Get(key string) string
	GetWithDefault(key, defaultValue string) string
	GetInt(key string) (int, error)
	GetBool(key string) (bool, error)
	// GetDuration accepts Go duration strings ("30s"). Plain numbers are
	// milliseconds.
	GetDuration(key string) (time.Duration, error)
	// GetStringSlice accepts YAML lists and comma separated strings.
	GetStringSlice(key string) []string
	// Has reports whether key is set, even to an empty value.
	Has(key string) bool
	GetSection(key string) Configuration
	// Bind decodes the value at key into target. An empty key binds the root.
	Bind(key string, target any) error
	GetAll() map[string]any
}

type configuration struct {
	store *ValueStore
}

func newConfiguration(data map[string]any) *configuration {
	c := &configuration{store: NewValueStore()}
	c.store.Store(data)
	return c
}

func (c *configuration) Get(key string) string {
	value := c.getByPath(key)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *configuration) GetWithDefault(key, defaultValue string) string {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *configuration) GetInt(key string) (int, error) {
	value := c.getByPath(key)
	if value == nil {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("config: %s: %v is not an integer", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("config: cannot convert %s (%T) to int", key, value)
	}
}

func (c *configuration) GetBool(key string) (bool, error) {
	value := c.getByPath(key)
	if value == nil {
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("config: %s: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("config: cannot convert %s (%T) to bool", key, value)
	}
}

func (c *configuration) GetDuration(key string) (time.Duration, error) {
	value := c.getByPath(key)
	if value == nil {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		s := strings.TrimSpace(v)
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("config: cannot convert %s (%T) to duration", key, value)
	}
}

func (c *configuration) GetStringSlice(key string) []string {
	value := c.getByPath(key)

	var items []string
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		for _, item := range v {
			items = append(items, fmt.Sprintf("%v", item))
		}
	case []string:
		items = append(items, v...)
	default:
		items = strings.Split(fmt.Sprintf("%v", v), ",")
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func (c *configuration) Has(key string) bool {
	return c.getByPath(key) != nil
}

func (c *configuration) GetSection(key string) Configuration {
	if m, ok := c.getByPath(key).(map[string]any); ok {
		return newConfiguration(m)
	}
	return newConfiguration(make(map[string]any))
}

func (c *configuration) Bind(key string, target any) error {
	data := c.getByPath(key)
	if data == nil {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("config: marshal %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("config: bind %s: %w", key, err)
	}
	return nil
}

func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any)
	mergeMaps(result, c.store.Load())
	return result
}

func (c *configuration) getByPath(path string) any {
	data := c.store.Load()
	if path == "" {
		return data
	}

	current := any(data)
	for _, part := range globalPathCache.GetPathSegments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// mergeMaps deep-merges src into dst. Nested maps are copied so dst never
// aliases a source's data.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		if dstMap, ok := dst[k].(map[string]any); ok && srcIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			copied := make(map[string]any, len(srcMap))
			mergeMaps(copied, srcMap)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}
