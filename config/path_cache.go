package config

import (
	"strings"
	"sync"
)

// PathCache memoizes key splitting for Get on hot paths.
type PathCache struct {
	cache sync.Map
}

// GetPathSegments splits path on ':' and '.'.
func (c *PathCache) GetPathSegments(path string) []string {
	if v, ok := c.cache.Load(path); ok {
		return v.([]string)
	}

	parts := splitKey(path)
	c.cache.Store(path, parts)
	return parts
}

func splitKey(key string) []string {
	return strings.Split(strings.ReplaceAll(key, ":", "."), ".")
}

var globalPathCache = &PathCache{}
