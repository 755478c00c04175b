package config

import "sync/atomic"

// ValueStore holds the merged configuration tree for lock-free reads.
type ValueStore struct {
	value atomic.Value // map[string]any
}

func NewValueStore() *ValueStore {
	s := &ValueStore{}
	s.value.Store(make(map[string]any))
	return s
}

func (s *ValueStore) Load() map[string]any {
	return s.value.Load().(map[string]any)
}

// Store replaces the tree. A nil map is stored as empty.
func (s *ValueStore) Store(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	s.value.Store(data)
}
