package profile

import "sync"

// EnumRegistry holds the named type tables of a profile.
type EnumRegistry struct {
	mu    sync.RWMutex
	enums map[string]map[int64]string // type name -> value -> name
	names map[string]map[string]int64 // type name -> name -> value
}

func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{
		enums: make(map[string]map[int64]string),
		names: make(map[string]map[string]int64),
	}
}

func (r *EnumRegistry) Register(typeName string, mapping map[int64]string) {
	reverse := make(map[string]int64, len(mapping))
	for v, n := range mapping {
		reverse[n] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[typeName] = mapping
	r.names[typeName] = reverse
}

func (r *EnumRegistry) Get(typeName string) (map[int64]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mapping, ok := r.enums[typeName]
	return mapping, ok
}

// Name returns the string for value in the named type.
func (r *EnumRegistry) Name(typeName string, value int64) (string, bool) {
	mapping, ok := r.Get(typeName)
	if !ok {
		return "", false
	}
	name, ok := mapping[value]
	return name, ok
}

// Value returns the raw value carrying name in the named type.
func (r *EnumRegistry) Value(typeName, name string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reverse, ok := r.names[typeName]
	if !ok {
		return 0, false
	}
	v, ok := reverse[name]
	return v, ok
}
