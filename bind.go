package sqlrebuild

import (
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// ambiguousSentinel marks a name that several flattened struct fields
// claim. Referencing it fails with ErrFieldAmbiguous.
type ambiguousSentinel struct {
	name string
}

var (
	structIndexCache = newFieldCache(cacheSize)
	scannerIface     = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// ValuesOf flattens value sources into one bag. Inputs are applied in
// order and later ones override earlier ones ("last one wins"):
//   - nil (ignored)
//   - Values (named and positional entries)
//   - map[string]any or any reflect.Map with string keys
//   - struct or pointer to struct with `db` tags
func ValuesOf(inputs ...any) (Values, error) {
	var out Values
	for i, in := range inputs {
		if in == nil {
			continue
		}
		if v, ok := in.(Values); ok {
			for _, n := range v.names {
				out = out.With(n, v.named[n])
			}
			if len(v.positional) > 0 {
				out = out.Append(v.positional...)
			}
			continue
		}
		named, err := flatten(in)
		if err != nil {
			return Values{}, fmt.Errorf("sqlrebuild: input #%d: %w", i, err)
		}
		keys := make([]string, 0, len(named))
		for k := range named {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = out.With(k, named[k])
		}
	}
	return out, nil
}

// flatten resolves the named entries of a single input.
// Supports map-like, struct-like (flattened), and pointers/interfaces thereof.
func flatten(in any) (P, error) {
	// FAST-PATH: map[string]any
	if m, ok := in.(map[string]any); ok {
		return m, nil
	}
	v := deIndirect(reflect.ValueOf(in))
	if !v.IsValid() || ((v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()) {
		return nil, nil
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", v.Type().Key())
		}
		out := make(P, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	case reflect.Struct:
		m := fieldIndexMap(v.Type())
		out := make(P, len(m))
		for name, fi := range m {
			if fi.ambiguous {
				out[name] = ambiguousSentinel{name: name}
				continue
			}
			val, _ := getValueByPathAny(v, fi.index)
			if fi.scalar {
				val = Scalar(val)
			}
			out[name] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value source %T", in)
	}
}

// fieldIndexMap returns a mapping from column name → fieldInfo for the given type.
// It flattens nested structs (excluding time.Time), honors `db:"name"` tags,
// and supports `db:"name,scalar"` to force scalar binding.
// The result is cached in a two-tier cache.
func fieldIndexMap(t reflect.Type) map[string]fieldInfo {
	if m, ok := structIndexCache.get(t); ok {
		return m
	}

	// Normalize to struct
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		m := make(map[string]fieldInfo)
		structIndexCache.put(t, m)
		return m
	}

	m := make(map[string]fieldInfo, base.NumField())

	visited := map[reflect.Type]bool{}
	var walk func(rt reflect.Type, path []int)

	walk = func(rt reflect.Type, path []int) {
		// Follow pointers for current type
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt.Kind() != reflect.Struct {
			return
		}
		if visited[rt] {
			return
		}
		visited[rt] = true
		defer delete(visited, rt)

		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if f.PkgPath != "" { // unexported
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "-" {
				continue
			}
			name := f.Name
			scalar := false
			if tag != "" {
				parts := strings.Split(tag, ",")
				if parts[0] != "" {
					name = parts[0]
				}
				for _, p := range parts[1:] {
					if strings.TrimSpace(p) == "scalar" {
						scalar = true
					}
				}
			}

			if shouldFlatten(f.Type) {
				walk(f.Type, appendIndex(path, i))
				continue
			}

			// Leaf: handle collisions
			if prev, exists := m[name]; exists {
				if !prev.ambiguous {
					m[name] = fieldInfo{ambiguous: true}
				}
				continue
			}
			m[name] = fieldInfo{index: appendIndex(path, i), scalar: scalar}
		}
	}

	walk(base, nil)
	structIndexCache.put(t, m)
	return m
}

// shouldFlatten decides whether to descend into ft (struct or *struct).
func shouldFlatten(ft reflect.Type) bool {
	// If *T implements sql.Scanner → treat as leaf (no flatten)
	if reflect.PointerTo(ft).Implements(scannerIface) || ft.Implements(scannerIface) {
		return false
	}
	tt := ft
	if tt.Kind() == reflect.Pointer {
		tt = tt.Elem()
	}
	if tt.Kind() != reflect.Struct {
		return false
	}
	// Do not flatten time.Time (common leaf struct)
	if tt.PkgPath() == "time" && tt.Name() == "Time" {
		return false
	}
	return true
}

// appendIndex returns a new index path with idx appended.
func appendIndex(path []int, idx int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = idx
	return out
}

// deIndirect unwraps interface and pointers until a concrete value (or nil).
func deIndirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// getValueByPathAny extracts the value at the end of 'path' from 'root'.
// If a pointer along the path is nil, it returns (nil, true) to represent SQL NULL.
// Returns (value, true) on success, or (nil, false) on structural mismatch.
func getValueByPathAny(root reflect.Value, path []int) (any, bool) {
	v := root
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, true
		}
		v = v.Elem()
	}
	for i, idx := range path {
		for v.IsValid() && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, true
			}
			v = v.Elem()
		}
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return nil, false
		}
		v = v.Field(idx)
		if i == len(path)-1 {
			for v.IsValid() && v.Kind() == reflect.Interface {
				if v.IsNil() {
					return nil, true
				}
				v = v.Elem()
			}
			if v.Kind() == reflect.Pointer && v.IsNil() {
				return nil, true
			}
			return v.Interface(), true
		}
	}
	return nil, false
}

// --------------------------------
// Cache
// --------------------------------

// fieldInfo describes a leaf field: its full index path and whether it's marked
// as "scalar" via tag option (no slice expansion).
type fieldInfo struct {
	index     []int // full index path for FieldByIndex-like ops
	scalar    bool
	ambiguous bool // true if multiple fields with same name found
}

// fieldCache implements a two-tier map with cheap rotation to bound memory.
// 'curr' is the hot set; 'prev' is the previous generation. Lookups promote.
type fieldCache struct {
	mu   sync.RWMutex
	curr map[reflect.Type]map[string]fieldInfo
	prev map[reflect.Type]map[string]fieldInfo
	max  int
}

// newFieldCache creates a new simple two-tier cache with cheap rotation to limit memory usage.
func newFieldCache(max int) *fieldCache {
	if max <= 0 {
		max = cacheSize
	}
	return &fieldCache{
		curr: make(map[reflect.Type]map[string]fieldInfo, max/2),
		prev: make(map[reflect.Type]map[string]fieldInfo),
		max:  max,
	}
}

// get looks up the field index map for type t.
func (c *fieldCache) get(t reflect.Type) (map[string]fieldInfo, bool) {
	c.mu.RLock()
	if m, ok := c.curr[t]; ok {
		c.mu.RUnlock()
		return m, true
	}
	if m, ok := c.prev[t]; ok {
		c.mu.RUnlock()
		c.mu.Lock()
		c.rotateLocked()
		c.curr[t] = m
		c.mu.Unlock()
		return m, true
	}
	c.mu.RUnlock()
	return nil, false
}

// put stores the field index map for type t.
func (c *fieldCache) put(t reflect.Type, idx map[string]fieldInfo) {
	c.mu.Lock()
	c.rotateLocked()
	c.curr[t] = idx
	c.mu.Unlock()
}

func (c *fieldCache) rotateLocked() {
	if len(c.curr) >= c.max {
		c.prev = c.curr
		c.curr = make(map[reflect.Type]map[string]fieldInfo, c.max/2)
	}
}
