package sqlrebuild

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"sort"
)

// P is a convenient alias for map[string]any to use with NewValues and Bind().
type P = map[string]any

// Query is a statement together with the values it binds. It is immutable:
// rebuild steps return new Query values instead of modifying their input.
type Query struct {
	statement string
	values    Values
}

// NewQuery returns a Query for the given statement text and values.
func NewQuery(statement string, values Values) Query {
	return Query{statement: statement, values: values}
}

// Statement returns the statement text.
func (q Query) Statement() string { return q.statement }

// Values returns the bound values.
func (q Query) Values() Values { return q.values }

// String returns the statement text.
func (q Query) String() string { return q.statement }

// Values is an ordered bag of bound values: named entries in insertion
// order, followed by positional entries consumed left to right by numbered
// placeholders. The zero value is an empty bag.
type Values struct {
	names      []string
	named      map[string]any
	positional []any
}

// NewValues returns a bag with the given named entries (sorted by name) and
// positional entries (in argument order).
func NewValues(named P, positional ...any) Values {
	var v Values
	if len(named) > 0 {
		v.names = make([]string, 0, len(named))
		v.named = make(map[string]any, len(named))
		for k, val := range named {
			v.names = append(v.names, k)
			v.named[k] = val
		}
		sort.Strings(v.names)
	}
	if len(positional) > 0 {
		v.positional = append([]any(nil), positional...)
	}
	return v
}

// Positional returns a bag holding only positional entries.
func Positional(args ...any) Values {
	return NewValues(nil, args...)
}

// Lookup returns the named entry for name.
func (v Values) Lookup(name string) (any, bool) {
	val, ok := v.named[name]
	return val, ok
}

// Names returns the entry names in order.
func (v Values) Names() []string {
	return append([]string(nil), v.names...)
}

// Positional returns the positional entries in order.
func (v Values) Positional() []any {
	return append([]any(nil), v.positional...)
}

// Len returns the number of named plus positional entries.
func (v Values) Len() int {
	return len(v.names) + len(v.positional)
}

// IsEmpty reports whether the bag has no entries.
func (v Values) IsEmpty() bool {
	return v.Len() == 0
}

// With returns a copy of v where name is bound to value. A new name is
// appended after the existing ones; an existing name keeps its position.
func (v Values) With(name string, value any) Values {
	out := v.clone()
	if _, ok := out.named[name]; !ok {
		out.names = append(out.names, name)
	}
	out.named[name] = value
	return out
}

// Without returns a copy of v with name removed.
func (v Values) Without(name string) Values {
	if _, ok := v.named[name]; !ok {
		return v
	}
	out := v.clone()
	delete(out.named, name)
	for i, n := range out.names {
		if n == name {
			out.names = append(out.names[:i], out.names[i+1:]...)
			break
		}
	}
	return out
}

// Append returns a copy of v with more positional entries.
func (v Values) Append(args ...any) Values {
	out := v.clone()
	out.positional = append(out.positional, args...)
	return out
}

// Map returns the named entries as a map.
func (v Values) Map() P {
	m := make(P, len(v.names))
	for _, n := range v.names {
		m[n] = v.named[n]
	}
	return m
}

// Args returns the named values in order. For a rebuilt Query this is the
// order in which its placeholders appear, which is what positional drivers
// (?, $n, @pn) expect.
func (v Values) Args() []any {
	args := make([]any, 0, len(v.names))
	for _, n := range v.names {
		args = append(args, v.named[n])
	}
	return args
}

// NamedArgs returns the named values as sql.NamedArg, for drivers that bind
// :name placeholders themselves.
func (v Values) NamedArgs() []any {
	args := make([]any, 0, len(v.names))
	for _, n := range v.names {
		args = append(args, sql.Named(n, v.named[n]))
	}
	return args
}

func (v Values) clone() Values {
	out := Values{
		names:      append([]string(nil), v.names...),
		named:      make(map[string]any, len(v.named)+1),
		positional: append([]any(nil), v.positional...),
	}
	for k, val := range v.named {
		out.named[k] = val
	}
	return out
}

// scalar is a wrapper to force scalar binding semantics.
type scalar struct {
	v any
}

// Scalar wraps a value to force it to be treated as a single scalar argument
// even if it is a slice/array. Useful for ANY(:ids)-style idioms.
func Scalar(v any) any {
	return scalar{v: v}
}

var byteSliceType = reflect.TypeOf([]byte(nil))

// sequence reports whether v is a list value that must be expanded into one
// placeholder per element, and returns its elements. Scalars are returned
// unwrapped as the single element.
func sequence(v any) ([]any, bool) {
	switch tv := v.(type) {
	case nil:
		return []any{nil}, false
	case scalar:
		return []any{tv.v}, false
	case driver.Valuer:
		return []any{v}, false
	case []byte:
		return []any{tv}, false
	case []any:
		return tv, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// Byte-slice aliases bind as a single []byte.
		if rv.Kind() == reflect.Slice && rv.Type().ConvertibleTo(byteSliceType) {
			return []any{rv.Convert(byteSliceType).Interface()}, false
		}
		return []any{v}, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
