package figure

import (
	"fmt"
	"reflect"
	"slices"
)

// Kind classifies a figure value.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindSequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// KindOf reports whether v is an object, a sequence or a scalar.
// A nil *Object is a scalar.
func KindOf(v any) Kind {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return KindScalar
		}
		return KindObject
	case []any:
		return KindSequence
	default:
		return KindScalar
	}
}

// AsObject returns v as a non-nil *Object.
func AsObject(v any) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok && o != nil
}

// AsSequence returns v as a sequence.
func AsSequence(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// Object is a string-keyed mapping that iterates in insertion order.
// The zero value is not usable; create objects with [NewObject] or [ObjectOf].
// Objects are not safe for concurrent mutation.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an object from alternating key/value arguments.
// It panics if a key is not a string or the argument count is odd.
//
//	figure.ObjectOf("color", "red", "size", 12)
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("figure: ObjectOf requires an even number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("figure: ObjectOf key %v is not a string", pairs[i]))
		}
		o.Set(key, pairs[i+1])
	}
	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// SortedKeys returns the keys in lexicographic order.
func (o *Object) SortedKeys() []string {
	keys := o.Keys()
	slices.Sort(keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v under key. A new key is appended to the iteration order;
// an existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
}

// Range calls fn for each key in insertion order until fn returns false.
// fn must not add or remove keys.
func (o *Object) Range(fn func(key string, v any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	out := &Object{
		keys:   slices.Clone(o.keys),
		values: make(map[string]any, len(o.values)),
	}
	for k, v := range o.values {
		out.values[k] = Clone(v)
	}
	return out
}

// Equal reports whether o and other hold deeply equal values.
// Key order is not significant.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for k, v := range o.values {
		w, ok := other.values[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

// Clone deep-copies objects and sequences. Scalars are returned as is.
func Clone(v any) any {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return v
		}
		return x.Clone()
	case []any:
		if x == nil {
			return v
		}
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two figure values are deeply equal.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// FromNative converts decoded Go values (map[string]any, []any, nested
// scalars) into figure values. Map keys are inserted in sorted order.
func FromNative(v any) any {
	switch x := v.(type) {
	case map[string]any:
		o := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			o.Set(k, FromNative(x[k]))
		}
		return o
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = FromNative(item)
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
