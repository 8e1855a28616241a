package serialize

import (
	"bytes"
	"cmp"
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/novarow/internal/record"
)

// MapEntry is one key/value pair of a map value.
type MapEntry struct {
	Key   any
	Value any
}

// MapEntries is a map value with an explicit pair order. Pairs are written
// in slice order; Go maps are written in sorted key order instead.
type MapEntries []MapEntry

// deref unwraps pointers and reports whether the value is null.
func deref(v any) (any, bool) {
	switch v.(type) {
	case nil:
		return nil, true
	case bool, string, []byte, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64,
		time.Time, uuid.UUID, net.IP, netip.Addr, []any, map[string]any, MapEntries:
		return v, false
	case *big.Int:
		return v, v.(*big.Int) == nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v, false
	}
	if rv.IsNil() {
		return nil, true
	}
	// A pointer carrying its own adapter methods is used as is.
	switch v.(type) {
	case record.Mapper, record.FieldGetter, record.Sequencer:
		return v, false
	}
	return deref(rv.Elem().Interface())
}

// sequence is a positional view over a list, set or tuple value.
type sequence struct {
	n  int
	at func(int) any
}

// sequenceOf accepts []any, record.Sequencer and any slice or array. When
// asSet is true, maps are accepted too and their keys become the elements.
func sequenceOf(v any, asSet bool) (sequence, bool) {
	switch x := v.(type) {
	case []any:
		return sequence{n: len(x), at: func(i int) any { return x[i] }}, true
	case record.Sequencer:
		s := x.ToSlice()
		return sequence{n: len(s), at: func(i int) any { return s[i] }}, true
	case string, map[string]any, MapEntries:
		return sequence{}, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sequence{n: rv.Len(), at: func(i int) any { return rv.Index(i).Interface() }}, true
	case reflect.Map:
		if !asSet {
			return sequence{}, false
		}
		keys := setKeys(rv)
		return sequence{n: len(keys), at: func(i int) any { return keys[i].Interface() }}, true
	}
	return sequence{}, false
}

// setKeys returns the members of a map-shaped set in sorted order. For
// map[K]bool only keys mapped to true are members.
func setKeys(rv reflect.Value) []reflect.Value {
	pairs := sortedPairs(rv)
	isBool := rv.Type().Elem().Kind() == reflect.Bool
	keys := make([]reflect.Value, 0, len(pairs))
	for _, p := range pairs {
		if isBool && !p.value.Bool() {
			continue
		}
		keys = append(keys, p.key)
	}
	return keys
}

// entriesOf returns the pairs of a map value. MapEntries keep their order;
// Go maps are sorted by key so repeated encodes produce identical bytes.
func entriesOf(v any) (MapEntries, bool) {
	switch x := v.(type) {
	case MapEntries:
		return x, true
	case []MapEntry:
		return x, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	pairs := sortedPairs(rv)
	out := make(MapEntries, len(pairs))
	for i, p := range pairs {
		out[i] = MapEntry{Key: p.key.Interface(), Value: p.value.Interface()}
	}
	return out, true
}

type mapPair struct {
	key, value reflect.Value
}

// sortedPairs reads keys and values in one pass. Keys are never looked up
// again, since a NaN key cannot be found through MapIndex.
func sortedPairs(rv reflect.Value) []mapPair {
	pairs := make([]mapPair, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		pairs = append(pairs, mapPair{key: it.Key(), value: it.Value()})
	}
	// Equal keys only occur for NaN; order those by value.
	slices.SortFunc(pairs, func(a, b mapPair) int {
		if c := compareKeys(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(keyString(a.value), keyString(b.value))
	})
	return pairs
}

func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface || a.Kind() == reflect.Pointer {
		if a.IsNil() {
			break
		}
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface || b.Kind() == reflect.Pointer {
		if b.IsNil() {
			break
		}
		b = b.Elem()
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Bool:
			return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
		case reflect.Array:
			if a.Type().Elem().Kind() == reflect.Uint8 && a.Type() == b.Type() {
				return bytes.Compare(arrayBytes(a), arrayBytes(b))
			}
		}
	}
	return cmp.Compare(keyString(a), keyString(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func arrayBytes(v reflect.Value) []byte {
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}

func keyString(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	return fmt.Sprintf("%T:%v", v.Interface(), v.Interface())
}

// fields is a by-name view over a UDT value. names is nil when the value
// cannot enumerate its fields.
type fields struct {
	get   func(string) (any, bool)
	names func() []string
}

func fieldsOf(v any) (fields, bool) {
	switch x := v.(type) {
	case map[string]any:
		return mapFields(x), true
	case record.Mapper:
		return mapFields(x.ToMap()), true
	case record.FieldGetter:
		return fields{get: x.Field}, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fields{}, false
	}
	kt := rv.Type().Key()
	return fields{
		get: func(name string) (any, bool) {
			x := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
			if !x.IsValid() {
				return nil, false
			}
			return x.Interface(), true
		},
		names: func() []string {
			keys := rv.MapKeys()
			out := make([]string, len(keys))
			for i, k := range keys {
				out[i] = k.String()
			}
			return out
		},
	}, true
}

func mapFields(m map[string]any) fields {
	return fields{
		get: func(name string) (any, bool) {
			x, ok := m[name]
			return x, ok
		},
		names: func() []string {
			out := make([]string, 0, len(m))
			for k := range m {
				out = append(out, k)
			}
			return out
		},
	}
}
