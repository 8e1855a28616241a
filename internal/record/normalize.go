package record

import (
	"reflect"

	"github.com/tuannm99/novarow/internal/encerr"
)

// Sequencer is implemented by values that convert themselves to an ordered
// list, one entry per column (or tuple element).
type Sequencer interface {
	ToSlice() []any
}

// Mapper is implemented by records with a canonical name -> value form. It
// takes precedence over FieldGetter.
type Mapper interface {
	ToMap() map[string]any
}

// FieldGetter is implemented by records that expose named fields one at a
// time.
type FieldGetter interface {
	Field(name string) (any, bool)
}

// Normalize converts a value bundle into a positional list aligned with the
// context's columns. Shapes are tried in this order:
//
//  1. ordered sequence: []any, Sequencer, any slice or array except bytes
//  2. mapping keyed by column name: map[string]any or another string-keyed map
//  3. record: Mapper, then FieldGetter
//  4. a single scalar, when the context has exactly one column
//
// A nil bundle is an empty sequence.
func Normalize(ctx *Context, bundle any) ([]any, error) {
	n := ctx.NumCols()

	switch v := bundle.(type) {
	case nil:
		return positional(n, nil)
	case []any:
		return positional(n, v)
	case Sequencer:
		return positional(n, v.ToSlice())
	case map[string]any:
		return byName(ctx, func(name string) (any, bool) {
			x, ok := v[name]
			return x, ok
		}, encerr.MissingColumn)
	case Mapper:
		m := v.ToMap()
		return byName(ctx, func(name string) (any, bool) {
			x, ok := m[name]
			return x, ok
		}, encerr.MissingField)
	case FieldGetter:
		return byName(ctx, v.Field, encerr.MissingField)
	}

	rv := reflect.ValueOf(bundle)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			vals := make([]any, rv.Len())
			for i := range vals {
				vals[i] = rv.Index(i).Interface()
			}
			return positional(n, vals)
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			kt := rv.Type().Key()
			return byName(ctx, func(name string) (any, bool) {
				x := rv.MapIndex(reflect.ValueOf(name).Convert(kt))
				if !x.IsValid() {
					return nil, false
				}
				return x.Interface(), true
			}, encerr.MissingColumn)
		}
	}

	if n == 1 {
		return []any{bundle}, nil
	}
	return nil, encerr.UnsupportedShape(bundle, n)
}

func positional(n int, vals []any) ([]any, error) {
	if len(vals) != n {
		return nil, encerr.ArityMismatch(n, len(vals))
	}
	out := make([]any, n)
	copy(out, vals)
	return out, nil
}

func byName(ctx *Context, lookup func(string) (any, bool), missing func(string) *encerr.Error) ([]any, error) {
	out := make([]any, ctx.NumCols())
	for i, col := range ctx.cols {
		v, ok := lookup(col.Name)
		if !ok {
			return nil, missing(col.Name)
		}
		out[i] = v
	}
	return out, nil
}
