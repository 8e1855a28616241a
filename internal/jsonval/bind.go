// Package jsonval converts decoded JSON into the Go values the serializers
// accept for a given column type. JSON has no integer, bytes, uuid or time
// types, so each is read from its usual textual form:
//
//	int kinds    number (arbitrary precision), varint included
//	decimal      number or numeric string, exact
//	blob         "0x..." hex string
//	uuid         canonical string
//	timestamp    RFC 3339 string or integer milliseconds
//	date         "2006-01-02" string or integer days since epoch
//	time         "15:04:05.999999999" string or integer nanoseconds
//	duration     Go duration string or {"months", "days", "nanoseconds"}
//	inet         address string
//	map          object (text keys) or array of [key, value] pairs
//	list, set    array
//	vector       array
//	tuple        array
//	udt          object
package jsonval

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/serialize"
)

// Decode parses a JSON array or object into a bundle whose values are bound
// to the column types of ctx.
func Decode(ctx *record.Context, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jsonval: bad json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("jsonval: bad json: trailing data after row at offset %d", dec.InputOffset())
	}

	switch v := raw.(type) {
	case []any:
		if len(v) != ctx.NumCols() {
			return nil, encerr.ArityMismatch(ctx.NumCols(), len(v))
		}
		out := make([]any, len(v))
		for i, x := range v {
			b, err := Bind(ctx.Column(i).Type, x)
			if err != nil {
				return nil, encerr.Prefix(err, ctx.Column(i).Name)
			}
			out[i] = b
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			i, ok := ctx.ColumnIndex(k)
			if !ok {
				return nil, encerr.TypeCheckDetail("column", x, "unknown column %q", k)
			}
			b, err := Bind(ctx.Column(i).Type, x)
			if err != nil {
				return nil, encerr.Prefix(err, k)
			}
			out[k] = b
		}
		return out, nil
	}
	if ctx.NumCols() == 1 {
		b, err := Bind(ctx.Column(0).Type, raw)
		if err != nil {
			return nil, encerr.Prefix(err, ctx.Column(0).Name)
		}
		return b, nil
	}
	return nil, encerr.UnsupportedShape(raw, ctx.NumCols())
}

// Bind converts one decoded JSON value (decoded with UseNumber) to a value of
// typ. null stays nil.
func Bind(typ coltype.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := typ.(type) {
	case *coltype.Native:
		return bindNative(t, v)
	case *coltype.Collection:
		return bindCollection(t, v)
	case *coltype.Vector:
		arr, ok := v.([]any)
		if !ok {
			return nil, encerr.TypeCheck(t.String(), v)
		}
		out := make([]any, len(arr))
		for i, x := range arr {
			b, err := Bind(t.Elem(), x)
			if err != nil {
				return nil, encerr.Prefix(err, encerr.Index(i))
			}
			out[i] = b
		}
		return out, nil
	case *coltype.Tuple:
		arr, ok := v.([]any)
		if !ok {
			return nil, encerr.TypeCheck(t.String(), v)
		}
		if len(arr) != t.Len() {
			return nil, encerr.TypeCheckDetail(t.String(), v, "tuple has %d elements, want %d", len(arr), t.Len())
		}
		out := make([]any, len(arr))
		for i, x := range arr {
			b, err := Bind(t.Elem(i), x)
			if err != nil {
				return nil, encerr.Prefix(err, encerr.Index(i))
			}
			out[i] = b
		}
		return out, nil
	case *coltype.UDT:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, encerr.TypeCheck(t.String(), v)
		}
		def := t.Def()
		out := make(map[string]any, len(obj))
		for k, x := range obj {
			i, ok := def.FieldIndex(k)
			if !ok {
				// left for the serializer to report
				out[k] = x
				continue
			}
			b, err := Bind(def.Field(i).Type, x)
			if err != nil {
				return nil, encerr.Prefix(err, k)
			}
			out[k] = b
		}
		return out, nil
	}
	return nil, encerr.SchemaType("unsupported column type %T", typ)
}

func bindCollection(t *coltype.Collection, v any) (any, error) {
	if t.Shape() != coltype.Map {
		arr, ok := v.([]any)
		if !ok {
			return nil, encerr.TypeCheck(t.String(), v)
		}
		out := make([]any, len(arr))
		for i, x := range arr {
			b, err := Bind(t.Elem(), x)
			if err != nil {
				return nil, encerr.Prefix(err, encerr.Index(i))
			}
			out[i] = b
		}
		return out, nil
	}

	switch m := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(serialize.MapEntries, 0, len(m))
		for i, k := range keys {
			key, err := Bind(t.Key(), k)
			if err != nil {
				return nil, encerr.Prefix(encerr.Prefix(err, "key"), encerr.Index(i))
			}
			val, err := Bind(t.Value(), m[k])
			if err != nil {
				return nil, encerr.Prefix(encerr.Prefix(err, "value"), encerr.Index(i))
			}
			out = append(out, serialize.MapEntry{Key: key, Value: val})
		}
		return out, nil
	case []any:
		out := make(serialize.MapEntries, 0, len(m))
		for i, p := range m {
			pair, ok := p.([]any)
			if !ok || len(pair) != 2 {
				return nil, encerr.Prefix(encerr.TypeCheckDetail(t.String(), p, "map pair must be [key, value]"), encerr.Index(i))
			}
			key, err := Bind(t.Key(), pair[0])
			if err != nil {
				return nil, encerr.Prefix(encerr.Prefix(err, "key"), encerr.Index(i))
			}
			val, err := Bind(t.Value(), pair[1])
			if err != nil {
				return nil, encerr.Prefix(encerr.Prefix(err, "value"), encerr.Index(i))
			}
			out = append(out, serialize.MapEntry{Key: key, Value: val})
		}
		return out, nil
	}
	return nil, encerr.TypeCheck(t.String(), v)
}

func bindNative(t *coltype.Native, v any) (any, error) {
	name := t.String()
	switch t.Kind() {
	case coltype.TinyInt, coltype.SmallInt, coltype.Int32, coltype.Int64, coltype.Counter, coltype.Varint:
		return bindInteger(name, v)

	case coltype.Decimal:
		var text string
		switch x := v.(type) {
		case json.Number:
			text = x.String()
		case string:
			text = x
		default:
			return nil, encerr.TypeCheck(name, v)
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		return d, nil

	case coltype.Date:
		if s, ok := v.(string); ok {
			d, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return nil, encerr.TypeCheckDetail(name, v, "%v", err)
			}
			return d, nil
		}
		return bindInteger(name, v)

	case coltype.Time:
		if s, ok := v.(string); ok {
			tod, err := time.Parse("15:04:05.999999999", s)
			if err != nil {
				return nil, encerr.TypeCheckDetail(name, v, "%v", err)
			}
			return tod.Sub(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)), nil
		}
		return bindInteger(name, v)

	case coltype.Duration:
		return bindDuration(name, v)

	case coltype.Float32, coltype.Double:
		n, ok := v.(json.Number)
		if !ok {
			return nil, encerr.TypeCheck(name, v)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		if t.Kind() == coltype.Float32 {
			if math.Abs(f) > math.MaxFloat32 {
				return nil, encerr.TypeCheckDetail(name, v, "%s is out of float range", n)
			}
			return float32(f), nil
		}
		return f, nil

	case coltype.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, encerr.TypeCheck(name, v)
		}
		return b, nil

	case coltype.Ascii, coltype.Text:
		s, ok := v.(string)
		if !ok {
			return nil, encerr.TypeCheck(name, v)
		}
		return s, nil

	case coltype.Blob:
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, "0x") {
			return nil, encerr.TypeCheckDetail(name, v, "blob must be a 0x-prefixed hex string")
		}
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		return b, nil

	case coltype.Timestamp:
		if s, ok := v.(string); ok {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, encerr.TypeCheckDetail(name, v, "%v", err)
			}
			return ts, nil
		}
		return bindInteger(name, v)

	case coltype.UUID, coltype.TimeUUID:
		s, ok := v.(string)
		if !ok {
			return nil, encerr.TypeCheck(name, v)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		return u, nil

	case coltype.Inet:
		s, ok := v.(string)
		if !ok {
			return nil, encerr.TypeCheck(name, v)
		}
		a, err := netip.ParseAddr(s)
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		return a, nil
	}
	return nil, encerr.SchemaType("unsupported native kind %s", name)
}

func bindDuration(name string, v any) (any, error) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return nil, encerr.TypeCheckDetail(name, v, "%v", err)
		}
		return d, nil
	case map[string]any:
		var d serialize.Duration
		for k, raw := range x {
			n, ok := raw.(json.Number)
			if !ok {
				return nil, encerr.Prefix(encerr.TypeCheck("integer", raw), k)
			}
			i, err := n.Int64()
			if err != nil {
				return nil, encerr.Prefix(encerr.Overflow(n.String(), name), k)
			}
			switch k {
			case "months", "days":
				if i < math.MinInt32 || i > math.MaxInt32 {
					return nil, encerr.Prefix(encerr.Overflow(n.String(), "int"), k)
				}
				if k == "months" {
					d.Months = int32(i)
				} else {
					d.Days = int32(i)
				}
			case "nanoseconds":
				d.Nanoseconds = i
			default:
				return nil, encerr.TypeCheckDetail(name, v, "unknown duration component %q", k)
			}
		}
		return d, nil
	}
	return nil, encerr.TypeCheck(name, v)
}

// bindInteger keeps the full precision of the number so range errors are
// reported by the serializer as overflow.
func bindInteger(name string, v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return nil, encerr.TypeCheck(name, v)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	b, ok := new(big.Int).SetString(n.String(), 10)
	if !ok {
		return nil, encerr.TypeCheckDetail(name, v, "%s is not an integer", n)
	}
	return b, nil
}
