package serialize

import (
	"math"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

type nativeSerializer struct {
	typ *coltype.Native
}

func nativeFor(t *coltype.Native) (Serializer, error) {
	if _, ok := nativeNames[t.Kind()]; !ok {
		return nil, encerr.SchemaType("no serializer for native kind %d", t.Kind())
	}
	return &nativeSerializer{typ: t}, nil
}

// nativeNames lists the kinds handled by Serialize; one arm per kind.
var nativeNames = map[coltype.NativeKind]struct{}{
	coltype.Ascii: {}, coltype.Text: {}, coltype.Blob: {}, coltype.Boolean: {},
	coltype.TinyInt: {}, coltype.SmallInt: {}, coltype.Int32: {}, coltype.Int64: {},
	coltype.Counter: {}, coltype.Float32: {}, coltype.Double: {}, coltype.Timestamp: {},
	coltype.UUID: {}, coltype.TimeUUID: {}, coltype.Inet: {},
	coltype.Varint: {}, coltype.Decimal: {}, coltype.Date: {}, coltype.Time: {},
	coltype.Duration: {},
}

func (s *nativeSerializer) Type() coltype.Type { return s.typ }

func (s *nativeSerializer) Serialize(v any, w cell.CellWriter) error {
	var scratch [16]byte
	b := scratch[:0]
	name := s.typ.String()

	switch s.typ.Kind() {
	case coltype.Boolean:
		x, ok := asBool(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		if x {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}

	case coltype.TinyInt:
		x, err := asInteger(v, name, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		b = append(b, byte(int8(x)))

	case coltype.SmallInt:
		x, err := asInteger(v, name, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		b = bx.AppendI16BE(b, int16(x))

	case coltype.Int32:
		x, err := asInteger(v, name, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		b = bx.AppendI32BE(b, int32(x))

	case coltype.Int64, coltype.Counter:
		x, err := asInteger(v, name, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		b = bx.AppendI64BE(b, x)

	case coltype.Float32:
		x, ok := asFloat32(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		b = bx.AppendU32BE(b, math.Float32bits(x))

	case coltype.Double:
		x, ok := asFloat64(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		b = bx.AppendU64BE(b, math.Float64bits(x))

	case coltype.Timestamp:
		var ms int64
		if t, ok := v.(time.Time); ok {
			ms = t.UnixMilli()
		} else {
			x, err := asInteger(v, name, math.MinInt64, math.MaxInt64)
			if err != nil {
				return err
			}
			ms = x
		}
		b = bx.AppendI64BE(b, ms)

	case coltype.UUID, coltype.TimeUUID:
		u, ok := asUUID(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		if s.typ.Kind() == coltype.TimeUUID && u.Version() != 1 {
			return encerr.TypeCheckDetail(name, v, "uuid version %d is not a time uuid", u.Version())
		}
		b = append(b, u[:]...)

	case coltype.Inet:
		ip, ok := asInet(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		b = append(b, ip...)

	case coltype.Date:
		var err error
		if b, err = appendDate(b, v, name); err != nil {
			return err
		}

	case coltype.Time:
		var err error
		if b, err = appendTime(b, v, name); err != nil {
			return err
		}

	case coltype.Duration:
		var err error
		if b, err = appendDuration(b, v, name); err != nil {
			return err
		}

	case coltype.Varint:
		x, err := asBigInt(v, name)
		if err != nil {
			return err
		}
		return w.SetValue(appendVarint(b, x))

	case coltype.Decimal:
		out, err := appendDecimal(b, v, name)
		if err != nil {
			return err
		}
		return w.SetValue(out)

	case coltype.Ascii:
		str, ok := asString(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		for i := 0; i < len(str); i++ {
			if str[i] >= utf8.RuneSelf {
				return encerr.TypeCheckDetail(name, v, "non-ascii byte 0x%02x at offset %d", str[i], i)
			}
		}
		return w.SetValue([]byte(str))

	case coltype.Text:
		str, ok := asString(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		if !utf8.ValidString(str) {
			return encerr.TypeCheckDetail(name, v, "invalid utf-8")
		}
		return w.SetValue([]byte(str))

	case coltype.Blob:
		raw, ok := asBytes(v)
		if !ok {
			return encerr.TypeCheck(name, v)
		}
		return w.SetValue(raw)

	default:
		return encerr.SchemaType("no serializer for native kind %d", s.typ.Kind())
	}

	return w.SetValue(b)
}

// asInteger accepts every Go integer type (named ones too) and *big.Int,
// and range-checks against [lo, hi].
func asInteger(v any, target string, lo, hi int64) (int64, error) {
	var (
		x        int64
		overflow bool
	)
	switch n := v.(type) {
	case int:
		x = int64(n)
	case int8:
		x = int64(n)
	case int16:
		x = int64(n)
	case int32:
		x = int64(n)
	case int64:
		x = n
	case uint8:
		x = int64(n)
	case uint16:
		x = int64(n)
	case uint32:
		x = int64(n)
	case uint:
		x, overflow = fromUint(uint64(n))
	case uint64:
		x, overflow = fromUint(n)
	case *big.Int:
		if !n.IsInt64() {
			return 0, encerr.Overflow(n.String(), target)
		}
		x = n.Int64()
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			x = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			x, overflow = fromUint(rv.Uint())
		default:
			return 0, encerr.TypeCheck(target, v)
		}
	}
	if overflow || x < lo || x > hi {
		return 0, encerr.Overflow(v, target)
	}
	return x, nil
}

func fromUint(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, true
	}
	return int64(u), false
}

func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func asFloat32(v any) (float32, bool) {
	if f, ok := v.(float32); ok {
		return f, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 {
		return float32(rv.Float()), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		return rv.Float(), true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}

func asUUID(v any) (uuid.UUID, bool) {
	switch u := v.(type) {
	case uuid.UUID:
		return u, true
	case [16]byte:
		return uuid.UUID(u), true
	}
	return uuid.UUID{}, false
}

func asInet(v any) ([]byte, bool) {
	switch ip := v.(type) {
	case net.IP:
		if v4 := ip.To4(); v4 != nil {
			return v4, true
		}
		if len(ip) == net.IPv6len {
			return ip, true
		}
	case netip.Addr:
		if !ip.IsValid() {
			return nil, false
		}
		if ip.Is4() {
			a := ip.As4()
			return a[:], true
		}
		a := ip.As16()
		return a[:], true
	}
	return nil, false
}
