package serialize

import (
	"math"
	"time"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/encerr"
)

// Duration is a calendar duration. All non-zero components must share a
// sign.
type Duration struct {
	Months      int32
	Days        int32
	Nanoseconds int64
}

const (
	dateEpochBias = 1 << 31
	nanosPerDay   = int64(24 * time.Hour)
)

// appendDate writes a time.Time (its calendar date) or an integer day count
// relative to 1970-01-01.
func appendDate(b []byte, v any, name string) ([]byte, error) {
	var days int64
	if t, ok := v.(time.Time); ok {
		y, m, d := t.Date()
		days = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
		if days < math.MinInt32 || days > math.MaxInt32 {
			return nil, encerr.Overflow(v, name)
		}
	} else {
		x, err := asInteger(v, name, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		days = x
	}
	return bx.AppendU32BE(b, uint32(days+dateEpochBias)), nil
}

// appendTime writes the time of day as nanoseconds since midnight, taken
// from a time.Duration, the wall clock of a time.Time, or an integer.
func appendTime(b []byte, v any, name string) ([]byte, error) {
	var ns int64
	switch t := v.(type) {
	case time.Duration:
		ns = int64(t)
	case time.Time:
		h, m, s := t.Clock()
		ns = int64(h)*int64(time.Hour) + int64(m)*int64(time.Minute) +
			int64(s)*int64(time.Second) + int64(t.Nanosecond())
	default:
		x, err := asInteger(v, name, math.MinInt64, math.MaxInt64)
		if err != nil {
			return nil, err
		}
		ns = x
	}
	if ns < 0 || ns >= nanosPerDay {
		return nil, encerr.Overflow(v, name)
	}
	return bx.AppendI64BE(b, ns), nil
}

// appendDuration writes months, days and nanoseconds as signed vints.
func appendDuration(b []byte, v any, name string) ([]byte, error) {
	var d Duration
	switch x := v.(type) {
	case Duration:
		d = x
	case time.Duration:
		d = Duration{Nanoseconds: int64(x)}
	default:
		return nil, encerr.TypeCheck(name, v)
	}
	if !sameSign(int64(d.Months), int64(d.Days), d.Nanoseconds) {
		return nil, encerr.TypeCheckDetail(name, v, "months, days and nanoseconds must share a sign")
	}
	b = bx.AppendVint(b, int64(d.Months))
	b = bx.AppendVint(b, int64(d.Days))
	return bx.AppendVint(b, d.Nanoseconds), nil
}

func sameSign(xs ...int64) bool {
	var pos, neg bool
	for _, x := range xs {
		pos = pos || x > 0
		neg = neg || x < 0
	}
	return !(pos && neg)
}
