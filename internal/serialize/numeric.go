package serialize

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/encerr"
)

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

// asBigInt accepts *big.Int and every Go integer type.
func asBigInt(v any, name string) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	}
	x, err := asInteger(v, name, math.MinInt64, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	return big.NewInt(x), nil
}

// appendVarint writes x as minimal big-endian two's complement.
func appendVarint(b []byte, x *big.Int) []byte {
	switch x.Sign() {
	case 0:
		return append(b, 0)
	case 1:
		mag := x.Bytes()
		if mag[0]&0x80 != 0 {
			b = append(b, 0)
		}
		return append(b, mag...)
	}
	// -x-1 inverted bytewise is the two's complement of x
	mag := new(big.Int).Neg(x)
	mag.Sub(mag, bigOne)
	raw := mag.Bytes()
	if len(raw) == 0 || raw[0]&0x80 != 0 {
		b = append(b, 0xff)
	}
	for _, c := range raw {
		b = append(b, ^c)
	}
	return b
}

// appendDecimal writes the int32 scale followed by the unscaled varint.
func appendDecimal(b []byte, v any, name string) ([]byte, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return nil, encerr.TypeCheck(name, v)
	}
	unscaled := d.Coefficient()
	exp := d.Exponent()
	if exp > 0 {
		unscaled.Mul(unscaled, new(big.Int).Exp(bigTen, big.NewInt(int64(exp)), nil))
		exp = 0
	}
	if exp == math.MinInt32 {
		return nil, encerr.Overflow(v, name)
	}
	b = bx.AppendI32BE(b, -exp)
	return appendVarint(b, unscaled), nil
}
