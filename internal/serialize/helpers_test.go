package serialize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
)

// encode serializes v as a single cell and returns the raw cell bytes.
func encode(t *testing.T, typ coltype.Type, v any) ([]byte, error) {
	t.Helper()
	s, err := SerializerFor(typ)
	require.NoError(t, err)

	rw := cell.NewRowWriter(0)
	if err := Write(s, v, rw.MakeCellWriter()); err != nil {
		return nil, err
	}
	return rw.Bytes(), nil
}

func mustEncode(t *testing.T, typ coltype.Type, v any) []byte {
	t.Helper()
	out, err := encode(t, typ, v)
	require.NoError(t, err)
	return out
}

// splitCell reads one cell from b. body is nil for a null cell.
func splitCell(t *testing.T, b []byte) (body []byte, rest []byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(b), 4, "short cell header")
	n := bx.I32BE(b[:4])
	if n == cell.NullLength {
		return nil, b[4:]
	}
	require.GreaterOrEqual(t, int(n), 0)
	require.GreaterOrEqual(t, len(b)-4, int(n), "short cell body")
	return b[4 : 4+n], b[4+n:]
}

// body returns the payload of a single, non-null cell and checks nothing
// follows it.
func body(t *testing.T, b []byte) []byte {
	t.Helper()
	p, rest := splitCell(t, b)
	require.NotNil(t, p, "unexpected null")
	require.Empty(t, rest)
	return p
}

// elements decodes a list/set/map body into its count and element cells.
func elements(t *testing.T, p []byte) (int32, [][]byte) {
	t.Helper()
	count := bx.I32BE(p[:4])
	rest := p[4:]
	var out [][]byte
	for len(rest) > 0 {
		var c []byte
		c, rest = splitCell(t, rest)
		out = append(out, c)
	}
	return count, out
}

// cells decodes a tuple/UDT body into its element cells.
func cells(t *testing.T, p []byte) [][]byte {
	t.Helper()
	var out [][]byte
	for len(p) > 0 {
		var c []byte
		c, p = splitCell(t, p)
		out = append(out, c)
	}
	return out
}

func decodeInt32(p []byte) int32     { return bx.I32BE(p) }
func decodeInt64(p []byte) int64     { return bx.I64BE(p) }
func decodeFloat64(p []byte) float64 { return math.Float64frombits(bx.U64BE(p)) }
func decodeFloat32(p []byte) float32 { return math.Float32frombits(bx.U32BE(p)) }

func native(k coltype.NativeKind) *coltype.Native { return coltype.Must(coltype.NewNative(k)) }
