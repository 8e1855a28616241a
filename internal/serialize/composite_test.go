package serialize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

func listOf(elem coltype.Type, frozen bool) *coltype.Collection {
	return coltype.Must(coltype.NewList(elem, frozen))
}

func addressType(t *testing.T) *coltype.UDT {
	t.Helper()
	def, err := coltype.NewUDTDef("shop", "address",
		coltype.Field{Name: "street", Type: native(coltype.Text)},
		coltype.Field{Name: "city", Type: native(coltype.Text)},
		coltype.Field{Name: "zip_code", Type: native(coltype.Int32)},
	)
	require.NoError(t, err)
	return coltype.Must(coltype.NewUDT(def, true))
}

type point struct{ x, y int32 }

func (p point) ToSlice() []any { return []any{p.x, p.y} }

type addressRecord struct{ street string }

func (a *addressRecord) ToMap() map[string]any { return map[string]any{"street": a.street} }

func TestList_NestedFrozenLists(t *testing.T) {
	typ := listOf(listOf(native(coltype.Int32), true), false)

	p := body(t, mustEncode(t, typ, [][]int32{{1, 2, 3}, {}, {4}}))

	count, outer := elements(t, p)
	require.Equal(t, int32(3), count)
	require.Len(t, outer, 3)

	wantInner := [][]int32{{1, 2, 3}, {}, {4}}
	for i, c := range outer {
		n, inner := elements(t, c)
		assert.Equal(t, int32(len(wantInner[i])), n, "inner count %d", i)
		got := make([]int32, 0, len(inner))
		for _, e := range inner {
			got = append(got, decodeInt32(e))
		}
		assert.Equal(t, wantInner[i], got)
	}
}

func TestList_AnySliceAndNullElements(t *testing.T) {
	typ := listOf(native(coltype.Text), false)

	p := body(t, mustEncode(t, typ, []any{"a", nil, "c"}))
	count, elems := elements(t, p)
	assert.Equal(t, int32(3), count)
	assert.Equal(t, []byte("a"), elems[0])
	assert.Nil(t, elems[1])
	assert.Equal(t, []byte("c"), elems[2])

	p = body(t, mustEncode(t, typ, []string{}))
	assert.Equal(t, []byte{0, 0, 0, 0}, p)
}

func TestList_ElementErrorsCarryIndex(t *testing.T) {
	typ := listOf(listOf(native(coltype.Int32), true), false)

	_, err := encode(t, typ, []any{[]any{1}, []any{2, "bad"}})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)

	var e *encerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"[1]", "[1]"}, e.Path)
	assert.Equal(t, "int", e.Expected)
}

func TestList_RejectsNonSequence(t *testing.T) {
	typ := listOf(native(coltype.Int32), false)
	for _, v := range []any{"123", 5, map[string]any{"a": 1}, map[int]bool{1: true}} {
		_, err := encode(t, typ, v)
		require.ErrorIs(t, err, encerr.ErrTypeCheck, "%T", v)
	}
}

func TestList_TooManyElements(t *testing.T) {
	typ := listOf(native(coltype.Int32), false)
	// zero-size elements: the count is checked before any element is read
	huge := make([]struct{}, 1<<31)

	_, err := encode(t, typ, huge)
	require.ErrorIs(t, err, encerr.ErrTooManyElements)
}

func TestSet_AcceptsSliceAndMapKeys(t *testing.T) {
	typ := coltype.Must(coltype.NewSet(native(coltype.Int32), true))

	// no deduplication
	p := body(t, mustEncode(t, typ, []int32{1, 1}))
	count, _ := elements(t, p)
	assert.Equal(t, int32(2), count)

	p = body(t, mustEncode(t, typ, map[int32]struct{}{3: {}, 1: {}, 2: {}}))
	count, elems := elements(t, p)
	require.Equal(t, int32(3), count)
	assert.Equal(t, []int32{1, 2, 3}, []int32{decodeInt32(elems[0]), decodeInt32(elems[1]), decodeInt32(elems[2])})

	p = body(t, mustEncode(t, typ, map[int]bool{7: true, 8: false}))
	count, elems = elements(t, p)
	require.Equal(t, int32(1), count)
	assert.Equal(t, int32(7), decodeInt32(elems[0]))
}

func TestMap_EntriesAndDeterministicOrder(t *testing.T) {
	typ := coltype.Must(coltype.NewMap(native(coltype.Text), native(coltype.Int32), false))

	p := body(t, mustEncode(t, typ, MapEntries{{Key: "z", Value: 1}, {Key: "a", Value: nil}}))
	count, elems := elements(t, p)
	require.Equal(t, int32(2), count)
	require.Len(t, elems, 4)
	assert.Equal(t, []byte("z"), elems[0])
	assert.Equal(t, int32(1), decodeInt32(elems[1]))
	assert.Equal(t, []byte("a"), elems[2])
	assert.Nil(t, elems[3])

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first := mustEncode(t, typ, m)
	for range 10 {
		assert.Equal(t, first, mustEncode(t, typ, m))
	}
	_, elems = elements(t, body(t, first))
	assert.Equal(t, []byte("a"), elems[0])
	assert.Equal(t, []byte("c"), elems[4])
}

func TestMap_NaNKeys(t *testing.T) {
	typ := coltype.Must(coltype.NewMap(native(coltype.Double), native(coltype.Int32), false))

	m := map[float64]int32{math.NaN(): 1, 2.5: 2}
	p := body(t, mustEncode(t, typ, m))
	count, elems := elements(t, p)
	require.Equal(t, int32(2), count)
	assert.True(t, math.IsNaN(decodeFloat64(elems[0])), "NaN sorts first")
	assert.Equal(t, int32(1), decodeInt32(elems[1]))
	assert.Equal(t, 2.5, decodeFloat64(elems[2]))

	two := map[float64]int32{math.NaN(): 1, math.NaN(): 2}
	first := mustEncode(t, typ, two)
	for range 10 {
		assert.Equal(t, first, mustEncode(t, typ, two))
	}

	set := coltype.Must(coltype.NewSet(native(coltype.Double), false))
	p = body(t, mustEncode(t, set, map[float64]bool{math.NaN(): true, 1: false}))
	count, elems = elements(t, p)
	require.Equal(t, int32(1), count)
	assert.True(t, math.IsNaN(decodeFloat64(elems[0])))

	p = body(t, mustEncode(t, set, map[float64]struct{}{math.NaN(): {}, -1: {}}))
	count, _ = elements(t, p)
	assert.Equal(t, int32(2), count)
}

func TestMap_Errors(t *testing.T) {
	typ := coltype.Must(coltype.NewMap(native(coltype.Text), native(coltype.Int32), false))

	_, err := encode(t, typ, []any{"a", 1})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)

	_, err = encode(t, typ, MapEntries{{Key: nil, Value: 1}})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)

	_, err = encode(t, typ, map[string]any{"ok": 1, "bad": "x"})
	var e *encerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"[0]", "value"}, e.Path)
}

func TestTuple(t *testing.T) {
	typ := coltype.Must(coltype.NewTuple(native(coltype.Int32), native(coltype.Text), native(coltype.Boolean)))

	got := cells(t, body(t, mustEncode(t, typ, []any{int32(7), nil, true})))
	require.Len(t, got, 3)
	assert.Equal(t, int32(7), decodeInt32(got[0]))
	assert.Nil(t, got[1])
	assert.Equal(t, []byte{1}, got[2])

	pt := coltype.Must(coltype.NewTuple(native(coltype.Int32), native(coltype.Int32)))
	got = cells(t, body(t, mustEncode(t, pt, point{x: 1, y: 2})))
	assert.Equal(t, int32(2), decodeInt32(got[1]))

	_, err := encode(t, typ, []any{int32(7), "x"})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)
	assert.Contains(t, err.Error(), "tuple has 2 elements, want 3")

	_, err = encode(t, typ, []any{"x", "y", true})
	var e *encerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"[0]"}, e.Path)
}

func TestUDT_MissingFieldsAreNull(t *testing.T) {
	typ := addressType(t)

	got := cells(t, body(t, mustEncode(t, typ, map[string]any{"street": "A"})))
	require.Len(t, got, 3)
	assert.Equal(t, []byte("A"), got[0])
	assert.Nil(t, got[1])
	assert.Nil(t, got[2])
}

func TestUDT_DeclarationOrder(t *testing.T) {
	typ := addressType(t)

	v := map[string]any{"zip_code": int32(12345), "city": "Hue", "street": "Le Loi"}
	got := cells(t, body(t, mustEncode(t, typ, v)))
	require.Len(t, got, 3)
	assert.Equal(t, []byte("Le Loi"), got[0])
	assert.Equal(t, []byte("Hue"), got[1])
	assert.Equal(t, int32(12345), decodeInt32(got[2]))
}

func TestUDT_RecordAdapters(t *testing.T) {
	typ := addressType(t)

	got := cells(t, body(t, mustEncode(t, typ, &addressRecord{street: "B"})))
	assert.Equal(t, []byte("B"), got[0])
	assert.Nil(t, got[2])

	got = cells(t, body(t, mustEncode(t, typ, map[string]string{"city": "Hanoi"})))
	assert.Nil(t, got[0])
	assert.Equal(t, []byte("Hanoi"), got[1])
}

func TestUDT_Errors(t *testing.T) {
	typ := addressType(t)

	_, err := encode(t, typ, map[string]any{"street": "A", "country": "VN"})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)
	assert.Contains(t, err.Error(), `unknown field "country"`)

	_, err = encode(t, typ, map[string]any{"zip_code": "70000"})
	var e *encerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"zip_code"}, e.Path)

	_, err = encode(t, typ, []any{"A", "B", 1})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)
}

func TestNull_AllTypeFamilies(t *testing.T) {
	types := []coltype.Type{
		native(coltype.Int32),
		listOf(native(coltype.Int32), false),
		coltype.Must(coltype.NewMap(native(coltype.Text), native(coltype.Text), true)),
		coltype.Must(coltype.NewTuple(native(coltype.Int32))),
		addressType(t),
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, mustEncode(t, typ, nil))
		})
	}
}

func TestSerializerFor_TypeAndCache(t *testing.T) {
	typ := listOf(native(coltype.Int64), false)

	s, err := SerializerFor(typ)
	require.NoError(t, err)
	assert.Same(t, typ, s.Type())

	_, err = SerializerFor(nil)
	require.ErrorIs(t, err, encerr.ErrSchemaType)

	var c Cache
	s1, err := c.Get(typ)
	require.NoError(t, err)
	s2, err := c.Get(typ)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestVector_FixedElements(t *testing.T) {
	typ := coltype.Must(coltype.NewVector(native(coltype.Float32), 3))

	p := body(t, mustEncode(t, typ, []float32{1, 2, 3}))
	require.Len(t, p, 12, "no count and no element lengths")
	assert.Equal(t, float32(1), decodeFloat32(p[0:4]))
	assert.Equal(t, float32(3), decodeFloat32(p[8:12]))

	_, err := encode(t, typ, []float32{1, 2})
	require.ErrorIs(t, err, encerr.ErrTypeCheck)

	_, err = encode(t, typ, []any{float32(1), nil, float32(3)})
	var e *encerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, encerr.KindTypeCheck, e.Kind)
	assert.Equal(t, "[1]", e.Location())

	_, err = encode(t, typ, []any{float32(1), 2.0, float32(3)})
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "[1]", e.Location())
}

func TestVector_VariableElements(t *testing.T) {
	typ := coltype.Must(coltype.NewVector(native(coltype.Text), 2))

	p := body(t, mustEncode(t, typ, []string{"ab", ""}))
	assert.Equal(t, []byte{2, 'a', 'b', 0}, p)

	nested := coltype.Must(coltype.NewVector(listOf(native(coltype.Int32), true), 1))
	p = body(t, mustEncode(t, nested, [][]int32{{5}}))
	// uvint(12) + count 1 + cell len 4 + value 5
	assert.Equal(t, []byte{12, 0, 0, 0, 1, 0, 0, 0, 4, 0, 0, 0, 5}, p)

	p, rest := splitCell(t, mustEncode(t, typ, nil))
	assert.Nil(t, p, "a null vector is a null cell")
	assert.Empty(t, rest)
}
