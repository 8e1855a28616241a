package serialize

import (
	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

// vectorSerializer writes exactly Dimensions elements with no count.
// Fixed-size elements are concatenated bare; variable-size ones carry an
// unsigned vint length instead of the int32 cell length. Null elements are
// rejected.
type vectorSerializer struct {
	typ   *coltype.Vector
	elem  Serializer
	fixed int // element byte size, 0 when variable
}

func vectorFor(t *coltype.Vector) (Serializer, error) {
	elem, err := SerializerFor(t.Elem())
	if err != nil {
		return nil, err
	}
	return &vectorSerializer{typ: t, elem: elem, fixed: fixedSize(t.Elem())}, nil
}

func (s *vectorSerializer) Type() coltype.Type { return s.typ }

func (s *vectorSerializer) Serialize(v any, w cell.CellWriter) error {
	seq, ok := sequenceOf(v, false)
	if !ok {
		return encerr.TypeCheck(s.typ.String(), v)
	}
	if seq.n != s.typ.Dimensions() {
		return encerr.TypeCheckDetail(s.typ.String(), v, "vector has %d elements, want %d", seq.n, s.typ.Dimensions())
	}

	scratch := cell.NewRowWriter(16)
	vb := w.IntoValueBuilder()
	for i := 0; i < seq.n; i++ {
		x := seq.at(i)
		if _, null := deref(x); null {
			err := encerr.TypeCheckDetail(s.typ.Elem().String(), x, "vector element cannot be null")
			return encerr.Prefix(err, encerr.Index(i))
		}

		scratch.Reset()
		if err := Write(s.elem, x, scratch.MakeCellWriter()); err != nil {
			return encerr.Prefix(err, encerr.Index(i))
		}
		body := scratch.Bytes()[4:]
		if s.fixed == 0 {
			vb.AppendUvint(uint64(bx.I32BE(scratch.Bytes())))
		}
		vb.AppendBytes(body)
	}
	return vb.Finish()
}

// fixedSize is the encoded size of types whose values always take the same
// number of bytes, or 0.
func fixedSize(t coltype.Type) int {
	n, ok := t.(*coltype.Native)
	if !ok {
		return 0
	}
	switch n.Kind() {
	case coltype.Boolean, coltype.TinyInt:
		return 1
	case coltype.SmallInt:
		return 2
	case coltype.Int32, coltype.Float32, coltype.Date:
		return 4
	case coltype.Int64, coltype.Counter, coltype.Double, coltype.Timestamp, coltype.Time:
		return 8
	case coltype.UUID, coltype.TimeUUID:
		return 16
	}
	return 0
}
