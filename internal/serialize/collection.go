package serialize

import (
	"math"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

// MaxElements is the largest count the 32-bit element-count field holds.
const MaxElements = math.MaxInt32

// sequenceSerializer writes list and set values: an int32 count followed by
// one cell per element. Sets are not deduplicated.
type sequenceSerializer struct {
	typ  *coltype.Collection
	elem Serializer
}

func (s *sequenceSerializer) Type() coltype.Type { return s.typ }

func (s *sequenceSerializer) Serialize(v any, w cell.CellWriter) error {
	seq, ok := sequenceOf(v, s.typ.Shape() == coltype.Set)
	if !ok {
		return encerr.TypeCheck(s.typ.String(), v)
	}
	if seq.n > MaxElements {
		return encerr.TooManyElements(seq.n, MaxElements)
	}

	vb := w.IntoValueBuilder()
	vb.AppendInt32(int32(seq.n))
	for i := 0; i < seq.n; i++ {
		if err := Write(s.elem, seq.at(i), vb.MakeSubWriter()); err != nil {
			return encerr.Prefix(err, encerr.Index(i))
		}
	}
	return vb.Finish()
}

// mapSerializer writes an int32 pair count followed by interleaved key and
// value cells.
type mapSerializer struct {
	typ   *coltype.Collection
	key   Serializer
	value Serializer
}

func (s *mapSerializer) Type() coltype.Type { return s.typ }

func (s *mapSerializer) Serialize(v any, w cell.CellWriter) error {
	entries, ok := entriesOf(v)
	if !ok {
		return encerr.TypeCheck(s.typ.String(), v)
	}
	if len(entries) > MaxElements {
		return encerr.TooManyElements(len(entries), MaxElements)
	}

	vb := w.IntoValueBuilder()
	vb.AppendInt32(int32(len(entries)))
	for i, e := range entries {
		if _, null := deref(e.Key); null {
			err := encerr.TypeCheckDetail(s.typ.Key().String(), e.Key, "map key cannot be null")
			return encerr.Prefix(encerr.Prefix(err, "key"), encerr.Index(i))
		}
		if err := Write(s.key, e.Key, vb.MakeSubWriter()); err != nil {
			return encerr.Prefix(encerr.Prefix(err, "key"), encerr.Index(i))
		}
		if err := Write(s.value, e.Value, vb.MakeSubWriter()); err != nil {
			return encerr.Prefix(encerr.Prefix(err, "value"), encerr.Index(i))
		}
	}
	return vb.Finish()
}
