package serialize

import (
	"sort"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

// tupleSerializer writes one cell per element in declared order, with no
// count prefix. The value must have exactly the declared arity.
type tupleSerializer struct {
	typ   *coltype.Tuple
	elems []Serializer
}

func (s *tupleSerializer) Type() coltype.Type { return s.typ }

func (s *tupleSerializer) Serialize(v any, w cell.CellWriter) error {
	seq, ok := sequenceOf(v, false)
	if !ok {
		return encerr.TypeCheck(s.typ.String(), v)
	}
	if seq.n != len(s.elems) {
		return encerr.TypeCheckDetail(s.typ.String(), v, "tuple has %d elements, want %d", seq.n, len(s.elems))
	}

	vb := w.IntoValueBuilder()
	for i, es := range s.elems {
		if err := Write(es, seq.at(i), vb.MakeSubWriter()); err != nil {
			return encerr.Prefix(err, encerr.Index(i))
		}
	}
	return vb.Finish()
}

// udtSerializer writes one cell per declared field, in schema order. A field
// absent from the value is written as null.
type udtSerializer struct {
	typ    *coltype.UDT
	fields []Serializer
}

func (s *udtSerializer) Type() coltype.Type { return s.typ }

func (s *udtSerializer) Serialize(v any, w cell.CellWriter) error {
	f, ok := fieldsOf(v)
	if !ok {
		return encerr.TypeCheck(s.typ.String(), v)
	}
	def := s.typ.Def()
	if err := s.rejectUnknown(f, v); err != nil {
		return err
	}

	vb := w.IntoValueBuilder()
	for i, fs := range s.fields {
		name := def.Field(i).Name
		x, present := f.get(name)
		if !present {
			vb.MakeSubWriter().SetNull()
			continue
		}
		if err := Write(fs, x, vb.MakeSubWriter()); err != nil {
			return encerr.Prefix(err, name)
		}
	}
	return vb.Finish()
}

func (s *udtSerializer) rejectUnknown(f fields, v any) error {
	if f.names == nil {
		return nil
	}
	names := f.names()
	sort.Strings(names)
	for _, n := range names {
		if _, ok := s.typ.Def().FieldIndex(n); !ok {
			err := encerr.TypeCheckDetail(s.typ.String(), v, "unknown field %q", n)
			return encerr.Prefix(err, n)
		}
	}
	return nil
}
