// Package serialize maps column types to the serializers that encode values
// of that type into cells.
//
// SerializerFor is a pure function of the type: natives map to one scalar
// encoder per kind, composites are built recursively from their children.
// Every serializer checks the Go value against the exact declared type before
// writing any byte, and reports failures as *encerr.Error with the path of
// the failing element.
package serialize

import (
	"sync"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

// Serializer encodes non-null values of one column type.
type Serializer interface {
	// Serialize writes v, which must not be null, into w.
	Serialize(v any, w cell.CellWriter) error
	// Type is the column type this serializer was built for.
	Type() coltype.Type
}

// SerializerFor resolves the serializer for t, recursing into collection,
// tuple and UDT children.
func SerializerFor(t coltype.Type) (Serializer, error) {
	switch tt := t.(type) {
	case *coltype.Native:
		return nativeFor(tt)
	case *coltype.Collection:
		return collectionFor(tt)
	case *coltype.Vector:
		return vectorFor(tt)
	case *coltype.Tuple:
		elems := make([]Serializer, tt.Len())
		for i := range elems {
			s, err := SerializerFor(tt.Elem(i))
			if err != nil {
				return nil, err
			}
			elems[i] = s
		}
		return &tupleSerializer{typ: tt, elems: elems}, nil
	case *coltype.UDT:
		def := tt.Def()
		fields := make([]Serializer, def.NumFields())
		for i := range fields {
			s, err := SerializerFor(def.Field(i).Type)
			if err != nil {
				return nil, err
			}
			fields[i] = s
		}
		return &udtSerializer{typ: tt, fields: fields}, nil
	case nil:
		return nil, encerr.SchemaType("nil column type")
	}
	return nil, encerr.SchemaType("unsupported column type %T", t)
}

func collectionFor(c *coltype.Collection) (Serializer, error) {
	switch c.Shape() {
	case coltype.List, coltype.Set:
		elem, err := SerializerFor(c.Elem())
		if err != nil {
			return nil, err
		}
		return &sequenceSerializer{typ: c, elem: elem}, nil
	case coltype.Map:
		key, err := SerializerFor(c.Key())
		if err != nil {
			return nil, err
		}
		val, err := SerializerFor(c.Value())
		if err != nil {
			return nil, err
		}
		return &mapSerializer{typ: c, key: key, value: val}, nil
	}
	return nil, encerr.SchemaType("unknown collection shape %d", c.Shape())
}

// Write encodes v into w, writing a null cell when v is nil or a nil pointer.
func Write(s Serializer, v any, w cell.CellWriter) error {
	v, null := deref(v)
	if null {
		w.SetNull()
		return nil
	}
	return s.Serialize(v, w)
}

// Cache memoises SerializerFor per type value. Types are compared by
// identity, which matches how a prepared statement reuses its metadata.
type Cache struct {
	m sync.Map // coltype.Type -> Serializer
}

// Get returns the cached serializer for t, building it on first use.
func (c *Cache) Get(t coltype.Type) (Serializer, error) {
	if s, ok := c.m.Load(t); ok {
		return s.(Serializer), nil
	}
	s, err := SerializerFor(t)
	if err != nil {
		return nil, err
	}
	actual, _ := c.m.LoadOrStore(t, s)
	return actual.(Serializer), nil
}
