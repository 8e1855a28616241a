// Package coltype models the declared type of a column as read from schema
// metadata: native scalars, collections, tuples and user-defined types.
//
// Values are immutable once built. Constructors validate their children and
// return an encerr.ErrSchemaType error on malformed metadata.
package coltype

import (
	"strconv"
	"strings"

	"github.com/tuannm99/novarow/internal/encerr"
)

// Type is a closed set: *Native, *Collection, *Vector, *Tuple and *UDT.
type Type interface {
	// String renders the type in protocol syntax, e.g. "frozen<list<int>>".
	String() string
	isType()
}

// NativeKind enumerates the scalar kinds.
type NativeKind uint8

const (
	Ascii NativeKind = iota + 1
	Text             // UTF-8
	Blob
	Boolean
	TinyInt
	SmallInt
	Int32
	Int64
	Counter
	Float32
	Double
	Timestamp
	UUID
	TimeUUID
	Inet
	Varint   // arbitrary precision integer
	Decimal  // int32 scale + varint unscaled value
	Date     // days since epoch, biased by 2^31
	Time     // nanoseconds since midnight
	Duration // months, days, nanoseconds
)

var nativeNames = map[NativeKind]string{
	Ascii:     "ascii",
	Text:      "text",
	Blob:      "blob",
	Boolean:   "boolean",
	TinyInt:   "tinyint",
	SmallInt:  "smallint",
	Int32:     "int",
	Int64:     "bigint",
	Counter:   "counter",
	Float32:   "float",
	Double:    "double",
	Timestamp: "timestamp",
	UUID:      "uuid",
	TimeUUID:  "timeuuid",
	Inet:      "inet",
	Varint:    "varint",
	Decimal:   "decimal",
	Date:      "date",
	Time:      "time",
	Duration:  "duration",
}

func (k NativeKind) String() string {
	if n, ok := nativeNames[k]; ok {
		return n
	}
	return "native(?)"
}

// Native is a leaf scalar type.
type Native struct {
	kind NativeKind
}

func (*Native) isType() {}

func (n *Native) Kind() NativeKind { return n.kind }
func (n *Native) String() string   { return n.kind.String() }

// natives are shared; a Native carries no other state.
var natives = func() map[NativeKind]*Native {
	m := make(map[NativeKind]*Native, len(nativeNames))
	for k := range nativeNames {
		m[k] = &Native{kind: k}
	}
	return m
}()

// NewNative returns the native type for kind.
func NewNative(kind NativeKind) (*Native, error) {
	n, ok := natives[kind]
	if !ok {
		return nil, encerr.SchemaType("unknown native kind %d", kind)
	}
	return n, nil
}

// Shape is the collection flavour.
type Shape uint8

const (
	List Shape = iota + 1
	Set
	Map
)

func (s Shape) String() string {
	switch s {
	case List:
		return "list"
	case Set:
		return "set"
	case Map:
		return "map"
	}
	return "collection(?)"
}

// Collection is a list, set or map. Elem is the element of a list or set;
// Key and Value are set for maps only.
type Collection struct {
	frozen bool
	shape  Shape
	elem   Type
	key    Type
	value  Type
}

func (*Collection) isType() {}

func (c *Collection) Frozen() bool { return c.frozen }
func (c *Collection) Shape() Shape { return c.shape }
func (c *Collection) Elem() Type   { return c.elem }
func (c *Collection) Key() Type    { return c.key }
func (c *Collection) Value() Type  { return c.value }

func (c *Collection) String() string {
	var inner string
	if c.shape == Map {
		inner = "map<" + c.key.String() + ", " + c.value.String() + ">"
	} else {
		inner = c.shape.String() + "<" + c.elem.String() + ">"
	}
	return frozenWrap(c.frozen, inner)
}

func NewList(elem Type, frozen bool) (*Collection, error) {
	if isNil(elem) {
		return nil, encerr.SchemaType("list is missing its element type")
	}
	return &Collection{frozen: frozen, shape: List, elem: elem}, nil
}

func NewSet(elem Type, frozen bool) (*Collection, error) {
	if isNil(elem) {
		return nil, encerr.SchemaType("set is missing its element type")
	}
	return &Collection{frozen: frozen, shape: Set, elem: elem}, nil
}

func NewMap(key, value Type, frozen bool) (*Collection, error) {
	if isNil(key) || isNil(value) {
		return nil, encerr.SchemaType("map is missing its key or value type")
	}
	return &Collection{frozen: frozen, shape: Map, key: key, value: value}, nil
}

// Vector is a fixed-length array of non-null elements of one type.
type Vector struct {
	elem Type
	dims int
}

func (*Vector) isType() {}

func (v *Vector) Elem() Type      { return v.elem }
func (v *Vector) Dimensions() int { return v.dims }

func (v *Vector) String() string {
	return "vector<" + v.elem.String() + ", " + strconv.Itoa(v.dims) + ">"
}

func NewVector(elem Type, dims int) (*Vector, error) {
	if isNil(elem) {
		return nil, encerr.SchemaType("vector is missing its element type")
	}
	if dims <= 0 {
		return nil, encerr.SchemaType("vector dimension %d must be positive", dims)
	}
	return &Vector{elem: elem, dims: dims}, nil
}

// Tuple is a fixed-arity positional composite.
type Tuple struct {
	elems []Type
}

func (*Tuple) isType() {}

// Elems returns a copy of the element types in declared order.
func (t *Tuple) Elems() []Type { return append([]Type(nil), t.elems...) }

// Len is the declared arity.
func (t *Tuple) Len() int { return len(t.elems) }

// Elem returns the i-th element type.
func (t *Tuple) Elem(i int) Type { return t.elems[i] }

func (t *Tuple) String() string {
	parts := make([]string, len(t.elems))
	for i, e := range t.elems {
		parts[i] = e.String()
	}
	return "tuple<" + strings.Join(parts, ", ") + ">"
}

func NewTuple(elems ...Type) (*Tuple, error) {
	if len(elems) == 0 {
		return nil, encerr.SchemaType("tuple has no elements")
	}
	for i, e := range elems {
		if isNil(e) {
			return nil, encerr.SchemaType("tuple element %d has no type", i)
		}
	}
	return &Tuple{elems: append([]Type(nil), elems...)}, nil
}

// Field is one named, typed UDT field.
type Field struct {
	Name string
	Type Type
}

// UDTDef is the schema-registered definition of a user-defined type.
type UDTDef struct {
	name     string
	keyspace string
	fields   []Field
	index    map[string]int
}

// NewUDTDef validates fields and keeps their declaration order, which is the
// wire order.
func NewUDTDef(keyspace, name string, fields ...Field) (*UDTDef, error) {
	if name == "" {
		return nil, encerr.SchemaType("user type has no name")
	}
	if len(fields) == 0 {
		return nil, encerr.SchemaType("user type %q has no fields", name)
	}
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, encerr.SchemaType("user type %q: field %d has no name", name, i)
		}
		if isNil(f.Type) {
			return nil, encerr.SchemaType("user type %q: field %q has no type", name, f.Name)
		}
		if _, dup := idx[f.Name]; dup {
			return nil, encerr.SchemaType("user type %q: duplicate field %q", name, f.Name)
		}
		idx[f.Name] = i
	}
	return &UDTDef{
		name:     name,
		keyspace: keyspace,
		fields:   append([]Field(nil), fields...),
		index:    idx,
	}, nil
}

func (d *UDTDef) Name() string     { return d.name }
func (d *UDTDef) Keyspace() string { return d.keyspace }
func (d *UDTDef) NumFields() int   { return len(d.fields) }
func (d *UDTDef) Field(i int) Field {
	return d.fields[i]
}

// Fields returns a copy of the fields in declaration order.
func (d *UDTDef) Fields() []Field { return append([]Field(nil), d.fields...) }

// FieldIndex returns the position of the named field.
func (d *UDTDef) FieldIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// UDT is a reference to a user-defined type from a column or element.
type UDT struct {
	frozen bool
	def    *UDTDef
}

func (*UDT) isType() {}

func (u *UDT) Frozen() bool { return u.frozen }
func (u *UDT) Def() *UDTDef { return u.def }

func (u *UDT) String() string {
	name := u.def.name
	if u.def.keyspace != "" {
		name = u.def.keyspace + "." + name
	}
	return frozenWrap(u.frozen, name)
}

func NewUDT(def *UDTDef, frozen bool) (*UDT, error) {
	if def == nil {
		return nil, encerr.SchemaType("user type reference has no definition")
	}
	return &UDT{frozen: frozen, def: def}, nil
}

// Must panics on a constructor error. Meant for fixed schemas in tests and
// package-level vars.
func Must[T Type](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

func frozenWrap(frozen bool, s string) string {
	if frozen {
		return "frozen<" + s + ">"
	}
	return s
}

func isNil(t Type) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *Native:
		return v == nil
	case *Collection:
		return v == nil
	case *Vector:
		return v == nil
	case *Tuple:
		return v == nil
	case *UDT:
		return v == nil
	}
	return false
}
