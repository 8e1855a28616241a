// Package record binds caller values to the columns of a prepared statement.
package record

import (
	"fmt"

	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/encerr"
)

// TableIdentity names the table a column belongs to. It is used in
// diagnostics only and never written to the wire.
type TableIdentity struct {
	Keyspace string `json:"keyspace" yaml:"keyspace"`
	Table    string `json:"table" yaml:"table"`
}

func (t TableIdentity) String() string {
	if t.Keyspace == "" {
		return t.Table
	}
	return t.Keyspace + "." + t.Table
}

// ColumnSpec is one schema-bound column.
type ColumnSpec struct {
	Table TableIdentity
	Name  string
	Type  coltype.Type
}

// Context is the ordered column list of one prepared statement. It is never
// mutated after FromSchema, so concurrent encodes may share it freely.
type Context struct {
	cols  []ColumnSpec
	index map[string]int
}

// FromSchema copies specs into a new Context. Column names need not be
// unique (a statement may bind the same column twice); by-name lookup binds
// every occurrence to the same value.
func FromSchema(specs []ColumnSpec) (*Context, error) {
	cols := make([]ColumnSpec, len(specs))
	idx := make(map[string]int, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, encerr.SchemaType("column %d has no name", i)
		}
		if s.Type == nil {
			return nil, encerr.SchemaType("column %d %q has no type", i, s.Name)
		}
		cols[i] = s
		if _, seen := idx[s.Name]; !seen {
			idx[s.Name] = i
		}
	}
	return &Context{cols: cols, index: idx}, nil
}

// MustFromSchema is FromSchema that panics on error.
func MustFromSchema(specs []ColumnSpec) *Context {
	c, err := FromSchema(specs)
	if err != nil {
		panic(fmt.Sprintf("record: %v", err))
	}
	return c
}

// Columns returns a copy of the column list in statement order.
func (c *Context) Columns() []ColumnSpec { return append([]ColumnSpec(nil), c.cols...) }

// NumCols is the number of bound columns.
func (c *Context) NumCols() int { return len(c.cols) }

// Column returns the i-th column spec.
func (c *Context) Column(i int) ColumnSpec { return c.cols[i] }

// ColumnIndex returns the position of the first column with the given name.
func (c *Context) ColumnIndex(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}
