// Package catalog reads statement schema descriptors from YAML and turns
// them into a record.Context.
//
//	keyspace: shop
//	table: customers
//	types:
//	  - name: address
//	    fields:
//	      - {name: street, type: text}
//	      - {name: zip_code, type: int}
//	columns:
//	  - {name: id, type: uuid}
//	  - {name: home, type: frozen<address>}
//
// UDTs are defined in order and may reference earlier ones.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/record"
)

type TableMeta struct {
	Keyspace string       `yaml:"keyspace"`
	Table    string       `yaml:"table"`
	Types    []TypeMeta   `yaml:"types"`
	Columns  []ColumnMeta `yaml:"columns"`
}

type TypeMeta struct {
	Keyspace string      `yaml:"keyspace,omitempty"` // defaults to the table keyspace
	Name     string      `yaml:"name"`
	Fields   []FieldMeta `yaml:"fields"`
}

type FieldMeta struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type ColumnMeta struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	// Table overrides the descriptor table for statements spanning tables.
	Table string `yaml:"table,omitempty"`
}

// Load reads and builds the descriptor at path.
func Load(path string) (*record.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML descriptor and builds its context.
func Parse(data []byte) (*record.Context, error) {
	var meta TableMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("catalog: bad yaml: %w", err)
	}
	return meta.Build()
}

// Build resolves UDTs and column types and returns the context.
func (m *TableMeta) Build() (*record.Context, error) {
	udts := coltype.UDTMap{}
	for _, tm := range m.Types {
		def, err := tm.build(m.Keyspace, udts)
		if err != nil {
			return nil, err
		}
		udts.Add(def)
	}

	specs := make([]record.ColumnSpec, 0, len(m.Columns))
	for _, cm := range m.Columns {
		typ, err := coltype.Parse(cm.Type, udts)
		if err != nil {
			return nil, fmt.Errorf("catalog: column %q: %w", cm.Name, err)
		}
		table := m.Table
		if cm.Table != "" {
			table = cm.Table
		}
		specs = append(specs, record.ColumnSpec{
			Table: record.TableIdentity{Keyspace: m.Keyspace, Table: table},
			Name:  cm.Name,
			Type:  typ,
		})
	}

	ctx, err := record.FromSchema(specs)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return ctx, nil
}

func (tm TypeMeta) build(defaultKeyspace string, udts coltype.UDTMap) (*coltype.UDTDef, error) {
	ks := tm.Keyspace
	if ks == "" {
		ks = defaultKeyspace
	}
	fields := make([]coltype.Field, 0, len(tm.Fields))
	for _, fm := range tm.Fields {
		typ, err := coltype.Parse(fm.Type, udts)
		if err != nil {
			return nil, fmt.Errorf("catalog: type %q field %q: %w", tm.Name, fm.Name, err)
		}
		fields = append(fields, coltype.Field{Name: fm.Name, Type: typ})
	}
	def, err := coltype.NewUDTDef(ks, tm.Name, fields...)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return def, nil
}
