package novarow

import (
	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/rowenc"
	"github.com/tuannm99/novarow/internal/serialize"
)

// Package novarow is the top-level facade for the row value encoder.

type (
	Context       = record.Context
	ColumnSpec    = record.ColumnSpec
	TableIdentity = record.TableIdentity

	Type       = coltype.Type
	Field      = coltype.Field
	UDTDef     = coltype.UDTDef
	NativeKind = coltype.NativeKind

	Encoder = rowenc.Encoder
	Option  = rowenc.Option
	Row     = rowenc.Row
	Metrics = rowenc.Metrics

	MapEntry   = serialize.MapEntry
	MapEntries = serialize.MapEntries

	Sequencer   = record.Sequencer
	Mapper      = record.Mapper
	FieldGetter = record.FieldGetter
)

var (
	FromSchema   = record.FromSchema
	ParseType    = coltype.Parse
	NewEncoder   = rowenc.NewEncoder
	NewMetrics   = rowenc.NewMetrics
	WithLogger   = rowenc.WithLogger
	WithMetrics  = rowenc.WithMetrics
	WithSizeHint = rowenc.WithSizeHint
)

// EncodeRow encodes one row bundle against ctx and returns the concatenated
// cells and the value count.
func EncodeRow(ctx *Context, bundle any) ([]byte, uint16, error) {
	return rowenc.EncodeRow(ctx, bundle)
}
