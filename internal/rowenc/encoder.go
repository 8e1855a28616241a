// Package rowenc encodes one row of statement values: it normalizes a value
// bundle against a record.Context, serializes each value into a cell, and
// returns the cell bytes with the element count.
package rowenc

import (
	"log/slog"
	"math"

	"github.com/tuannm99/novarow/internal/cell"
	"github.com/tuannm99/novarow/internal/encerr"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/serialize"
)

// MaxColumns is the largest element count of the row envelope.
const MaxColumns = math.MaxUint16

// Row is one encoded row: the concatenated cells and their count.
type Row struct {
	Payload []byte
	Count   uint16
}

// Encoder encodes rows for one statement. Its serializers are resolved once
// at construction; it holds no per-call state and is safe for concurrent use.
type Encoder struct {
	ctx         *record.Context
	serializers []serialize.Serializer
	logger      *slog.Logger
	metrics     *Metrics
	sizeHint    int
}

type Option func(*Encoder)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) { e.logger = l }
}

// WithMetrics records encode outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Encoder) { e.metrics = m }
}

// WithSizeHint sets the initial capacity of each row buffer.
func WithSizeHint(n int) Option {
	return func(e *Encoder) { e.sizeHint = n }
}

// NewEncoder resolves a serializer per column of ctx.
func NewEncoder(ctx *record.Context, opts ...Option) (*Encoder, error) {
	e := &Encoder{
		ctx:         ctx,
		serializers: make([]serialize.Serializer, ctx.NumCols()),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sizeHint <= 0 {
		e.sizeHint = 8 * ctx.NumCols()
	}

	for i := range e.serializers {
		col := ctx.Column(i)
		s, err := serialize.SerializerFor(col.Type)
		if err != nil {
			return nil, columnError(i, col, err)
		}
		e.serializers[i] = s
	}
	return e, nil
}

// Context returns the statement context the encoder was built for.
func (e *Encoder) Context() *record.Context { return e.ctx }

// Encode normalizes bundle and writes one cell per column in context order.
// It stops at the first failure; no partial output is returned.
func (e *Encoder) Encode(bundle any) (Row, error) {
	row, err := e.encode(bundle)
	if err != nil {
		e.metrics.observeError(err)
		e.logger.Debug("rowenc.failed", "columns", e.ctx.NumCols(), "err", err)
		return Row{}, err
	}
	e.metrics.observe(row)
	e.logger.Debug("rowenc.encoded", "columns", row.Count, "bytes", len(row.Payload))
	return row, nil
}

func (e *Encoder) encode(bundle any) (Row, error) {
	values, err := record.Normalize(e.ctx, bundle)
	if err != nil {
		return Row{}, err
	}

	rw := cell.NewRowWriter(e.sizeHint)
	for i, v := range values {
		w := rw.MakeCellWriter()
		if err := serialize.Write(e.serializers[i], v, w); err != nil {
			return Row{}, columnError(i, e.ctx.Column(i), err)
		}
	}

	n := rw.ValueCount()
	if n > MaxColumns {
		return Row{}, encerr.TooManyColumns(n, MaxColumns)
	}
	return Row{Payload: rw.Bytes(), Count: uint16(n)}, nil
}

// EncodeRow is the one-shot form of NewEncoder(ctx).Encode(bundle).
func EncodeRow(ctx *record.Context, bundle any) ([]byte, uint16, error) {
	e, err := NewEncoder(ctx)
	if err != nil {
		return nil, 0, err
	}
	row, err := e.Encode(bundle)
	if err != nil {
		return nil, 0, err
	}
	return row.Payload, row.Count, nil
}

func columnError(i int, col record.ColumnSpec, err error) error {
	return &encerr.ColumnError{
		Index: i,
		Name:  col.Name,
		Table: col.Table.String(),
		Err:   err,
	}
}
