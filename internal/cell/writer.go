// Package cell writes length-prefixed cells into a single growable buffer.
//
// A cell is an int32 big-endian length followed by that many bytes; a length
// of -1 means null. Composite cells reserve the 4-byte length, write their
// body in place, and patch the length on Finish. Writers only hold the shared
// buffer and an offset into it, so nesting depth never copies bytes.
//
//	rw := cell.NewRowWriter(0)
//	vb := rw.MakeCellWriter().IntoValueBuilder()
//	vb.AppendInt32(2)
//	_ = vb.MakeSubWriter().SetValue([]byte("a"))
//	_ = vb.MakeSubWriter().SetValue([]byte("b"))
//	err := vb.Finish()
package cell

import (
	"math"

	"github.com/tuannm99/novarow/internal/alias/bx"
	"github.com/tuannm99/novarow/internal/encerr"
)

const (
	// NullLength marks a null cell.
	NullLength int32 = -1
	// MaxCellLen is the largest body an int32 length can describe.
	MaxCellLen = math.MaxInt32

	lenSize = 4
)

// buffer is the one byte slice shared by a row writer and all its cells.
type buffer struct {
	b []byte
}

// RowWriter owns the output buffer of one row and counts the cells handed out.
// It is not safe for concurrent use; each encode creates its own.
type RowWriter struct {
	buf   *buffer
	count int
}

// NewRowWriter returns a writer whose buffer starts with capacity sizeHint.
func NewRowWriter(sizeHint int) *RowWriter {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &RowWriter{buf: &buffer{b: make([]byte, 0, sizeHint)}}
}

// MakeCellWriter returns a writer for the next top-level cell.
func (w *RowWriter) MakeCellWriter() CellWriter {
	w.count++
	return CellWriter{buf: w.buf}
}

// ValueCount is the number of cells handed out so far.
func (w *RowWriter) ValueCount() int { return w.count }

// Len is the number of bytes written.
func (w *RowWriter) Len() int { return len(w.buf.b) }

// Reset drops all written cells and keeps the buffer capacity.
func (w *RowWriter) Reset() {
	w.buf.b = w.buf.b[:0]
	w.count = 0
}

// Bytes returns the encoded cells. The slice aliases the writer's buffer.
func (w *RowWriter) Bytes() []byte { return w.buf.b }

// CellWriter writes exactly one cell: null, a flat value, or a composite
// value through IntoValueBuilder.
type CellWriter struct {
	buf *buffer
}

// SetNull writes the -1 length marker and no payload.
func (c CellWriter) SetNull() {
	c.buf.b = bx.AppendI32BE(c.buf.b, NullLength)
}

// SetValue writes len(p) followed by p.
func (c CellWriter) SetValue(p []byte) error {
	if len(p) > MaxCellLen {
		return encerr.ValueTooLarge(len(p))
	}
	c.buf.b = bx.AppendI32BE(c.buf.b, int32(len(p)))
	c.buf.b = append(c.buf.b, p...)
	return nil
}

// IntoValueBuilder reserves the length placeholder and returns a builder
// that writes the body in place.
func (c CellWriter) IntoValueBuilder() ValueBuilder {
	start := len(c.buf.b)
	c.buf.b = append(c.buf.b, 0, 0, 0, 0)
	return ValueBuilder{buf: c.buf, start: start}
}

// ValueBuilder appends the body of a composite cell. Finish must be called
// once the body is complete.
type ValueBuilder struct {
	buf   *buffer
	start int // offset of the reserved length
}

// AppendBytes appends raw body bytes with no length prefix.
func (v *ValueBuilder) AppendBytes(p []byte) {
	v.buf.b = append(v.buf.b, p...)
}

// AppendInt32 appends a big-endian int32, used for element counts.
func (v *ValueBuilder) AppendInt32(n int32) {
	v.buf.b = bx.AppendI32BE(v.buf.b, n)
}

// AppendUvint appends an unsigned vint, the length prefix of variable-size
// vector elements.
func (v *ValueBuilder) AppendUvint(n uint64) {
	v.buf.b = bx.AppendUvint(v.buf.b, n)
}

// MakeSubWriter returns a writer for one nested, length-prefixed cell.
func (v *ValueBuilder) MakeSubWriter() CellWriter {
	return CellWriter{buf: v.buf}
}

// Len is the size of the body written so far.
func (v *ValueBuilder) Len() int {
	return len(v.buf.b) - v.start - lenSize
}

// Finish patches the reserved length with the body size.
func (v *ValueBuilder) Finish() error {
	n := v.Len()
	if n > MaxCellLen {
		return encerr.ValueTooLarge(n)
	}
	bx.PutI32BEAt(v.buf.b, v.start, int32(n))
	return nil
}
