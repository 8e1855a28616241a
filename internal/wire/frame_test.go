package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/coltype"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/rowenc"
)

func TestAppendEnvelope(t *testing.T) {
	got := AppendEnvelope([]byte{0xff}, []byte{0, 0, 0, 1, 7}, 1)
	assert.Equal(t, []byte{0xff, 0, 1, 0, 0, 0, 1, 7}, got)

	payload, count, err := SplitEnvelope(got[1:])
	require.NoError(t, err)
	assert.Equal(t, uint16(1), count)
	assert.Equal(t, []byte{0, 0, 0, 1, 7}, payload)

	_, _, err = SplitEnvelope([]byte{0})
	require.Error(t, err)
}

func TestFrame_RoundTrip(t *testing.T) {
	text := coltype.Must(coltype.NewNative(coltype.Text))
	ctx := record.MustFromSchema([]record.ColumnSpec{
		{Name: "a", Type: text},
		{Name: "b", Type: text},
	})
	payload, count, err := rowenc.EncodeRow(ctx, []any{"x", nil})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, payload, count))
	require.NoError(t, WriteFrame(&buf, nil, 0))

	gotPayload, gotCount, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, count, gotCount)
	assert.Equal(t, payload, gotPayload)

	gotPayload, gotCount, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), gotCount)
	assert.Empty(t, gotPayload)

	_, _, err = ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAppendFrame(t *testing.T) {
	got, err := AppendFrame([]byte{0xee}, []byte{0, 0, 0, 1, 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xee, 0, 0, 0, 7, 0, 1, 0, 0, 0, 1, 7}, got)

	payload, count, err := ReadFrame(bytes.NewReader(got[1:]))
	require.NoError(t, err)
	assert.Equal(t, uint16(1), count)
	assert.Equal(t, []byte{0, 0, 0, 1, 7}, payload)

	_, err = AppendFrame(nil, make([]byte, MaxFrameSize), 1)
	require.Error(t, err)
}

func TestFrame_Limits(t *testing.T) {
	err := WriteFrame(io.Discard, make([]byte, MaxFrameSize), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	_, _, err = ReadFrame(bytes.NewReader([]byte{0x7f, 0, 0, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	_, _, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 1, 0}))
	require.Error(t, err)

	_, _, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 6, 0, 1}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
