// Package wire wraps encoded rows for transport. A row envelope is the
// uint16 value count followed by the cells; a frame is a 4-byte big-endian
// length prefix followed by one envelope.
package wire

import (
	"fmt"
	"io"

	"github.com/tuannm99/novarow/internal/alias/bx"
)

const (
	// MaxFrameSize limits memory usage on malformed/hostile input.
	MaxFrameSize = 8 << 20 // 8 MiB

	envelopeHeader = 2
)

// AppendEnvelope appends count and payload to dst in row envelope form.
func AppendEnvelope(dst, payload []byte, count uint16) []byte {
	dst = bx.AppendU16BE(dst, count)
	return append(dst, payload...)
}

// SplitEnvelope returns the count and cells of an envelope. The payload
// aliases b.
func SplitEnvelope(b []byte) (payload []byte, count uint16, err error) {
	if len(b) < envelopeHeader {
		return nil, 0, fmt.Errorf("wire: short envelope: %d bytes", len(b))
	}
	return b[envelopeHeader:], bx.U16BE(b), nil
}

// AppendFrame appends one envelope to dst as a length-prefixed frame.
func AppendFrame(dst, payload []byte, count uint16) ([]byte, error) {
	n := envelopeHeader + len(payload)
	if n > MaxFrameSize {
		return dst, fmt.Errorf("wire: frame too large: %d > %d", n, MaxFrameSize)
	}
	dst = bx.AppendU32BE(dst, uint32(n))
	return AppendEnvelope(dst, payload, count), nil
}

// WriteFrame writes one envelope as a length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte, count uint16) error {
	buf, err := AppendFrame(make([]byte, 0, 4+envelopeHeader+len(payload)), payload, count)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame reads one frame written by WriteFrame.
func ReadFrame(r io.Reader) (payload []byte, count uint16, err error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, 0, err
	}
	n := bx.U32BE(hdr[:])
	if n < envelopeHeader {
		return nil, 0, fmt.Errorf("wire: frame shorter than envelope header: %d", n)
	}
	if n > MaxFrameSize {
		return nil, 0, fmt.Errorf("wire: frame too large: %d > %d", n, MaxFrameSize)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, 0, err
	}
	return SplitEnvelope(buf)
}
