// stand for bytes helper
//
// The cell wire format is big-endian throughout, so only BE helpers live
// here. Append* grow a slice; Put*At patch a value already reserved.
package bx

import (
	"encoding/binary"
	"math/bits"
)

var BE = binary.BigEndian

// --- BE: read ---
func U16BE(b []byte) uint16 { return BE.Uint16(b) }
func U32BE(b []byte) uint32 { return BE.Uint32(b) }
func U64BE(b []byte) uint64 { return BE.Uint64(b) }
func I16BE(b []byte) int16  { return int16(U16BE(b)) }
func I32BE(b []byte) int32  { return int32(U32BE(b)) }
func I64BE(b []byte) int64  { return int64(U64BE(b)) }

// --- BE: write ---
func PutU16BE(b []byte, v uint16) { BE.PutUint16(b, v) }
func PutU32BE(b []byte, v uint32) { BE.PutUint32(b, v) }
func PutU64BE(b []byte, v uint64) { BE.PutUint64(b, v) }

// --- BE: At (offset) ---
func U32BEAt(b []byte, off int) uint32       { return U32BE(b[off:]) }
func I32BEAt(b []byte, off int) int32        { return I32BE(b[off:]) }
func PutU16BEAt(b []byte, off int, v uint16) { PutU16BE(b[off:], v) }
func PutU32BEAt(b []byte, off int, v uint32) { PutU32BE(b[off:], v) }
func PutI32BEAt(b []byte, off int, v int32)  { PutU32BE(b[off:], uint32(v)) }

// --- BE: append ---
func AppendU16BE(b []byte, v uint16) []byte { return BE.AppendUint16(b, v) }
func AppendU32BE(b []byte, v uint32) []byte { return BE.AppendUint32(b, v) }
func AppendU64BE(b []byte, v uint64) []byte { return BE.AppendUint64(b, v) }
func AppendI16BE(b []byte, v int16) []byte  { return AppendU16BE(b, uint16(v)) }
func AppendI32BE(b []byte, v int32) []byte  { return AppendU32BE(b, uint32(v)) }
func AppendI64BE(b []byte, v int64) []byte  { return AppendU64BE(b, uint64(v)) }

// --- vint ---

// AppendUvint appends v as an unsigned vint: the count of extra bytes is
// given by the leading one bits of the first byte, the value follows
// big-endian in the remaining bits.
func AppendUvint(b []byte, v uint64) []byte {
	size := (639 - bits.LeadingZeros64(v|1)*9) >> 6
	extra := size - 1
	if extra == 8 {
		b = append(b, 0xff)
		return AppendU64BE(b, v)
	}
	start := len(b)
	for i := size - 1; i >= 0; i-- {
		b = append(b, byte(v>>(8*i)))
	}
	b[start] |= ^byte(0xff >> extra)
	return b
}

// AppendVint appends v zigzag-encoded as an unsigned vint.
func AppendVint(b []byte, v int64) []byte {
	return AppendUvint(b, uint64(v<<1)^uint64(v>>63))
}
