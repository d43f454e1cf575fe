package wire

import (
	"github.com/nnewton/sqlited/internal/codec"
)

// BuildOK constructs an OK packet with zero affected rows and zero
// last-insert-id.
func BuildOK(status uint16) []byte {
	var buf []byte
	buf = codec.WriteU8(buf, 0x00)
	buf = codec.WriteLengthEncodedInt(buf, 0) // affected_rows
	buf = codec.WriteLengthEncodedInt(buf, 0) // last_insert_id
	buf = codec.WriteU16(buf, status)
	buf = codec.WriteU16(buf, 0) // warnings
	return buf
}

// BuildEOF constructs an EOF packet.
func BuildEOF(status uint16) []byte {
	var buf []byte
	buf = codec.WriteU8(buf, 0xFE)
	buf = codec.WriteU16(buf, 0) // warnings
	buf = codec.WriteU16(buf, status)
	return buf
}

// BuildErr constructs an ERR packet. sqlState is the 5-character
// SQLSTATE code; it is only included (as "#"+sqlState) when protocol41
// is negotiated.
func BuildErr(code uint16, sqlState, message string, protocol41 bool) []byte {
	var buf []byte
	buf = codec.WriteU8(buf, 0xFF)
	buf = codec.WriteU16(buf, code)
	if protocol41 {
		buf = append(buf, '#')
		buf = append(buf, sqlState...)
	}
	buf = append(buf, message...)
	return buf
}
