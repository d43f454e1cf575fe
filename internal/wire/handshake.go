package wire

import (
	"github.com/nnewton/sqlited/internal/codec"
)

// BuildHandshake constructs the server's initial handshake packet
// payload (protocol version 10), per §6's exact byte layout.
func BuildHandshake(threadID uint32, serverVersion string) []byte {
	var buf []byte
	buf = codec.WriteU8(buf, 10)
	buf = codec.WriteNullTerminatedString(buf, serverVersion)
	buf = codec.WriteU32(buf, threadID)

	// auth-plugin-data-part-1: content is not significant, 8 filler bytes.
	buf = append(buf, []byte("xxxxxxxx")...)
	buf = codec.WriteU8(buf, 0) // padding

	buf = codec.WriteU16(buf, uint16(ServerCapabilities&0xFFFF))
	buf = codec.WriteU8(buf, ServerCharset)
	buf = codec.WriteU16(buf, StatusAutocommit)
	buf = codec.WriteU16(buf, uint16(ServerCapabilities>>16))

	buf = codec.WriteU8(buf, 0) // padding
	buf = append(buf, make([]byte, 10)...)

	if ServerCapabilities&ClientSecureConnection != 0 {
		buf = append(buf, []byte("xxxxxxxxxxxx")...) // auth-plugin-data-part-2 filler
		buf = codec.WriteU8(buf, 0)
	}
	return buf
}
