package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnewton/sqlited/internal/codec"
	"github.com/nnewton/sqlited/internal/wire"
)

func buildClientHandshake(t *testing.T, caps uint32, username, database, authResponse string) []byte {
	t.Helper()
	var buf []byte
	buf = codec.WriteU32(buf, caps)
	buf = codec.WriteU32(buf, 16*1024*1024)
	buf = codec.WriteU8(buf, 33)
	buf = append(buf, make([]byte, 23)...)
	buf = codec.WriteNullTerminatedString(buf, username)

	if caps&wire.ClientSecureConnection != 0 {
		buf = codec.WriteU8(buf, byte(len(authResponse)))
		buf = append(buf, authResponse...)
	} else {
		buf = codec.WriteNullTerminatedString(buf, authResponse)
	}

	if caps&wire.ClientConnectWithDB != 0 {
		buf = codec.WriteNullTerminatedString(buf, database)
	}
	return buf
}

func TestParseClientHandshakeLengthPrefixed(t *testing.T) {
	caps := wire.ClientProtocol41 | wire.ClientSecureConnection | wire.ClientConnectWithDB
	payload := buildClientHandshake(t, caps, "root", "main", "scrambleresponse")

	ch, err := parseClientHandshake(payload)
	require.NoError(t, err)
	assert.Equal(t, "root", ch.Username)
	assert.Equal(t, "main", ch.Database)
	assert.Equal(t, caps, ch.Capabilities)
}

func TestParseClientHandshakeNullTerminatedAuth(t *testing.T) {
	caps := wire.ClientProtocol41
	payload := buildClientHandshake(t, caps, "root", "", "")

	ch, err := parseClientHandshake(payload)
	require.NoError(t, err)
	assert.Equal(t, "root", ch.Username)
	assert.Equal(t, "", ch.Database)
}

func TestParseClientHandshakeFixedTwentyByteScramble(t *testing.T) {
	caps := wire.ClientProtocol41 | wire.ClientSecureConnection
	// No length byte: exactly 20 raw bytes of scramble with nothing after.
	var buf []byte
	buf = codec.WriteU32(buf, caps)
	buf = codec.WriteU32(buf, 16*1024*1024)
	buf = codec.WriteU8(buf, 33)
	buf = append(buf, make([]byte, 23)...)
	buf = codec.WriteNullTerminatedString(buf, "root")
	buf = append(buf, make([]byte, 20)...)

	ch, err := parseClientHandshake(buf)
	require.NoError(t, err)
	assert.Equal(t, "root", ch.Username)
}
