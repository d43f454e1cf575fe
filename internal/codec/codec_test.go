package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf []byte
	buf = WriteU8(buf, 0x42)
	buf = WriteU16(buf, 0xBEEF)
	buf = WriteU24(buf, 0xABCDEF)
	buf = WriteU32(buf, 0xCAFEBABE)
	buf = WriteU64(buf, math.MaxUint64)

	v8, rest, err := ReadU8(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v8)

	v16, rest, err := ReadU16(rest)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v16)

	v24, rest, err := ReadU24(rest)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABCDEF), v24)

	v32, rest, err := ReadU32(rest)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v32)

	v64, rest, err := ReadU64(rest)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v64)
	assert.Empty(t, rest)
}

func TestLengthEncodedIntWidthClasses(t *testing.T) {
	cases := []struct {
		value    uint64
		wantLead byte
	}{
		{0, 0},
		{0xFA, 0xFA},
		{0xFB, 0xFC},
		{0xFFFF, 0xFC},
		{0x10000, 0xFD},
		{0xFFFFFF, 0xFD},
		{0x1000000, 0xFE},
		{math.MaxUint64, 0xFE},
	}
	for _, tc := range cases {
		buf := WriteLengthEncodedInt(nil, tc.value)
		if tc.wantLead <= 0xFA {
			assert.Equal(t, tc.wantLead, buf[0])
		} else {
			assert.Equal(t, tc.wantLead, buf[0])
		}
		got, isNull, rest, err := ReadLengthEncodedInt(buf)
		require.NoError(t, err)
		assert.False(t, isNull)
		assert.Equal(t, tc.value, got)
		assert.Empty(t, rest)
	}
}

func TestLengthEncodedIntNullSentinel(t *testing.T) {
	_, isNull, rest, err := ReadLengthEncodedInt([]byte{NullLength, 0x99})
	require.NoError(t, err)
	assert.True(t, isNull)
	assert.Equal(t, []byte{0x99}, rest)
}

func TestLengthEncodedStringRoundTrip(t *testing.T) {
	buf := WriteLengthEncodedString(nil, "hello, world")
	got, isNull, rest, err := ReadLengthEncodedString(buf)
	require.NoError(t, err)
	assert.False(t, isNull)
	assert.Equal(t, "hello, world", got)
	assert.Empty(t, rest)
}

func TestNullTerminatedStringRoundTrip(t *testing.T) {
	buf := WriteNullTerminatedString(nil, "root")
	buf = append(buf, 0xAA)
	got, rest, err := ReadNullTerminatedString(buf)
	require.NoError(t, err)
	assert.Equal(t, "root", got)
	assert.Equal(t, []byte{0xAA}, rest)
}

func TestFixedStringRoundTrip(t *testing.T) {
	buf := WriteFixedString(nil, "abcd")
	got, rest, err := ReadFixedString(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
	assert.Empty(t, rest)
}

func TestPacketHeaderRoundTrip(t *testing.T) {
	packet := WrapPacket([]byte("payload"), 7)
	hdr, rest, err := ReadPacketHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, uint32(len("payload")), hdr.Length)
	assert.Equal(t, byte(7), hdr.Seq)
	assert.Equal(t, "payload", string(rest))
}

func TestNextSeqWraps(t *testing.T) {
	assert.Equal(t, byte(0), NextSeq(255))
	assert.Equal(t, byte(5), NextSeq(4))
}
