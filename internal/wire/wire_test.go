package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnewton/sqlited/internal/codec"
	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/meta"
)

func TestBuildHandshakeLayout(t *testing.T) {
	payload := BuildHandshake(7, "4.1.25-SQLite")
	require.NotEmpty(t, payload)
	assert.Equal(t, byte(10), payload[0])

	version, rest, err := codec.ReadNullTerminatedString(payload[1:])
	require.NoError(t, err)
	assert.Equal(t, "4.1.25-SQLite", version)

	threadID, rest, err := codec.ReadU32(rest)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), threadID)

	_, rest, err = codec.ReadFixedString(rest, 8)
	require.NoError(t, err)
	_, rest, err = codec.ReadU8(rest)
	require.NoError(t, err)

	capsLow, rest, err := codec.ReadU16(rest)
	require.NoError(t, err)
	assert.Equal(t, uint16(ServerCapabilities&0xFFFF), capsLow)

	charset, rest, err := codec.ReadU8(rest)
	require.NoError(t, err)
	assert.Equal(t, byte(ServerCharset), charset)

	status, rest, err := codec.ReadU16(rest)
	require.NoError(t, err)
	assert.Equal(t, StatusAutocommit, status)

	capsHigh, _, err := codec.ReadU16(rest)
	require.NoError(t, err)
	assert.Equal(t, uint16(ServerCapabilities>>16), capsHigh)
}

func TestBuildOKEOFErr(t *testing.T) {
	ok := BuildOK(StatusAutocommit)
	assert.Equal(t, byte(0x00), ok[0])

	eof := BuildEOF(StatusAutocommit)
	assert.Equal(t, byte(0xFE), eof[0])

	errPkt := BuildErr(1044, "42000", "Access denied", true)
	assert.Equal(t, byte(0xFF), errPkt[0])
	assert.Contains(t, string(errPkt), "Access denied")
	assert.Contains(t, string(errPkt), "#42000")
}

func TestBuildColumnDefVarStringTriplesLength(t *testing.T) {
	col := meta.ColumnMeta{Name: "name", Wire: meta.TypeVarString, Length: 255}
	payload := BuildColumnDef(col)
	assert.NotEmpty(t, payload)
	// Spot check: the payload must contain the column name bytes.
	assert.True(t, bytes.Contains(payload, []byte("name")))

	// The 4-byte column length follows "def", three empty strings, the
	// name, an empty org_name, the 0x0C marker and the 2-byte collation.
	length, _, err := codec.ReadU32(payload[16:])
	require.NoError(t, err)
	assert.Equal(t, uint32(255*3), length)
}

func TestStreamResultSetPacketCount(t *testing.T) {
	rs := &meta.ResultSet{
		Columns: []meta.ColumnMeta{{Name: "id", Wire: meta.TypeLongLong, Length: 21}},
		Rows: []engine.Row{
			{engine.IntValue(1)},
			{engine.NullValue()},
		},
	}
	var out bytes.Buffer
	nextSeq, err := StreamResultSet(&out, 1, rs)
	require.NoError(t, err)

	// column-count + 1 column-def + EOF + 2 rows + EOF = 6 packets.
	assert.Equal(t, byte(1+6), nextSeq)

	seq := byte(1)
	buf := out.Bytes()
	packets := 0
	for len(buf) > 0 {
		hdr, rest, err := codec.ReadPacketHeader(buf)
		require.NoError(t, err)
		assert.Equal(t, seq, hdr.Seq)
		seq = codec.NextSeq(seq)
		buf = rest[hdr.Length:]
		packets++
	}
	assert.Equal(t, 6, packets)
}
