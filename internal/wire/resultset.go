package wire

import (
	"io"

	"github.com/nnewton/sqlited/internal/codec"
	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/meta"
)

// collationUTF8General and collationBinary are the two collation ids
// the column-definition packet ever advertises.
const (
	collationUTF8General uint16 = 33
	collationBinary      uint16 = 63
)

// flagTimestamp and flagBlob mirror the two field-flag bits §4.7 calls out.
const (
	flagTimestamp uint16 = 0x0400
	flagBlob      uint16 = 0x0010
)

// BuildColumnDef constructs one column-definition packet payload, per
// §4.7's layout.
func BuildColumnDef(col meta.ColumnMeta) []byte {
	var buf []byte
	buf = codec.WriteLengthEncodedString(buf, "def")
	buf = codec.WriteLengthEncodedString(buf, "") // schema
	buf = codec.WriteLengthEncodedString(buf, "") // table
	buf = codec.WriteLengthEncodedString(buf, "") // org_table
	buf = codec.WriteLengthEncodedString(buf, col.Name)
	buf = codec.WriteLengthEncodedString(buf, "") // org_name
	buf = codec.WriteU8(buf, 0x0C)                // fixed-length-field-length

	collation := collationBinary
	if meta.IsTextLike(col.Wire) {
		collation = collationUTF8General
	}
	buf = codec.WriteU16(buf, collation)

	length := col.Length
	if meta.IsTextLike(col.Wire) {
		length *= 3
	}
	if col.Wire == meta.TypeDecimal || col.Wire == meta.TypeDouble {
		length += uint32(col.Decimals)
	}
	buf = codec.WriteU32(buf, length)

	buf = codec.WriteU8(buf, byte(col.Wire))

	var flags uint16
	if col.Wire == meta.TypeTimestamp {
		flags |= flagTimestamp
	}
	if col.Wire == meta.TypeBlob {
		flags |= flagBlob
	}
	buf = codec.WriteU16(buf, flags)

	buf = codec.WriteU8(buf, col.Decimals)
	buf = codec.WriteU16(buf, 0) // filler
	return buf
}

// StreamResultSet writes the full ResultSet emission burst: column
// count, one column-definition packet per column, EOF, one row packet
// per row, trailing EOF. Every packet shares the sequence counter
// starting at seq; the returned value is the next unused sequence
// number.
func StreamResultSet(w io.Writer, seq byte, rs *meta.ResultSet) (byte, error) {
	write := func(payload []byte) error {
		if _, err := w.Write(codec.WrapPacket(payload, seq)); err != nil {
			return err
		}
		seq = codec.NextSeq(seq)
		return nil
	}

	var countPayload []byte
	countPayload = codec.WriteLengthEncodedInt(countPayload, uint64(len(rs.Columns)))
	if err := write(countPayload); err != nil {
		return seq, err
	}

	for _, col := range rs.Columns {
		if err := write(BuildColumnDef(col)); err != nil {
			return seq, err
		}
	}

	if err := write(BuildEOF(StatusAutocommit)); err != nil {
		return seq, err
	}

	for _, row := range rs.Rows {
		if err := write(buildRowPacket(row)); err != nil {
			return seq, err
		}
	}

	if err := write(BuildEOF(StatusAutocommit)); err != nil {
		return seq, err
	}
	return seq, nil
}

func buildRowPacket(row engine.Row) []byte {
	var buf []byte
	for _, v := range row {
		if v.Null {
			buf = codec.WriteU8(buf, codec.NullLength)
			continue
		}
		buf = codec.WriteLengthEncodedString(buf, v.String())
	}
	return buf
}
