package meta

// WireType is the protocol's column type code (MYSQL_TYPE_*, a subset).
type WireType byte

const (
	TypeDecimal   WireType = 0x00
	TypeDouble    WireType = 0x05
	TypeTimestamp WireType = 0x07
	TypeLongLong  WireType = 0x08
	TypeDatetime  WireType = 0x0C
	TypeBlob      WireType = 0xFC
	TypeVarString WireType = 0xFD
)

// ColumnMeta is the wire-level description of one result-set column.
type ColumnMeta struct {
	Name     string
	Visible  string // text form emitted to SHOW COLUMNS / CREATE TABLE, e.g. "int(21)"
	Wire     WireType
	Length   uint32
	Decimals byte
}

// ColumnInfo is the fully joined schema description of one table
// column, combining PRAGMA table_info, index_list/index_xinfo and
// foreign_key_list.
type ColumnInfo struct {
	Name      string
	Meta      ColumnMeta
	Nullable  bool
	Primary   bool
	Default   Default
	IndexName string // name of the first unique index covering this column, else the first index, if any
	Unique    bool   // true if IndexName refers to a unique index
	Order     int    // +1 ascending, -1 descending, 0 if not indexed
	FKTable   string
	FKColumn  string
	Serial    bool
}

// Default models the "no DEFAULT clause" vs "DEFAULT NULL" distinction
// SQLite's table_info PRAGMA does not collapse: Present is false when
// there is no DEFAULT clause at all; when Present is true and IsNull is
// true the clause was literally DEFAULT NULL.
type Default struct {
	Present bool
	IsNull  bool
	Text    string
}

// IndexRow is one row of the SHOW INDEX result: one per indexed column.
type IndexRow struct {
	Table       string
	NonUnique   int // 0 if unique, 1 otherwise (inverted from the PRAGMA bit)
	KeyName     string
	SeqInIndex  int
	ColumnName  string
	Collation   string // "A" ascending, "" (NULL) descending
	Cardinality int64
	IndexType   string
}
