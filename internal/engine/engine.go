// Package engine adapts a file-backed SQLite database to the narrow
// read-only surface the gateway needs: running statements, and the
// PRAGMA introspection primitives the metadata translator consumes.
package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juju/errors"
	_ "modernc.org/sqlite"
)

// Version is the protocol-compatible version string advertised during
// the handshake so older 4.1-era clients accept the server.
const Version = "4.1.25-SQLite"

// Value is a single cell of a result row. Exactly one of the typed
// fields is meaningful, selected by the constructor that built the
// value; Null is true only for the NULL scalar.
type Value struct {
	Null  bool
	Int   int64
	Float float64
	Text  string
	Blob  []byte
	kind  valueKind
}

type valueKind int

const (
	kindNull valueKind = iota
	kindInt
	kindFloat
	kindText
	kindBlob
)

// NullValue is the NULL scalar.
func NullValue() Value { return Value{Null: true, kind: kindNull} }

// IntValue wraps an integer scalar.
func IntValue(v int64) Value { return Value{Int: v, kind: kindInt} }

// FloatValue wraps a floating-point scalar.
func FloatValue(v float64) Value { return Value{Float: v, kind: kindFloat} }

// TextValue wraps a text scalar.
func TextValue(v string) Value { return Value{Text: v, kind: kindText} }

// BlobValue wraps a binary scalar.
func BlobValue(v []byte) Value { return Value{Blob: v, kind: kindBlob} }

// String renders the value in the engine's native lexical form, the
// form the wire layer stringifies into a length-encoded string.
func (v Value) String() string {
	switch v.kind {
	case kindNull:
		return ""
	case kindInt:
		return fmt.Sprintf("%d", v.Int)
	case kindFloat:
		return fmt.Sprintf("%v", v.Float)
	case kindText:
		return v.Text
	case kindBlob:
		return string(v.Blob)
	default:
		return ""
	}
}

// Column describes one column of a result set: its wire name and the
// SQL type text the engine declared for it (empty for expressions with
// no declared type).
type Column struct {
	Name         string
	DeclaredType string
}

// Row is one ordered tuple of scalars.
type Row []Value

// Result is a fully materialized query result: its column descriptions
// and every row, in order.
type Result struct {
	Columns []Column
	Rows    []Row
}

// Engine wraps a single read-only connection to a SQLite file.
type Engine struct {
	db   *sql.DB
	path string
}

// Open opens path read-only. It does not create the file if missing;
// callers are expected to have already verified the file exists.
func Open(path string) (*Engine, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Annotatef(err, "engine: open %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotatef(err, "engine: ping %s", path)
	}
	return &Engine{db: db, path: path}, nil
}

// Close releases the underlying connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Version reports the protocol-compatible version token.
func (e *Engine) Version() string { return Version }

// ListDatabases is constant: this gateway exposes exactly one logical
// schema.
func (e *Engine) ListDatabases() []string { return []string{"main"} }

// ListTables returns user table names from sqlite_master, excluding
// SQLite's own internal tables.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`)
	if err != nil {
		return nil, errors.Annotate(err, "engine: list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Annotate(err, "engine: scan table name")
		}
		names = append(names, name)
	}
	return names, errors.Trace(rows.Err())
}

// Execute runs sql and materializes the full result, capturing column
// descriptions immediately so that an empty result set still carries a
// schema.
func (e *Engine) Execute(ctx context.Context, query string) (*Result, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, errors.Annotate(err, "engine: columns")
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Annotate(err, "engine: column types")
	}

	result := &Result{Columns: make([]Column, len(colNames))}
	for i, name := range colNames {
		decl := ""
		if colTypes[i] != nil {
			decl = colTypes[i].DatabaseTypeName()
		}
		result.Columns[i] = Column{Name: name, DeclaredType: decl}
	}

	scanTargets := make([]interface{}, len(colNames))
	scanValues := make([]interface{}, len(colNames))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.Annotate(err, "engine: scan row")
		}
		row := make(Row, len(scanValues))
		for i, v := range scanValues {
			row[i] = toValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, errors.Trace(rows.Err())
}

func toValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntValue(t)
	case float64:
		return FloatValue(t)
	case []byte:
		return BlobValue(t)
	case string:
		return TextValue(t)
	case bool:
		if t {
			return IntValue(1)
		}
		return IntValue(0)
	default:
		return TextValue(fmt.Sprintf("%v", t))
	}
}

// PragmaTableInfoRow mirrors one row of `PRAGMA table_info(t)`.
type PragmaTableInfoRow struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	Default    sql.NullString
	PrimaryKey int // 0 = not part of PK, else 1-based position
}

// PragmaTableInfo runs `PRAGMA table_info(table)`.
func (e *Engine) PragmaTableInfo(ctx context.Context, table string) ([]PragmaTableInfoRow, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, errors.Annotatef(err, "engine: pragma table_info(%s)", table)
	}
	defer rows.Close()

	var out []PragmaTableInfoRow
	for rows.Next() {
		var r PragmaTableInfoRow
		var notNull int
		if err := rows.Scan(&r.CID, &r.Name, &r.Type, &notNull, &r.Default, &r.PrimaryKey); err != nil {
			return nil, errors.Annotate(err, "engine: scan table_info row")
		}
		r.NotNull = notNull != 0
		out = append(out, r)
	}
	return out, errors.Trace(rows.Err())
}

// PragmaIndexListRow mirrors one row of `PRAGMA index_list(t)`.
type PragmaIndexListRow struct {
	Seq     int
	Name    string
	Unique  bool
	Origin  string // "c" = auto-created, "u" = UNIQUE constraint, "pk" = primary key
	Partial bool
}

// PragmaIndexList runs `PRAGMA index_list(table)`.
func (e *Engine) PragmaIndexList(ctx context.Context, table string) ([]PragmaIndexListRow, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, errors.Annotatef(err, "engine: pragma index_list(%s)", table)
	}
	defer rows.Close()

	var out []PragmaIndexListRow
	for rows.Next() {
		var r PragmaIndexListRow
		var unique, partial int
		if err := rows.Scan(&r.Seq, &r.Name, &unique, &r.Origin, &partial); err != nil {
			return nil, errors.Annotate(err, "engine: scan index_list row")
		}
		r.Unique = unique != 0
		r.Partial = partial != 0
		out = append(out, r)
	}
	return out, errors.Trace(rows.Err())
}

// PragmaIndexXInfoRow mirrors one row of `PRAGMA index_xinfo(idx)`.
type PragmaIndexXInfoRow struct {
	SeqNo  int
	CID    int
	Name   sql.NullString
	Desc   bool
	Coll   string
	KeyCol bool
}

// PragmaIndexXInfo runs `PRAGMA index_xinfo(index)`, which (unlike
// index_info) includes the implicit rowid key column and the sort
// direction of each column.
func (e *Engine) PragmaIndexXInfo(ctx context.Context, index string) ([]PragmaIndexXInfoRow, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_xinfo(%s)", quoteIdent(index)))
	if err != nil {
		return nil, errors.Annotatef(err, "engine: pragma index_xinfo(%s)", index)
	}
	defer rows.Close()

	var out []PragmaIndexXInfoRow
	for rows.Next() {
		var r PragmaIndexXInfoRow
		var desc, key int
		if err := rows.Scan(&r.SeqNo, &r.CID, &r.Name, &desc, &r.Coll, &key); err != nil {
			return nil, errors.Annotate(err, "engine: scan index_xinfo row")
		}
		r.Desc = desc != 0
		r.KeyCol = key != 0
		out = append(out, r)
	}
	return out, errors.Trace(rows.Err())
}

// PragmaForeignKeyRow mirrors one row of `PRAGMA foreign_key_list(t)`.
type PragmaForeignKeyRow struct {
	ID       int
	Seq      int
	Table    string
	From     string
	To       string
	OnUpdate string
	OnDelete string
}

// PragmaForeignKeyList runs `PRAGMA foreign_key_list(table)`.
func (e *Engine) PragmaForeignKeyList(ctx context.Context, table string) ([]PragmaForeignKeyRow, error) {
	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, errors.Annotatef(err, "engine: pragma foreign_key_list(%s)", table)
	}
	defer rows.Close()

	var out []PragmaForeignKeyRow
	for rows.Next() {
		var r PragmaForeignKeyRow
		var match, onUpdate, onDelete string
		if err := rows.Scan(&r.ID, &r.Seq, &r.Table, &r.From, &r.To, &onUpdate, &onDelete, &match); err != nil {
			return nil, errors.Annotate(err, "engine: scan foreign_key_list row")
		}
		r.OnUpdate, r.OnDelete = onUpdate, onDelete
		out = append(out, r)
	}
	return out, errors.Trace(rows.Err())
}

// CountDistinct runs `SELECT COUNT(DISTINCT column) FROM table`.
func (e *Engine) CountDistinct(ctx context.Context, table, column string) (int64, error) {
	var n int64
	row := e.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(DISTINCT %s) FROM %s", quoteIdent(column), quoteIdent(table)))
	if err := row.Scan(&n); err != nil {
		return 0, errors.Annotatef(err, "engine: count distinct %s.%s", table, column)
	}
	return n, nil
}

// Count runs `SELECT COUNT(1) FROM table`.
func (e *Engine) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	row := e.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(1) FROM %s", quoteIdent(table)))
	if err := row.Scan(&n); err != nil {
		return 0, errors.Annotatef(err, "engine: count %s", table)
	}
	return n, nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
