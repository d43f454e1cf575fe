// Package meta translates SQLite introspection into the administrative
// result sets and synthetic CREATE TABLE text that protocol clients
// expect from a real RDBMS. Grounded on the teacher's SHOW-statement
// response construction in server/dispatcher/enhanced_message_handler.go
// and the field/type definitions in server/protocol/field.go and
// server/mysql/type.go.
package meta

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"github.com/nnewton/sqlited/internal/engine"
)

// ResultSet is an ordered column-meta list plus an ordered row list,
// the shape every SHOW/SELECT response is reduced to before wire
// encoding.
type ResultSet struct {
	Columns []ColumnMeta
	Rows    []engine.Row
}

func textCol(name string) ColumnMeta {
	return ColumnMeta{Name: name, Wire: TypeVarString, Length: 255}
}

func longCol(name string) ColumnMeta {
	return ColumnMeta{Name: name, Wire: TypeLongLong, Length: 21}
}

// BuildColumnInfo joins PRAGMA table_info, index_list/index_xinfo and
// foreign_key_list into one ColumnInfo per table column, in table_info
// order.
func BuildColumnInfo(ctx context.Context, eng *engine.Engine, table string) ([]ColumnInfo, error) {
	tableInfo, err := eng.PragmaTableInfo(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	indexList, err := eng.PragmaIndexList(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	fkList, err := eng.PragmaForeignKeyList(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}

	type membership struct {
		indexName string
		unique    bool
		order     int
	}
	bestByColumn := map[string]membership{}

	for _, idx := range indexList {
		xinfo, err := eng.PragmaIndexXInfo(ctx, idx.Name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		for _, xi := range xinfo {
			if !xi.KeyCol || !xi.Name.Valid {
				continue
			}
			order := 1
			if xi.Desc {
				order = -1
			}
			cand := membership{indexName: idx.Name, unique: idx.Unique, order: order}
			if existing, ok := bestByColumn[xi.Name.String]; !ok || (!existing.unique && cand.unique) {
				bestByColumn[xi.Name.String] = cand
			}
		}
	}

	fkByColumn := map[string]engine.PragmaForeignKeyRow{}
	for _, fk := range fkList {
		fkByColumn[fk.From] = fk
	}

	infos := make([]ColumnInfo, 0, len(tableInfo))
	for _, ti := range tableInfo {
		info := ColumnInfo{
			Name:     ti.Name,
			Meta:     MapType(ti.Type),
			Nullable: !ti.NotNull,
			Primary:  ti.PrimaryKey > 0,
			Default:  buildDefault(ti),
		}
		if bi, ok := bestByColumn[ti.Name]; ok {
			info.IndexName, info.Unique, info.Order = bi.indexName, bi.unique, bi.order
		}
		if fk, ok := fkByColumn[ti.Name]; ok {
			info.FKTable, info.FKColumn = fk.Table, fk.To
		}
		info.Serial = info.Primary && !info.Nullable && strings.Contains(strings.ToUpper(ti.Type), "INT")
		infos = append(infos, info)
	}
	return infos, nil
}

func buildDefault(ti engine.PragmaTableInfoRow) Default {
	if !ti.Default.Valid {
		return Default{Present: false}
	}
	if ti.Default.String == "NULL" {
		return Default{Present: true, IsNull: true}
	}
	text := ti.Default.String
	if strings.Contains(strings.ToUpper(ti.Type), "DECIMAL") || strings.Contains(strings.ToUpper(ti.Type), "NUMERIC") {
		if d, err := decimal.NewFromString(strings.Trim(text, "'\"")); err == nil {
			// Keep the literal's own scale: String() would drop trailing zeros.
			places := -d.Exponent()
			if places < 0 {
				places = 0
			}
			text = d.StringFixed(places)
		}
	}
	return Default{Present: true, Text: text}
}

func keyFlag(info ColumnInfo) string {
	switch {
	case info.Primary:
		return "PRI"
	case info.IndexName != "" && info.Unique:
		return "UNI"
	case info.IndexName != "":
		return "MUL"
	default:
		return ""
	}
}

// ShowDatabases returns the single-row ("main",) result set.
func ShowDatabases() *ResultSet {
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Database")},
		Rows:    []engine.Row{{engine.TextValue("main")}},
	}
}

// ShowTables returns one row per user table, optionally filtered by a
// LIKE pattern.
func ShowTables(ctx context.Context, eng *engine.Engine, likePattern string) (*ResultSet, error) {
	tables, err := eng.ListTables(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rs := &ResultSet{Columns: []ColumnMeta{textCol("Tables_in_main")}}
	for _, t := range tables {
		if likePattern != "" && !MatchLike(likePattern, t) {
			continue
		}
		rs.Rows = append(rs.Rows, engine.Row{engine.TextValue(t)})
	}
	return rs, nil
}

// ShowColumns returns the 6-column (or 9-column with FULL) shape for
// one table.
func ShowColumns(ctx context.Context, eng *engine.Engine, table string, full bool) (*ResultSet, error) {
	infos, err := BuildColumnInfo(ctx, eng, table)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var cols []ColumnMeta
	if full {
		cols = []ColumnMeta{textCol("Field"), textCol("Type"), textCol("Collation"), textCol("Null"),
			textCol("Key"), textCol("Default"), textCol("Extra"), textCol("Privileges"), textCol("Comment")}
	} else {
		cols = []ColumnMeta{textCol("Field"), textCol("Type"), textCol("Null"), textCol("Key"),
			textCol("Default"), textCol("Extra")}
	}
	rs := &ResultSet{Columns: cols}

	for _, info := range infos {
		nullText := "NO"
		if info.Nullable {
			nullText = "YES"
		}
		extra := ""
		if info.Serial {
			extra = "auto_increment"
		}
		var defaultVal engine.Value
		if info.Default.Present && !info.Default.IsNull {
			defaultVal = engine.TextValue(info.Default.Text)
		} else {
			defaultVal = engine.NullValue()
		}

		if full {
			collation := engine.NullValue()
			if IsTextLike(info.Meta.Wire) {
				collation = engine.TextValue("utf8_general_ci")
			}
			rs.Rows = append(rs.Rows, engine.Row{
				engine.TextValue(info.Name), engine.TextValue(info.Meta.Visible), collation,
				engine.TextValue(nullText), engine.TextValue(keyFlag(info)), defaultVal,
				engine.TextValue(extra), engine.TextValue("select"), engine.TextValue(""),
			})
		} else {
			rs.Rows = append(rs.Rows, engine.Row{
				engine.TextValue(info.Name), engine.TextValue(info.Meta.Visible),
				engine.TextValue(nullText), engine.TextValue(keyFlag(info)), defaultVal,
				engine.TextValue(extra),
			})
		}
	}
	return rs, nil
}

// ShowIndex returns one row per indexed column, excluding
// auto-constructed indexes (PRAGMA origin "c").
func ShowIndex(ctx context.Context, eng *engine.Engine, table string) (*ResultSet, error) {
	indexList, err := eng.PragmaIndexList(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}

	rs := &ResultSet{Columns: []ColumnMeta{
		textCol("Table"), longCol("Non_unique"), textCol("Key_name"), longCol("Seq_in_index"),
		textCol("Column_name"), textCol("Collation"), longCol("Cardinality"), textCol("Index_type"),
	}}

	for _, idx := range indexList {
		if idx.Origin == "c" {
			continue
		}
		xinfo, err := eng.PragmaIndexXInfo(ctx, idx.Name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		keyName := idx.Name
		if idx.Origin == "pk" {
			keyName = "PRIMARY"
		}
		nonUnique := int64(0)
		if !idx.Unique {
			nonUnique = 1
		}
		seq := 1
		for _, xi := range xinfo {
			if !xi.KeyCol || !xi.Name.Valid {
				continue
			}
			cardinality, err := eng.CountDistinct(ctx, table, xi.Name.String)
			if err != nil {
				return nil, errors.Trace(err)
			}
			collation := engine.TextValue("A")
			if xi.Desc {
				collation = engine.NullValue()
			}
			rs.Rows = append(rs.Rows, engine.Row{
				engine.TextValue(table), engine.IntValue(nonUnique), engine.TextValue(keyName),
				engine.IntValue(int64(seq)), engine.TextValue(xi.Name.String), collation,
				engine.IntValue(cardinality), engine.TextValue("BTREE"),
			})
			seq++
		}
	}
	return rs, nil
}

// ShowCreateTable reconstructs a CREATE TABLE statement for the target
// dialect from the engine's own introspection (never from sqlite_master's
// `sql` column, which is SQLite DDL, not the target dialect).
func ShowCreateTable(ctx context.Context, eng *engine.Engine, table string) (*ResultSet, error) {
	infos, err := BuildColumnInfo(ctx, eng, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	indexList, err := eng.PragmaIndexList(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var extraLines []string
	for _, idx := range indexList {
		if idx.Origin == "pk" {
			continue
		}
		xinfo, err := eng.PragmaIndexXInfo(ctx, idx.Name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		extraLines = append(extraLines, indexCreateLine(idx, xinfo))
	}

	fkList, err := eng.PragmaForeignKeyList(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, fk := range fkList {
		extraLines = append(extraLines, foreignKeyCreateLine(table, fk))
	}

	stmt := buildCreateTableText(table, infos, nil, extraLines)
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Table"), textCol("Create Table")},
		Rows:    []engine.Row{{engine.TextValue(table), engine.TextValue(stmt)}},
	}, nil
}

func indexCreateLine(idx engine.PragmaIndexListRow, xinfo []engine.PragmaIndexXInfoRow) string {
	var cols []string
	for _, xi := range xinfo {
		if !xi.KeyCol || !xi.Name.Valid {
			continue
		}
		col := xi.Name.String
		if xi.Desc {
			col += " DESC"
		} else {
			col += " ASC"
		}
		cols = append(cols, col)
	}
	prefix := "KEY "
	if idx.Unique {
		prefix = "UNIQUE KEY "
	}
	return "  " + prefix + idx.Name + " (" + strings.Join(cols, ", ") + ")"
}

func foreignKeyCreateLine(table string, fk engine.PragmaForeignKeyRow) string {
	name := fmt.Sprintf("fk_%s_%s", table, fk.From)
	return fmt.Sprintf("  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		name, fk.From, fk.Table, fk.To)
}

// buildCreateTableText assembles the CREATE TABLE statement text from
// already-joined column info and pre-rendered extra lines (indexes and
// foreign keys), independent of any live database connection.
func buildCreateTableText(table string, infos []ColumnInfo, _ []string, extraLines []string) string {
	var lines []string
	var primaryCols []string
	for _, info := range infos {
		line := "  " + info.Name + " " + info.Meta.Visible
		if !info.Nullable {
			line += " NOT NULL"
		}
		if info.Nullable {
			if !info.Default.Present || info.Default.IsNull {
				line += " DEFAULT NULL"
			} else {
				line += " DEFAULT '" + info.Default.Text + "'"
			}
		} else if info.Default.Present && !info.Default.IsNull {
			line += " DEFAULT '" + info.Default.Text + "'"
		}
		if info.Serial {
			line += " AUTO_INCREMENT"
		}
		lines = append(lines, line)
		if info.Primary {
			primaryCols = append(primaryCols, info.Name)
		}
	}
	if len(primaryCols) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(primaryCols, ", ")+")")
	}

	extra := append([]string(nil), extraLines...)
	sort.Sort(sort.Reverse(sort.StringSlice(extra)))
	lines = append(lines, extra...)

	return "CREATE TABLE " + table + " (\n" + strings.Join(lines, ",\n") + "\n) ENGINE=SQLite"
}

// ShowCreateDatabase synthesizes CREATE DATABASE text for the single
// `main` schema.
func ShowCreateDatabase() *ResultSet {
	stmt := "CREATE DATABASE `main` /*!40100 DEFAULT CHARACTER SET utf8 */"
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Database"), textCol("Create Database")},
		Rows:    []engine.Row{{engine.TextValue("main"), engine.TextValue(stmt)}},
	}
}

// ShowTableStatus returns one row per table (optionally LIKE-filtered).
func ShowTableStatus(ctx context.Context, eng *engine.Engine, likePattern string) (*ResultSet, error) {
	tables, err := eng.ListTables(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	rs := &ResultSet{Columns: []ColumnMeta{
		textCol("Name"), textCol("Engine"), longCol("Version"), textCol("Row_format"),
		longCol("Rows"), longCol("Avg_row_length"), longCol("Data_length"), longCol("Max_data_length"),
		longCol("Index_length"), longCol("Data_free"), longCol("Auto_increment"), textCol("Create_time"),
		textCol("Update_time"), textCol("Check_time"), textCol("Collation"), textCol("Checksum"),
		textCol("Create_options"), textCol("Comment"),
	}}
	for _, t := range tables {
		if likePattern != "" && !MatchLike(likePattern, t) {
			continue
		}
		rowCount, err := eng.Count(ctx, t)
		if err != nil {
			return nil, errors.Trace(err)
		}
		infos, err := BuildColumnInfo(ctx, eng, t)
		if err != nil {
			return nil, errors.Trace(err)
		}
		autoIncr := engine.NullValue()
		for _, info := range infos {
			if info.Serial {
				autoIncr = engine.IntValue(rowCount + 1)
				break
			}
		}
		zero := engine.IntValue(0)
		null := engine.NullValue()
		rs.Rows = append(rs.Rows, engine.Row{
			engine.TextValue(t), engine.TextValue("SQLite"), engine.IntValue(9), engine.TextValue("Dynamic"),
			engine.IntValue(rowCount), zero, zero, zero,
			zero, zero, autoIncr, null,
			null, null, null, null,
			null, null,
		})
	}
	return rs, nil
}

// ShowEngines returns the fixed single-engine row.
func ShowEngines() *ResultSet {
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Engine"), textCol("Support"), textCol("Comment"),
			textCol("Transactions"), textCol("XA"), textCol("Savepoints")},
		Rows: []engine.Row{{
			engine.TextValue("SQLite"), engine.TextValue("DEFAULT"), engine.TextValue("Default storage engine"),
			engine.TextValue("NO"), engine.TextValue("NO"), engine.TextValue("NO"),
		}},
	}
}

// UTF8GeneralCI is the fixed collation id the §4.3 CHARSET/COLLATION
// rows advertise.
const UTF8GeneralCI = 33

// ShowCharset returns the fixed utf8 charset row.
func ShowCharset() *ResultSet {
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Charset"), textCol("Description"), textCol("Default collation"), longCol("Maxlen")},
		Rows: []engine.Row{{
			engine.TextValue("utf8"), engine.TextValue("UTF-8 Unicode"), engine.TextValue("utf8_general_ci"), engine.IntValue(3),
		}},
	}
}

// ShowCollation returns the fixed utf8_general_ci collation row.
func ShowCollation() *ResultSet {
	return &ResultSet{
		Columns: []ColumnMeta{textCol("Collation"), textCol("Charset"), longCol("Id"),
			textCol("Default"), textCol("Compiled"), longCol("Sortlen")},
		Rows: []engine.Row{{
			engine.TextValue("utf8_general_ci"), engine.TextValue("utf8"), engine.IntValue(UTF8GeneralCI),
			engine.TextValue("Yes"), engine.TextValue("Yes"), engine.IntValue(1),
		}},
	}
}

// ShowVariables returns the empty variables result set. likePattern is
// accepted but not applied; the result never has rows.
func ShowVariables(likePattern string) *ResultSet {
	return &ResultSet{Columns: []ColumnMeta{textCol("Variable_name"), textCol("Value")}}
}

// ShowStatus returns the empty, optionally LIKE-filtered, status
// result set.
func ShowStatus(likePattern string) *ResultSet {
	return &ResultSet{Columns: []ColumnMeta{textCol("Variable_name"), textCol("Value")}}
}
