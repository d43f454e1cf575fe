package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/meta"
	"github.com/nnewton/sqlited/internal/stmt"
	"github.com/nnewton/sqlited/internal/wire"
)

// Command bytes, matching the teacher's server/common command-byte
// ordering (COM_SLEEP=0, COM_QUIT=1, COM_INIT_DB=2, COM_QUERY=3, ...,
// COM_PING=14).
const (
	comQuit   byte = 1
	comInitDB byte = 2
	comQuery  byte = 3
	comPing   byte = 14
)

func commandName(b byte) string {
	switch b {
	case comQuit:
		return "Quit"
	case comInitDB:
		return "Init DB"
	case comQuery:
		return "Query"
	case comPing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// definedCommandNames names every command byte the wire protocol
// defines, in its MySQL COM_* spelling, including the ones this
// gateway does not implement. A byte absent from this table is not a
// defined command at all.
var definedCommandNames = map[byte]string{
	0:         "SLEEP",
	comQuit:   "QUIT",
	comInitDB: "INIT_DB",
	comQuery:  "QUERY",
	4:         "FIELD_LIST",
	5:         "CREATE_DB",
	6:         "DROP_DB",
	7:         "REFRESH",
	8:         "SHUTDOWN",
	9:         "STATISTICS",
	10:        "PROCESS_INFO",
	11:        "CONNECT",
	12:        "PROCESS_KILL",
	13:        "DEBUG",
	comPing:   "PING",
	15:        "TIME",
	16:        "DELAYED_INSERT",
	17:        "CHANGE_USER",
	18:        "BINLOG_DUMP",
	19:        "TABLE_DUMP",
	20:        "CONNECT_OUT",
	21:        "REGISTER_SLAVE",
	22:        "STMT_PREPARE",
	23:        "STMT_EXECUTE",
	24:        "STMT_SEND_LONG_DATA",
	25:        "STMT_CLOSE",
	26:        "STMT_RESET",
	27:        "SET_OPTION",
	28:        "STMT_FETCH",
	29:        "DAEMON",
	30:        "BINLOG_DUMP_GTID",
	31:        "RESET_CONNECTION",
}

// protocolCommandName reports the COM_* name of a defined command
// byte, or "UNKNOWN" if the byte names no defined command at all.
func protocolCommandName(b byte) string {
	if name, ok := definedCommandNames[b]; ok {
		return name
	}
	return "UNKNOWN"
}

// handleCommand dispatches one command-phase packet. It returns
// (quit, error): quit signals the handler should close the connection
// after any response has been flushed; error signals a fatal I/O
// failure that must abort the handler without a further response.
func (c *conn) handleCommand(payload []byte) (bool, error) {
	if len(payload) == 0 {
		return false, c.writeErr(1235, "42000", "This version of SQLite doesn't yet support 'UNKNOWN'")
	}
	command, body := payload[0], payload[1:]
	c.procs.Update(c.procID, commandName(command))

	quit, err := c.dispatchCommand(command, body)

	// The command boundary closes here: the response (or the fatal
	// error that aborts it) has been flushed, so the entry goes back
	// to idle until the next command arrives.
	if !quit && err == nil {
		c.procs.Update(c.procID, "Sleep")
	}
	return quit, err
}

func (c *conn) dispatchCommand(command byte, body []byte) (bool, error) {
	switch command {
	case comQuit:
		return true, nil
	case comInitDB:
		schema := string(body)
		if schema != "main" {
			return false, c.writeErr(1044, "42000", accessDeniedMessage(c.username, schema))
		}
		c.schema = schema
		c.procs.SetSchema(c.procID, schema)
		return false, c.writeOK()
	case comQuery:
		return false, c.handleQuery(string(body))
	case comPing:
		return false, c.writeOK()
	default:
		return false, c.writeErr(1235, "42000",
			fmt.Sprintf("This version of SQLite doesn't yet support '%s'", protocolCommandName(command)))
	}
}

func accessDeniedMessage(username, schema string) string {
	return fmt.Sprintf("Access denied for user '%s'@'%s' to database '%s'", username, "localhost", schema)
}

// handleQuery implements §4.6's query routing.
func (c *conn) handleQuery(query string) error {
	trimmed := strings.TrimRight(strings.TrimSpace(query), "; \t")
	if trimmed == "" {
		return c.writeOK()
	}

	keyword := firstKeyword(trimmed)
	ctx := context.Background()

	if keyword == "SELECT" {
		result, err := c.eng.Execute(ctx, trimmed)
		if err != nil {
			return c.writeErr(1064, "42000", err.Error())
		}
		return c.streamResultSet(toResultSet(result))
	}

	if match, ok := stmt.Recognize(trimmed); ok {
		return c.dispatchStatement(ctx, match)
	}

	if keyword == "SET" {
		return c.writeOK()
	}

	return c.writeErr(1044, "42000", accessDeniedMessage(c.username, c.schema))
}

func firstKeyword(trimmed string) string {
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func (c *conn) dispatchStatement(ctx context.Context, match stmt.Match) error {
	switch match.Tag {
	case stmt.ShowDatabases:
		return c.streamMetaResult(meta.ShowDatabases(), nil)
	case stmt.ShowTables:
		rs, err := meta.ShowTables(ctx, c.eng, match.Groups["like"])
		return c.streamMetaResult(rs, err)
	case stmt.ShowColumns:
		table := stmt.ExtractName(match.Groups["table"])
		full := strings.TrimSpace(match.Groups["full"]) != ""
		rs, err := meta.ShowColumns(ctx, c.eng, table, full)
		return c.streamMetaResult(rs, err)
	case stmt.ShowIndex:
		table := stmt.ExtractName(match.Groups["table"])
		rs, err := meta.ShowIndex(ctx, c.eng, table)
		return c.streamMetaResult(rs, err)
	case stmt.ShowCreateTable:
		table := stmt.ExtractName(match.Groups["table"])
		rs, err := meta.ShowCreateTable(ctx, c.eng, table)
		return c.streamMetaResult(rs, err)
	case stmt.ShowCreateDB:
		return c.streamMetaResult(meta.ShowCreateDatabase(), nil)
	case stmt.ShowTableStatus:
		rs, err := meta.ShowTableStatus(ctx, c.eng, match.Groups["like"])
		return c.streamMetaResult(rs, err)
	case stmt.ShowEngines:
		return c.streamMetaResult(meta.ShowEngines(), nil)
	case stmt.ShowCharacterSet:
		return c.streamMetaResult(meta.ShowCharset(), nil)
	case stmt.ShowCollation:
		return c.streamMetaResult(meta.ShowCollation(), nil)
	case stmt.ShowVariables:
		return c.streamMetaResult(meta.ShowVariables(match.Groups["like"]), nil)
	case stmt.ShowStatus:
		return c.streamMetaResult(meta.ShowStatus(match.Groups["like"]), nil)
	case stmt.ShowProcesslist:
		return c.streamProcesslist(strings.TrimSpace(match.Groups["full"]) != "")
	case stmt.Use:
		schema := stmt.ExtractName(match.Groups["database"])
		if schema != "main" {
			return c.writeErr(1044, "42000", accessDeniedMessage(c.username, schema))
		}
		c.schema = schema
		c.procs.SetSchema(c.procID, schema)
		return c.writeOK()
	case stmt.Help:
		return c.writeErr(1244, "HY000", "no help topics match your search")
	default:
		return c.writeErr(1044, "42000", accessDeniedMessage(c.username, c.schema))
	}
}

func (c *conn) streamMetaResult(rs *meta.ResultSet, err error) error {
	if err != nil {
		return c.writeErr(1064, "42000", err.Error())
	}
	return c.streamResultSet(rs)
}

// toResultSet converts a raw engine result (declared-type text per
// column) into the wire-ready ResultSet shape, applying the same
// type-mapping table the metadata translator uses for schema columns.
func toResultSet(result *engine.Result) *meta.ResultSet {
	cols := make([]meta.ColumnMeta, len(result.Columns))
	for i, c := range result.Columns {
		m := meta.MapType(c.DeclaredType)
		m.Name = c.Name
		cols[i] = m
	}
	return &meta.ResultSet{Columns: cols, Rows: result.Rows}
}

func (c *conn) streamResultSet(rs *meta.ResultSet) error {
	nextSeq, err := wire.StreamResultSet(c.netConn, c.nextSeq(), rs)
	if err != nil {
		return err
	}
	c.seq = nextSeq
	return nil
}
