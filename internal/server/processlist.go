package server

import (
	"time"

	"github.com/nnewton/sqlited/internal/engine"
	"github.com/nnewton/sqlited/internal/meta"
	"github.com/nnewton/sqlited/internal/procs"
)

// streamProcesslist renders the shared process table as a ResultSet.
// Without FULL, only the requester's own rows are shown (§4.8).
func (c *conn) streamProcesslist(full bool) error {
	cols := []meta.ColumnMeta{
		{Name: "Id", Wire: meta.TypeLongLong, Length: 21},
		{Name: "User", Wire: meta.TypeVarString, Length: 255},
		{Name: "Host", Wire: meta.TypeVarString, Length: 255},
		{Name: "db", Wire: meta.TypeVarString, Length: 255},
		{Name: "Command", Wire: meta.TypeVarString, Length: 255},
		{Name: "Time", Wire: meta.TypeLongLong, Length: 21},
		{Name: "State", Wire: meta.TypeVarString, Length: 255},
		{Name: "Info", Wire: meta.TypeVarString, Length: 255},
	}

	rs := &meta.ResultSet{Columns: cols}
	now := time.Now()
	for _, e := range c.procs.Snapshot() {
		if !full && e.Username != c.username {
			continue
		}
		schema := engine.TextValue(e.Schema)
		if e.Schema == "" {
			schema = engine.NullValue()
		}
		rs.Rows = append(rs.Rows, engine.Row{
			engine.IntValue(int64(e.ThreadID)),
			engine.TextValue(e.Username),
			engine.TextValue(e.HostPort),
			schema,
			engine.TextValue(procs.TitleCommand(e.LastCommand)),
			engine.IntValue(int64(now.Sub(e.LastCommandTime).Seconds())),
			engine.NullValue(),
			engine.NullValue(),
		})
	}
	return c.streamResultSet(rs)
}
