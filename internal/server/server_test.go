package server

import (
	"database/sql"
	"net"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestFirstKeywordAndAccessDenied(t *testing.T) {
	assert.Equal(t, "SELECT", firstKeyword("select * from users"))
	assert.Equal(t, "", firstKeyword("   "))
	assert.Contains(t, accessDeniedMessage("root", "other"), "root")
	assert.Contains(t, accessDeniedMessage("root", "other"), "other")
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "Quit", commandName(comQuit))
	assert.Equal(t, "Query", commandName(comQuery))
	assert.Equal(t, "Unknown", commandName(0x7F))
}

func TestProtocolCommandName(t *testing.T) {
	assert.Equal(t, "QUERY", protocolCommandName(comQuery))
	assert.Equal(t, "FIELD_LIST", protocolCommandName(0x04))
	assert.Equal(t, "SHUTDOWN", protocolCommandName(0x08))
	assert.Equal(t, "UNKNOWN", protocolCommandName(0x99))
}

// newSeedDB creates a SQLite file with one small table and returns its path.
func newSeedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (name) VALUES ('alice'), ('bob')`)
	require.NoError(t, err)
	return path
}

// TestServeEndToEnd dials the server with the real go-sql-driver/mysql
// client and exercises a SELECT and a SHOW statement, matching the
// client library the teacher's own go.mod already depends on.
func TestServeEndToEnd(t *testing.T) {
	dbPath := newSeedDB(t)

	srv := New(dbPath)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.listener = ln

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			srv.wg.Add(1)
			go func() {
				defer srv.wg.Done()
				srv.handle(conn)
			}()
		}
	}()
	defer srv.Stop()

	dsn := "root:anything@tcp(" + ln.Addr().String() + ")/main?timeout=2s"
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	db.SetMaxOpenConns(1)
	require.Eventually(t, func() bool {
		return db.Ping() == nil
	}, 2*time.Second, 20*time.Millisecond)

	rows, err := db.Query("SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var id int64
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		names = append(names, name)
	}
	assert.Equal(t, []string{"alice", "bob"}, names)

	tableRows, err := db.Query("SHOW TABLES")
	require.NoError(t, err)
	defer tableRows.Close()
	var tables []string
	for tableRows.Next() {
		var name string
		require.NoError(t, tableRows.Scan(&name))
		tables = append(tables, name)
	}
	assert.Contains(t, tables, "users")
}
