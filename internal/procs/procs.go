// Package procs maintains the process-wide table of active connections
// that SHOW PROCESSLIST enumerates. Grounded on the attribute/session
// bookkeeping shape of the teacher's server/net/session.go, narrowed to
// the single flat table spec.md §4.8/§5 describes (a mutex-guarded map
// rather than a per-session attribute context, since there is exactly
// one reader: SHOW PROCESSLIST).
package procs

import (
	"sync"
	"time"
)

// Entry is one row of the process table.
type Entry struct {
	ThreadID        uint32
	Username        string
	HostPort        string
	Schema          string
	LastCommand     string
	LastCommandTime time.Time
}

// Table is a mutex-guarded map of active connections keyed by the
// thread id that Insert assigns. The client's host:port is stored in
// each entry but is not used as the key.
type Table struct {
	mu      sync.Mutex
	entries map[uint32]*Entry
	nextID  uint32
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{entries: make(map[uint32]*Entry)}
}

// Insert adds a new entry and returns the thread id assigned to it.
// Call on accept, before the handshake is sent.
func (t *Table) Insert(hostPort string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.entries[id] = &Entry{
		ThreadID:        id,
		HostPort:        hostPort,
		LastCommand:     "Connect",
		LastCommandTime: time.Now(),
	}
	return id
}

// SetAuth records the username and schema negotiated during the
// handshake.
func (t *Table) SetAuth(id uint32, username, schema string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		e.Username = username
		e.Schema = schema
	}
}

// Update records a command transition, called at every command
// boundary.
func (t *Table) Update(id uint32, command string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		e.LastCommand = command
		e.LastCommandTime = time.Now()
	}
}

// SetSchema updates the schema recorded for a USE statement.
func (t *Table) SetSchema(id uint32, schema string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		e.Schema = schema
	}
}

// Delete removes an entry, called on handler exit via every exit path.
func (t *Table) Delete(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// Snapshot returns a stable copy of every entry, sorted by thread id,
// for SHOW PROCESSLIST to render without holding the table lock.
func (t *Table) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ThreadID < out[j-1].ThreadID; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// TitleCommand renders a command tag ("query", "sleep", "connect") in
// the titlecased form SHOW PROCESSLIST expects ("Query", "Sleep",
// "Connect").
func TitleCommand(command string) string {
	if command == "" {
		return ""
	}
	if command[0] >= 'a' && command[0] <= 'z' {
		return string(command[0]-32) + command[1:]
	}
	return command
}
