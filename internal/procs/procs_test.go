package procs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertUpdateDelete(t *testing.T) {
	table := NewTable()
	id := table.Insert("127.0.0.1:54321")
	assert.NotZero(t, id)

	table.SetAuth(id, "root", "main")
	table.Update(id, "Query")

	snap := table.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "root", snap[0].Username)
	assert.Equal(t, "main", snap[0].Schema)
	assert.Equal(t, "Query", snap[0].LastCommand)

	table.Delete(id)
	assert.Empty(t, table.Snapshot())
}

func TestSnapshotSortedByThreadID(t *testing.T) {
	table := NewTable()
	var ids []uint32
	for i := 0; i < 5; i++ {
		ids = append(ids, table.Insert("127.0.0.1:0"))
	}
	snap := table.Snapshot()
	require.Len(t, snap, 5)
	for i := 1; i < len(snap); i++ {
		assert.Less(t, snap[i-1].ThreadID, snap[i].ThreadID)
	}
}

func TestTitleCommand(t *testing.T) {
	assert.Equal(t, "Query", TitleCommand("query"))
	assert.Equal(t, "Sleep", TitleCommand("Sleep"))
	assert.Equal(t, "", TitleCommand(""))
}
