package stmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizeShowVariants(t *testing.T) {
	cases := []struct {
		statement string
		tag       Tag
	}{
		{"SHOW DATABASES;", ShowDatabases},
		{"show tables", ShowTables},
		{"SHOW TABLES LIKE 'user%'", ShowTables},
		{"SHOW FULL COLUMNS FROM users", ShowColumns},
		{"SHOW COLUMNS FROM users", ShowColumns},
		{"SHOW CREATE TABLE `users`", ShowCreateTable},
		{"SHOW CREATE DATABASE main", ShowCreateDB},
		{"SHOW INDEX FROM users", ShowIndex},
		{"SHOW KEYS FROM users", ShowIndex},
		{"SHOW TABLE STATUS", ShowTableStatus},
		{"SHOW ENGINES", ShowEngines},
		{"SHOW CHARACTER SET", ShowCharacterSet},
		{"SHOW COLLATION", ShowCollation},
		{"SHOW FULL PROCESSLIST", ShowProcesslist},
		{"SHOW PROCESSLIST", ShowProcesslist},
		{"SHOW VARIABLES", ShowVariables},
		{"SHOW GLOBAL STATUS", ShowStatus},
		{"HELP contents", Help},
		{"USE main", Use},
	}
	for _, c := range cases {
		m, ok := Recognize(c.statement)
		require.True(t, ok, "statement=%q", c.statement)
		assert.Equal(t, c.tag, m.Tag, "statement=%q", c.statement)
	}
}

func TestRecognizeShowColumnsGroups(t *testing.T) {
	m, ok := Recognize("SHOW FULL COLUMNS FROM `users` LIKE 'name'")
	require.True(t, ok)
	assert.Equal(t, ShowColumns, m.Tag)
	assert.Equal(t, "FULL ", m.Groups["full"])
	assert.Equal(t, "`users`", m.Groups["table"])
	assert.Equal(t, "name", m.Groups["like"])
}

func TestRecognizeNoMatch(t *testing.T) {
	_, ok := Recognize("SELECT * FROM users")
	assert.False(t, ok)
}

func TestExtractName(t *testing.T) {
	assert.Equal(t, "users", ExtractName("`users`"))
	assert.Equal(t, "users", ExtractName("main.users"))
	assert.Equal(t, "users", ExtractName("[users]"))
	assert.Equal(t, "users", ExtractName("`main`.`users`"))
}
