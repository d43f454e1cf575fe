// Package stmt recognizes the fixed set of administrative statements
// (SHOW ..., USE ..., HELP) this gateway answers itself rather than
// forwarding to the SQLite engine. Grounded on the teacher's
// server/dispatcher SHOW-statement dispatch (system_variable_engine.go,
// enhanced_message_handler.go), reshaped into the anchored
// pattern-table idiom spec.md §4.4 calls for.
package stmt

import (
	"regexp"
	"strings"
)

// Tag names one recognized statement shape.
type Tag string

const (
	ShowCharacterSet  Tag = "show_character_set"
	ShowCollation     Tag = "show_collation"
	ShowColumns       Tag = "show_columns"
	ShowCreateDB      Tag = "show_create_database"
	ShowCreateTable   Tag = "show_create_table"
	ShowDatabases     Tag = "show_databases"
	ShowEngines       Tag = "show_engines"
	ShowIndex         Tag = "show_index"
	ShowProcesslist   Tag = "show_processlist"
	ShowTableStatus   Tag = "show_table_status"
	ShowTables        Tag = "show_tables"
	ShowStatus        Tag = "show_status"
	ShowVariables     Tag = "show_variables"
	Help              Tag = "help"
	Use               Tag = "use"
)

// Match is a recognized statement: its tag and the named capture groups
// the pattern extracted.
type Match struct {
	Tag    Tag
	Groups map[string]string
}

type entry struct {
	tag     Tag
	pattern *regexp.Regexp
}

// table is the fixed ordered list of (tag, pattern) entries. Order
// matters only where patterns could otherwise overlap; each pattern here
// is anchored and mutually exclusive by keyword, so first-match-wins is
// purely a documentation convenience.
var table = []entry{
	{ShowCharacterSet, regexp.MustCompile(`(?i)^SHOW\s+CHARACTER\s+SET$`)},
	{ShowCollation, regexp.MustCompile(`(?i)^SHOW\s+COLLATION$`)},
	{ShowColumns, regexp.MustCompile(`(?i)^SHOW\s+(?P<full>FULL\s+)?COLUMNS\s+FROM\s+(?P<table>\S+)(\s+FROM\s+(?P<database>\S+))?(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{ShowCreateDB, regexp.MustCompile(`(?i)^SHOW\s+CREATE\s+DATABASE\s+(?P<database>\S+)$`)},
	{ShowCreateTable, regexp.MustCompile(`(?i)^SHOW\s+CREATE\s+TABLE\s+(?P<table>\S+)$`)},
	{ShowDatabases, regexp.MustCompile(`(?i)^SHOW\s+DATABASES(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{ShowEngines, regexp.MustCompile(`(?i)^SHOW\s+ENGINES$`)},
	{ShowIndex, regexp.MustCompile(`(?i)^SHOW\s+(INDEX|INDEXES|KEYS)\s+FROM\s+(?P<table>\S+)(\s+FROM\s+(?P<database>\S+))?$`)},
	{ShowProcesslist, regexp.MustCompile(`(?i)^SHOW\s+(?P<full>FULL\s+)?PROCESSLIST$`)},
	{ShowTableStatus, regexp.MustCompile(`(?i)^SHOW\s+TABLE\s+STATUS(\s+FROM\s+(?P<database>\S+))?(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{ShowTables, regexp.MustCompile(`(?i)^SHOW\s+TABLES(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{ShowStatus, regexp.MustCompile(`(?i)^SHOW\s+(GLOBAL\s+|SESSION\s+)?STATUS(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{ShowVariables, regexp.MustCompile(`(?i)^SHOW\s+(GLOBAL\s+|SESSION\s+)?VARIABLES(\s+LIKE\s+'(?P<like>[^']*)')?$`)},
	{Help, regexp.MustCompile(`(?i)^HELP(\s+.*)?$`)},
	{Use, regexp.MustCompile(`(?i)^USE\s+(?P<database>\S+)$`)},
}

// Recognize strips a trailing semicolon and trailing whitespace from
// statement and matches it against the fixed pattern table, returning
// the first match.
func Recognize(statement string) (Match, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(statement), "; \t")
	for _, e := range table {
		names := e.pattern.SubexpNames()
		m := e.pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		groups := make(map[string]string, len(names))
		for i, name := range names {
			if name == "" || i >= len(m) {
				continue
			}
			groups[name] = m[i]
		}
		return Match{Tag: e.tag, Groups: groups}, true
	}
	return Match{}, false
}

// ExtractName strips backticks and square brackets from a qualified
// identifier, splits on '.', and returns the last component.
func ExtractName(raw string) string {
	cleaned := strings.NewReplacer("`", "", "[", "", "]", "").Replace(raw)
	parts := strings.Split(cleaned, ".")
	return parts[len(parts)-1]
}
