package meta

import (
	"regexp"
	"strings"
)

// MatchLike reports whether s matches a SQL LIKE pattern using '%' as
// a wildcard for any run of characters and '_' for exactly one.
// Matching is case-insensitive, matching the target dialect's default
// collation for identifiers.
func MatchLike(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re := regexp.MustCompile(b.String())
	return re.MatchString(s)
}
