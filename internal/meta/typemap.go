package meta

import (
	"regexp"
	"strconv"
	"strings"
)

var parenArgsRe = regexp.MustCompile(`\(([^)]*)\)`)

// parseParenArgs extracts the TYPE(N) / TYPE(N,M) argument list, if any.
func parseParenArgs(declared string) (n int, m int, hasN, hasM bool) {
	match := parenArgsRe.FindStringSubmatch(declared)
	if match == nil {
		return 0, 0, false, false
	}
	parts := strings.Split(match[1], ",")
	if len(parts) >= 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			n, hasN = v, true
		}
	}
	if len(parts) >= 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			m, hasM = v, true
		}
	}
	return n, m, hasN, hasM
}

// MapType implements the §4.3 type-mapping table: declared SQL type
// text to (wire field code, length, decimals, visible text). The checks
// are applied in the table's literal order; the first match wins.
func MapType(declared string) ColumnMeta {
	upper := strings.ToUpper(declared)

	switch {
	case strings.Contains(upper, "INT"):
		return ColumnMeta{Visible: "int(21)", Wire: TypeLongLong, Length: 21, Decimals: 0}

	case strings.Contains(upper, "DECIMAL") || strings.Contains(upper, "NUMERIC"):
		n, m, hasN, hasM := parseParenArgs(upper)
		if !hasN {
			n = 0
		}
		if !hasM {
			m = 0
		}
		return ColumnMeta{
			Visible:  "decimal(" + strconv.Itoa(n) + "," + strconv.Itoa(m) + ")",
			Wire:     TypeDecimal,
			Length:   uint32(n),
			Decimals: byte(m),
		}

	case strings.Contains(upper, "FLOAT") || strings.Contains(upper, "DOUBLE") || strings.Contains(upper, "REAL"):
		n, m, hasN, hasM := parseParenArgs(upper)
		if !hasN {
			n = 53
		}
		if !hasM {
			m = 0
		}
		if n+m > 53 {
			n = 53 - m
			if n < 0 {
				n = 0
			}
		}
		return ColumnMeta{
			Visible:  "double(" + strconv.Itoa(n) + "," + strconv.Itoa(m) + ")",
			Wire:     TypeDouble,
			Length:   uint32(n),
			Decimals: byte(m),
		}

	case strings.Contains(upper, "CHAR"):
		n, _, hasN, _ := parseParenArgs(upper)
		if !hasN {
			n = 255
		}
		return ColumnMeta{
			Visible:  "varchar(" + strconv.Itoa(n) + ")",
			Wire:     TypeVarString,
			Length:   uint32(n),
			Decimals: 0,
		}

	case strings.Contains(upper, "STAMP"):
		return ColumnMeta{Visible: "timestamp", Wire: TypeTimestamp, Length: 19, Decimals: 0}

	case strings.Contains(upper, "DATE"):
		return ColumnMeta{Visible: "datetime", Wire: TypeDatetime, Length: 19, Decimals: 0}

	case strings.Contains(upper, "TEXT"):
		return ColumnMeta{Visible: "varchar(65535)", Wire: TypeVarString, Length: 65535, Decimals: 0}

	default:
		return ColumnMeta{Visible: "blob", Wire: TypeBlob, Length: (1 << 24) - 1, Decimals: 0}
	}
}

// IsTextLike reports whether a wire type carries UTF-8 text, for the
// purposes of SHOW COLUMNS' Collation column and the ×3 length
// adjustment in the column-definition packet (§4.7).
func IsTextLike(t WireType) bool {
	return t == TypeVarString
}
