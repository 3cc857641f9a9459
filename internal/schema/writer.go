package schema

import (
	"strconv"
	"strings"
)

// The writers render MySQL DDL. Remarks and text defaults are embedded
// between single quotes exactly as stored; callers must sanitize them.

// WriteColumn renders one column clause:
//
//	name TYPE[(size[,scale])] [unsigned] [NOT NULL] [DEFAULT ... | AUTO_INCREMENT] [COMMENT '...']
func WriteColumn(c *Column) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Name))

	if typeName := strings.TrimSpace(c.TypeName); typeName != "" {
		b.WriteString(" ")
		b.WriteString(typeName)
		switch {
		case c.Size > 0 && c.Scale > 0:
			b.WriteString("(" + strconv.Itoa(c.Size) + "," + strconv.Itoa(c.Scale) + ")")
		case c.Size > 0:
			b.WriteString("(" + strconv.Itoa(c.Size) + ")")
		case c.Scale > 0:
			b.WriteString("(0," + strconv.Itoa(c.Scale) + ")")
		}
	}
	if c.Unsigned {
		b.WriteString(" unsigned")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	b.WriteString(writeDefault(c))
	if c.Remark != nil {
		b.WriteString(" COMMENT '" + *c.Remark + "'")
	}
	return b.String()
}

func writeDefault(c *Column) string {
	if c.AutoIncrement {
		return " AUTO_INCREMENT"
	}
	switch c.Category {
	case CategoryText, CategoryInt32, CategoryInt64, CategoryDecimal:
		if c.Default.IsNull() || c.Default.Category() != c.Category {
			return ""
		}
		return " DEFAULT '" + c.Default.String() + "'"
	case CategoryDateTime:
		var s string
		if c.DefaultNowOnInsert {
			s += " DEFAULT CURRENT_TIMESTAMP"
		}
		if c.DefaultNowOnUpdate {
			s += " ON UPDATE CURRENT_TIMESTAMP"
		}
		return s
	default:
		return ""
	}
}

// WriteColumns renders every non-nil column, dropping blank clauses.
func WriteColumns(cols []*Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == nil {
			continue
		}
		if s := strings.TrimSpace(WriteColumn(c)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WriteKey renders "[PREFIX ]KEY [name ](col, ...)". Column names are
// trimmed and blanks skipped; with no columns left the result is "".
func WriteKey(prefix, name string, cols []string) string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if c = strings.TrimSpace(c); c != "" {
			names = append(names, c)
		}
	}
	if len(names) == 0 {
		return ""
	}

	var b strings.Builder
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		b.WriteString(prefix + " ")
	}
	b.WriteString("KEY ")
	if name = strings.TrimSpace(name); name != "" {
		b.WriteString(name + " ")
	}
	b.WriteString("(" + strings.Join(names, ", ") + ")")
	return b.String()
}

// WriteKeys renders the primary key, then unique keys, then plain keys.
func WriteKeys(t *Table) []string {
	var out []string
	add := func(s string) {
		if s != "" {
			out = append(out, s)
		}
	}

	if t.PrimaryKey != nil {
		add(WriteKey("PRIMARY", "", t.PrimaryKey))
	}
	for name, cols := range t.UniqueKeys.All() {
		add(WriteKey("UNIQUE", name, cols))
	}
	for name, cols := range t.PlainKeys.All() {
		add(WriteKey("", name, cols))
	}
	return out
}

// WriteTable renders a complete CREATE TABLE statement ending in ";\n".
// Rendering is pure: the same Table always yields the same bytes.
func WriteTable(t *Table) string {
	clauses := append(WriteColumns(t.Columns), WriteKeys(t)...)

	var b strings.Builder
	b.WriteString("CREATE TABLE " + strings.TrimSpace(t.Name) + " (\n")
	b.WriteString("  " + strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")

	if engine := strings.TrimSpace(t.Engine); engine != "" {
		b.WriteString(" ENGINE=" + engine)
	}
	if t.AutoIncrement != nil && *t.AutoIncrement > 1 {
		b.WriteString(" AUTO_INCREMENT=" + strconv.FormatInt(*t.AutoIncrement, 10))
	}
	if charset := strings.TrimSpace(t.Charset); charset != "" {
		b.WriteString(" DEFAULT CHARSET=" + charset)
	}
	if collation := strings.TrimSpace(t.Collation); collation != "" {
		b.WriteString(" COLLATE=" + collation)
	}
	if t.Remark != nil {
		b.WriteString(" COMMENT='" + *t.Remark + "'")
	}
	b.WriteString(";\n")
	return b.String()
}
