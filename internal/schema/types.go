package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
)

// Category is the value category of a column. It decides how the column's
// default is typed and how it is rendered in DDL.
type Category int

const (
	CategoryOpaque Category = iota // no usable category; defaults cannot be typed
	CategoryText
	CategoryInt32
	CategoryInt64
	CategoryDecimal
	CategoryDateTime
)

var categoryNames = [...]string{
	CategoryOpaque:   "opaque",
	CategoryText:     "text",
	CategoryInt32:    "int32",
	CategoryInt64:    "int64",
	CategoryDecimal:  "decimal",
	CategoryDateTime: "datetime",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsNumeric reports whether defaults of this category are parsed as numbers.
func (c Category) IsNumeric() bool {
	return c == CategoryInt32 || c == CategoryInt64 || c == CategoryDecimal
}

// Column describes one table column as read from the metadata capability.
type Column struct {
	Name     string            `json:"name"`
	Remark   *string           `json:"remark,omitempty"`
	TypeCode database.TypeCode `json:"type_code"`
	TypeName string            `json:"type_name"` // upper-case, " UNSIGNED" removed, ENUM/SET values kept
	Category Category          `json:"category"`
	Size     int               `json:"size"`
	Scale    int               `json:"scale"`

	// Default holds the typed default for Text and numeric columns.
	// DateTime columns never carry a literal; see the two flags below.
	Default Value `json:"default"`

	DefaultNowOnInsert bool `json:"default_now_on_insert"` // DEFAULT CURRENT_TIMESTAMP
	DefaultNowOnUpdate bool `json:"default_now_on_update"` // ON UPDATE CURRENT_TIMESTAMP

	Nullable      bool `json:"nullable"`
	Unsigned      bool `json:"unsigned"`
	PrimaryKey    bool `json:"primary_key"`
	AutoIncrement bool `json:"auto_increment"`
}

// Key is one index grouped from raw index rows. Columns keep index ordinal
// order. Primary and Unique are tracked independently.
type Key struct {
	Name    string
	Columns []string
	Primary bool
	Unique  bool
}

// Table is the normalized description of one table.
type Table struct {
	Name      string  `json:"name"`
	Remark    *string `json:"remark,omitempty"`
	Engine    string  `json:"engine,omitempty"`
	Charset   string  `json:"charset,omitempty"`
	Collation string  `json:"collation,omitempty"`

	// AutoIncrement is the next value the table will hand out, nil if unknown.
	AutoIncrement *int64 `json:"auto_increment,omitempty"`

	Columns    []*Column `json:"columns"`
	PrimaryKey []string  `json:"primary_key,omitempty"`
	UniqueKeys KeySet    `json:"unique_keys"`
	PlainKeys  KeySet    `json:"keys"`
}

// Column returns the column named name (case-insensitive), or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// --- KeySet ---

// KeySet maps index names to their ordered column lists and iterates in
// insertion order. Setting an existing name replaces its columns in place.
// The zero value is an empty set ready to use.
type KeySet struct {
	names []string
	cols  map[string][]string
}

// Set stores cols under name.
func (s *KeySet) Set(name string, cols []string) {
	if s.cols == nil {
		s.cols = make(map[string][]string)
	}
	if _, ok := s.cols[name]; !ok {
		s.names = append(s.names, name)
	}
	s.cols[name] = cols
}

// Get returns the columns stored under name.
func (s KeySet) Get(name string) ([]string, bool) {
	cols, ok := s.cols[name]
	return cols, ok
}

func (s KeySet) Len() int {
	return len(s.names)
}

// Names returns the index names in insertion order.
func (s KeySet) Names() []string {
	return append([]string(nil), s.names...)
}

// All iterates name/columns pairs in insertion order.
func (s KeySet) All() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, name := range s.names {
			if !yield(name, s.cols[name]) {
				return
			}
		}
	}
}

// MarshalJSON writes the set as an object whose members keep insertion order.
func (s KeySet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.cols[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
