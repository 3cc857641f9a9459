package schema

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
)

// NameSet is an unordered set of column names.
type NameSet map[string]struct{}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (s NameSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// QuerySchema is the projection of a Table used to generate SELECT, INSERT
// and UPDATE statements. Columns holds copies of the table's columns with
// trimmed names; a column whose name is empty takes part in no list.
type QuerySchema struct {
	TableName string    `json:"table_name"`
	IDColumn  string    `json:"id_column"` // first primary key column, or ""
	Columns   []*Column `json:"-"`

	ColumnNames          []string            `json:"column_names"`
	AutoIncrementColumns NameSet             `json:"auto_increment_columns"`
	Categories           map[string]Category `json:"categories"`
	Defaults             map[string]Value    `json:"defaults"`

	SelectColumns string `json:"select_columns"`

	InsertColumnNames  []string `json:"insert_column_names"`
	InsertColumns      string   `json:"insert_columns"`
	InsertPlaceholders string   `json:"insert_placeholders"`
	InsertNowColumns   NameSet  `json:"insert_now_columns"`

	UpdateColumnNames []string `json:"update_column_names"`
	UpdateNowColumns  NameSet  `json:"update_now_columns"`
}

// ReadQuerySchema derives the query schema of t. It fails when a column's
// category cannot carry a default value.
func ReadQuerySchema(t *Table) (*QuerySchema, error) {
	qs := &QuerySchema{
		TableName:            t.Name,
		AutoIncrementColumns: NameSet{},
		Categories:           make(map[string]Category, len(t.Columns)),
		Defaults:             make(map[string]Value, len(t.Columns)),
		InsertNowColumns:     NameSet{},
		UpdateNowColumns:     NameSet{},
	}

	for _, pk := range t.PrimaryKey {
		if pk = strings.TrimSpace(pk); pk != "" {
			qs.IDColumn = pk
			break
		}
	}

	for _, c := range t.Columns {
		if c == nil {
			continue
		}
		cc := *c
		cc.Name = strings.TrimSpace(c.Name)
		c = &cc
		qs.Columns = append(qs.Columns, c)
		if c.Name == "" {
			continue
		}

		def, err := defaultOf(t.Name, c)
		if err != nil {
			return nil, err
		}
		qs.Categories[c.Name] = c.Category
		qs.Defaults[c.Name] = def

		qs.ColumnNames = append(qs.ColumnNames, c.Name)
		if c.AutoIncrement {
			qs.AutoIncrementColumns[c.Name] = struct{}{}
		}
		if c.DefaultNowOnInsert {
			qs.InsertNowColumns[c.Name] = struct{}{}
		} else {
			qs.InsertColumnNames = append(qs.InsertColumnNames, c.Name)
		}
		if c.DefaultNowOnUpdate {
			qs.UpdateNowColumns[c.Name] = struct{}{}
		}
		if !c.DefaultNowOnInsert && !c.DefaultNowOnUpdate {
			qs.UpdateColumnNames = append(qs.UpdateColumnNames, c.Name)
		}
	}

	qs.SelectColumns = strings.Join(qs.ColumnNames, ", ")
	qs.InsertColumns = strings.Join(qs.InsertColumnNames, ", ")
	qs.InsertPlaceholders = strings.TrimSuffix(strings.Repeat("?, ", len(qs.InsertColumnNames)), ", ")
	return qs, nil
}

// defaultOf returns the default a statement layer should bind for c.
// DateTime columns are filled by the database, so their default is null.
func defaultOf(table string, c *Column) (Value, error) {
	switch c.Category {
	case CategoryText, CategoryInt32, CategoryInt64, CategoryDecimal:
		if c.Default.Category() != c.Category {
			return NullValue(c.Category), nil
		}
		return c.Default, nil
	case CategoryDateTime:
		return NullValue(CategoryDateTime), nil
	default:
		return Value{}, errs.Newf(errs.ErrKindInvalidData,
			"column %s.%s: type %d has no value category", table, c.Name, c.TypeCode)
	}
}

// QuerySchemaReader reads a table and derives its query schema in one step.
type QuerySchemaReader struct {
	Tables *TableReader
}

// Read returns nil, nil when the table does not exist.
func (r QuerySchemaReader) Read(ctx context.Context, h database.Metadata, table string) (*QuerySchema, error) {
	tr := r.Tables
	if tr == nil {
		tr = NewTableReader()
	}
	t, err := tr.Read(ctx, h, table)
	if err != nil || t == nil {
		return nil, err
	}
	return ReadQuerySchema(t)
}
