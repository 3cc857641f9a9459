package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/database/dbtest"
)

func str(s string) *string { return &s }

func i64(n int64) *int64 { return &n }

// --- fake metadata ---

// fakeTable is everything the fake knows about one table.
type fakeTable struct {
	remark      *string
	engine      *string
	collation   *string
	autoInc     *int64
	createTable string
	columns     []database.ColumnRow
	extra       map[string]string // column name -> EXTRA
	indexes     []database.IndexRow
}

type fakeMeta struct {
	catalog string
	order   []string
	tables  map[string]*fakeTable

	// failOn makes any call whose description contains the substring
	// return failErr.
	failOn  string
	failErr error

	calls []string
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{catalog: "shop", tables: map[string]*fakeTable{}}
}

func (f *fakeMeta) add(name string, t *fakeTable) *fakeMeta {
	f.order = append(f.order, name)
	f.tables[name] = t
	return f
}

func (f *fakeMeta) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failOn != "" && strings.Contains(call, f.failOn) {
		return f.failErr
	}
	return nil
}

func (f *fakeMeta) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeMeta) Catalog(ctx context.Context) (string, error) {
	if err := f.record("catalog"); err != nil {
		return "", err
	}
	return f.catalog, nil
}

func (f *fakeMeta) Tables(ctx context.Context, catalog, table string) ([]database.TableRow, error) {
	if err := f.record("tables " + catalog + "." + table); err != nil {
		return nil, err
	}
	var out []database.TableRow
	for _, name := range f.order {
		if table != "" && name != table {
			continue
		}
		out = append(out, database.TableRow{Name: str(name), Remarks: f.tables[name].remark})
	}
	return out, nil
}

func (f *fakeMeta) Columns(ctx context.Context, catalog, table string) ([]database.ColumnRow, error) {
	if err := f.record("columns " + catalog + "." + table); err != nil {
		return nil, err
	}
	return f.tables[table].columns, nil
}

func (f *fakeMeta) Indexes(ctx context.Context, catalog, table string) ([]database.IndexRow, error) {
	if err := f.record("indexes " + catalog + "." + table); err != nil {
		return nil, err
	}
	return f.tables[table].indexes, nil
}

func (f *fakeMeta) Query(ctx context.Context, q string, args ...any) (database.Rows, error) {
	desc := "query " + strings.Join(strings.Fields(q), " ")
	if err := f.record(desc); err != nil {
		return nil, err
	}

	if name, ok := strings.CutPrefix(q, "SHOW CREATE TABLE "); ok {
		name = strings.ReplaceAll(strings.Trim(name, "`"), "``", "`")
		t, ok := f.tables[name]
		if !ok {
			return nil, fmt.Errorf("table %q doesn't exist", name)
		}
		return &dbtest.Rows{
			Cols: []string{"Table", "Create Table"},
			Data: [][]any{{name, t.createTable}},
		}, nil
	}

	if len(args) < 2 || args[0] != f.catalog {
		return nil, fmt.Errorf("unexpected query args %v", args)
	}
	t, ok := f.tables[args[1].(string)]
	if !ok {
		return &dbtest.Rows{}, nil
	}

	one := func(col string, v any) *dbtest.Rows {
		return &dbtest.Rows{Cols: []string{col}, Data: [][]any{{v}}}
	}
	switch q {
	case engineQuery:
		return one("ENGINE", deref(t.engine)), nil
	case collationQuery:
		return one("TABLE_COLLATION", deref(t.collation)), nil
	case autoIncrementQuery:
		if t.autoInc == nil {
			return one("AUTO_INCREMENT", nil), nil
		}
		return one("AUTO_INCREMENT", *t.autoInc), nil
	case extraQuery:
		extra, ok := t.extra[args[2].(string)]
		if !ok {
			return &dbtest.Rows{Cols: []string{"EXTRA"}}, nil
		}
		return one("EXTRA", extra), nil
	}
	return nil, fmt.Errorf("unexpected query %q", q)
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// usersTable is a small but complete fixture shared by reader tests.
func usersTable() *fakeTable {
	return &fakeTable{
		remark:    str("registered users"),
		engine:    str("InnoDB"),
		collation: str("utf8mb4_general_ci"),
		autoInc:   i64(42),
		createTable: "CREATE TABLE `users` (\n  `id` int unsigned NOT NULL AUTO_INCREMENT,\n" +
			"  PRIMARY KEY (`id`)\n) ENGINE=InnoDB AUTO_INCREMENT=42 DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_general_ci",
		columns: []database.ColumnRow{
			{
				Name: str("id"), DataType: database.TypeBigInt, TypeName: str("INT UNSIGNED"),
				ColumnSize: 10, IsNullable: str("NO"), IsAutoIncrement: str("YES"),
			},
			{
				Name: str("email"), Remarks: str("login"), DataType: database.TypeVarChar, TypeName: str("VARCHAR"),
				ColumnSize: 128, ColumnDef: str(""), IsNullable: str("NO"), IsAutoIncrement: str("NO"),
			},
			{
				Name: str("age"), DataType: database.TypeTinyInt, TypeName: str("TINYINT"),
				ColumnSize: 3, ColumnDef: str("18"), IsNullable: str("YES"), IsAutoIncrement: str("NO"),
			},
			{
				Name: str("created_at"), DataType: database.TypeTimestamp, TypeName: str("DATETIME"),
				ColumnDef: str("CURRENT_TIMESTAMP"), IsNullable: str("NO"), IsAutoIncrement: str("NO"),
			},
			{
				Name: str("updated_at"), DataType: database.TypeTimestamp, TypeName: str("DATETIME"),
				ColumnDef: str("CURRENT_TIMESTAMP"), IsNullable: str("NO"), IsAutoIncrement: str("NO"),
			},
		},
		extra: map[string]string{
			"id":         "auto_increment",
			"created_at": "DEFAULT_GENERATED",
			"updated_at": "DEFAULT_GENERATED on update CURRENT_TIMESTAMP",
		},
		indexes: []database.IndexRow{
			{IndexName: str("PRIMARY"), ColumnName: str("id")},
			{IndexName: str("ux_email"), ColumnName: str("email")},
			{IndexName: str("ix_age_created"), ColumnName: str("age"), NonUnique: true},
			{IndexName: str("ix_age_created"), ColumnName: str("created_at"), NonUnique: true},
		},
	}
}
