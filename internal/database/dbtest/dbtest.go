// Package dbtest provides an in-memory database.Metadata for tests of
// packages that sit above the schema readers.
//
// It answers the catalog, table, column and index calls from registered
// tables and SHOW CREATE TABLE from Table.CreateTable. Every other query
// returns no rows, so auxiliary lookups (engine, collation, EXTRA) come back
// empty.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/koustreak/tabledef/internal/database"
)

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Table is what the fake knows about one table.
type Table struct {
	Remarks     *string
	CreateTable string
	Columns     []database.ColumnRow
	Indexes     []database.IndexRow
}

// Metadata is a concurrency-safe fake of database.Metadata.
type Metadata struct {
	// Err, when set, fails every call.
	Err error

	mu      sync.Mutex
	catalog string
	order   []string
	tables  map[string]*Table
	calls   int
}

var _ database.Metadata = (*Metadata)(nil)

func New(catalog string) *Metadata {
	return &Metadata{catalog: catalog, tables: map[string]*Table{}}
}

// Add registers a table. Tables are listed in the order they were added.
func (m *Metadata) Add(name string, t *Table) *Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append(m.order, name)
	m.tables[name] = t
	return m
}

// Calls returns the number of capability calls made so far.
func (m *Metadata) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Metadata) enter(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

func (m *Metadata) table(name string) *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[name]
}

func (m *Metadata) Catalog(ctx context.Context) (string, error) {
	if err := m.enter(ctx); err != nil {
		return "", err
	}
	return m.catalog, nil
}

func (m *Metadata) Tables(ctx context.Context, catalog, table string) ([]database.TableRow, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []database.TableRow
	for _, name := range m.order {
		if table != "" && name != table {
			continue
		}
		out = append(out, database.TableRow{Name: Str(name), Remarks: m.tables[name].Remarks})
	}
	return out, nil
}

func (m *Metadata) Columns(ctx context.Context, catalog, table string) ([]database.ColumnRow, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	if t := m.table(table); t != nil {
		return t.Columns, nil
	}
	return nil, nil
}

func (m *Metadata) Indexes(ctx context.Context, catalog, table string) ([]database.IndexRow, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	if t := m.table(table); t != nil {
		return t.Indexes, nil
	}
	return nil, nil
}

func (m *Metadata) Query(ctx context.Context, q string, args ...any) (database.Rows, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}

	name, ok := strings.CutPrefix(q, "SHOW CREATE TABLE ")
	if !ok {
		return &Rows{}, nil
	}
	name = strings.ReplaceAll(strings.Trim(name, "`"), "``", "`")
	t := m.table(name)
	if t == nil {
		return nil, fmt.Errorf("table %q doesn't exist", name)
	}
	return &Rows{
		Cols: []string{"Table", "Create Table"},
		Data: [][]any{{name, t.CreateTable}},
	}, nil
}

// Rows is a fixed result set. Scan destinations must implement sql.Scanner.
type Rows struct {
	Cols []string
	Data [][]any

	pos int
}

func (r *Rows) Next() bool {
	if r.pos < len(r.Data) {
		r.pos++
		return true
	}
	return false
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 {
		return fmt.Errorf("scan called before next")
	}
	row := r.Data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		s, ok := d.(sql.Scanner)
		if !ok {
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
		if err := s.Scan(row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rows) Columns() ([]string, error) { return r.Cols, nil }
func (r *Rows) Close()                     {}
func (r *Rows) Err() error                 { return nil }
