package schema

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/logger"
)

// Auxiliary lookups against the system catalog, keyed by (schema, table).
const (
	engineQuery = `
		SELECT ENGINE
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`

	collationQuery = `
		SELECT TABLE_COLLATION
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`

	autoIncrementQuery = `
		SELECT AUTO_INCREMENT
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`
)

var charsetPattern = regexp.MustCompile(`(?i) DEFAULT CHARSET\s*=\s*(\w+)`)

// TableReader assembles a Table from the metadata capability.
type TableReader struct {
	// PrefetchPrimaryKey reads indexes before columns so that
	// Column.PrimaryKey is populated. When false, columns are read first and
	// the flag stays false for every column.
	PrefetchPrimaryKey bool

	columns ColumnReader
	keys    KeyReader
}

// NewTableReader returns a reader that keeps the columns-then-keys order.
func NewTableReader() *TableReader {
	return &TableReader{}
}

// Read describes one table of the connection's current catalog.
// It returns nil, nil when the table does not exist or table is blank.
func (r *TableReader) Read(ctx context.Context, h database.Metadata, table string) (*Table, error) {
	if strings.TrimSpace(table) == "" {
		return nil, nil
	}
	catalog, err := h.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return r.read(ctx, h, catalog, table)
}

// ReadAll describes every base table of the current catalog, in name order.
func (r *TableReader) ReadAll(ctx context.Context, h database.Metadata) ([]*Table, error) {
	catalog, err := h.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	names, err := listTables(ctx, h, catalog)
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := r.read(ctx, h, catalog, name)
		if err != nil {
			return nil, err
		}
		// dropped between listing and reading
		if t == nil {
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ListTables returns the base table names of the current catalog.
func ListTables(ctx context.Context, h database.Metadata) ([]string, error) {
	catalog, err := h.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return listTables(ctx, h, catalog)
}

func listTables(ctx context.Context, h database.Metadata, catalog string) ([]string, error) {
	rows, err := h.Tables(ctx, catalog, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Name == nil {
			continue
		}
		if name := strings.TrimSpace(*row.Name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// matchTable picks the row describing table. A row without a name is
// accepted as the table itself; a row naming another table is not.
func matchTable(rows []database.TableRow, table string) (database.TableRow, bool) {
	table = strings.TrimSpace(table)
	for _, row := range rows {
		if row.Name == nil {
			return row, true
		}
		if name := strings.TrimSpace(*row.Name); name == "" || strings.EqualFold(name, table) {
			return row, true
		}
	}
	return database.TableRow{}, false
}

func (r *TableReader) read(ctx context.Context, h database.Metadata, catalog, table string) (*Table, error) {
	log := logger.FromContext(ctx).With().
		Str("catalog", catalog).
		Str("table", table).
		Bool("prefetch_primary_key", r.PrefetchPrimaryKey).
		Logger()

	found, err := h.Tables(ctx, catalog, table)
	if err != nil {
		return nil, err
	}
	row, ok := matchTable(found, table)
	if !ok {
		log.Debugf("table not found among %d rows", len(found))
		return nil, nil
	}

	t := &Table{Remark: row.Remarks}
	if row.Name != nil {
		t.Name = strings.TrimSpace(*row.Name)
	}
	if t.Name == "" {
		return t, nil
	}

	if t.Engine, err = lookupText(ctx, h, engineQuery, catalog, t.Name); err != nil {
		return nil, err
	}
	if t.Charset, err = readCharset(ctx, h, t.Name); err != nil {
		return nil, err
	}
	if t.Collation, err = lookupText(ctx, h, collationQuery, catalog, t.Name); err != nil {
		return nil, err
	}
	if t.AutoIncrement, err = queryInt64(ctx, h, autoIncrementQuery, catalog, t.Name); err != nil {
		return nil, err
	}

	if r.PrefetchPrimaryKey {
		if err := r.readKeys(ctx, h, catalog, t); err != nil {
			return nil, err
		}
		if err := r.readColumns(ctx, h, catalog, t); err != nil {
			return nil, err
		}
	} else {
		if err := r.readColumns(ctx, h, catalog, t); err != nil {
			return nil, err
		}
		if err := r.readKeys(ctx, h, catalog, t); err != nil {
			return nil, err
		}
	}

	log.DebugWith("table read", map[string]any{
		"columns":     len(t.Columns),
		"unique_keys": t.UniqueKeys.Len(),
		"keys":        t.PlainKeys.Len(),
	})
	return t, nil
}

func (r *TableReader) readColumns(ctx context.Context, h database.Metadata, catalog string, t *Table) error {
	rows, err := h.Columns(ctx, catalog, t.Name)
	if err != nil {
		return err
	}
	t.Columns = make([]*Column, 0, len(rows))
	for _, row := range rows {
		col, err := r.columns.Read(ctx, h, row, catalog, t.Name, t.PrimaryKey)
		if err != nil {
			return err
		}
		t.Columns = append(t.Columns, col)
	}
	return nil
}

func (r *TableReader) readKeys(ctx context.Context, h database.Metadata, catalog string, t *Table) error {
	keys, err := r.keys.Read(ctx, h, catalog, t.Name)
	if err != nil {
		return err
	}
	classifyKeys(t, keys)
	return nil
}

// classifyKeys sorts keys into the table's three buckets. The first primary
// key with columns wins; keys without columns are dropped.
func classifyKeys(t *Table, keys []*Key) {
	for _, k := range keys {
		if k == nil || len(k.Columns) == 0 {
			continue
		}
		switch {
		case k.Primary:
			if t.PrimaryKey == nil {
				t.PrimaryKey = k.Columns
			}
		case k.Unique:
			t.UniqueKeys.Set(k.Name, k.Columns)
		default:
			t.PlainKeys.Set(k.Name, k.Columns)
		}
	}
}

// --- auxiliary lookups ---

// readCharset extracts the DEFAULT CHARSET token from SHOW CREATE TABLE.
func readCharset(ctx context.Context, h database.Metadata, table string) (string, error) {
	q := "SHOW CREATE TABLE `" + strings.ReplaceAll(table, "`", "``") + "`"

	rows, err := h.Query(ctx, q)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", rows.Err()
	}

	names, err := rows.Columns()
	if err != nil {
		return "", err
	}
	cells := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range cells {
		dest[i] = &cells[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return "", fmt.Errorf("scan create table: %w", err)
	}

	for i, name := range names {
		if !strings.EqualFold(name, "Create Table") {
			continue
		}
		if m := charsetPattern.FindStringSubmatch(cells[i].String); m != nil {
			return m[1], nil
		}
	}
	return "", nil
}

func lookupText(ctx context.Context, h database.Metadata, q string, args ...any) (string, error) {
	s, err := queryString(ctx, h, q, args...)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// queryString returns the first column of the first row, or nil when there
// is no row or the cell is NULL.
func queryString(ctx context.Context, h database.Metadata, q string, args ...any) (*string, error) {
	rows, err := h.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var s sql.NullString
	if err := rows.Scan(&s); err != nil {
		return nil, fmt.Errorf("scan string: %w", err)
	}
	if !s.Valid {
		return nil, nil
	}
	return &s.String, nil
}

func queryInt64(ctx context.Context, h database.Metadata, q string, args ...any) (*int64, error) {
	rows, err := h.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var n sql.NullInt64
	if err := rows.Scan(&n); err != nil {
		return nil, fmt.Errorf("scan int: %w", err)
	}
	if !n.Valid {
		return nil, nil
	}
	return &n.Int64, nil
}
