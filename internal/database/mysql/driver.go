package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
)

// Driver is the MySQL implementation of database.Metadata backed by
// database/sql and INFORMATION_SCHEMA.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db *sql.DB
}

var _ database.Metadata = (*Driver)(nil)

// New opens a MySQL connection pool using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := buildPool(cfg)
	if err != nil {
		return nil, err
	}

	d := &Driver{db: db}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

// --- database.Metadata implementation ---

func (d *Driver) Catalog(ctx context.Context) (string, error) {
	var name *string
	if err := d.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", mapError(err, "failed to read current database")
	}
	if name == nil || *name == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "no database selected")
	}
	return *name, nil
}

func (d *Driver) Tables(ctx context.Context, catalog, table string) ([]database.TableRow, error) {
	const q = `
		SELECT TABLE_NAME,
		       NULLIF(TABLE_COMMENT, '')
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_TYPE   = 'BASE TABLE'
		  AND (? = '' OR TABLE_NAME = ?)
		ORDER BY TABLE_NAME`

	rows, err := d.db.QueryContext(ctx, q, catalog, table, table)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var out []database.TableRow
	for rows.Next() {
		var r database.TableRow
		if err := rows.Scan(&r.Name, &r.Remarks); err != nil {
			return nil, mapError(err, "failed to scan table row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return out, nil
}

func (d *Driver) Columns(ctx context.Context, catalog, table string) ([]database.ColumnRow, error) {
	const q = `
		SELECT COLUMN_NAME,
		       NULLIF(COLUMN_COMMENT, ''),
		       DATA_TYPE,
		       COLUMN_TYPE,
		       COLUMN_DEFAULT,
		       IS_NULLABLE,
		       IF(EXTRA LIKE '%auto_increment%', 'YES', 'NO')
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME   = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := d.db.QueryContext(ctx, q, catalog, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var out []database.ColumnRow
	for rows.Next() {
		var (
			r          database.ColumnRow
			dataType   string
			columnType string
		)
		if err := rows.Scan(
			&r.Name,
			&r.Remarks,
			&dataType,
			&columnType,
			&r.ColumnDef,
			&r.IsNullable,
			&r.IsAutoIncrement,
		); err != nil {
			return nil, mapError(err, "failed to scan column row")
		}

		r.DataType = typeCode(dataType, columnType)
		name := typeName(columnType)
		r.TypeName = &name
		r.ColumnSize, r.DecimalDigits = typeSize(columnType)
		if r.DataType == database.TypeChar && name != "CHAR" {
			// ENUM / SET: the value list is already part of the type name
			r.ColumnSize, r.DecimalDigits = 0, 0
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return out, nil
}

func (d *Driver) Indexes(ctx context.Context, catalog, table string) ([]database.IndexRow, error) {
	const q = `
		SELECT INDEX_NAME,
		       COLUMN_NAME,
		       NON_UNIQUE
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME   = ?
		ORDER BY NON_UNIQUE, INDEX_NAME, SEQ_IN_INDEX`

	rows, err := d.db.QueryContext(ctx, q, catalog, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var out []database.IndexRow
	for rows.Next() {
		var (
			r         database.IndexRow
			nonUnique int64
		)
		if err := rows.Scan(&r.IndexName, &r.ColumnName, &nonUnique); err != nil {
			return nil, mapError(err, "failed to scan index row")
		}
		r.NonUnique = nonUnique != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating indexes")
	}
	return out, nil
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows}, nil
}

// --- sql.DB type wrappers ---

type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool                 { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *mysqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mysqlRows) Close()                     { _ = r.rows.Close() }

func (r *mysqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return mapError(err, "error iterating rows")
	}
	return nil
}
