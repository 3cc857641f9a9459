package database

import "context"

// Metadata is the schema-introspection capability of a live connection.
// Readers in the schema package talk only to this interface; they never
// import a driver package directly.
//
// Implementations must return errors already translated into *errs.Error.
// A single Metadata value may be shared between goroutines only if the
// implementation says so; the readers themselves issue queries sequentially.
type Metadata interface {
	// Catalog returns the name of the database the connection is bound to.
	Catalog(ctx context.Context) (string, error)

	// Tables describes the base tables of catalog. An empty table name
	// enumerates all of them; otherwise at most one row is returned.
	Tables(ctx context.Context, catalog, table string) ([]TableRow, error)

	// Columns describes the columns of one table in declaration order.
	Columns(ctx context.Context, catalog, table string) ([]ColumnRow, error)

	// Indexes returns one row per (index, column) pair of one table,
	// ordered by uniqueness, index name and position within the index.
	Indexes(ctx context.Context, catalog, table string) ([]IndexRow, error)

	// Query executes arbitrary read-only SQL.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
