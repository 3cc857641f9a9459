package database

// TypeCode is a vendor column type code as exposed by the metadata driver.
// The numbering follows the JDBC type codes, which MySQL drivers report for
// DATA_TYPE in their column metadata.
type TypeCode int32

const (
	TypeBit                   TypeCode = -7
	TypeTinyInt               TypeCode = -6
	TypeSmallInt              TypeCode = 5
	TypeInteger               TypeCode = 4
	TypeBigInt                TypeCode = -5
	TypeFloat                 TypeCode = 6
	TypeReal                  TypeCode = 7
	TypeDouble                TypeCode = 8
	TypeNumeric               TypeCode = 2
	TypeDecimal               TypeCode = 3
	TypeChar                  TypeCode = 1
	TypeVarChar               TypeCode = 12
	TypeLongVarChar           TypeCode = -1
	TypeDate                  TypeCode = 91
	TypeTime                  TypeCode = 92
	TypeTimestamp             TypeCode = 93
	TypeBinary                TypeCode = -2
	TypeVarBinary             TypeCode = -3
	TypeLongVarBinary         TypeCode = -4
	TypeNull                  TypeCode = 0
	TypeOther                 TypeCode = 1111
	TypeObject                TypeCode = 2000
	TypeDistinct              TypeCode = 2001
	TypeStruct                TypeCode = 2002
	TypeArray                 TypeCode = 2003
	TypeBlob                  TypeCode = 2004
	TypeClob                  TypeCode = 2005
	TypeRef                   TypeCode = 2006
	TypeDatalink              TypeCode = 70
	TypeBoolean               TypeCode = 16
	TypeRowID                 TypeCode = -8
	TypeNChar                 TypeCode = -15
	TypeNVarChar              TypeCode = -9
	TypeLongNVarChar          TypeCode = -16
	TypeNClob                 TypeCode = 2011
	TypeSQLXML                TypeCode = 2009
	TypeRefCursor             TypeCode = 2012
	TypeTimeWithTimezone      TypeCode = 2013
	TypeTimestampWithTimezone TypeCode = 2014
)

// TableRow is one row of table metadata.
type TableRow struct {
	Name    *string // TABLE_NAME
	Remarks *string // TABLE_COMMENT
}

// ColumnRow is one row of column metadata. Pointer fields are nil when the
// driver returned SQL NULL.
type ColumnRow struct {
	Name            *string  // COLUMN_NAME
	Remarks         *string  // COLUMN_COMMENT
	DataType        TypeCode // vendor type code
	TypeName        *string  // e.g. "INT UNSIGNED", "ENUM('a','b')"
	ColumnSize      int      // character length or numeric precision
	DecimalDigits   int      // numeric scale
	ColumnDef       *string  // default value text
	IsNullable      *string  // "YES" / "NO"
	IsAutoIncrement *string  // "YES" / "NO"
}

// IndexRow is one (index, column) pair of index metadata.
type IndexRow struct {
	IndexName  *string
	ColumnName *string
	NonUnique  bool
}
