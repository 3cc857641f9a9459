package mysql

import (
	"strconv"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
)

// typeCode maps INFORMATION_SCHEMA.COLUMNS.DATA_TYPE to the vendor code a
// JDBC-style metadata driver reports for it. columnType (COLUMN_TYPE) is
// consulted for signedness, because INT UNSIGNED overflows a 32-bit integer.
func typeCode(dataType, columnType string) database.TypeCode {
	unsigned := strings.Contains(strings.ToLower(columnType), "unsigned")

	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "bit":
		return database.TypeBit
	case "bool", "boolean":
		return database.TypeBoolean
	case "tinyint":
		return database.TypeTinyInt
	case "smallint":
		return database.TypeSmallInt
	case "mediumint":
		return database.TypeInteger
	case "int", "integer":
		if unsigned {
			return database.TypeBigInt
		}
		return database.TypeInteger
	case "bigint":
		return database.TypeBigInt
	case "float":
		return database.TypeReal
	case "double", "real":
		return database.TypeDouble
	case "decimal", "numeric":
		return database.TypeDecimal

	case "date", "year":
		return database.TypeDate
	case "time":
		return database.TypeTime
	case "datetime", "timestamp":
		return database.TypeTimestamp

	case "char", "enum", "set":
		return database.TypeChar
	case "varchar":
		return database.TypeVarChar
	case "tinytext", "text", "mediumtext", "longtext", "json":
		return database.TypeLongVarChar
	case "varbinary":
		return database.TypeVarBinary
	case "tinyblob", "blob", "mediumblob", "longblob":
		return database.TypeLongVarBinary
	case "binary":
		return database.TypeBinary
	case "geometry", "point", "linestring", "polygon", "multipoint",
		"multilinestring", "multipolygon", "geometrycollection", "geomcollection":
		return database.TypeBinary

	default:
		return database.TypeOther
	}
}

// typeName turns COLUMN_TYPE into the bare upper-case type name with its
// modifiers: "int(10) unsigned zerofill" becomes "INT UNSIGNED ZEROFILL".
// ENUM and SET keep their value list as stored, "enum('a','B')" becomes
// "ENUM('a','B')".
func typeName(columnType string) string {
	base, rest := splitParens(columnType)
	name := strings.ToUpper(strings.Join(strings.Fields(base+" "+rest), " "))
	if name == "ENUM" || name == "SET" {
		open := strings.IndexByte(columnType, '(')
		closing := strings.LastIndexByte(columnType, ')')
		if open >= 0 && closing > open {
			name += columnType[open : closing+1]
		}
	}
	return name
}

// typeSize extracts the "(size[,scale])" part of COLUMN_TYPE. ENUM and SET
// carry value lists, not sizes, and report zero.
func typeSize(columnType string) (size, scale int) {
	open := strings.IndexByte(columnType, '(')
	closing := strings.LastIndexByte(columnType, ')')
	if open < 0 || closing < open {
		return 0, 0
	}
	args := strings.Split(columnType[open+1:closing], ",")
	size, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, 0
	}
	if len(args) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
			scale = n
		}
	}
	return size, scale
}

// splitParens removes one parenthesised group, returning what precedes and
// follows it.
func splitParens(s string) (before, after string) {
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open < 0 || closing < open {
		return s, ""
	}
	return s[:open], s[closing+1:]
}
