package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/tabledef/internal/database"
)

func TestTypeCode(t *testing.T) {
	tests := []struct {
		dataType   string
		columnType string
		want       database.TypeCode
	}{
		{"int", "int(11)", database.TypeInteger},
		{"int", "int(10) unsigned", database.TypeBigInt},
		{"INT", "INT UNSIGNED", database.TypeBigInt},
		{"tinyint", "tinyint(1)", database.TypeTinyInt},
		{"smallint", "smallint unsigned", database.TypeSmallInt},
		{"mediumint", "mediumint(8)", database.TypeInteger},
		{"bigint", "bigint(20) unsigned", database.TypeBigInt},
		{"float", "float", database.TypeReal},
		{"double", "double(10,2)", database.TypeDouble},
		{"decimal", "decimal(10,2)", database.TypeDecimal},
		{"date", "date", database.TypeDate},
		{"year", "year(4)", database.TypeDate},
		{"time", "time(3)", database.TypeTime},
		{"datetime", "datetime", database.TypeTimestamp},
		{"timestamp", "timestamp(6)", database.TypeTimestamp},
		{"char", "char(3)", database.TypeChar},
		{"enum", "enum('a','b')", database.TypeChar},
		{"varchar", "varchar(255)", database.TypeVarChar},
		{"text", "text", database.TypeLongVarChar},
		{"json", "json", database.TypeLongVarChar},
		{"varbinary", "varbinary(16)", database.TypeVarBinary},
		{"blob", "blob", database.TypeLongVarBinary},
		{"binary", "binary(16)", database.TypeBinary},
		{"bit", "bit(1)", database.TypeBit},
		{"point", "point", database.TypeBinary},
		{"vector", "vector(3)", database.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.columnType, func(t *testing.T) {
			assert.Equal(t, tt.want, typeCode(tt.dataType, tt.columnType))
		})
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "INT UNSIGNED", typeName("int(10) unsigned"))
	assert.Equal(t, "INT UNSIGNED ZEROFILL", typeName("int(10) unsigned zerofill"))
	assert.Equal(t, "VARCHAR", typeName("varchar(64)"))
	assert.Equal(t, "DECIMAL", typeName("decimal(10,2)"))
	assert.Equal(t, "ENUM('x','y (z)')", typeName("enum('x','y (z)')"))
	assert.Equal(t, "SET('Read','write')", typeName("set('Read','write')"))
	assert.Equal(t, "DATETIME", typeName("datetime"))
}

func TestTypeSize(t *testing.T) {
	tests := []struct {
		columnType  string
		size, scale int
	}{
		{"varchar(64)", 64, 0},
		{"decimal(10,2)", 10, 2},
		{"decimal( 12 , 4 ) unsigned", 12, 4},
		{"int", 0, 0},
		{"datetime(3)", 3, 0},
		{"enum('a','b')", 0, 0},
		{"broken(", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.columnType, func(t *testing.T) {
			size, scale := typeSize(tt.columnType)
			assert.Equal(t, tt.size, size)
			assert.Equal(t, tt.scale, scale)
		})
	}
}
