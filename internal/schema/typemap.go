package schema

import "github.com/koustreak/tabledef/internal/database"

// categories is filled once at package init and never written again, so
// concurrent lookups need no locking.
var categories = map[database.TypeCode]Category{
	// character and binary strings
	database.TypeChar:          CategoryText,
	database.TypeNChar:         CategoryText,
	database.TypeVarChar:       CategoryText,
	database.TypeNVarChar:      CategoryText,
	database.TypeVarBinary:     CategoryText,
	database.TypeLongVarChar:   CategoryText,
	database.TypeLongNVarChar:  CategoryText,
	database.TypeLongVarBinary: CategoryText,

	// small integers
	database.TypeBoolean:  CategoryInt32,
	database.TypeTinyInt:  CategoryInt32,
	database.TypeSmallInt: CategoryInt32,
	database.TypeInteger:  CategoryInt32,

	database.TypeBigInt: CategoryInt64,

	// approximate and exact numerics
	database.TypeFloat:   CategoryDecimal,
	database.TypeReal:    CategoryDecimal,
	database.TypeDouble:  CategoryDecimal,
	database.TypeNumeric: CategoryDecimal,
	database.TypeDecimal: CategoryDecimal,

	// temporal
	database.TypeDate:                  CategoryDateTime,
	database.TypeTime:                  CategoryDateTime,
	database.TypeTimeWithTimezone:      CategoryDateTime,
	database.TypeTimestamp:             CategoryDateTime,
	database.TypeTimestampWithTimezone: CategoryDateTime,
}

// LookupCategory maps a vendor type code to its value category.
// Codes with no entry (NULL, OBJECT, DATALINK, BIT, BINARY, anything unknown)
// are CategoryOpaque.
func LookupCategory(code database.TypeCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryOpaque
}
