package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/logger"
)

const extraQuery = `
	SELECT EXTRA
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND COLUMN_NAME = ?`

// ColumnReader turns one column metadata row into a Column.
type ColumnReader struct{}

// Read builds a Column from row. DateTime columns cost one extra query
// against h to learn whether they refresh on update.
//
// primaryKey may be nil, in which case Column.PrimaryKey stays false.
// Missing names, remarks and flags degrade to zero values; only a default
// that cannot be typed fails the read.
func (ColumnReader) Read(ctx context.Context, h database.Metadata, row database.ColumnRow, catalog, table string, primaryKey []string) (*Column, error) {
	col := &Column{
		Remark:   row.Remarks,
		TypeCode: row.DataType,
		Category: LookupCategory(row.DataType),
		Size:     row.ColumnSize,
		Scale:    row.DecimalDigits,
	}
	if row.Name != nil {
		col.Name = strings.TrimSpace(*row.Name)
	}
	if col.Name == "" {
		logger.FromContext(ctx).Warnf("column without a name in %s.%s", catalog, table)
	}
	if row.TypeName != nil {
		// an ENUM or SET value list keeps its case
		head, values := *row.TypeName, ""
		if i := strings.IndexByte(head, '('); i >= 0 && strings.HasSuffix(strings.TrimSpace(head), ")") {
			head, values = head[:i], head[i:]
		}
		raw := strings.ToUpper(head)
		col.TypeName = strings.TrimSpace(strings.ReplaceAll(raw, " UNSIGNED", "")) + values
		col.Unsigned = strings.Contains(raw, " UNSIGNED")
	}

	if err := readDefault(ctx, h, col, row.ColumnDef, catalog, table); err != nil {
		return nil, err
	}

	col.Nullable = isYes(row.IsNullable)
	col.AutoIncrement = isYes(row.IsAutoIncrement)
	for _, pk := range primaryKey {
		if col.Name != "" && strings.EqualFold(col.Name, pk) {
			col.PrimaryKey = true
			break
		}
	}
	return col, nil
}

func readDefault(ctx context.Context, h database.Metadata, col *Column, raw *string, catalog, table string) error {
	switch col.Category {
	case CategoryText, CategoryInt32, CategoryInt64, CategoryDecimal:
		v, err := ParseValue(col.Category, raw)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidData,
				fmt.Sprintf("parse %s default of %s.%s", col.Category, table, col.Name), err)
		}
		col.Default = v
		return nil

	case CategoryDateTime:
		col.Default = NullValue(CategoryDateTime)
		col.DefaultNowOnInsert = raw != nil && strings.EqualFold(*raw, "CURRENT_TIMESTAMP")
		if col.Name == "" {
			return nil
		}
		extra, err := queryString(ctx, h, extraQuery, catalog, table, col.Name)
		if err != nil {
			return err
		}
		col.DefaultNowOnUpdate = extra != nil &&
			strings.Contains(strings.ToUpper(*extra), "ON UPDATE CURRENT_TIMESTAMP")
		return nil

	default:
		return errs.Newf(errs.ErrKindUnsupported,
			"column %s.%s: type %d has no value category", table, col.Name, col.TypeCode)
	}
}

func isYes(s *string) bool {
	return s != nil && strings.EqualFold(*s, "YES")
}
