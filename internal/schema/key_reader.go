package schema

import (
	"context"
	"strings"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/logger"
)

// KeyReader groups index rows into Keys.
type KeyReader struct{}

// Read returns the indexes of catalog.table, one Key per index name, in the
// order each name first appears in the metadata rows.
func (KeyReader) Read(ctx context.Context, h database.Metadata, catalog, table string) ([]*Key, error) {
	rows, err := h.Indexes(ctx, catalog, table)
	if err != nil {
		return nil, err
	}
	keys, skipped := groupKeys(rows)
	if skipped > 0 {
		logger.FromContext(ctx).With().
			Str("catalog", catalog).
			Str("table", table).
			Int("skipped", skipped).
			Logger().
			Warn("index rows without index or column name skipped")
	}
	return keys, nil
}

// groupKeys also reports how many rows lacked an index or column name.
func groupKeys(rows []database.IndexRow) (keys []*Key, skipped int) {
	byName := make(map[string]*Key)

	for _, row := range rows {
		if row.IndexName == nil || row.ColumnName == nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(*row.IndexName)

		k, ok := byName[name]
		if !ok {
			k = &Key{Name: name}
			byName[name] = k
			keys = append(keys, k)
		}
		k.Columns = append(k.Columns, strings.TrimSpace(*row.ColumnName))
		if strings.EqualFold(name, "PRIMARY") {
			k.Primary = true
		}
		if !row.NonUnique {
			k.Unique = true
		}
	}
	return keys, skipped
}
