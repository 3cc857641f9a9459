package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
)

func TestReadQuerySchema_ColumnSets(t *testing.T) {
	tbl := &Table{
		Name:       "posts",
		PrimaryKey: []string{" ", "id"},
		Columns: []*Column{
			{Name: "id", Category: CategoryInt64, AutoIncrement: true},
			{Name: "created_at", Category: CategoryDateTime, DefaultNowOnInsert: true},
			{Name: "updated_at", Category: CategoryDateTime, DefaultNowOnInsert: true, DefaultNowOnUpdate: true},
			{Name: " name ", Category: CategoryText, Default: TextValue("untitled")},
		},
	}

	qs, err := ReadQuerySchema(tbl)
	require.NoError(t, err)

	assert.Equal(t, "posts", qs.TableName)
	assert.Equal(t, "id", qs.IDColumn)
	assert.Equal(t, []string{"id", "created_at", "updated_at", "name"}, qs.ColumnNames)
	assert.Equal(t, "id, created_at, updated_at, name", qs.SelectColumns)

	assert.Equal(t, []string{"id", "name"}, qs.InsertColumnNames)
	assert.Equal(t, "id, name", qs.InsertColumns)
	assert.Equal(t, "?, ?", qs.InsertPlaceholders)
	assert.Equal(t, []string{"created_at", "updated_at"}, qs.InsertNowColumns.Sorted())

	assert.Equal(t, []string{"id", "name"}, qs.UpdateColumnNames)
	assert.Equal(t, []string{"updated_at"}, qs.UpdateNowColumns.Sorted())

	assert.True(t, qs.AutoIncrementColumns.Has("id"))
	assert.Len(t, qs.AutoIncrementColumns, 1)

	assert.Equal(t, CategoryDateTime, qs.Categories["created_at"])
	assert.Equal(t, "untitled", qs.Defaults["name"].String())
	assert.True(t, qs.Defaults["id"].IsNull())
	assert.Equal(t, CategoryInt64, qs.Defaults["id"].Category())
	assert.True(t, qs.Defaults["updated_at"].IsNull())

	require.Len(t, qs.Columns, 4)
	assert.Equal(t, "name", qs.Columns[3].Name)
	assert.Equal(t, " name ", tbl.Columns[3].Name, "the table is not modified")
}

func TestReadQuerySchema_UpdateOnlyColumn(t *testing.T) {
	qs, err := ReadQuerySchema(&Table{Columns: []*Column{
		{Name: "touched", Category: CategoryDateTime, DefaultNowOnUpdate: true},
		{Name: "v", Category: CategoryInt32, Default: Int32Value(3)},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"touched", "v"}, qs.InsertColumnNames)
	assert.Equal(t, []string{"v"}, qs.UpdateColumnNames)
	assert.Empty(t, qs.IDColumn)
	n, ok := qs.Defaults["v"].Int32()
	assert.True(t, ok)
	assert.Equal(t, int32(3), n)
}

func TestReadQuerySchema_EmptyNamesExcluded(t *testing.T) {
	qs, err := ReadQuerySchema(&Table{Columns: []*Column{
		nil,
		{Name: "  ", Category: CategoryOpaque, AutoIncrement: true},
		{Name: "a", Category: CategoryText},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, qs.ColumnNames)
	assert.Empty(t, qs.AutoIncrementColumns)
	assert.Len(t, qs.Columns, 2)
	assert.Len(t, qs.Defaults, 1)
}

func TestReadQuerySchema_OpaqueFails(t *testing.T) {
	_, err := ReadQuerySchema(&Table{Name: "t", Columns: []*Column{
		{Name: "geom", Category: CategoryOpaque, TypeCode: database.TypeBinary},
	}})

	require.Error(t, err)
	assert.True(t, errs.IsInvalidData(err))
	assert.Contains(t, err.Error(), "t.geom")
}

func TestReadQuerySchema_NoColumns(t *testing.T) {
	qs, err := ReadQuerySchema(&Table{Name: "empty"})
	require.NoError(t, err)
	assert.Empty(t, qs.SelectColumns)
	assert.Empty(t, qs.InsertPlaceholders)
}

func TestQuerySchema_JSON(t *testing.T) {
	qs, err := ReadQuerySchema(&Table{
		Name:       "t",
		PrimaryKey: []string{"id"},
		Columns: []*Column{
			{Name: "id", Category: CategoryInt64, AutoIncrement: true},
			{Name: "ts", Category: CategoryDateTime, DefaultNowOnInsert: true},
		},
	})
	require.NoError(t, err)

	out, err := json.Marshal(qs)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "id", got["id_column"])
	assert.Equal(t, []any{"ts"}, got["insert_now_columns"])
	assert.Equal(t, map[string]any{"id": "int64", "ts": "datetime"}, got["categories"])
	assert.NotContains(t, got, "Columns")
}

func TestQuerySchemaReader_Read(t *testing.T) {
	f := newFakeMeta().add("users", usersTable())

	qs, err := QuerySchemaReader{}.Read(context.Background(), f, "users")
	require.NoError(t, err)
	require.NotNil(t, qs)
	assert.Equal(t, "id", qs.IDColumn)
	assert.Equal(t, []string{"id", "email", "age"}, qs.InsertColumnNames)
	assert.Equal(t, []string{"id", "email", "age"}, qs.UpdateColumnNames)
	assert.Equal(t, "18", qs.Defaults["age"].String())

	qs, err = QuerySchemaReader{Tables: &TableReader{PrefetchPrimaryKey: true}}.Read(context.Background(), f, "missing")
	require.NoError(t, err)
	assert.Nil(t, qs)
}
