package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		raw      *string
		want     string
		null     bool
		wantErr  bool
	}{
		{name: "text verbatim", category: CategoryText, raw: str("  padded "), want: "  padded "},
		{name: "empty text is not null", category: CategoryText, raw: str(""), want: ""},
		{name: "null text", category: CategoryText, raw: nil, null: true},
		{name: "int32", category: CategoryInt32, raw: str(" 18 "), want: "18"},
		{name: "int32 negative", category: CategoryInt32, raw: str("-7"), want: "-7"},
		{name: "int32 overflow", category: CategoryInt32, raw: str("3000000000"), wantErr: true},
		{name: "int32 garbage", category: CategoryInt32, raw: str("abc"), wantErr: true},
		{name: "int64", category: CategoryInt64, raw: str("3000000000"), want: "3000000000"},
		{name: "null int64", category: CategoryInt64, raw: nil, null: true},
		{name: "decimal keeps scale", category: CategoryDecimal, raw: str("12.50"), want: "12.50"},
		{name: "decimal exponent", category: CategoryDecimal, raw: str("1e3"), want: "1000"},
		{name: "decimal garbage", category: CategoryDecimal, raw: str("1.2.3"), wantErr: true},
		{name: "datetime carries no literal", category: CategoryDateTime, raw: str("2024-01-01"), null: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.category, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, v.Category())
			assert.Equal(t, tt.null, v.IsNull())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	n, ok := Int32Value(5).Int32()
	assert.True(t, ok)
	assert.Equal(t, int32(5), n)

	_, ok = Int32Value(5).Int64()
	assert.False(t, ok, "category mismatch")

	_, ok = NullValue(CategoryText).Text()
	assert.False(t, ok)

	assert.True(t, DecimalValue(nil).IsNull())

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	got, ok := DateTimeValue(ts).DateTime()
	assert.True(t, ok)
	assert.Equal(t, ts, got)
	assert.Equal(t, "2024-03-01 10:00:00", DateTimeValue(ts).String())
}

func TestValue_MarshalJSON(t *testing.T) {
	dec, err := ParseValue(CategoryDecimal, str("9.99"))
	require.NoError(t, err)

	out, err := json.Marshal(map[string]Value{
		"a": TextValue("x"),
		"b": Int64Value(7),
		"c": dec,
		"d": NullValue(CategoryDateTime),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":7,"c":"9.99","d":null}`, string(out))
}
