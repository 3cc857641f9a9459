package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Value is a typed, nullable scalar. The zero Value is a null opaque value.
type Value struct {
	category Category
	valid    bool

	str string
	i32 int32
	i64 int64
	dec *apd.Decimal
	tm  time.Time
}

// NullValue returns a null value of the given category.
func NullValue(c Category) Value {
	return Value{category: c}
}

func TextValue(s string) Value {
	return Value{category: CategoryText, valid: true, str: s}
}

func Int32Value(n int32) Value {
	return Value{category: CategoryInt32, valid: true, i32: n}
}

func Int64Value(n int64) Value {
	return Value{category: CategoryInt64, valid: true, i64: n}
}

// DecimalValue wraps d; a nil d yields a null decimal.
func DecimalValue(d *apd.Decimal) Value {
	if d == nil {
		return NullValue(CategoryDecimal)
	}
	return Value{category: CategoryDecimal, valid: true, dec: d}
}

func DateTimeValue(t time.Time) Value {
	return Value{category: CategoryDateTime, valid: true, tm: t}
}

// ParseValue types raw according to c. Numeric text is trimmed before
// parsing. A nil raw yields a null value. DateTime and Opaque never carry a
// parsed literal; the caller decides what they mean.
func ParseValue(c Category, raw *string) (Value, error) {
	if raw == nil {
		return NullValue(c), nil
	}
	s := *raw
	switch c {
	case CategoryText:
		return TextValue(s), nil
	case CategoryInt32:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Int32Value(int32(n)), nil
	case CategoryInt64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Int64Value(n), nil
	case CategoryDecimal:
		d, _, err := apd.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return Value{}, err
		}
		return DecimalValue(d), nil
	default:
		return NullValue(c), nil
	}
}

func (v Value) Category() Category { return v.category }

// IsNull reports whether the value carries no payload.
func (v Value) IsNull() bool { return !v.valid }

func (v Value) Text() (string, bool)          { return v.str, v.valid && v.category == CategoryText }
func (v Value) Int32() (int32, bool)          { return v.i32, v.valid && v.category == CategoryInt32 }
func (v Value) Int64() (int64, bool)          { return v.i64, v.valid && v.category == CategoryInt64 }
func (v Value) Decimal() (*apd.Decimal, bool) { return v.dec, v.valid && v.category == CategoryDecimal }
func (v Value) DateTime() (time.Time, bool)   { return v.tm, v.valid && v.category == CategoryDateTime }

// String renders the payload the way it appears inside a SQL literal.
// Null values render as "".
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.category {
	case CategoryText:
		return v.str
	case CategoryInt32:
		return strconv.FormatInt(int64(v.i32), 10)
	case CategoryInt64:
		return strconv.FormatInt(v.i64, 10)
	case CategoryDecimal:
		return v.dec.Text('f')
	case CategoryDateTime:
		return v.tm.Format(time.DateTime)
	default:
		return ""
	}
}

// MarshalJSON emits null, a JSON string (text, decimal, datetime) or a
// JSON number (int32, int64). Decimals stay strings to keep their precision.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	switch v.category {
	case CategoryInt32, CategoryInt64:
		return []byte(v.String()), nil
	case CategoryDateTime:
		return json.Marshal(v.tm.Format(time.RFC3339))
	default:
		return json.Marshal(v.String())
	}
}
