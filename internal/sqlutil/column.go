package sqlutil

import "math/big"

// Column types understood by both MySQL and SQLite.
const (
	TypeBigInt  = "BIGINT"
	TypeDouble  = "DOUBLE"
	TypeBoolean = "BOOLEAN"
	TypeText    = "TEXT"
)

// ColumnType picks the narrowest column type that holds every non-nil value.
// Integers widen to DOUBLE when mixed with floats; any other mix, and a
// column holding only nulls, becomes TEXT.
func ColumnType(values []any) string {
	kind := ""
	for _, v := range values {
		k := valueType(v)
		if k == "" {
			continue
		}
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case isNumeric(kind) && isNumeric(k):
			kind = TypeDouble
		default:
			return TypeText
		}
	}
	if kind == "" {
		return TypeText
	}
	return kind
}

func valueType(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case bool:
		return TypeBoolean
	case int, int64:
		return TypeBigInt
	case float64:
		return TypeDouble
	case *big.Int:
		// Out of BIGINT range; stored as its decimal text.
		return TypeText
	default:
		return TypeText
	}
}

func isNumeric(kind string) bool {
	return kind == TypeBigInt || kind == TypeDouble
}

// BindValue converts a coerced field value into a database/sql argument.
func BindValue(v any) any {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil
		}
		return x.String()
	case int:
		return int64(x)
	default:
		return v
	}
}
