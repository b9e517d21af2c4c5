package eval

import (
	"math"
	"strconv"
)

// ResolveLiteral gives a rule literal its single static type: quoted literals
// are strings, otherwise int64, then finite float64, then the raw string.
func ResolveLiteral(literal string, quoted bool) any {
	if quoted {
		return literal
	}

	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(literal, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}

	return literal
}

// normalizeValue maps a record value onto the literal types. ok is false for
// values that can't be compared with any literal.
func normalizeValue(v any) (any, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}

	return nil, false
}

func uintToInt64(n uint64) (any, bool) {
	if n > math.MaxInt64 {
		return nil, false
	}

	return int64(n), true
}

func valueTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int64:
		return "int"
	case float64:
		return "float"
	case nil:
		return "null"
	default:
		return "unsupported"
	}
}
