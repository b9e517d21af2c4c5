package eval

import (
	"cmp"
	"fmt"
)

func (expr *Expression) evaluateAnd(catalog Catalog, values map[string]any) (bool, error) {
	l, err := Evaluate(expr.Left, catalog, values)
	if err != nil {
		return false, err
	}

	if !l {
		return false, nil
	}

	return Evaluate(expr.Right, catalog, values)
}

func (expr *Expression) evaluateOr(catalog Catalog, values map[string]any) (bool, error) {
	l, err := Evaluate(expr.Left, catalog, values)
	if err != nil {
		return false, err
	}

	if l {
		return true, nil
	}

	return Evaluate(expr.Right, catalog, values)
}

func (expr *Expression) evaluateComparison(catalog Catalog, values map[string]any) (bool, error) {
	if !catalog.Has(expr.Identifier) {
		return false, fmt.Errorf("%w: %s", ErrInvalidAttribute, expr.Identifier)
	}

	raw, ok := values[expr.Identifier]
	if !ok || raw == nil {
		return false, nil
	}

	v, ok := normalizeValue(raw)
	if !ok {
		return false, fmt.Errorf("%w for attribute %s: unsupported value of type %T", ErrTypeMismatch, expr.Identifier, raw)
	}

	switch l := expr.GoValue.(type) {
	case string:
		r, ok := v.(string)
		if !ok {
			return false, expr.mismatch(v)
		}
		return compare(expr.Comparison, r, l)
	case int64:
		r, ok := v.(int64)
		if !ok {
			return false, expr.mismatch(v)
		}
		return compare(expr.Comparison, r, l)
	case float64:
		r, ok := v.(float64)
		if !ok {
			return false, expr.mismatch(v)
		}
		return compare(expr.Comparison, r, l)
	}

	return false, fmt.Errorf("%w for attribute %s: literal '%s' has no comparable type", ErrTypeMismatch, expr.Identifier, expr.StrValue)
}

func (expr *Expression) mismatch(v any) error {
	return fmt.Errorf("%w for attribute %s: value is %s, literal '%s' is %s",
		ErrTypeMismatch, expr.Identifier, valueTypeName(v), expr.StrValue, valueTypeName(expr.GoValue))
}

// compare applies op with the record value on the left.
func compare[T cmp.Ordered](op ComparisonType, value, literal T) (bool, error) {
	switch op {
	case Equal:
		return value == literal, nil
	case NotEqual:
		return value != literal, nil
	case GreaterThan:
		return value > literal, nil
	case GreaterEqualThan:
		return value >= literal, nil
	case LessThan:
		return value < literal, nil
	case LessEqualThan:
		return value <= literal, nil
	}

	return false, fmt.Errorf("%w: '%s'", ErrInvalidOperator, op)
}
