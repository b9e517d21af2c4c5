package eval

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyExpression  = errors.New("empty expression")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrInvalidOperator  = errors.New("invalid operator")
)

// Catalog is the set of attribute names a rule may reference.
type Catalog []string

// DefaultCatalog is used when no other catalog is configured.
var DefaultCatalog = Catalog{"age", "department", "salary", "experience"}

func (c Catalog) Has(attribute string) bool {
	return slices.Contains(c, attribute)
}

func (expr *Expression) Evaluate(catalog Catalog, values map[string]any) (bool, error) {
	return Evaluate(expr, catalog, values)
}

// Evaluate applies expr to a record. Attributes missing from values make their
// comparison false; attributes outside the catalog are an error.
func Evaluate(expr *Expression, catalog Catalog, values map[string]any) (bool, error) {
	if expr == nil {
		return false, ErrEmptyExpression
	}

	if expr.Type == Operand {
		return expr.evaluateComparison(catalog, values)
	}

	if expr.Type == Operator {
		switch expr.Operator {
		case And:
			return expr.evaluateAnd(catalog, values)
		case Or:
			return expr.evaluateOr(catalog, values)
		}

		return false, fmt.Errorf("%w: '%s'", ErrInvalidOperator, expr.Operator)
	}

	return false, fmt.Errorf("unknown expression type '%s'", expr.Type)
}
