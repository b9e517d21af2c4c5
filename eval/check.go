package eval

import (
	"errors"
	"fmt"
)

// Check reports every operand of expr that Evaluate would reject regardless
// of the record: attributes outside the catalog and unknown comparison
// operators. The errors are joined so callers can still match them with errors.Is.
func Check(expr *Expression, catalog Catalog) error {
	if expr == nil {
		return ErrEmptyExpression
	}

	var errs []error

	expr.Walk(func(e *Expression) {
		if e.Type != Operand {
			return
		}

		if !catalog.Has(e.Identifier) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidAttribute, e.Identifier))
		}

		if !IsComparison(string(e.Comparison)) {
			errs = append(errs, fmt.Errorf("%w: '%s'", ErrInvalidOperator, e.Comparison))
		}
	})

	return errors.Join(errs...)
}
