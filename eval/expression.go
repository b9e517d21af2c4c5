package eval

import (
	"slices"
)

type OperatorType string
type ExpressionType string
type ComparisonType string

const (
	And OperatorType = "AND"
	Or  OperatorType = "OR"
)

const (
	Equal            ComparisonType = "="
	NotEqual         ComparisonType = "!="
	GreaterEqualThan ComparisonType = ">="
	GreaterThan      ComparisonType = ">"
	LessEqualThan    ComparisonType = "<="
	LessThan         ComparisonType = "<"
)

var (
	operators   = []OperatorType{And, Or}
	comparisons = []ComparisonType{Equal, NotEqual, GreaterEqualThan, GreaterThan, LessEqualThan, LessThan}
)

func IsOperator(operator string) bool {
	return slices.Contains(operators, OperatorType(operator))
}

func IsComparison(comparison string) bool {
	return slices.Contains(comparisons, ComparisonType(comparison))
}

const (
	Operator ExpressionType = "operator"
	Operand  ExpressionType = "operand"
)

// Expression is a node of a parsed rule.
//
// Operator nodes carry Operator, Left and Right. Operand nodes carry a single
// comparison: Identifier, Comparison and the literal it is compared against.
// GoValue is the literal resolved by ResolveLiteral; StrValue is the lexeme it
// was resolved from.
type Expression struct {
	Type     ExpressionType
	Operator OperatorType

	Identifier string
	Comparison ComparisonType
	StrValue   string
	GoValue    any

	Left  *Expression
	Right *Expression
}

// NewAnd joins two expressions under a new AND node.
func NewAnd(left, right *Expression) *Expression {
	return &Expression{
		Type:     Operator,
		Operator: And,
		Left:     left,
		Right:    right,
	}
}

// NewOr joins two expressions under a new OR node.
func NewOr(left, right *Expression) *Expression {
	return &Expression{
		Type:     Operator,
		Operator: Or,
		Left:     left,
		Right:    right,
	}
}

// NewComparison builds an operand node. The literal is resolved once here.
func NewComparison(identifier string, comparison ComparisonType, literal string, quoted bool) *Expression {
	return &Expression{
		Type:       Operand,
		Identifier: identifier,
		Comparison: comparison,
		StrValue:   literal,
		GoValue:    ResolveLiteral(literal, quoted),
	}
}

// Walk calls fn for every node of the tree, parents before children.
func (expr *Expression) Walk(fn func(*Expression)) {
	if expr == nil {
		return
	}

	fn(expr)
	expr.Left.Walk(fn)
	expr.Right.Walk(fn)
}
