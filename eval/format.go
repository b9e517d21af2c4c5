package eval

import (
	"strconv"
	"strings"
)

var precedence = map[OperatorType]int{
	And: 1,
	Or:  2,
}

// String renders the expression as rule text that parses back to the same tree.
func (expr *Expression) String() string {
	sb := &strings.Builder{}
	expr.format(sb)

	return sb.String()
}

func (expr *Expression) format(sb *strings.Builder) {
	if expr == nil {
		return
	}

	if expr.Type == Operand {
		sb.WriteString(expr.Identifier)
		sb.WriteByte(' ')
		sb.WriteString(string(expr.Comparison))
		sb.WriteByte(' ')
		sb.WriteString(expr.formatLiteral())
		return
	}

	p := precedence[expr.Operator]

	// Chains fold left, so a right child of the same precedence needs parentheses.
	expr.Left.formatChild(sb, func(c int) bool { return c > p })
	sb.WriteByte(' ')
	sb.WriteString(string(expr.Operator))
	sb.WriteByte(' ')
	expr.Right.formatChild(sb, func(c int) bool { return c >= p })
}

func (expr *Expression) formatChild(sb *strings.Builder, needsParentheses func(int) bool) {
	if expr != nil && expr.Type == Operator && needsParentheses(precedence[expr.Operator]) {
		sb.WriteByte('(')
		expr.format(sb)
		sb.WriteByte(')')
		return
	}

	expr.format(sb)
}

func (expr *Expression) formatLiteral() string {
	switch l := expr.GoValue.(type) {
	case string:
		return "'" + l + "'"
	case int64:
		if expr.StrValue != "" {
			return expr.StrValue
		}
		return strconv.FormatInt(l, 10)
	case float64:
		if expr.StrValue != "" {
			return expr.StrValue
		}
		s := strconv.FormatFloat(l, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	return ""
}
