package ruleql

import (
	"slices"
)

type TokenType string

const (
	leftParenthesis  TokenType = "left_parenthesis"
	rightParenthesis TokenType = "right_parenthesis"
	and              TokenType = "and"
	or               TokenType = "or"
	comparison       TokenType = "comparison"
	stringLiteral    TokenType = "string_literal"
	numberLiteral    TokenType = "number_literal"
	identifier       TokenType = "identifier"
)

// Token is a lexeme of a rule. String literals are stored without their quotes.
type Token struct {
	Type     TokenType
	StrValue string

	Line   int
	Column int
}

var tokenNoop Token

func (tk *Token) isLeftParenthesis() bool {
	return tk.Type == leftParenthesis
}

func (tk *Token) isRightParenthesis() bool {
	return tk.Type == rightParenthesis
}

func (tk *Token) isComparison() bool {
	return tk.Type == comparison
}

// Bare words double as literals: "department = Sales" compares against the string "Sales".
var literalTypes = []TokenType{numberLiteral, stringLiteral, identifier}

func (tk *Token) isLiteral() bool {
	return slices.Contains(literalTypes, tk.Type)
}

func (tk *Token) describe() string {
	if tk.Type == stringLiteral {
		return "'" + tk.StrValue + "'"
	}

	return tk.StrValue
}
