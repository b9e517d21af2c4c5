package ruleql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jvitoroc/gorules/eval"
)

var ErrMalformedRule = errors.New("malformed rule")

// ParseError describes where a rule stopped making sense. Line and Column are
// zero when the rule ended before the parser was satisfied.
type ParseError struct {
	Msg    string
	Line   int
	Column int
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedRule, e.Msg)
	}

	return fmt.Sprintf("%s: %s at %d:%d", ErrMalformedRule, e.Msg, e.Line, e.Column)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedRule
}

type parser struct {
	tokens []Token
	cursor int
}

func NewParser(text string) *parser {
	return &parser{tokens: Tokenize(text)}
}

// Parse tokenizes and parses a rule.
func Parse(text string) (*eval.Expression, error) {
	return NewParser(text).Parse()
}

// ParseTokens parses an already tokenized rule. tokens is not modified.
func ParseTokens(tokens []Token) (*eval.Expression, error) {
	return (&parser{tokens: tokens}).Parse()
}

func (p *parser) Parse() (*eval.Expression, error) {
	p.cursor = 0

	if len(p.tokens) == 0 {
		return nil, &ParseError{Msg: "empty rule"}
	}

	if err := checkParenthesesBalance(p.tokens); err != nil {
		return nil, err
	}

	expr, err := p.orExpression()
	if err != nil {
		return nil, err
	}

	if tk := p.lookahead(); tk != tokenNoop {
		return nil, p.unexpected(tk, "end of rule")
	}

	return expr, nil
}

func (p *parser) orExpression() (*eval.Expression, error) {
	left, err := p.andExpression()
	if err != nil {
		return nil, err
	}

	for p.lookahead().Type == or {
		p.consume()

		right, err := p.andExpression()
		if err != nil {
			return nil, err
		}

		left = eval.NewOr(left, right)
	}

	return left, nil
}

func (p *parser) andExpression() (*eval.Expression, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.lookahead().Type == and {
		p.consume()

		right, err := p.primary()
		if err != nil {
			return nil, err
		}

		left = eval.NewAnd(left, right)
	}

	return left, nil
}

func (p *parser) primary() (*eval.Expression, error) {
	tk := p.lookahead()
	if !tk.isLeftParenthesis() {
		return p.comparison()
	}

	p.consume()

	expr, err := p.orExpression()
	if err != nil {
		return nil, err
	}

	if tk := p.lookahead(); !tk.isRightParenthesis() {
		return nil, p.unexpected(tk, "closing parenthesis")
	}

	p.consume()

	return expr, nil
}

func (p *parser) comparison() (*eval.Expression, error) {
	attr := p.lookahead()
	if attr.Type != identifier {
		return nil, p.unexpected(attr, "attribute name")
	}
	p.consume()

	op := p.lookahead()
	if !op.isComparison() {
		return nil, p.unexpected(op, "comparison operator")
	}
	p.consume()

	value := p.lookahead()
	if !value.isLiteral() {
		return nil, p.unexpected(value, "value")
	}
	if value.Type == numberLiteral && !strings.Contains(value.StrValue, ".") {
		if _, err := strconv.ParseInt(value.StrValue, 10, 64); err != nil {
			return nil, &ParseError{
				Msg:    fmt.Sprintf("integer '%s' does not fit in 64 bits", value.StrValue),
				Line:   value.Line,
				Column: value.Column,
			}
		}
	}
	p.consume()

	return eval.NewComparison(
		attr.StrValue,
		eval.ComparisonType(op.StrValue),
		value.StrValue,
		value.Type == stringLiteral,
	), nil
}

func (p *parser) lookahead() Token {
	if p.cursor >= len(p.tokens) {
		return tokenNoop
	}

	return p.tokens[p.cursor]
}

func (p *parser) consume() Token {
	tk := p.lookahead()
	if tk != tokenNoop {
		p.cursor++
	}

	return tk
}

func (p *parser) unexpected(tk Token, expected string) error {
	if tk == tokenNoop {
		return &ParseError{Msg: fmt.Sprintf("expected %s, but the rule ended", expected)}
	}

	return &ParseError{
		Msg:    fmt.Sprintf("expected %s, but got '%s'", expected, tk.describe()),
		Line:   tk.Line,
		Column: tk.Column,
	}
}

func checkParenthesesBalance(tokens []Token) error {
	unclosedParentheses := stack[Token]{}
	for _, t := range tokens {
		if t.isLeftParenthesis() {
			unclosedParentheses.push(t)
		} else if t.isRightParenthesis() {
			tk := unclosedParentheses.pop()
			if tk == tokenNoop {
				return &ParseError{Msg: "unexpected closing parenthesis", Line: t.Line, Column: t.Column}
			}
		}
	}

	if !unclosedParentheses.empty() {
		tk := unclosedParentheses.pop()
		return &ParseError{Msg: "opening parenthesis is missing its closing parenthesis", Line: tk.Line, Column: tk.Column}
	}

	return nil
}

// MustParse is like Parse but panics on malformed rules.
func MustParse(text string) *eval.Expression {
	expr, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return expr
}
