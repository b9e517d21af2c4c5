package ruleql

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	whitespace TokenType = "whitespace"
	invalid    TokenType = "invalid"
)

type tokenRegexps struct {
	name    TokenType
	regexps []*regexp.Regexp
	// wordEnd rejects a match that is directly followed by a word rune.
	wordEnd bool
}

// Order matters: the first matching pattern wins.
var (
	regexps = []*tokenRegexps{
		{
			name:    leftParenthesis,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\(`)},
		},
		{
			name:    rightParenthesis,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\)`)},
		},
		{
			name:    and,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^AND`)},
			wordEnd: true,
		},
		{
			name:    or,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^OR`)},
			wordEnd: true,
		},
		{
			name:    comparison,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^[<>=!]+`)},
		},
		{
			name:    stringLiteral,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^'([^']*)'`)},
		},
		{
			name: numberLiteral,
			regexps: []*regexp.Regexp{
				regexp.MustCompile(`^-?[0-9]+\.[0-9]+`),
				regexp.MustCompile(`^-?[0-9]+`),
			},
			wordEnd: true,
		},
		{
			name:    identifier,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^[\p{L}\p{N}_]+`)},
		},
		{
			name:    whitespace,
			regexps: []*regexp.Regexp{regexp.MustCompile(`^\s+`)},
		},
		{
			name:    invalid,
			regexps: []*regexp.Regexp{regexp.MustCompile(`(?s)^.`)},
		},
	}
)

type tokenizer struct {
	query  string
	cursor int
	line   int
	column int
}

func newTokenizer(query string) *tokenizer {
	return &tokenizer{query: query, line: 1, column: 1}
}

// Tokenize splits a rule into tokens in source order. Whitespace and
// characters that start no token are dropped; grammar is left to the parser.
func Tokenize(text string) []Token {
	t := newTokenizer(text)
	tokens := make([]Token, 0)

	for {
		tk := t.getNextToken()
		if tk == tokenNoop {
			break
		}

		tokens = append(tokens, tk)
	}

	return tokens
}

func (t *tokenizer) getNextToken() Token {
	for t.cursor < len(t.query) {
		s := t.query[t.cursor:]
		match := ""
		var name TokenType

		line, column := t.getLineColumn(0)

		for _, tr := range regexps {
			for _, r := range tr.regexps {
				match = r.FindString(s)
				if match != "" && tr.wordEnd && isWordRuneAt(s, len(match)) {
					match = ""
				}
				if match != "" {
					name = tr.name
					break
				}
			}
			if match != "" {
				break
			}
		}

		t.line, t.column = t.getLineColumn(len(match))
		t.cursor += len(match)

		if name == whitespace || name == invalid {
			continue
		}

		tk := Token{
			Type:     name,
			StrValue: match,

			Line:   line,
			Column: column,
		}

		if tk.Type == stringLiteral {
			tk.StrValue = tk.StrValue[1 : len(tk.StrValue)-1]
		}

		return tk
	}

	return tokenNoop
}

func (t *tokenizer) getLineColumn(skip int) (int, int) {
	skipTotal := t.cursor + skip

	if skipTotal > len(t.query) {
		skipTotal = len(t.query)
	}

	firstHalf := t.query[:skipTotal]
	lastLine := firstHalf[strings.LastIndex(firstHalf, "\n")+1:]

	line := strings.Count(firstHalf, "\n") + 1
	column := utf8.RuneCountInString(lastLine) + 1

	return line, column
}

func isWordRuneAt(s string, i int) bool {
	r, size := utf8.DecodeRuneInString(s[i:])
	if size == 0 {
		return false
	}

	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
