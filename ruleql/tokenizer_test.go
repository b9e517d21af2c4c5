package ruleql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_tokenizer_getLineColumn(t *testing.T) {
	type fields struct {
		query  string
		cursor int
	}
	type args struct {
		skip int
	}
	tests := []struct {
		name       string
		fields     fields
		args       args
		wantLine   int
		wantColumn int
	}{
		{
			name: "empty query, cursor overflow, skip 10",
			fields: fields{
				query:  "",
				cursor: 100,
			},
			args: args{
				skip: 10,
			},
			wantLine:   1,
			wantColumn: 1,
		},
		{
			name: "cursor overflow, skip 10",
			fields: fields{
				query:  "aaaa",
				cursor: 100,
			},
			args: args{
				skip: 10,
			},
			wantLine:   1,
			wantColumn: 5,
		},
		{
			name: "multilined, cursor overflow, skip 10",
			fields: fields{
				query:  "aaaa\nbbb\ncc",
				cursor: 100,
			},
			args: args{
				skip: 10,
			},
			wantLine:   3,
			wantColumn: 3,
		},
		{
			name: "first column, second line",
			fields: fields{
				query:  "aaaa\nbbb\ncc",
				cursor: 5,
			},
			wantLine:   2,
			wantColumn: 1,
		},
		{
			name: "second line, skip 4",
			fields: fields{
				query:  "aaaa\nbbb\ncc",
				cursor: 5,
			},
			args: args{
				skip: 4,
			},
			wantLine:   3,
			wantColumn: 1,
		},
		{
			name: "columns count runes",
			fields: fields{
				query:  "ré = 'x'\nnaïve",
				cursor: 9,
			},
			args: args{
				skip: 4,
			},
			wantLine:   2,
			wantColumn: 4,
		},
		{
			name: "cursor 0, skip 0",
			fields: fields{
				query:  "aaaa\nbbb\ncc",
				cursor: 0,
			},
			wantLine:   1,
			wantColumn: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &tokenizer{
				query:  tt.fields.query,
				cursor: tt.fields.cursor,
			}
			got, got1 := tr.getLineColumn(tt.args.skip)
			if got != tt.wantLine {
				t.Errorf("tokenizer.getLineColumn() got line = %v, want line %v", got, tt.wantLine)
			}
			if got1 != tt.wantColumn {
				t.Errorf("tokenizer.getLineColumn() got column = %v, want column %v", got1, tt.wantColumn)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "comparison joined with and",
			input: "age > 30 AND department = 'Sales'",
			want: []Token{
				{Type: identifier, StrValue: "age", Line: 1, Column: 1},
				{Type: comparison, StrValue: ">", Line: 1, Column: 5},
				{Type: numberLiteral, StrValue: "30", Line: 1, Column: 7},
				{Type: and, StrValue: "AND", Line: 1, Column: 10},
				{Type: identifier, StrValue: "department", Line: 1, Column: 14},
				{Type: comparison, StrValue: "=", Line: 1, Column: 25},
				{Type: stringLiteral, StrValue: "Sales", Line: 1, Column: 27},
			},
		},
		{
			name:  "parentheses across lines",
			input: "(age > 30\nOR age < 5)",
			want: []Token{
				{Type: leftParenthesis, StrValue: "(", Line: 1, Column: 1},
				{Type: identifier, StrValue: "age", Line: 1, Column: 2},
				{Type: comparison, StrValue: ">", Line: 1, Column: 6},
				{Type: numberLiteral, StrValue: "30", Line: 1, Column: 8},
				{Type: or, StrValue: "OR", Line: 2, Column: 1},
				{Type: identifier, StrValue: "age", Line: 2, Column: 4},
				{Type: comparison, StrValue: "<", Line: 2, Column: 8},
				{Type: numberLiteral, StrValue: "5", Line: 2, Column: 10},
				{Type: rightParenthesis, StrValue: ")", Line: 2, Column: 11},
			},
		},
		{
			name:  "unknown characters are skipped",
			input: "age >= 30 # & ;",
			want: []Token{
				{Type: identifier, StrValue: "age", Line: 1, Column: 1},
				{Type: comparison, StrValue: ">=", Line: 1, Column: 5},
				{Type: numberLiteral, StrValue: "30", Line: 1, Column: 8},
			},
		},
		{
			name:  "any run of comparison characters is one token",
			input: "age => 30",
			want: []Token{
				{Type: identifier, StrValue: "age", Line: 1, Column: 1},
				{Type: comparison, StrValue: "=>", Line: 1, Column: 5},
				{Type: numberLiteral, StrValue: "30", Line: 1, Column: 8},
			},
		},
		{
			name:  "keywords need a word boundary",
			input: "ANDROID != ORACLE",
			want: []Token{
				{Type: identifier, StrValue: "ANDROID", Line: 1, Column: 1},
				{Type: comparison, StrValue: "!=", Line: 1, Column: 9},
				{Type: identifier, StrValue: "ORACLE", Line: 1, Column: 12},
			},
		},
		{
			name:  "lowercase keywords are words",
			input: "and or",
			want: []Token{
				{Type: identifier, StrValue: "and", Line: 1, Column: 1},
				{Type: identifier, StrValue: "or", Line: 1, Column: 5},
			},
		},
		{
			name:  "decimal and negative numbers",
			input: "salary>=50000.50 AND age>-5",
			want: []Token{
				{Type: identifier, StrValue: "salary", Line: 1, Column: 1},
				{Type: comparison, StrValue: ">=", Line: 1, Column: 7},
				{Type: numberLiteral, StrValue: "50000.50", Line: 1, Column: 9},
				{Type: and, StrValue: "AND", Line: 1, Column: 18},
				{Type: identifier, StrValue: "age", Line: 1, Column: 22},
				{Type: comparison, StrValue: ">", Line: 1, Column: 25},
				{Type: numberLiteral, StrValue: "-5", Line: 1, Column: 26},
			},
		},
		{
			name:  "digits followed by letters are a word",
			input: "30abc",
			want: []Token{
				{Type: identifier, StrValue: "30abc", Line: 1, Column: 1},
			},
		},
		{
			name:  "non-ascii letters belong to the word",
			input: "department = Café",
			want: []Token{
				{Type: identifier, StrValue: "department", Line: 1, Column: 1},
				{Type: comparison, StrValue: "=", Line: 1, Column: 12},
				{Type: identifier, StrValue: "Café", Line: 1, Column: 14},
			},
		},
		{
			name:  "non-ascii attribute name",
			input: "départment = 'x' AND âge > 3",
			want: []Token{
				{Type: identifier, StrValue: "départment", Line: 1, Column: 1},
				{Type: comparison, StrValue: "=", Line: 1, Column: 12},
				{Type: stringLiteral, StrValue: "x", Line: 1, Column: 14},
				{Type: and, StrValue: "AND", Line: 1, Column: 18},
				{Type: identifier, StrValue: "âge", Line: 1, Column: 22},
				{Type: comparison, StrValue: ">", Line: 1, Column: 26},
				{Type: numberLiteral, StrValue: "3", Line: 1, Column: 28},
			},
		},
		{
			name:  "keywords and numbers followed by non-ascii letters are words",
			input: "ANDé ORü 30é",
			want: []Token{
				{Type: identifier, StrValue: "ANDé", Line: 1, Column: 1},
				{Type: identifier, StrValue: "ORü", Line: 1, Column: 6},
				{Type: identifier, StrValue: "30é", Line: 1, Column: 10},
			},
		},
		{
			name:  "decimal part dropped when letters follow it",
			input: "1.5x",
			want: []Token{
				{Type: numberLiteral, StrValue: "1", Line: 1, Column: 1},
				{Type: identifier, StrValue: "5x", Line: 1, Column: 3},
			},
		},
		{
			name:  "string literals keep inner spaces",
			input: "department = 'Sales Ops' OR department = ''",
			want: []Token{
				{Type: identifier, StrValue: "department", Line: 1, Column: 1},
				{Type: comparison, StrValue: "=", Line: 1, Column: 12},
				{Type: stringLiteral, StrValue: "Sales Ops", Line: 1, Column: 14},
				{Type: or, StrValue: "OR", Line: 1, Column: 26},
				{Type: identifier, StrValue: "department", Line: 1, Column: 29},
				{Type: comparison, StrValue: "=", Line: 1, Column: 40},
				{Type: stringLiteral, StrValue: "", Line: 1, Column: 42},
			},
		},
		{
			name:  "unterminated quote is dropped",
			input: "department = 'Sales",
			want: []Token{
				{Type: identifier, StrValue: "department", Line: 1, Column: 1},
				{Type: comparison, StrValue: "=", Line: 1, Column: 12},
				{Type: identifier, StrValue: "Sales", Line: 1, Column: 15},
			},
		},
		{
			name:  "blank input",
			input: " \t\n ",
			want:  []Token{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.input)); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
