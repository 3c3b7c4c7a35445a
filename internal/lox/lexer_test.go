package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tokenCase struct {
	Input    string
	Expected []TokenType
}

func tokenTypes(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	tests := []tokenCase{
		{
			Input:    `( ) { } , . ; ? :`,
			Expected: []TokenType{LEFT_PAREN, RIGHT_PAREN, LEFT_BRACE, RIGHT_BRACE, COMMA, DOT, SEMICOLON, QUESTION, COLON, END},
		},
		{
			Input:    `+ - * / += -= *= /= ++ --`,
			Expected: []TokenType{PLUS, MINUS, STAR, SLASH, PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL, PLUS_PLUS, MINUS_MINUS, END},
		},
		{
			Input:    `= == ! != < <= > >=`,
			Expected: []TokenType{EQUAL, EQUAL_EQUAL, BANG, BANG_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL, END},
		},
	}

	for _, tc := range tests {
		diags := NewDiagnostics()
		toks := NewScanner(tc.Input, diags).Scan()
		assert.False(t, diags.HasErrors())
		assert.Equal(t, tc.Expected, tokenTypes(toks))
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	diags := NewDiagnostics()
	toks := NewScanner("var x = lambda break continue or and", diags).Scan()
	assert.False(t, diags.HasErrors())
	assert.Equal(t, []TokenType{VAR, IDENTIFIER, EQUAL, LAMBDA, BREAK, CONTINUE, OR, AND, END}, tokenTypes(toks))
}

func TestScanNumberLiteral(t *testing.T) {
	diags := NewDiagnostics()
	toks := NewScanner("123 1.5 7.", diags).Scan()
	assert.False(t, diags.HasErrors())
	// "7." leaves the trailing dot unconsumed: NUMBER(7) then DOT.
	assert.Equal(t, []TokenType{NUMBER, NUMBER, NUMBER, DOT, END}, tokenTypes(toks))
	assert.Equal(t, "123.0", toks[0].Literal)
	assert.Equal(t, "1.5", toks[1].Literal)
}

func TestScanStringLiteral(t *testing.T) {
	diags := NewDiagnostics()
	toks := NewScanner(`"hello world"`, diags).Scan()
	assert.False(t, diags.HasErrors())
	assert.Equal(t, "hello world", toks[0].Literal)
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	diags := NewDiagnostics()
	NewScanner(`"never closed`, diags).Scan()
	assert.True(t, diags.HasErrors())
	assert.Equal(t, ScanError, diags.Errors()[0].Kind)
}

func TestScanLineAndBlockComments(t *testing.T) {
	diags := NewDiagnostics()
	toks := NewScanner("1 // a comment\n2 /* block\ncomment */ 3", diags).Scan()
	assert.False(t, diags.HasErrors())
	assert.Equal(t, []TokenType{NUMBER, NUMBER, NUMBER, END}, tokenTypes(toks))
}

func TestScanUnterminatedBlockCommentReportsError(t *testing.T) {
	diags := NewDiagnostics()
	NewScanner("/* never closed", diags).Scan()
	assert.True(t, diags.HasErrors())
}

func TestScanUnexpectedCharacterReportsErrorAndContinues(t *testing.T) {
	diags := NewDiagnostics()
	toks := NewScanner("1 @ 2", diags).Scan()
	assert.True(t, diags.HasErrors())
	assert.Equal(t, []TokenType{NUMBER, NUMBER, END}, tokenTypes(toks))
}
