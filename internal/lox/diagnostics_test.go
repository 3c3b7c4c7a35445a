package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Pins the literal "<where>" wording spec.md §6.2 documents: empty, or
// " at token <lexeme>" — matching original_source/src/Lox/lox.h's
// `report(tok.line, " at token " + tok.lexeme, message)`, not the
// teacher's own "at '%s'" phrasing.
func TestLoxErrorMessageFormat(t *testing.T) {
	withoutToken := &LoxError{Kind: ScanError, Line: 3, Message: "Unexpected character: @"}
	assert.Equal(t, "[line 3] Error: Unexpected character: @", withoutToken.Error())

	tok := Token{Type: IDENTIFIER, Lexeme: "x", Line: 5}
	withToken := &LoxError{Kind: ParseError, Line: 5, Token: &tok, Message: "Expect ';' after value."}
	assert.Equal(t, "[line 5] Error at token x: Expect ';' after value.", withToken.Error())
}
