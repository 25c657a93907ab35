package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdentifier(t *testing.T) {
	tests := []struct {
		word     string
		expected TokenType
	}{
		{"fn", FUNC},
		{"let", LET},
		{"true", TRUE},
		{"false", FALSE},
		{"if", IF},
		{"else", ELSE},
		{"return", RETURN},
		{"fnord", IDENTIFIER},
		{"letter", IDENTIFIER},
		{"x", IDENTIFIER},
		{"", IDENTIFIER},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LookupIdentifier(tt.word), "word %q", tt.word)
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{TokenType: INT, Lexeme: "42"}
	assert.Equal(t, `Token {Type: INT, Value: "42"}`, tok.String())
}
