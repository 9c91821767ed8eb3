// Package lexer defines lexical analyzer.
package lexer

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/source"
)

const (
	// ErrorTokenType is the type for fake tokens capturing broken lexemes (e.g. unterminated strings).
	// The purpose of these tokens is to generate more informative error messages.
	// Lexer will never return a token of this type, an error with message containing token text will be returned instead.
	ErrorTokenType = LowestTokenType - 1

	// ErrorTokenName is the type name for ErrorTokenType.
	ErrorTokenName = "-error-"
)

// Error codes used by lexer:
const (
	// WrongCharError indicates that lexer cannot fetch any token at current position.
	// Error message contains the rune at current source position.
	WrongCharError = jetpeg.LexicalErrors + iota

	// BadTokenError indicates that lexer has fetched a token of ErrorTokenType.
	BadTokenError
)

// TokenType describes token type for specific capturing group of regular expression.
type TokenType struct {
	// Type contains token type, may be any non-negative value. ErrorTokenType is treated specially.
	Type int

	// TypeName contains token type name, may be any value.
	TypeName string
}

// Lexer fetches tokens from a source using regexp.Regexp.
// Lexer itself is immutable, stateless, and safe for concurrent use: the caller keeps current position.
// Each token type that may be returned by lexer maps to its own regexp capturing group index.
// A match containing no captured groups is treated as insignificant lexeme (e.g. whitespace or comment),
// in this case lexer tries to fetch a token again at new position.
// Every byte of source must belong to some lexeme.
type Lexer struct {
	types []TokenType
	re    *regexp.Regexp
}

// New creates new Lexer.
// Each n-th element of types describes token type for (n+1)-th regexp capturing group.
// A group that has no description or that has negative token type is treated as ErrorTokenType.
func New(re *regexp.Regexp, types []TokenType) *Lexer {
	ts := make([]TokenType, len(types))
	for i, t := range types {
		ts[i].TypeName = t.TypeName
		if t.Type >= 0 {
			ts[i].Type = t.Type
		} else {
			ts[i].Type = ErrorTokenType
		}
	}
	return &Lexer{types: ts, re: re}
}

func wrongCharError(s *source.Source, pos int) *jetpeg.Error {
	r, _ := utf8.DecodeRune(s.Content()[pos:])
	line, col := s.LineCol(pos)
	msg := fmt.Sprintf("wrong char %q (u+%x)", r, r)
	return jetpeg.NewError(WrongCharError, msg, s.Name(), line, col)
}

func wrongTokenError(t *Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(t, BadTokenError, "bad token %q", t.Text())
}

func (l *Lexer) matchToken(src *source.Source, pos int) (*Token, int, error) {
	content := src.Content()[pos:]
	match := l.re.FindSubmatchIndex(content)
	if len(match) == 0 || match[0] != 0 || match[1] <= match[0] {
		return nil, 0, wrongCharError(src, pos)
	}

	for i := 2; i < len(match); i += 2 {
		if match[i] < 0 || match[i+1] < 0 {
			continue
		}

		tokenType := ErrorTokenType
		typeName := ErrorTokenName
		if len(l.types) >= (i >> 1) {
			tokenType = l.types[(i>>1)-1].Type
			typeName = l.types[(i>>1)-1].TypeName
		}
		token := NewToken(tokenType, typeName, string(content[match[i]:match[i+1]]), source.NewPos(src, pos+match[i]))
		if tokenType == ErrorTokenType {
			return nil, 0, wrongTokenError(token)
		}

		return token, match[1], nil
	}

	return nil, match[1], nil
}

// Next fetches token starting at byte position pos of src.
// Returns the token and the position right after it.
// Returns EoF token and the length of source if there are no more tokens.
// Returns nil token and jetpeg.Error if there is a lexical error.
func (l *Lexer) Next(src *source.Source, pos int) (*Token, int, error) {
	for {
		if pos >= src.Len() {
			return EofToken(src), src.Len(), nil
		}

		tok, advance, e := l.matchToken(src, pos)
		if e != nil {
			return nil, pos, e
		}

		pos += advance
		if tok != nil {
			return tok, pos, nil
		}
	}
}
