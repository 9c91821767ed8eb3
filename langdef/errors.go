package langdef

import (
	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/lexer"
)

// Error codes used by langdef:
const (
	UnexpectedEofError = jetpeg.GrammarErrors + iota
	UnexpectedTokenError
	RuleDefinedError
	InvalidNameError
	InvalidEscapeError
	InvalidRangeError
	UnknownFunctionError
	MisplacedLabelError
	UnterminatedCodeError
)

func eofError(token *lexer.Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, UnexpectedEofError, "unexpected end of grammar")
}

func unexpectedTokenError(token *lexer.Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, UnexpectedTokenError, "unexpected %s %q", token.TypeName(), token.Text())
}

func defRuleError(token *lexer.Token, name string) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, RuleDefinedError, "rule %q already defined", name)
}

func invalidNameError(token *lexer.Token, name string) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, InvalidNameError, "invalid rule name %q", name)
}

func invalidEscapeError(token *lexer.Token, seq string) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, InvalidEscapeError, "invalid escape sequence %q", seq)
}

func invalidRangeError(token *lexer.Token, from, to byte) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, InvalidRangeError, "invalid character range %q-%q", from, to)
}

func unknownFunctionError(token *lexer.Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, UnknownFunctionError, "unknown function %s", token.Text())
}

func misplacedLabelError(token *lexer.Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, MisplacedLabelError, "bare label must precede a rule call")
}

func unterminatedCodeError(token *lexer.Token) *jetpeg.Error {
	return jetpeg.FormatErrorPos(token, UnterminatedCodeError, "unterminated code block")
}
