package parser

import (
	"github.com/ava12/jetpeg"
)

// Error codes used by parser:
const (
	// grammar uses more distinct mode names than fit in Modes
	TooManyModesError = jetpeg.CompilationErrors + 40 + iota
)

const (
	// match requested for a rule not defined in the grammar
	UnknownRuleError = jetpeg.ArgumentErrors + iota
	// match input is neither text nor a reader
	InputTypeError
	// match input could not be read
	InputReadError
)

func tooManyModesError(name string) *jetpeg.Error {
	return jetpeg.FormatError(TooManyModesError, "too many modes, cannot assign a bit to mode %q", name)
}

func unknownRuleError(name string) *jetpeg.Error {
	return jetpeg.FormatError(UnknownRuleError, "unknown rule %q", name)
}

func inputTypeError(input any) *jetpeg.Error {
	return jetpeg.FormatError(InputTypeError, "cannot match input of type %T, text expected", input)
}

func inputReadError(e error) *jetpeg.Error {
	return jetpeg.FormatError(InputReadError, "cannot read input: %s", e.Error())
}
