package realize

import (
	"fmt"

	"github.com/ava12/jetpeg"
)

// Error codes used by realize:
const (
	// object class is not defined in the scope
	UnknownClassError = jetpeg.RealizeErrors + iota
	// class constructor failed
	ConstructorError
	// value code cannot be compiled
	CodeSyntaxError
	// value code evaluation failed
	EvaluationError
	// value code data is not a record
	CodeDataError
)

func unknownClassError(name string) *jetpeg.Error {
	return jetpeg.FormatError(UnknownClassError, "unknown class %q", name)
}

func constructorError(name string, e error) *jetpeg.Error {
	return jetpeg.FormatError(ConstructorError, "cannot create %s: %s", name, e.Error())
}

// codeError creates an error located at the value creator code.
func codeError(code int, filename string, line int, msg string, params ...any) *jetpeg.Error {
	e := jetpeg.FormatError(code, msg, params...)
	if filename != "" {
		e.Message += fmt.Sprintf(" in %s at line %d", filename, line)
	}
	e.SourceName = filename
	e.Line = line
	return e
}

func codeSyntaxError(filename string, line int, e error) *jetpeg.Error {
	return codeError(CodeSyntaxError, filename, line, "cannot compile value code: %s", e.Error())
}

func evaluationError(filename string, line int, e error) *jetpeg.Error {
	return codeError(EvaluationError, filename, line, "value code failed: %s", e.Error())
}

func codeDataError(filename string, line int, data any) *jetpeg.Error {
	return codeError(CodeDataError, filename, line, "value code needs a record, got %T", data)
}
