package layout

import (
	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/grammar"
)

// Error codes used by layout:
const (
	// rule argument is neither an input range nor value-less
	ArgumentTypeError = jetpeg.CompilationErrors + 20 + iota
	// $match argument is not an input range
	MatchArgumentError
	// @ label is used more than once or together with named fields
	AtLabelError
	// value merged into a record is not a record
	EmbeddedValueError
	// field name appears twice in one record
	DuplicateFieldError
	// @name in object data refers to a missing field
	DataRefError
)

func argumentTypeError(arg grammar.Expression, t *Type) error {
	return grammar.ExpressionError(arg, ArgumentTypeError, "rule argument must be an input range, got %s", t)
}

func matchArgumentError(arg grammar.Expression, t *Type) error {
	return grammar.ExpressionError(arg, MatchArgumentError, "$match argument must be an input range, got %s", t)
}

func atLabelError(seq grammar.Expression, duplicate bool) error {
	if duplicate {
		return grammar.ExpressionError(seq, AtLabelError, "more than one @ label in a sequence")
	}
	return grammar.ExpressionError(seq, AtLabelError, "@ label cannot be combined with named fields")
}

func embeddedValueError(seq grammar.Expression, t *Type) error {
	return grammar.ExpressionError(seq, EmbeddedValueError, "cannot merge value of type %s into a record", t)
}

func duplicateFieldError(seq grammar.Expression, name string) error {
	return grammar.ExpressionError(seq, DuplicateFieldError, "duplicate field %q", name)
}

func dataRefError(ref *grammar.LabelDataRef) error {
	return grammar.ExpressionError(ref, DataRefError, "no field %q in object value", ref.Name)
}
