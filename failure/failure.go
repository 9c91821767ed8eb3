// Package failure keeps track of the furthest match failure and builds parsing errors.
package failure

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/btree"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/source"
)

// Error codes used by failure:
const (
	// MatchError is the code of jetpeg.Error built from ParsingError.
	MatchError = jetpeg.ParsingErrors + iota
)

const (
	// EndOfInput is the expectation reported when a rule matched only a prefix of the input.
	EndOfInput = "end of input"
	// AnyCharacter is the expectation reported by a failed any-character match.
	AnyCharacter = "any character"
)

// Tracker keeps failure reasons reported at the furthest input position.
// Zero value is not usable, use NewTracker.
type Tracker struct {
	pos          int
	expectations btree.Set[string]
	others       btree.Set[string]
}

func NewTracker() *Tracker {
	return &Tracker{pos: -1}
}

// AddFailure records a failure reason at byte position pos.
// Reasons reported at positions less than the furthest one are ignored,
// reasons reported further drop all previously recorded reasons.
func (t *Tracker) AddFailure(pos int, reason string, isExpectation bool) {
	if pos < t.pos {
		return
	}

	if pos > t.pos {
		t.pos = pos
		t.expectations = btree.Set[string]{}
		t.others = btree.Set[string]{}
	}

	if isExpectation {
		t.expectations.Insert(reason)
	} else {
		t.others.Insert(reason)
	}
}

func (t *Tracker) Expect(pos int, reason string) {
	t.AddFailure(pos, reason, true)
}

func (t *Tracker) Other(pos int, reason string) {
	t.AddFailure(pos, reason, false)
}

// Pos returns the furthest failure position or -1 if no failures were reported.
func (t *Tracker) Pos() int {
	return t.pos
}

// Expectations returns sorted unique expectations reported at the furthest position.
func (t *Tracker) Expectations() []string {
	return keys(&t.expectations)
}

// Others returns sorted unique other reasons reported at the furthest position.
func (t *Tracker) Others() []string {
	return keys(&t.others)
}

func keys(s *btree.Set[string]) []string {
	res := make([]string, 0, s.Len())
	s.Scan(func(key string) bool {
		res = append(res, key)
		return true
	})
	return res
}

// Error builds ParsingError for input src.
func (t *Tracker) Error(src *source.Source) *ParsingError {
	pos := t.pos
	if pos < 0 {
		pos = 0
	}

	line, col := src.LineCol(pos)
	e := &ParsingError{
		Pos:          pos,
		Line:         line,
		Col:          col,
		DisplayCol:   src.DisplayCol(pos),
		SourceName:   src.Name(),
		Expectations: t.Expectations(),
		Others:       t.Others(),
	}

	before := src.Content()[:pos]
	if len(before) > contextLen {
		start := len(before) - contextLen
		for start < len(before) && !utf8.RuneStart(before[start]) {
			start++
		}
		before = before[start:]
	}
	e.After = string(before)
	return e
}

const contextLen = 20

// ParsingError describes a failed match.
type ParsingError struct {
	// Pos is the furthest byte position reached.
	Pos int
	// Line and Col are 1-based, Col counts runes.
	Line, Col int
	// DisplayCol is the 1-based terminal column of Pos.
	DisplayCol int
	SourceName string
	// After contains up to 20 bytes of input preceding Pos, never a partial character.
	After        string
	Expectations []string
	Others       []string
}

// Reason returns failure reasons: other reasons first, then expectations.
func (e *ParsingError) Reason() string {
	var parts []string
	parts = append(parts, e.Others...)
	if len(e.Expectations) > 0 {
		parts = append(parts, "expected one of "+strings.Join(e.Expectations, ", "))
	}
	if len(parts) == 0 {
		return "no match"
	}
	return strings.Join(parts, " / ")
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("at line %d, column %d (byte %d, after %q): %s", e.Line, e.Col, e.Pos, e.After, e.Reason())
}

// AsError converts e to jetpeg.Error with MatchError code.
func (e *ParsingError) AsError() *jetpeg.Error {
	return jetpeg.NewError(MatchError, e.Reason(), e.SourceName, e.Line, e.Col)
}
