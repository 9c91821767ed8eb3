// Package source defines named sources used for grammar descriptions and match inputs.
package source

import (
	"bytes"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Source is a named immutable chunk of bytes with line index.
// A Source is never modified after New, so it may be shared between goroutines.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates new Source.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content}
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(content) && j < lineCnt; i++ {
		if content[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// LineCol returns 1-based line and column numbers for byte position pos.
// Column counts runes, position is clamped to source bounds.
func (s *Source) LineCol(pos int) (line, col int) {
	lineIndex, lineStart, pos := s.locate(pos)
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

// DisplayCol returns 1-based column of byte position pos as seen on a terminal,
// i.e. wide characters take two cells and combining sequences take one.
func (s *Source) DisplayCol(pos int) int {
	_, lineStart, pos := s.locate(pos)
	return uniseg.StringWidth(string(s.content[lineStart:pos])) + 1
}

// LineText returns the content of the line containing pos without line break.
func (s *Source) LineText(pos int) []byte {
	lineIndex, lineStart, _ := s.locate(pos)
	end := len(s.content)
	if lineIndex+1 < len(s.lineStarts) {
		end = s.lineStarts[lineIndex+1] - 1
	}
	return bytes.TrimSuffix(s.content[lineStart:end], []byte{'\r'})
}

func (s *Source) locate(pos int) (lineIndex, lineStart, clamped int) {
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(s.content) {
		pos = len(s.content)
		lineIndex = len(s.lineStarts) - 1
	} else {
		lineIndex = s.findLineIndex(pos)
	}
	return lineIndex, s.lineStarts[lineIndex], pos
}

// Pos converts 1-based line and column to byte position.
// Column is treated as byte offset within the line.
func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.content)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	}
	return res
}

func (s *Source) findLineIndex(pos int) int {
	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	for leftIndex < rightIndex {
		index := (leftIndex + rightIndex + 1) >> 1
		if s.lineStarts[index] <= pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
		}
	}
	return leftIndex
}

// Pos is a position in a Source, it implements jetpeg.SourcePos.
type Pos struct {
	src            *Source
	pos, line, col int
}

// NewPos creates a position for byte offset pos, s may be nil.
func NewPos(s *Source, pos int) Pos {
	res := Pos{src: s, pos: pos}
	if s != nil {
		res.line, res.col = s.LineCol(pos)
	}
	return res
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.Name()
}

func (p Pos) Pos() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}
