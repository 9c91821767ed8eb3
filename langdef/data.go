package langdef

import (
	"strings"
	"unicode"

	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/lexer"
)

// parseObjectCreator parses "ClassName data? >" after the opening angle bracket.
func (c *parseContext) parseObjectCreator(open *lexer.Token, child grammar.Expression) (grammar.Expression, error) {
	c.switchLexer(dataLexer)
	res, e := c.parseObjectData(open)
	if e != nil {
		return nil, e
	}

	c.switchLexer(mainLexer)
	res.Child = child
	return res, nil
}

func (c *parseContext) parseObjectData(open *lexer.Token) (*grammar.ObjectCreator, error) {
	name, e := c.fetchOne(nameTok, true)
	if e != nil {
		return nil, e
	}

	res := grammar.SetPos(&grammar.ObjectCreator{ClassName: name.Text()}, open.Pos())
	closing, e := c.fetchOne(">", false)
	if e != nil {
		return nil, e
	}

	if closing == nil {
		res.Data, e = c.parseData()
		if e == nil {
			_, e = c.fetchOne(">", true)
		}
		if e != nil {
			return nil, e
		}
	}

	return res, nil
}

func (c *parseContext) parseData() (grammar.Expression, error) {
	t, e := c.next()
	if e != nil {
		return nil, e
	}

	switch t.TypeName() {
	case stringTok:
		chars, _, e := unquoteString(t)
		if e != nil {
			return nil, e
		}

		return grammar.SetPos(&grammar.StringLiteral{Value: string(chars)}, t.Pos()), nil

	case refTok:
		return grammar.SetPos(&grammar.LabelDataRef{Name: t.Text()[1:]}, t.Pos()), nil

	case funcTok:
		switch t.Text() {
		case "$true", "$false":
			return grammar.SetPos(&grammar.BooleanLiteral{Value: t.Text() == "$true"}, t.Pos()), nil
		}
		return nil, unknownFunctionError(t)

	case opTok:
		switch t.Text() {
		case "{":
			return c.parseHash(t)
		case "[":
			return c.parseArray(t)
		case "<":
			obj, e := c.parseObjectData(t)
			if e != nil {
				return nil, e
			}
			return obj, nil
		}
	}

	if isEof(t) {
		return nil, eofError(t)
	}

	return nil, unexpectedTokenError(t)
}

func (c *parseContext) parseHash(open *lexer.Token) (grammar.Expression, error) {
	res := grammar.SetPos(&grammar.HashLiteral{}, open.Pos())
	t, e := c.fetch([]string{labelTok, "}"}, true)
	for e == nil && t.Text() != "}" {
		entry := grammar.HashEntry{Key: strings.TrimSuffix(t.Text(), ":")}
		entry.Value, e = c.parseData()
		if e != nil {
			return nil, e
		}

		res.Entries = append(res.Entries, entry)
		t, e = c.fetch([]string{",", "}"}, true)
		if e == nil && t.Text() == "," {
			t, e = c.fetchOne(labelTok, true)
		}
	}
	if e != nil {
		return nil, e
	}

	return res, nil
}

func (c *parseContext) parseArray(open *lexer.Token) (grammar.Expression, error) {
	res := grammar.SetPos(&grammar.ArrayLiteral{}, open.Pos())
	closing, e := c.fetchOne("]", false)
	if e != nil || closing != nil {
		return res, e
	}

	for {
		entry, e := c.parseData()
		if e != nil {
			return nil, e
		}

		res.Entries = append(res.Entries, entry)
		t, e := c.fetch([]string{",", "]"}, true)
		if e != nil {
			return nil, e
		}

		if t.Text() == "]" {
			return res, nil
		}
	}
}

// parseValueCreator scans code block up to the matching closing curly brace.
// Quoted strings inside the block may contain unbalanced braces.
func (c *parseContext) parseValueCreator(open *lexer.Token, child grammar.Expression) (grammar.Expression, error) {
	content := c.src.Content()
	depth := 1
	for i := c.pos; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++

		case '}':
			depth--
			if depth == 0 {
				raw := string(content[c.pos:i])
				lead := raw[:len(raw)-len(strings.TrimLeftFunc(raw, unicode.IsSpace))]
				res := &grammar.ValueCreator{
					Code:     strings.TrimSpace(raw),
					Child:    child,
					Filename: c.src.Name(),
					Line:     open.Line() + strings.Count(lead, "\n"),
				}
				c.pos = i + 1
				return grammar.SetPos(res, open.Pos()), nil
			}

		case '\'', '"', '`':
			quote := content[i]
			for i++; i < len(content) && content[i] != quote; i++ {
				if content[i] == '\\' {
					i++
				}
			}
		}
	}

	return nil, unterminatedCodeError(open)
}
