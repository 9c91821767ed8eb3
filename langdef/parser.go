package langdef

import (
	"regexp"
	"strings"

	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/lexer"
	"github.com/ava12/jetpeg/source"
)

// ParseString parses grammar description and returns a checked grammar on success.
// Returns nil and jetpeg.Error on error.
func ParseString(name, content string) (*grammar.Grammar, error) {
	return Parse(source.New(name, []byte(content)))
}

// ParseBytes parses grammar description and returns a checked grammar on success.
// Returns nil and jetpeg.Error on error.
func ParseBytes(name string, content []byte) (*grammar.Grammar, error) {
	return Parse(source.New(name, content))
}

// Parse parses grammar description and returns a checked grammar on success.
// Returns nil and jetpeg.Error on error.
func Parse(s *source.Source) (*grammar.Grammar, error) {
	return ParseAll(s)
}

// ParseAll parses several grammar descriptions into a single grammar.
// Rules of all sources share the same namespace.
func ParseAll(sources ...*source.Source) (*grammar.Grammar, error) {
	g := grammar.New()
	var e error
	for _, s := range sources {
		e = newParseContext(s, g).parse(e)
	}
	if e != nil {
		return nil, e
	}

	e = grammar.Check(g)
	if e != nil {
		return nil, e
	}

	return g, nil
}

const (
	stringTok     = "string"
	classTok      = "class"
	labelTok      = "label"
	atLabelTok    = "at-label"
	localLabelTok = "local-label"
	localTok      = "local"
	callTok       = "call"
	nameTok       = "name"
	funcTok       = "function"
	refTok        = "ref"
	opTok         = "op"
	wrongTok      = ""
)

const (
	ruleKeyword = "rule"
	endKeyword  = "end"
)

var mainLexer, dataLexer *lexer.Lexer

func init() {
	mainLexer = lexer.New(regexp.MustCompile(
		`^(?:\s+|#[^\n]*|`+
			`((?:'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")i?)|`+
			`(\[(?:[^\]\\]|\\.)*\])|`+
			`([a-zA-Z_][a-zA-Z_0-9]*:)|`+
			`(@:)|`+
			`(%[a-zA-Z_][a-zA-Z_0-9]*:)|`+
			`(%[a-zA-Z_][a-zA-Z_0-9]*)|`+
			`([a-zA-Z_][a-zA-Z_0-9]*\[)|`+
			`([a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*)|`+
			`(\$[a-zA-Z_]+\[?)|`+
			`(\*->|\*\[|\+\[|[*+?/&!(){}<>\],:.])|`+
			`(['"\[].{0,10}))`),
		[]lexer.TokenType{
			{1, stringTok},
			{2, classTok},
			{3, labelTok},
			{4, atLabelTok},
			{5, localLabelTok},
			{6, localTok},
			{7, callTok},
			{8, nameTok},
			{9, funcTok},
			{10, opTok},
			{lexer.ErrorTokenType, wrongTok},
		})

	dataLexer = lexer.New(regexp.MustCompile(
		`^(?:\s+|#[^\n]*|`+
			`('(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")|`+
			`([a-zA-Z_][a-zA-Z_0-9]*:)|`+
			`(@[a-zA-Z_][a-zA-Z_0-9]*)|`+
			`([a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*)|`+
			`(\$[a-zA-Z_]+)|`+
			`([<>{}\[\],])|`+
			`(['"].{0,10}))`),
		[]lexer.TokenType{
			{1, stringTok},
			{2, labelTok},
			{3, refTok},
			{4, nameTok},
			{5, funcTok},
			{6, opTok},
			{lexer.ErrorTokenType, wrongTok},
		})
}

type parseContext struct {
	src        *source.Source
	pos        int
	lexer      *lexer.Lexer
	savedToken *lexer.Token
	grammar    *grammar.Grammar
}

func newParseContext(s *source.Source, g *grammar.Grammar) *parseContext {
	return &parseContext{src: s, lexer: mainLexer, grammar: g}
}

func (c *parseContext) parse(e error) error {
	if e != nil {
		return e
	}

	for {
		t, e := c.fetch([]string{ruleKeyword, lexer.EofTokenName}, true)
		if e != nil {
			return e
		}

		if isEof(t) {
			return nil
		}

		e = c.parseRule(t)
		if e != nil {
			return e
		}
	}
}

func isEof(t *lexer.Token) bool {
	return t.Type() == lexer.EofTokenType
}

func (c *parseContext) next() (*lexer.Token, error) {
	if c.savedToken != nil {
		t := c.savedToken
		c.savedToken = nil
		return t, nil
	}

	t, pos, e := c.lexer.Next(c.src, c.pos)
	if e != nil {
		return nil, e
	}

	c.pos = pos
	return t, nil
}

func (c *parseContext) put(t *lexer.Token) {
	if c.savedToken != nil {
		panic("cannot put " + t.TypeName() + " token: already put " + c.savedToken.TypeName())
	}

	c.savedToken = t
}

func (c *parseContext) peek() (*lexer.Token, error) {
	t, e := c.next()
	if e == nil {
		c.put(t)
	}
	return t, e
}

// switchLexer must not be called while a token is put back.
func (c *parseContext) switchLexer(l *lexer.Lexer) {
	if c.savedToken != nil {
		panic("cannot switch lexer: " + c.savedToken.TypeName() + " token is put back")
	}

	c.lexer = l
}

// fetch returns next token if its type name or text is listed in types.
// Otherwise returns an error if strict is true, or puts the token back and returns nil.
func (c *parseContext) fetch(types []string, strict bool) (*lexer.Token, error) {
	token, e := c.next()
	if e != nil {
		return nil, e
	}

	for _, typ := range types {
		if token.TypeName() == typ || (!isEof(token) && token.Text() == typ) {
			return token, nil
		}
	}

	if !strict {
		c.put(token)
		return nil, nil
	}

	if isEof(token) {
		return nil, eofError(token)
	}

	return nil, unexpectedTokenError(token)
}

func (c *parseContext) fetchOne(typ string, strict bool) (*lexer.Token, error) {
	return c.fetch([]string{typ}, strict)
}

func isKeyword(name string) bool {
	return name == ruleKeyword || name == endKeyword
}

func isRuleName(name string) bool {
	return !isKeyword(name) && !strings.Contains(name, ".")
}

func (c *parseContext) parseRule(ruleToken *lexer.Token) error {
	t, e := c.fetch([]string{nameTok, callTok}, true)
	if e != nil {
		return e
	}

	r := grammar.SetPos(&grammar.Rule{Name: t.Text()}, ruleToken.Pos())
	if t.TypeName() == callTok {
		r.Name = strings.TrimSuffix(r.Name, "[")
		r.Params, e = c.parseParams()
		if e != nil {
			return e
		}
	}

	if !isRuleName(r.Name) {
		return invalidNameError(t, r.Name)
	}

	if c.grammar.Rule(r.Name) != nil {
		return defRuleError(t, r.Name)
	}

	r.Body, e = c.parseChoice()
	if e == nil {
		_, e = c.fetchOne(endKeyword, true)
	}
	if e != nil {
		return e
	}

	c.grammar.Add(r)
	return nil
}

func (c *parseContext) parseParams() ([]string, error) {
	var res []string
	for {
		t, e := c.fetchOne(localTok, true)
		if e != nil {
			return nil, e
		}

		res = append(res, t.Text()[1:])
		t, e = c.fetch([]string{",", "]"}, true)
		if e != nil {
			return nil, e
		}

		if t.Text() == "]" {
			return res, nil
		}
	}
}

func (c *parseContext) parseChoice() (grammar.Expression, error) {
	first, e := c.peek()
	if e != nil {
		return nil, e
	}

	_, e = c.fetchOne("/", false)
	if e != nil {
		return nil, e
	}

	var alts []grammar.Expression
	for {
		seq, e := c.parseSequence()
		if e != nil {
			return nil, e
		}

		alts = append(alts, seq)
		t, e := c.fetchOne("/", false)
		if e != nil {
			return nil, e
		}

		if t == nil {
			break
		}
	}

	if len(alts) == 1 {
		return alts[0], nil
	}

	return grammar.SetPos(&grammar.Choice{Children: alts}, first.Pos()), nil
}

func startsItem(t *lexer.Token) bool {
	switch t.TypeName() {
	case stringTok, classTok, labelTok, atLabelTok, localLabelTok, localTok, callTok, funcTok:
		return true
	case nameTok:
		return !isKeyword(t.Text())
	case opTok:
		switch t.Text() {
		case "(", ".", "&", "!", ":":
			return true
		}
	}
	return false
}

func sequenceOf(items []grammar.Expression, pos source.Pos) grammar.Expression {
	switch len(items) {
	case 0:
		return grammar.SetPos(&grammar.Parenthesized{}, pos)
	case 1:
		return items[0]
	default:
		return grammar.SetPos(&grammar.Sequence{Children: items}, items[0].Pos())
	}
}

func (c *parseContext) parseSequence() (grammar.Expression, error) {
	var items []grammar.Expression
	for {
		t, e := c.next()
		if e != nil {
			return nil, e
		}

		if startsItem(t) {
			c.put(t)
			item, e := c.parseItem()
			if e != nil {
				return nil, e
			}

			items = append(items, item)
			continue
		}

		switch t.Text() {
		case "<":
			return c.parseObjectCreator(t, sequenceOf(items, t.Pos()))
		case "{":
			return c.parseValueCreator(t, sequenceOf(items, t.Pos()))
		}

		c.put(t)
		return sequenceOf(items, t.Pos()), nil
	}
}

func (c *parseContext) parseItem() (grammar.Expression, error) {
	t, e := c.next()
	if e != nil {
		return nil, e
	}

	var prefix *lexer.Token
	if t.Text() == "&" || t.Text() == "!" {
		prefix = t
		t, e = c.next()
		if e != nil {
			return nil, e
		}
	}

	var label *grammar.Label
	bareLabel := false
	text := t.Text()
	switch t.TypeName() {
	case labelTok:
		label = &grammar.Label{Name: text[:len(text)-1], Kind: grammar.NamedLabel}
	case atLabelTok:
		label = &grammar.Label{Name: grammar.AtName, Kind: grammar.AtLabel}
	case localLabelTok:
		label = &grammar.Label{Name: text[1 : len(text)-1], Kind: grammar.LocalLabel}
	default:
		if text == ":" && t.TypeName() == opTok {
			bareLabel = true
		} else {
			c.put(t)
		}
	}

	primary, e := c.parsePrimary()
	if e != nil {
		return nil, e
	}

	if bareLabel {
		call, isCall := primary.(*grammar.RuleCall)
		if !isCall {
			return nil, misplacedLabelError(t)
		}
		label = &grammar.Label{Name: call.Name, Kind: grammar.NamedLabel}
	}

	res, e := c.parseSuffixes(primary)
	if e != nil {
		return nil, e
	}

	if label != nil {
		label.Child = res
		res = grammar.SetPos(label, t.Pos())
	}

	if prefix != nil {
		if prefix.Text() == "&" {
			res = grammar.SetPos(&grammar.PositiveLookahead{Child: res}, prefix.Pos())
		} else {
			res = grammar.SetPos(&grammar.NegativeLookahead{Child: res}, prefix.Pos())
		}
	}

	return res, nil
}

func (c *parseContext) parseSuffixes(res grammar.Expression) (grammar.Expression, error) {
	for {
		t, e := c.fetch([]string{"?", "*", "+", "*[", "+[", "*->"}, false)
		if e != nil || t == nil {
			return res, e
		}

		pos := res.Pos()
		switch t.Text() {
		case "?":
			empty := grammar.SetPos(&grammar.Parenthesized{}, t.Pos())
			res = &grammar.Choice{Children: []grammar.Expression{res, empty}}

		case "*", "+":
			res = &grammar.Repetition{Child: res, AtLeastOnce: t.Text() == "+"}

		case "*[", "+[":
			glue, e := c.parseChoice()
			if e == nil {
				_, e = c.fetchOne("]", true)
			}
			if e != nil {
				return nil, e
			}

			res = &grammar.Repetition{Child: res, Glue: glue, AtLeastOnce: t.Text() == "+["}

		case "*->":
			term, e := c.parsePrimary()
			if e != nil {
				return nil, e
			}

			res = &grammar.Until{Child: res, Terminator: term}
		}
		grammar.SetPos(res, pos)
	}
}

func (c *parseContext) parsePrimary() (grammar.Expression, error) {
	t, e := c.next()
	if e != nil {
		return nil, e
	}

	text := t.Text()
	switch t.TypeName() {
	case stringTok:
		chars, fold, e := unquoteString(t)
		if e != nil {
			return nil, e
		}

		return grammar.SetPos(&grammar.StringTerminal{Chars: chars, Fold: fold}, t.Pos()), nil

	case classTok:
		class, e := parseClass(t)
		if e != nil {
			return nil, e
		}

		return class, nil

	case localTok:
		return grammar.SetPos(&grammar.LocalValueRef{Name: text[1:]}, t.Pos()), nil

	case callTok:
		name := strings.TrimSuffix(text, "[")
		if !isRuleName(name) {
			return nil, invalidNameError(t, name)
		}

		args, e := c.parseList("]")
		if e != nil {
			return nil, e
		}

		return grammar.SetPos(&grammar.RuleCall{Name: name, Args: args}, t.Pos()), nil

	case nameTok:
		if !isRuleName(text) {
			return nil, invalidNameError(t, text)
		}

		return grammar.SetPos(&grammar.RuleCall{Name: text}, t.Pos()), nil

	case funcTok:
		return c.parseFunction(t)

	case opTok:
		switch text {
		case ".":
			return grammar.SetPos(&grammar.AnyCharacter{}, t.Pos()), nil

		case "(":
			res := grammar.SetPos(&grammar.Parenthesized{}, t.Pos())
			closing, e := c.fetchOne(")", false)
			if e != nil {
				return nil, e
			}

			if closing == nil {
				res.Child, e = c.parseChoice()
				if e == nil {
					_, e = c.fetchOne(")", true)
				}
				if e != nil {
					return nil, e
				}
			}
			return res, nil
		}
	}

	if isEof(t) {
		return nil, eofError(t)
	}

	return nil, unexpectedTokenError(t)
}

// parseList parses comma-separated choices up to closing token.
func (c *parseContext) parseList(closing string) ([]grammar.Expression, error) {
	var res []grammar.Expression
	for {
		item, e := c.parseChoice()
		if e != nil {
			return nil, e
		}

		res = append(res, item)
		t, e := c.fetch([]string{",", closing}, true)
		if e != nil {
			return nil, e
		}

		if t.Text() == closing {
			return res, nil
		}
	}
}

func (c *parseContext) fetchText() (string, error) {
	t, e := c.fetchOne(stringTok, true)
	if e != nil {
		return "", e
	}

	chars, _, e := unquoteString(t)
	return string(chars), e
}

func (c *parseContext) parseFunction(t *lexer.Token) (grammar.Expression, error) {
	var (
		res grammar.Expression
		e   error
	)

	switch t.Text() {
	case "$true", "$false":
		return grammar.SetPos(&grammar.BooleanLiteral{Value: t.Text() == "$true"}, t.Pos()), nil

	case "$error[":
		f := &grammar.ErrorFunction{}
		f.Message, e = c.fetchText()
		res = f

	case "$match[":
		f := &grammar.MatchFunction{}
		var arg *lexer.Token
		arg, e = c.fetch([]string{localTok, stringTok}, true)
		if e == nil {
			if arg.TypeName() == localTok {
				f.Child = grammar.SetPos(&grammar.LocalValueRef{Name: arg.Text()[1:]}, arg.Pos())
			} else {
				var chars []byte
				chars, _, e = unquoteString(arg)
				f.Child = grammar.SetPos(&grammar.StringLiteral{Value: string(chars)}, arg.Pos())
			}
		}
		res = f

	case "$enter_mode[", "$leave_mode[":
		var (
			mode  string
			child grammar.Expression
		)
		mode, e = c.fetchText()
		if e == nil {
			_, e = c.fetchOne(",", true)
		}
		if e == nil {
			child, e = c.parseChoice()
		}
		if t.Text() == "$enter_mode[" {
			res = &grammar.EnterMode{Mode: mode, Child: child}
		} else {
			res = &grammar.LeaveMode{Mode: mode, Child: child}
		}

	case "$in_mode[":
		f := &grammar.InMode{}
		f.Mode, e = c.fetchText()
		res = f

	default:
		return nil, unknownFunctionError(t)
	}

	if e == nil {
		_, e = c.fetchOne("]", true)
	}
	if e != nil {
		return nil, e
	}

	return grammar.SetPos(res, t.Pos()), nil
}
