package layout

import (
	"strconv"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/grammar"
)

type ruleState int

const (
	notComputed ruleState = iota
	computing
	computed
)

type structSite struct {
	seq grammar.Expression
	t   *Type
}

// Layout holds value types of every rule and expression of a grammar.
// It is immutable once computed and can be shared by concurrent matches.
type Layout struct {
	g      *grammar.Grammar
	types  map[string]*Type
	order  []*Type
	exprs  map[grammar.Expression]*Type
	locals map[grammar.Expression]*Type
	rules  map[string]*Type
	state  map[string]ruleState
	valued map[string]bool

	sites    []structSite
	creators []*grammar.ObjectCreator
	err      error
}

// Compute computes value types for g. g must pass grammar.Check.
//
// Rule types are computed in definition order. A call to a rule whose type is being computed
// gets a Boxed type referring to that rule, any other call takes the called rule type.
func Compute(g *grammar.Grammar) (*Layout, error) {
	l := &Layout{
		g:      g,
		types:  make(map[string]*Type),
		exprs:  make(map[grammar.Expression]*Type),
		locals: make(map[grammar.Expression]*Type),
		rules:  make(map[string]*Type, len(g.Rules)),
		state:  make(map[string]ruleState, len(g.Rules)),
		valued: make(map[string]bool, len(g.Rules)),
	}

	l.computeValued()
	for _, r := range g.Rules {
		l.ruleType(r)
	}

	var visit grammar.Visitor
	visit = func(e grammar.Expression) bool {
		l.typeOf(e)
		if oc, ok := e.(*grammar.ObjectCreator); ok {
			grammar.Walk(oc.Child, visit)
			return false
		}
		return true
	}
	for _, r := range g.Rules {
		grammar.Walk(r.Body, visit)
	}

	l.finalize()
	if l.err != nil {
		return nil, l.err
	}
	return l, nil
}

// Rule returns the value type of the named rule or nil.
func (l *Layout) Rule(name string) *Type {
	return l.rules[name]
}

// TypeOf returns the value type of a grammar expression, except object data templates.
func (l *Layout) TypeOf(e grammar.Expression) *Type {
	t := l.exprs[e]
	if t == nil {
		jetpeg.Internalf("no value type for %T expression %s", e, grammar.Format(e))
	}
	return t
}

// LocalType returns the type of a local value defined by a local label or a factored primary.
func (l *Layout) LocalType(e grammar.Expression) *Type {
	t := l.locals[e]
	if t == nil {
		jetpeg.Internalf("no local value type for %T expression %s", e, grammar.Format(e))
	}
	return t
}

// Types returns all types in order of creation.
func (l *Layout) Types() []*Type {
	return l.order
}

func (l *Layout) fail(e error) {
	if l.err == nil {
		l.err = e
	}
}

func (l *Layout) computeValued() {
	for changed := true; changed; {
		changed = false
		for _, r := range l.g.Rules {
			if !l.valued[r.Name] && l.isValued(r.Body) {
				l.valued[r.Name] = true
				changed = true
			}
		}
	}
}

// isValued must agree with compute: an expression is valued iff its type is not Nothing.
func (l *Layout) isValued(e grammar.Expression) bool {
	switch n := e.(type) {
	case *grammar.Sequence:
		return l.anyValued(n.Children)
	case *grammar.Choice:
		return l.anyValued(n.Children)
	case *grammar.Repetition:
		return l.isValued(n.Child)
	case *grammar.Until:
		return l.isValued(n.Child) || l.isValued(n.Terminator)
	case *grammar.RuleCall:
		return l.valued[n.Name]
	case *grammar.Parenthesized:
		return n.Child != nil && l.isValued(n.Child)
	case *grammar.Label:
		return n.Kind != grammar.LocalLabel
	case *grammar.LocalValueRef, *grammar.ObjectCreator, *grammar.ValueCreator,
		*grammar.StringLiteral, *grammar.BooleanLiteral:
		return true
	case *grammar.EnterMode:
		return l.isValued(n.Child)
	case *grammar.LeaveMode:
		return l.isValued(n.Child)
	case *grammar.Factored:
		return l.isValued(n.Choice)
	case *grammar.Replay:
		b, found := grammar.Resolve(n, n.Name)
		return found && b.Factored != nil && l.isValued(b.Factored.Primary)
	}
	return false
}

func (l *Layout) anyValued(es []grammar.Expression) bool {
	for _, e := range es {
		if l.isValued(e) {
			return true
		}
	}
	return false
}

func (l *Layout) ruleType(r *grammar.Rule) *Type {
	switch l.state[r.Name] {
	case computed:
		return l.rules[r.Name]
	case computing:
		return l.boxed(r.Name)
	}

	l.state[r.Name] = computing
	t := l.typeOf(r.Body)
	l.rules[r.Name] = t
	l.exprs[r] = t
	l.state[r.Name] = computed
	return t
}

func (l *Layout) typeOf(e grammar.Expression) *Type {
	if t, has := l.exprs[e]; has {
		return t
	}

	t := l.compute(e)
	l.exprs[e] = t
	return t
}

func (l *Layout) compute(e grammar.Expression) *Type {
	switch n := e.(type) {
	case *grammar.Sequence:
		return l.sequence(n)

	case *grammar.Choice:
		if len(n.Children) == 0 {
			return l.nothing()
		}
		arms := make([]*Type, len(n.Children))
		same := true
		for i, c := range n.Children {
			arms[i] = l.typeOf(c)
			same = same && arms[i] == arms[0]
		}
		if same {
			return arms[0]
		}
		return l.choiceOf(arms)

	case *grammar.Repetition:
		if n.Glue != nil {
			l.typeOf(n.Glue)
		}
		return l.listOf(l.typeOf(n.Child))

	case *grammar.Until:
		ct := l.typeOf(n.Child)
		tt := l.typeOf(n.Terminator)
		switch {
		case ct.Kind == Nothing:
			return l.listOf(tt)
		case tt.Kind == Nothing || tt == ct:
			return l.listOf(ct)
		default:
			return l.listOf(l.choiceOf([]*Type{ct, tt}))
		}

	case *grammar.PositiveLookahead:
		l.typeOf(n.Child)
		return l.nothing()

	case *grammar.NegativeLookahead:
		l.typeOf(n.Child)
		return l.nothing()

	case *grammar.RuleCall:
		for _, arg := range n.Args {
			at := l.typeOf(arg)
			if at.Kind != Nothing && at.Kind != Range {
				l.fail(argumentTypeError(arg, at))
			}
		}
		r := l.g.Rule(n.Name)
		if r == nil || !l.valued[n.Name] {
			return l.nothing()
		}
		return l.ruleType(r)

	case *grammar.Parenthesized:
		if n.Child == nil {
			return l.nothing()
		}
		return l.typeOf(n.Child)

	case *grammar.Label:
		ct := l.localOf(l.typeOf(n.Child))
		switch n.Kind {
		case grammar.LocalLabel:
			l.locals[n] = ct
			return l.nothing()
		default:
			return l.structOf([]Member{{Name: n.Name, Type: ct}})
		}

	case *grammar.LocalValueRef:
		b, found := grammar.Resolve(n, n.Name)
		if !found {
			return l.rangeType()
		}
		switch b.Kind {
		case grammar.LabelBinding:
			return l.localOf(l.typeOf(b.Label.Child))
		case grammar.FactoredBinding:
			return l.localOf(l.typeOf(b.Factored.Primary))
		default:
			return l.rangeType()
		}

	case *grammar.ObjectCreator:
		inner := l.nothing()
		if n.Child != nil {
			inner = l.typeOf(n.Child)
		}
		l.creators = append(l.creators, n)
		return l.objectOf(n, inner)

	case *grammar.ValueCreator:
		inner := l.nothing()
		if n.Child != nil {
			inner = l.typeOf(n.Child)
		}
		return l.codeOf(n, inner)

	case *grammar.StringLiteral:
		return l.intern(&Type{Kind: String, Value: n.Value, key: "s" + strconv.Quote(n.Value)})

	case *grammar.BooleanLiteral:
		key := "f"
		if n.Value {
			key = "t"
		}
		return l.intern(&Type{Kind: Boolean, Value: n.Value, key: key})

	case *grammar.MatchFunction:
		switch arg := n.Child.(type) {
		case *grammar.StringLiteral:
		case *grammar.LocalValueRef:
			if at := l.typeOf(arg); at.Kind != Range {
				l.fail(matchArgumentError(arg, at))
			}
		default:
			l.fail(matchArgumentError(n, l.typeOf(n.Child)))
		}
		return l.nothing()

	case *grammar.EnterMode:
		return l.typeOf(n.Child)

	case *grammar.LeaveMode:
		return l.typeOf(n.Child)

	case *grammar.Factored:
		l.locals[n] = l.localOf(l.typeOf(n.Primary))
		return l.typeOf(n.Choice)

	case *grammar.Replay:
		b, found := grammar.Resolve(n, n.Name)
		if !found || b.Factored == nil {
			return l.nothing()
		}
		return l.typeOf(b.Factored.Primary)

	case *grammar.Rule:
		return l.ruleType(n)
	}

	return l.nothing()
}

// localOf returns the type of a local value captured from an expression of type t.
func (l *Layout) localOf(t *Type) *Type {
	if t.Kind == Nothing {
		return l.rangeType()
	}
	return t
}

func (l *Layout) sequence(n *grammar.Sequence) *Type {
	var valued []*Type
	for _, c := range n.Children {
		if t := l.typeOf(c); t.Kind != Nothing {
			valued = append(valued, t)
		}
	}

	switch len(valued) {
	case 0:
		return l.nothing()
	case 1:
		return valued[0]
	}

	var members []Member
	for _, t := range valued {
		if t.Kind == Struct {
			members = append(members, t.Members...)
		} else {
			members = append(members, Member{Type: t})
		}
	}
	t := l.structOf(members)
	l.sites = append(l.sites, structSite{n, t})
	return t
}

func (l *Layout) intern(t *Type) *Type {
	if old, has := l.types[t.key]; has {
		return old
	}

	l.types[t.key] = t
	l.order = append(l.order, t)
	return t
}

func (l *Layout) nothing() *Type {
	return l.intern(&Type{Kind: Nothing, key: "-"})
}

func (l *Layout) rangeType() *Type {
	return l.intern(&Type{Kind: Range, key: "r"})
}

func (l *Layout) structOf(members []Member) *Type {
	ms := make([]Member, len(members))
	for i, m := range members {
		ms[i] = Member{Name: m.Name, Type: m.Type}
	}
	return l.intern(&Type{Kind: Struct, Members: ms, key: structKey(ms)})
}

func (l *Layout) choiceOf(arms []*Type) *Type {
	t := &Type{Kind: Choice, Arms: make([]Arm, len(arms)), key: choiceKey(arms)}
	for i, a := range arms {
		t.Arms[i].Type = a
	}
	return l.intern(t)
}

func (l *Layout) listOf(elem *Type) *Type {
	if elem.Kind == Nothing {
		return elem
	}
	return l.intern(&Type{Kind: List, Elem: elem, key: "[" + elem.key + "]"})
}

func (l *Layout) boxed(rule string) *Type {
	return l.intern(&Type{Kind: Boxed, Rule: rule, key: "&" + rule})
}

func (l *Layout) objectOf(n *grammar.ObjectCreator, inner *Type) *Type {
	key := "<" + n.ClassName + " " + inner.key
	if n.Data != nil {
		key += " " + grammar.Format(n.Data)
	}
	key += ">"
	return l.intern(&Type{Kind: Object, Class: n.ClassName, Inner: inner, Data: n.Data, key: key})
}

func (l *Layout) codeOf(n *grammar.ValueCreator, inner *Type) *Type {
	key := "{" + strconv.Quote(n.Code) + "@" + n.Filename + ":" + strconv.Itoa(n.Line) + " " + inner.key + "}"
	return l.intern(&Type{Kind: Code, Code: n.Code, Filename: n.Filename, Line: n.Line, Inner: inner, key: key})
}
