// Package grammar defines the expression tree of a JetPEG grammar.
//
// The tree is a closed set of node types implementing Expression.
// Every node except a Rule has exactly one parent, parent links are set by Link
// and are used for lexical scope resolution only.
package grammar

import (
	"github.com/ava12/jetpeg/source"
)

// Expression is a parsing expression node.
// The set of implementations is fixed, use a type switch over the node types of this package.
type Expression interface {
	// Parent returns enclosing expression or nil for a Rule.
	Parent() Expression
	// Pos returns position of the expression in grammar source, may be zero.
	Pos() source.Pos

	base() *node
}

type node struct {
	parent Expression
	pos    source.Pos
}

func (n *node) Parent() Expression {
	return n.parent
}

func (n *node) Pos() source.Pos {
	return n.pos
}

func (n *node) base() *node {
	return n
}

// SetPos sets source position of e and returns e.
func SetPos[T Expression](e T, pos source.Pos) T {
	e.base().pos = pos
	return e
}

// Sequence matches all children one after another.
type Sequence struct {
	node
	Children []Expression
}

// Choice tries children in order and takes the first successful one.
type Choice struct {
	node
	Children []Expression
}

// Repetition matches Child zero or more times, or at least once.
// Glue, if not nil, must match between two iterations.
type Repetition struct {
	node
	Child       Expression
	Glue        Expression
	AtLeastOnce bool
}

// Until matches Child repeatedly until Terminator matches.
type Until struct {
	node
	Child      Expression
	Terminator Expression
}

type PositiveLookahead struct {
	node
	Child Expression
}

type NegativeLookahead struct {
	node
	Child Expression
}

// RuleCall invokes a rule, passing argument values as the rule parameters.
type RuleCall struct {
	node
	Name string
	Args []Expression
}

// Parenthesized is a grouping, Child is nil for empty parentheses that always succeed.
type Parenthesized struct {
	node
	Child Expression
}

// LabelKind tells how a Label stores its value.
type LabelKind int

const (
	NamedLabel LabelKind = iota // name:expr, a field of the enclosing record
	AtLabel                     // @:expr, replaces the enclosing record
	LocalLabel                  // %name:expr, a local value
)

// AtName is the field name used for AtLabel.
const AtName = "@"

type Label struct {
	node
	Name  string
	Kind  LabelKind
	Child Expression
}

// LocalValueRef reads a local label value or a rule parameter without consuming input.
type LocalValueRef struct {
	node
	Name string
}

// StringTerminal matches a fixed byte string. Fold enables ASCII case-insensitive matching.
type StringTerminal struct {
	node
	Chars []byte
	Fold  bool
}

// Selection is a single character or a character range of a class.
type Selection struct {
	From, To byte
}

func (s Selection) Contains(c byte) bool {
	return c >= s.From && c <= s.To
}

type CharacterClass struct {
	node
	Selections []Selection
	Inverted   bool
}

// Contains reports whether the class matches c.
func (c *CharacterClass) Contains(b byte) bool {
	for _, s := range c.Selections {
		if s.Contains(b) {
			return !c.Inverted
		}
	}
	return c.Inverted
}

type AnyCharacter struct {
	node
}

// ObjectCreator tags the value of Child (or Data built from it) as an instance of ClassName.
type ObjectCreator struct {
	node
	ClassName string
	Child     Expression
	Data      Expression
}

// ValueCreator tags the value of Child for evaluation of Code.
type ValueCreator struct {
	node
	Code     string
	Child    Expression
	Filename string
	Line     int
}

type StringLiteral struct {
	node
	Value string
}

type BooleanLiteral struct {
	node
	Value bool
}

type HashEntry struct {
	Key   string
	Value Expression
}

type HashLiteral struct {
	node
	Entries []HashEntry
}

type ArrayLiteral struct {
	node
	Entries []Expression
}

// LabelDataRef reads a field of the value wrapped by the enclosing ObjectCreator.
type LabelDataRef struct {
	node
	Name string
}

// ErrorFunction always fails, reporting Message as a failure reason.
type ErrorFunction struct {
	node
	Message string
}

// MatchFunction matches the bytes of Child's value (a local value or a string literal).
type MatchFunction struct {
	node
	Child Expression
}

type EnterMode struct {
	node
	Mode  string
	Child Expression
}

type LeaveMode struct {
	node
	Mode  string
	Child Expression
}

type InMode struct {
	node
	Mode string
}

// Factored is produced by the optimizer from a Choice whose alternatives share a leftmost primary.
// Primary is matched once and stored as local Name, the alternatives read it with replaying references.
type Factored struct {
	node
	Name    string
	Primary Expression
	Choice  *Choice
}

// Replay is a leftmost primary replaced by the optimizer, it yields the stored primary result
// (end position and value) of the enclosing Factored named Name.
type Replay struct {
	node
	Name string
}

// Rule is the root of a rule expression tree.
type Rule struct {
	node
	Name   string
	Params []string
	Body   Expression
}

// Grammar is an ordered set of rules.
type Grammar struct {
	Rules []*Rule
	index map[string]*Rule
}

func New() *Grammar {
	return &Grammar{index: make(map[string]*Rule)}
}

// Add appends a rule and links its tree. Returns false if a rule with the same name already exists.
func (g *Grammar) Add(r *Rule) bool {
	if _, has := g.index[r.Name]; has {
		return false
	}

	Link(r)
	g.Rules = append(g.Rules, r)
	g.index[r.Name] = r
	return true
}

// Rule returns rule by name or nil.
func (g *Grammar) Rule(name string) *Rule {
	return g.index[name]
}

// Names returns rule names in definition order.
func (g *Grammar) Names() []string {
	res := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		res[i] = r.Name
	}
	return res
}

// Replace substitutes the rule with the same name, the tree of r is linked.
func (g *Grammar) Replace(r *Rule) {
	Link(r)
	for i, old := range g.Rules {
		if old.Name == r.Name {
			g.Rules[i] = r
			g.index[r.Name] = r
			return
		}
	}
	g.Rules = append(g.Rules, r)
	g.index[r.Name] = r
}

// RuleOf returns the rule containing e or nil.
func RuleOf(e Expression) *Rule {
	for e != nil {
		if r, ok := e.(*Rule); ok {
			return r
		}
		e = e.Parent()
	}
	return nil
}
