// Package optimizer rewrites grammars to avoid repeated matching of shared prefixes.
//
// A choice whose alternatives all start with the same primary (a terminal, a class, any character,
// or a rule call) is replaced by a grammar.Factored node: the primary is matched once and each
// alternative replays the stored result instead of matching it again.
// Alternatives still start at the original position, so matched ranges and values do not change.
package optimizer

import (
	"strconv"

	"github.com/ava12/jetpeg/grammar"
)

// FactoredPrefix starts names of factored primaries, it cannot start a local value name.
const FactoredPrefix = "#"

type optimizer struct {
	count int
}

// Optimize returns an optimized copy of g and the number of factored choices. g is not modified.
func Optimize(g *grammar.Grammar) (*grammar.Grammar, int) {
	res := grammar.New()
	o := &optimizer{}
	for _, r := range g.Rules {
		clone := grammar.Clone(r).(*grammar.Rule)
		clone.Body = o.rewrite(clone.Body)
		res.Add(clone)
	}
	return res, o.count
}

func (o *optimizer) rewrite(e grammar.Expression) grammar.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *grammar.Sequence:
		o.rewriteAll(n.Children)
	case *grammar.Choice:
		o.rewriteAll(n.Children)
		return o.factor(n)
	case *grammar.Repetition:
		n.Child = o.rewrite(n.Child)
		n.Glue = o.rewrite(n.Glue)
	case *grammar.Until:
		n.Child = o.rewrite(n.Child)
		n.Terminator = o.rewrite(n.Terminator)
	case *grammar.PositiveLookahead:
		n.Child = o.rewrite(n.Child)
	case *grammar.NegativeLookahead:
		n.Child = o.rewrite(n.Child)
	case *grammar.RuleCall:
		o.rewriteAll(n.Args)
	case *grammar.Parenthesized:
		n.Child = o.rewrite(n.Child)
	case *grammar.Label:
		n.Child = o.rewrite(n.Child)
	case *grammar.ObjectCreator:
		n.Child = o.rewrite(n.Child)
	case *grammar.ValueCreator:
		n.Child = o.rewrite(n.Child)
	case *grammar.EnterMode:
		n.Child = o.rewrite(n.Child)
	case *grammar.LeaveMode:
		n.Child = o.rewrite(n.Child)
	}
	return e
}

func (o *optimizer) rewriteAll(es []grammar.Expression) {
	for i, e := range es {
		es[i] = o.rewrite(e)
	}
}

func (o *optimizer) factor(c *grammar.Choice) grammar.Expression {
	if len(c.Children) < 2 {
		return c
	}

	primary := Leftmost(c.Children[0])
	if primary == nil {
		return c
	}

	for _, arm := range c.Children[1:] {
		p := Leftmost(arm)
		if p == nil || !grammar.Equal(primary, p) {
			return c
		}
	}

	name := FactoredPrefix + strconv.Itoa(o.count)
	o.count++
	for i, arm := range c.Children {
		replay := grammar.SetPos(&grammar.Replay{Name: name}, Leftmost(arm).Pos())
		c.Children[i] = replaceLeftmost(arm, replay)
	}

	return grammar.SetPos(&grammar.Factored{Name: name, Primary: primary, Choice: c}, c.Pos())
}

// Leftmost returns the primary matched first by e or nil.
// Only first items of sequences, labels, groupings, and creators are looked through.
func Leftmost(e grammar.Expression) grammar.Expression {
	switch n := e.(type) {
	case *grammar.StringTerminal, *grammar.CharacterClass, *grammar.AnyCharacter, *grammar.RuleCall:
		return e
	case *grammar.Sequence:
		if len(n.Children) > 0 {
			return Leftmost(n.Children[0])
		}
	case *grammar.Label:
		return Leftmost(n.Child)
	case *grammar.Parenthesized:
		if n.Child != nil {
			return Leftmost(n.Child)
		}
	case *grammar.ObjectCreator:
		if n.Child != nil {
			return Leftmost(n.Child)
		}
	case *grammar.ValueCreator:
		return Leftmost(n.Child)
	}
	return nil
}

func replaceLeftmost(e grammar.Expression, replay *grammar.Replay) grammar.Expression {
	switch n := e.(type) {
	case *grammar.Sequence:
		n.Children[0] = replaceLeftmost(n.Children[0], replay)
	case *grammar.Label:
		n.Child = replaceLeftmost(n.Child, replay)
	case *grammar.Parenthesized:
		n.Child = replaceLeftmost(n.Child, replay)
	case *grammar.ObjectCreator:
		n.Child = replaceLeftmost(n.Child, replay)
	case *grammar.ValueCreator:
		n.Child = replaceLeftmost(n.Child, replay)
	default:
		return replay
	}
	return e
}
