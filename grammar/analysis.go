package grammar

import (
	"github.com/ava12/jetpeg/internal/ints"
	"github.com/ava12/jetpeg/internal/queue"
)

// Analysis holds call graph facts about a grammar.
type Analysis struct {
	g        *Grammar
	index    map[string]int
	nullable []bool
	// leftCalls[i] contains indexes of rules that rule i may call without consuming input.
	leftCalls []*ints.Set[int]
}

// Analyze computes nullability of rules and the left call graph.
// Undefined rule calls are ignored.
func Analyze(g *Grammar) *Analysis {
	a := &Analysis{
		g:         g,
		index:     make(map[string]int, len(g.Rules)),
		nullable:  make([]bool, len(g.Rules)),
		leftCalls: make([]*ints.Set[int], len(g.Rules)),
	}
	for i, r := range g.Rules {
		a.index[r.Name] = i
	}

	for changed := true; changed; {
		changed = false
		for i, r := range g.Rules {
			if !a.nullable[i] && a.Nullable(r.Body) {
				a.nullable[i] = true
				changed = true
			}
		}
	}

	for i, r := range g.Rules {
		a.leftCalls[i] = ints.NewSet[int]()
		a.collectLeftCalls(r.Body, a.leftCalls[i])
	}
	return a
}

// Nullable reports whether e may succeed without consuming input.
func (a *Analysis) Nullable(e Expression) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *Sequence:
		for _, c := range n.Children {
			if !a.Nullable(c) {
				return false
			}
		}
		return true
	case *Choice:
		for _, c := range n.Children {
			if a.Nullable(c) {
				return true
			}
		}
		return false
	case *Repetition:
		return !n.AtLeastOnce || a.Nullable(n.Child)
	case *Until:
		return a.Nullable(n.Terminator)
	case *RuleCall:
		i, has := a.index[n.Name]
		return has && a.nullable[i]
	case *StringTerminal:
		return len(n.Chars) == 0
	case *CharacterClass, *AnyCharacter, *ErrorFunction:
		return false
	case *Parenthesized:
		return a.Nullable(n.Child)
	case *Label:
		return a.Nullable(n.Child)
	case *ObjectCreator:
		return a.Nullable(n.Child)
	case *ValueCreator:
		return a.Nullable(n.Child)
	case *EnterMode:
		return a.Nullable(n.Child)
	case *LeaveMode:
		return a.Nullable(n.Child)
	case *Factored:
		return a.Nullable(n.Primary) && a.Nullable(n.Choice)
	case *Rule:
		return a.Nullable(n.Body)
	}
	return true
}

func (a *Analysis) collectLeftCalls(e Expression, res *ints.Set[int]) {
	switch n := e.(type) {
	case *Sequence:
		for _, c := range n.Children {
			a.collectLeftCalls(c, res)
			if !a.Nullable(c) {
				break
			}
		}
	case *Repetition:
		a.collectLeftCalls(n.Child, res)
		if n.Glue != nil && a.Nullable(n.Child) {
			a.collectLeftCalls(n.Glue, res)
		}
	case *Until:
		a.collectLeftCalls(n.Terminator, res)
		a.collectLeftCalls(n.Child, res)
	case *RuleCall:
		if i, has := a.index[n.Name]; has {
			res.Add(i)
		}
		for _, arg := range n.Args {
			a.collectLeftCalls(arg, res)
		}
	case *Factored:
		a.collectLeftCalls(n.Primary, res)
		if a.Nullable(n.Primary) {
			a.collectLeftCalls(n.Choice, res)
		}
	default:
		for _, c := range Children(e) {
			a.collectLeftCalls(c, res)
		}
	}
}

// IsNullable reports whether rule may succeed without consuming input.
func (a *Analysis) IsNullable(rule string) bool {
	i, has := a.index[rule]
	return has && a.nullable[i]
}

// LeftCalls returns names of rules that rule may call at its own start position.
func (a *Analysis) LeftCalls(rule string) []string {
	i, has := a.index[rule]
	if !has {
		return nil
	}
	return a.names(a.leftCalls[i])
}

// IsDirectlyLeftRecursive reports whether rule may call itself at its own start position.
func (a *Analysis) IsDirectlyLeftRecursive(rule string) bool {
	i, has := a.index[rule]
	return has && a.leftCalls[i].Contains(i)
}

// IndirectLeftRecursion returns names of rules that reach themselves at the same position
// through at least one other rule, in definition order.
func (a *Analysis) IndirectLeftRecursion() []string {
	res := ints.NewSet[int]()
	for i := range a.g.Rules {
		start := a.leftCalls[i].Copy().Remove(i)
		q := queue.NewUnique(start.ToSlice()...)
		for j, ok := q.First(); ok; j, ok = q.First() {
			if j == i {
				res.Add(i)
				break
			}
			for _, k := range a.leftCalls[j].ToSlice() {
				if k != j {
					q.Append(k)
				}
			}
		}
	}
	return a.names(res)
}

func (a *Analysis) names(s *ints.Set[int]) []string {
	items := s.ToSlice()
	res := make([]string, len(items))
	for i, index := range items {
		res[i] = a.g.Rules[index].Name
	}
	return res
}
