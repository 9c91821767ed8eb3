package grammar

// Children returns direct subexpressions of e in evaluation order, nil children are skipped.
func Children(e Expression) []Expression {
	var res []Expression
	add := func(es ...Expression) {
		for _, c := range es {
			if c != nil {
				res = append(res, c)
			}
		}
	}

	switch n := e.(type) {
	case *Sequence:
		add(n.Children...)
	case *Choice:
		add(n.Children...)
	case *Repetition:
		add(n.Child, n.Glue)
	case *Until:
		add(n.Child, n.Terminator)
	case *PositiveLookahead:
		add(n.Child)
	case *NegativeLookahead:
		add(n.Child)
	case *RuleCall:
		add(n.Args...)
	case *Parenthesized:
		add(n.Child)
	case *Label:
		add(n.Child)
	case *ObjectCreator:
		add(n.Child, n.Data)
	case *ValueCreator:
		add(n.Child)
	case *HashLiteral:
		for _, entry := range n.Entries {
			add(entry.Value)
		}
	case *ArrayLiteral:
		add(n.Entries...)
	case *MatchFunction:
		add(n.Child)
	case *EnterMode:
		add(n.Child)
	case *LeaveMode:
		add(n.Child)
	case *Factored:
		add(n.Primary)
		if n.Choice != nil {
			add(n.Choice)
		}
	case *Rule:
		add(n.Body)
	}
	return res
}

// Link sets parent links of the whole tree rooted at e.
func Link(e Expression) {
	for _, c := range Children(e) {
		c.base().parent = e
		Link(c)
	}
}

// Visitor is called for each visited expression, returning false skips its children.
type Visitor func(e Expression) (walkChildren bool)

// Walk visits e and its subexpressions depth first, left to right.
func Walk(e Expression, visitor Visitor) {
	if e == nil {
		return
	}

	if visitor(e) {
		for _, c := range Children(e) {
			Walk(c, visitor)
		}
	}
}

// Ancestor returns level-th ancestor of e, level 0 is the parent.
func Ancestor(e Expression, level int) Expression {
	for e != nil && level >= 0 {
		e = e.Parent()
		level--
	}
	return e
}

// NodeLevel returns the number of ancestors of e.
func NodeLevel(e Expression) (l int) {
	if e == nil {
		return
	}

	for p := e.Parent(); p != nil; p = p.Parent() {
		l++
	}
	return
}

// SiblingIndex returns index of e among its parent's children or -1 for a root.
func SiblingIndex(e Expression) int {
	p := e.Parent()
	if p == nil {
		return -1
	}

	for i, c := range Children(p) {
		if c == e {
			return i
		}
	}
	return -1
}
