package grammar

// BindingKind tells where a local value comes from.
type BindingKind int

const (
	ParamBinding    BindingKind = iota // rule parameter
	LabelBinding                       // local label preceding the reference in an enclosing sequence
	FactoredBinding                    // shared primary of an enclosing Factored
)

// Binding is the target of a LocalValueRef or Replay.
type Binding struct {
	Kind     BindingKind
	Label    *Label
	Factored *Factored
	Rule     *Rule

	// Slot is the index of the value in the local frame of a rule invocation:
	// parameters come first, then local values in order of their definition.
	Slot int
}

// Resolve finds the nearest definition of local name visible from e by walking parent links.
// Only local labels that are direct children of an enclosing sequence and precede e are visible.
func Resolve(e Expression, name string) (Binding, bool) {
	child := e
	for p := e.Parent(); p != nil; child, p = p, p.Parent() {
		switch n := p.(type) {
		case *Sequence:
			for i := indexOf(n.Children, child) - 1; i >= 0; i-- {
				if l, ok := n.Children[i].(*Label); ok && l.Kind == LocalLabel && l.Name == name {
					return Binding{Kind: LabelBinding, Label: l, Slot: LocalDepth(l)}, true
				}
			}
		case *Factored:
			if n.Name == name && child != n.Primary {
				return Binding{Kind: FactoredBinding, Factored: n, Slot: LocalDepth(n)}, true
			}
		case *Rule:
			for i, param := range n.Params {
				if param == name {
					return Binding{Kind: ParamBinding, Rule: n, Slot: i}, true
				}
			}
		}
	}
	return Binding{}, false
}

// LocalDepth returns the number of local values alive right before e is evaluated.
func LocalDepth(e Expression) int {
	depth := 0
	child := e
	for p := e.Parent(); p != nil; child, p = p, p.Parent() {
		switch n := p.(type) {
		case *Sequence:
			for _, c := range n.Children[:indexOf(n.Children, child)] {
				if IsPushedLocal(c) {
					depth++
				}
			}
		case *Factored:
			if child != n.Primary {
				depth++
			}
		case *Rule:
			depth += len(n.Params)
		}
	}
	return depth
}

// IsPushedLocal reports whether e is a local label that stays on the local stack
// until its enclosing sequence ends.
func IsPushedLocal(e Expression) bool {
	l, ok := e.(*Label)
	if !ok || l.Kind != LocalLabel {
		return false
	}
	_, ok = l.Parent().(*Sequence)
	return ok
}

func indexOf(es []Expression, e Expression) int {
	for i, c := range es {
		if c == e {
			return i
		}
	}
	return len(es)
}
