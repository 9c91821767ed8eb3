package parser

import (
	"bytes"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/failure"
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/layout"
)

// compiler turns expressions into matchers of one variant.
// The traced variant reports failures to the tracker, the untraced one never does.
type compiler struct {
	p       *Parser
	variant int
}

func (c *compiler) typeOf(e grammar.Expression) *layout.Type {
	return c.p.layout.TypeOf(e)
}

func (c *compiler) compile(e grammar.Expression) matcher {
	switch n := e.(type) {
	case *grammar.Sequence:
		return c.sequence(n)
	case *grammar.Choice:
		return c.choice(n)
	case *grammar.Repetition:
		return c.repetition(n)
	case *grammar.Until:
		return c.until(n)
	case *grammar.PositiveLookahead:
		return c.lookahead(n.Child, true)
	case *grammar.NegativeLookahead:
		return c.lookahead(n.Child, false)
	case *grammar.RuleCall:
		return c.ruleCall(n)
	case *grammar.Parenthesized:
		if n.Child == nil {
			return succeed
		}
		return c.compile(n.Child)
	case *grammar.Label:
		return c.label(n)
	case *grammar.LocalValueRef:
		return c.localValue(n)
	case *grammar.StringTerminal:
		return c.stringTerminal(n)
	case *grammar.CharacterClass:
		return c.characterClass(n)
	case *grammar.AnyCharacter:
		return c.anyCharacter()
	case *grammar.ObjectCreator:
		if n.Child == nil {
			return succeed
		}
		return c.compile(n.Child)
	case *grammar.ValueCreator:
		if n.Child == nil {
			return succeed
		}
		return c.compile(n.Child)
	case *grammar.StringLiteral, *grammar.BooleanLiteral:
		return succeed
	case *grammar.ErrorFunction:
		return c.errorFunction(n)
	case *grammar.MatchFunction:
		return c.matchFunction(n)
	case *grammar.EnterMode:
		return c.modeSwitch(n.Mode, n.Child, true)
	case *grammar.LeaveMode:
		return c.modeSwitch(n.Mode, n.Child, false)
	case *grammar.InMode:
		return c.inMode(n)
	case *grammar.Factored:
		return c.factored(n)
	case *grammar.Replay:
		return c.replay(n)
	}

	jetpeg.Internalf("cannot compile %T expression %s", e, grammar.Format(e))
	return nil
}

// paramType is the type of rule parameter values.
var paramType = &layout.Type{Kind: layout.Range, Size: 1}

func succeed(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
	return pos, true
}

// valueSlots returns storage for a value of type t, nil for slot-less values.
func valueSlots(t *layout.Type) []layout.Slot {
	if t.Size == 0 {
		return nil
	}
	return make([]layout.Slot, t.Size)
}

func (c *compiler) sequence(n *grammar.Sequence) matcher {
	count := len(n.Children)
	ms := make([]matcher, count)
	types := make([]*layout.Type, count)
	offsets := make([]int, count)
	offset := 0
	for i, child := range n.Children {
		ms[i] = c.compile(child)
		types[i] = c.typeOf(child)
		offsets[i] = offset
		offset += types[i].Size
	}

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		depth := len(s.locals)
		for i, m := range ms {
			end, ok := m(s, pos, modes, out[offsets[i]:offsets[i]+types[i].Size])
			if !ok {
				for j := i - 1; j >= 0; j-- {
					s.release(types[j], out[offsets[j]:offsets[j]+types[j].Size])
				}
				s.popLocals(depth)
				return pos, false
			}
			pos = end
		}

		s.popLocals(depth)
		return pos, true
	}
}

func (c *compiler) choice(n *grammar.Choice) matcher {
	t := c.typeOf(n)
	ms := make([]matcher, len(n.Children))
	arms := make([]*layout.Type, len(n.Children))
	packed := false
	for i, child := range n.Children {
		ms[i] = c.compile(child)
		arms[i] = c.typeOf(child)
		packed = packed || arms[i] != arms[0]
	}

	if !packed {
		return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
			for _, m := range ms {
				if end, ok := m(s, pos, modes, out); ok {
					return end, true
				}
			}
			return pos, false
		}
	}

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		for i, m := range ms {
			armSlots := valueSlots(arms[i])
			if end, ok := m(s, pos, modes, armSlots); ok {
				layout.Pack(t, i, armSlots, out)
				return end, true
			}
		}
		return pos, false
	}
}

func (c *compiler) repetition(n *grammar.Repetition) matcher {
	t := c.typeOf(n)
	elem := c.typeOf(n.Child)
	child := c.compile(n.Child)
	var (
		glue     matcher
		glueType *layout.Type
	)
	if n.Glue != nil {
		glue = c.compile(n.Glue)
		glueType = c.typeOf(n.Glue)
	}
	atLeastOnce := n.AtLeastOnce
	isList := t.Kind == layout.List

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		var head *layout.Box
		count := 0
		for {
			start := pos
			if count > 0 && glue != nil {
				glueSlots := valueSlots(glueType)
				end, ok := glue(s, start, modes, glueSlots)
				if !ok {
					break
				}
				s.release(glueType, glueSlots)
				start = end
			}

			slots := valueSlots(elem)
			end, ok := child(s, start, modes, slots)
			if !ok {
				break
			}

			if isList {
				head = s.heap.Cons(elem, head)
				copy(head.Slots, slots)
			}
			count++
			progress := end > pos
			pos = end
			if !progress {
				break
			}
		}

		if atLeastOnce && count == 0 {
			return pos, false
		}
		if isList {
			out[0] = layout.Slot{Box: head}
		}
		return pos, true
	}
}

func (c *compiler) until(n *grammar.Until) matcher {
	t := c.typeOf(n)
	child := c.compile(n.Child)
	term := c.compile(n.Terminator)
	childType := c.typeOf(n.Child)
	termType := c.typeOf(n.Terminator)
	isList := t.Kind == layout.List
	var elem *layout.Type
	packed := false
	if isList {
		elem = t.Elem
		packed = childType.Kind != layout.Nothing && termType.Kind != layout.Nothing && childType != termType
	}

	appendItem := func(s *state, head *layout.Box, arm int, slots []layout.Slot) *layout.Box {
		head = s.heap.Cons(elem, head)
		if packed {
			layout.Pack(elem, arm, slots, head.Slots[:elem.Size])
		} else {
			copy(head.Slots, slots)
		}
		return head
	}

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		var head *layout.Box
		start := pos
		for {
			termSlots := valueSlots(termType)
			if end, ok := term(s, pos, modes, termSlots); ok {
				if isList && termType.Kind != layout.Nothing {
					head = appendItem(s, head, 1, termSlots)
				}
				pos = end
				break
			}

			childSlots := valueSlots(childType)
			end, ok := child(s, pos, modes, childSlots)
			if ok && end == pos {
				s.release(childType, childSlots)
				ok = false
			}
			if !ok {
				if isList {
					s.heap.Release(t, []layout.Slot{{Box: head}})
				}
				return start, false
			}

			if isList && childType.Kind != layout.Nothing {
				head = appendItem(s, head, 0, childSlots)
			}
			pos = end
		}

		if isList {
			out[0] = layout.Slot{Box: head}
		}
		return pos, true
	}
}

func (c *compiler) lookahead(child grammar.Expression, positive bool) matcher {
	m := c.compile(child)
	t := c.typeOf(child)
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		slots := valueSlots(t)
		_, ok := m(s, pos, modes, slots)
		if ok {
			s.release(t, slots)
		}
		return pos, ok == positive
	}
}

func (c *compiler) ruleCall(n *grammar.RuleCall) matcher {
	p := c.p.procs[n.Name]
	t := c.typeOf(n)
	boxed := t.Kind == layout.Boxed
	variant := c.variant
	self := p.leftRecursive && grammar.RuleOf(n) == p.rule

	args := make([]matcher, len(n.Args))
	argTypes := make([]*layout.Type, len(n.Args))
	for i, arg := range n.Args {
		args[i] = c.compile(arg)
		argTypes[i] = c.typeOf(arg)
	}
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		var params [][]layout.Slot
		if len(args) > 0 {
			params = make([][]layout.Slot, len(args))
			for i, arg := range args {
				slots := make([]layout.Slot, 1)
				end, ok := arg(s, pos, modes, slots[:argTypes[i].Size])
				if !ok {
					return pos, false
				}
				if argTypes[i].Kind == layout.Nothing {
					slots[0] = layout.Slot{Begin: pos, End: end}
				}
				params[i] = slots
			}
		}

		depth := len(s.locals)
		for _, slots := range params {
			s.pushLocal(paramType, slots, pos)
		}

		if self && s.seeded(p, pos, modes) {
			s.popLocals(depth)
			lr := s.lr
			lr.occurred = true
			if !lr.grown {
				return pos, false
			}
			if boxed {
				box := s.heap.Alloc(len(lr.seed))
				copy(box.Slots, lr.seed)
				s.heap.Retain(t.Target, box.Slots)
				out[0] = layout.Slot{Box: box}
			} else if t.Size > 0 {
				copy(out, lr.seed)
				s.heap.Retain(t, out)
			}
			return lr.seedEnd, true
		}

		dst := out
		if boxed {
			dst = valueSlots(t.Target)
		}
		frame := s.frame
		s.frame = depth
		end, ok := p.invoke(s, variant, pos, modes, dst)
		s.frame = frame
		s.popLocals(depth)
		if !ok {
			return pos, false
		}

		if boxed {
			box := s.heap.Alloc(len(dst))
			copy(box.Slots, dst)
			out[0] = layout.Slot{Box: box}
		}
		return end, true
	}
}

func (c *compiler) label(n *grammar.Label) matcher {
	m := c.compile(n.Child)
	ct := c.typeOf(n.Child)
	capture := ct.Kind == layout.Nothing

	if n.Kind != grammar.LocalLabel {
		if !capture {
			return m
		}
		return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
			end, ok := m(s, pos, modes, nil)
			if ok {
				out[0] = layout.Slot{Begin: pos, End: end}
			}
			return end, ok
		}
	}

	lt := c.p.layout.LocalType(n)
	pushed := grammar.IsPushedLocal(n)
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		slots := valueSlots(lt)
		end, ok := m(s, pos, modes, slots[:ct.Size])
		if !ok {
			return pos, false
		}

		if capture {
			slots[0] = layout.Slot{Begin: pos, End: end}
		}
		if pushed {
			s.pushLocal(lt, slots, end)
		} else {
			s.release(lt, slots)
		}
		return end, true
	}
}

func (c *compiler) localValue(n *grammar.LocalValueRef) matcher {
	b, _ := grammar.Resolve(n, n.Name)
	t := c.typeOf(n)
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		copy(out, s.local(b.Slot).slots)
		s.heap.Retain(t, out)
		return pos, true
	}
}

func (c *compiler) stringTerminal(n *grammar.StringTerminal) matcher {
	chars := n.Chars
	fold := n.Fold
	reason := string(chars)
	isTraced := c.variant == traced
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		end := pos + len(chars)
		if end <= len(s.input) {
			text := s.input[pos:end]
			if (fold && equalFold(text, chars)) || (!fold && bytes.Equal(text, chars)) {
				return end, true
			}
		}

		if isTraced {
			s.expect(pos, reason)
		}
		return pos, false
	}
}

// equalFold compares byte strings ignoring case of ASCII letters.
func equalFold(a, b []byte) bool {
	for i, c := range a {
		d := b[i]
		if c == d {
			continue
		}
		if c|0x20 != d|0x20 || c|0x20 < 'a' || c|0x20 > 'z' {
			return false
		}
	}
	return true
}

func (c *compiler) characterClass(n *grammar.CharacterClass) matcher {
	var reasons []string
	if n.Inverted {
		reasons = []string{grammar.Format(n)}
	} else {
		for _, sel := range n.Selections {
			reasons = append(reasons, sel.String())
		}
	}
	isTraced := c.variant == traced

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		if pos < len(s.input) && n.Contains(s.input[pos]) {
			return pos + 1, true
		}

		if isTraced {
			for _, r := range reasons {
				s.expect(pos, r)
			}
		}
		return pos, false
	}
}

func (c *compiler) anyCharacter() matcher {
	isTraced := c.variant == traced
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		if pos < len(s.input) {
			return pos + 1, true
		}

		if isTraced {
			s.expect(pos, failure.AnyCharacter)
		}
		return pos, false
	}
}

func (c *compiler) errorFunction(n *grammar.ErrorFunction) matcher {
	msg := n.Message
	isTraced := c.variant == traced
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		if isTraced {
			s.other(pos, msg)
		}
		return pos, false
	}
}

func (c *compiler) matchFunction(n *grammar.MatchFunction) matcher {
	isTraced := c.variant == traced
	var (
		literal []byte
		slot    = -1
	)
	switch arg := n.Child.(type) {
	case *grammar.StringLiteral:
		literal = []byte(arg.Value)
	case *grammar.LocalValueRef:
		b, _ := grammar.Resolve(arg, arg.Name)
		slot = b.Slot
	}

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		want := literal
		if slot >= 0 {
			r := s.local(slot).slots[0]
			want = s.input[r.Begin:r.End]
		}

		if bytes.HasPrefix(s.input[pos:], want) {
			return pos + len(want), true
		}

		if isTraced {
			s.expect(pos, string(want))
		}
		return pos, false
	}
}

func (c *compiler) modeSwitch(name string, child grammar.Expression, enter bool) matcher {
	bit := c.p.modes[name]
	m := c.compile(child)
	if enter {
		return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
			return m(s, pos, modes|bit, out)
		}
	}
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		return m(s, pos, modes&^bit, out)
	}
}

func (c *compiler) inMode(n *grammar.InMode) matcher {
	bit := c.p.modes[n.Mode]
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		return pos, modes&bit != 0
	}
}

func (c *compiler) factored(n *grammar.Factored) matcher {
	primary := c.compile(n.Primary)
	choice := c.compile(n.Choice)
	pt := c.typeOf(n.Primary)
	lt := c.p.layout.LocalType(n)

	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		slots := valueSlots(lt)
		end, ok := primary(s, pos, modes, slots[:pt.Size])
		if !ok {
			return pos, false
		}
		if pt.Kind == layout.Nothing {
			slots[0] = layout.Slot{Begin: pos, End: end}
		}

		depth := len(s.locals)
		s.pushLocal(lt, slots, end)
		end, ok = choice(s, pos, modes, out)
		s.popLocals(depth)
		return end, ok
	}
}

func (c *compiler) replay(n *grammar.Replay) matcher {
	b, _ := grammar.Resolve(n, n.Name)
	t := c.typeOf(n)
	return func(s *state, pos int, modes Modes, out []layout.Slot) (int, bool) {
		l := s.local(b.Slot)
		if t.Size > 0 {
			copy(out, l.slots[:t.Size])
			s.heap.Retain(t, out)
		}
		return l.end, true
	}
}
