package grammar

import (
	"bytes"
	"slices"
)

// Equal reports whether a and b are structurally identical expressions.
// Positions and parent links are ignored.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Sequence:
		y, ok := b.(*Sequence)
		return ok && equalAll(x.Children, y.Children)
	case *Choice:
		y, ok := b.(*Choice)
		return ok && equalAll(x.Children, y.Children)
	case *Repetition:
		y, ok := b.(*Repetition)
		return ok && x.AtLeastOnce == y.AtLeastOnce && Equal(x.Child, y.Child) && Equal(x.Glue, y.Glue)
	case *Until:
		y, ok := b.(*Until)
		return ok && Equal(x.Child, y.Child) && Equal(x.Terminator, y.Terminator)
	case *PositiveLookahead:
		y, ok := b.(*PositiveLookahead)
		return ok && Equal(x.Child, y.Child)
	case *NegativeLookahead:
		y, ok := b.(*NegativeLookahead)
		return ok && Equal(x.Child, y.Child)
	case *RuleCall:
		y, ok := b.(*RuleCall)
		return ok && x.Name == y.Name && equalAll(x.Args, y.Args)
	case *Parenthesized:
		y, ok := b.(*Parenthesized)
		return ok && Equal(x.Child, y.Child)
	case *Label:
		y, ok := b.(*Label)
		return ok && x.Name == y.Name && x.Kind == y.Kind && Equal(x.Child, y.Child)
	case *LocalValueRef:
		y, ok := b.(*LocalValueRef)
		return ok && x.Name == y.Name
	case *StringTerminal:
		y, ok := b.(*StringTerminal)
		return ok && x.Fold == y.Fold && bytes.Equal(x.Chars, y.Chars)
	case *CharacterClass:
		y, ok := b.(*CharacterClass)
		return ok && x.Inverted == y.Inverted && slices.Equal(x.Selections, y.Selections)
	case *AnyCharacter:
		_, ok := b.(*AnyCharacter)
		return ok
	case *ObjectCreator:
		y, ok := b.(*ObjectCreator)
		return ok && x.ClassName == y.ClassName && Equal(x.Child, y.Child) && Equal(x.Data, y.Data)
	case *ValueCreator:
		y, ok := b.(*ValueCreator)
		return ok && x.Code == y.Code && Equal(x.Child, y.Child)
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Value == y.Value
	case *BooleanLiteral:
		y, ok := b.(*BooleanLiteral)
		return ok && x.Value == y.Value
	case *HashLiteral:
		y, ok := b.(*HashLiteral)
		if !ok || len(x.Entries) != len(y.Entries) {
			return false
		}
		for i, entry := range x.Entries {
			if entry.Key != y.Entries[i].Key || !Equal(entry.Value, y.Entries[i].Value) {
				return false
			}
		}
		return true
	case *ArrayLiteral:
		y, ok := b.(*ArrayLiteral)
		return ok && equalAll(x.Entries, y.Entries)
	case *LabelDataRef:
		y, ok := b.(*LabelDataRef)
		return ok && x.Name == y.Name
	case *ErrorFunction:
		y, ok := b.(*ErrorFunction)
		return ok && x.Message == y.Message
	case *MatchFunction:
		y, ok := b.(*MatchFunction)
		return ok && Equal(x.Child, y.Child)
	case *EnterMode:
		y, ok := b.(*EnterMode)
		return ok && x.Mode == y.Mode && Equal(x.Child, y.Child)
	case *LeaveMode:
		y, ok := b.(*LeaveMode)
		return ok && x.Mode == y.Mode && Equal(x.Child, y.Child)
	case *InMode:
		y, ok := b.(*InMode)
		return ok && x.Mode == y.Mode
	case *Factored:
		y, ok := b.(*Factored)
		return ok && x.Name == y.Name && Equal(x.Primary, y.Primary) && Equal(x.Choice, y.Choice)
	case *Replay:
		y, ok := b.(*Replay)
		return ok && x.Name == y.Name
	case *Rule:
		y, ok := b.(*Rule)
		return ok && x.Name == y.Name && slices.Equal(x.Params, y.Params) && Equal(x.Body, y.Body)
	}
	return false
}

func equalAll(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e with unset parent links. Positions are kept.
// Call Link on the root of the copy.
func Clone(e Expression) Expression {
	if e == nil {
		return nil
	}

	var res Expression
	switch n := e.(type) {
	case *Sequence:
		res = &Sequence{Children: cloneAll(n.Children)}
	case *Choice:
		res = &Choice{Children: cloneAll(n.Children)}
	case *Repetition:
		res = &Repetition{Child: Clone(n.Child), Glue: Clone(n.Glue), AtLeastOnce: n.AtLeastOnce}
	case *Until:
		res = &Until{Child: Clone(n.Child), Terminator: Clone(n.Terminator)}
	case *PositiveLookahead:
		res = &PositiveLookahead{Child: Clone(n.Child)}
	case *NegativeLookahead:
		res = &NegativeLookahead{Child: Clone(n.Child)}
	case *RuleCall:
		res = &RuleCall{Name: n.Name, Args: cloneAll(n.Args)}
	case *Parenthesized:
		res = &Parenthesized{Child: Clone(n.Child)}
	case *Label:
		res = &Label{Name: n.Name, Kind: n.Kind, Child: Clone(n.Child)}
	case *LocalValueRef:
		res = &LocalValueRef{Name: n.Name}
	case *StringTerminal:
		res = &StringTerminal{Chars: slices.Clone(n.Chars), Fold: n.Fold}
	case *CharacterClass:
		res = &CharacterClass{Selections: slices.Clone(n.Selections), Inverted: n.Inverted}
	case *AnyCharacter:
		res = &AnyCharacter{}
	case *ObjectCreator:
		res = &ObjectCreator{ClassName: n.ClassName, Child: Clone(n.Child), Data: Clone(n.Data)}
	case *ValueCreator:
		res = &ValueCreator{Code: n.Code, Child: Clone(n.Child), Filename: n.Filename, Line: n.Line}
	case *StringLiteral:
		res = &StringLiteral{Value: n.Value}
	case *BooleanLiteral:
		res = &BooleanLiteral{Value: n.Value}
	case *HashLiteral:
		entries := make([]HashEntry, len(n.Entries))
		for i, entry := range n.Entries {
			entries[i] = HashEntry{entry.Key, Clone(entry.Value)}
		}
		res = &HashLiteral{Entries: entries}
	case *ArrayLiteral:
		res = &ArrayLiteral{Entries: cloneAll(n.Entries)}
	case *LabelDataRef:
		res = &LabelDataRef{Name: n.Name}
	case *ErrorFunction:
		res = &ErrorFunction{Message: n.Message}
	case *MatchFunction:
		res = &MatchFunction{Child: Clone(n.Child)}
	case *EnterMode:
		res = &EnterMode{Mode: n.Mode, Child: Clone(n.Child)}
	case *LeaveMode:
		res = &LeaveMode{Mode: n.Mode, Child: Clone(n.Child)}
	case *InMode:
		res = &InMode{Mode: n.Mode}
	case *Factored:
		f := &Factored{Name: n.Name, Primary: Clone(n.Primary)}
		if n.Choice != nil {
			f.Choice = Clone(n.Choice).(*Choice)
		}
		res = f
	case *Replay:
		res = &Replay{Name: n.Name}
	case *Rule:
		res = &Rule{Name: n.Name, Params: slices.Clone(n.Params), Body: Clone(n.Body)}
	default:
		panic("unknown expression type")
	}

	res.base().pos = e.Pos()
	return res
}

func cloneAll(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	res := make([]Expression, len(es))
	for i, e := range es {
		res[i] = Clone(e)
	}
	return res
}
