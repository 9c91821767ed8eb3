// Package layout computes result value types of grammar expressions and their slot storage.
//
// Every value lives in a fixed number of slots known at compile time.
// Input ranges, list heads, and boxed values take one slot each,
// records concatenate their members, and a choice keeps its selector in the first slot
// followed by slot groups shared between mutually exclusive alternatives.
package layout

import (
	"strconv"
	"strings"

	"github.com/ava12/jetpeg/grammar"
)

// Kind is the variant tag of a Type.
type Kind int

const (
	Nothing Kind = iota
	Range
	Boolean
	String
	Struct
	Choice
	List
	Boxed
	Object
	Code
)

var kindNames = []string{"nothing", "range", "boolean", "string", "struct", "choice", "list", "boxed", "object", "code"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind#" + strconv.Itoa(int(k))
	}
	return kindNames[k]
}

// Member is a Struct field. Embedded members have empty Name, their record fields are merged in.
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

func (m Member) IsEmbedded() bool {
	return m.Name == ""
}

// Cell maps Type.Size slots of an alternative value (starting at Src) to choice slots (starting at Dst).
type Cell struct {
	Type     *Type
	Src, Dst int
}

// Arm is a Choice alternative.
type Arm struct {
	Type  *Type
	Cells []Cell
}

// Type is a value type. Types are interned per Layout: equal types are the same pointer.
type Type struct {
	Kind Kind
	// Size is the number of slots taken by the value.
	Size int

	// Value holds the constant of Boolean (bool) and String (string) types.
	Value any

	Members []Member // Struct
	Arms    []Arm    // Choice

	// Elem is the element type of a List.
	Elem *Type

	// Rule and Target describe Boxed, Target is the type of Rule.
	Rule   string
	Target *Type

	// Inner is the type of the wrapped value of Object and Code.
	Inner *Type
	// Class and Data describe Object, Data is nil when the wrapped value itself is the object data.
	Class string
	Data  grammar.Expression

	// Code, Filename, and Line describe Code.
	Code     string
	Filename string
	Line     int

	key    string
	record bool
	fields []string
}

// IsRecord reports whether the value reads out as a record that can be merged into an enclosing one.
func (t *Type) IsRecord() bool {
	return t.record
}

// Fields returns field names of a record type in order of first appearance.
func (t *Type) Fields() []string {
	return t.fields
}

// AtMember returns the single @ member of a Struct replacing the whole record.
func (t *Type) AtMember() (Member, bool) {
	if t.Kind == Struct && len(t.Members) == 1 && t.Members[0].Name == grammar.AtName {
		return t.Members[0], true
	}
	return Member{}, false
}

// Key returns the interning key of t.
func (t *Type) Key() string {
	return t.key
}

func (t *Type) String() string {
	sb := &strings.Builder{}
	t.format(sb)
	return sb.String()
}

func (t *Type) format(sb *strings.Builder) {
	switch t.Kind {
	case Nothing, Range:
		sb.WriteString(t.Kind.String())
	case Boolean:
		sb.WriteString(strconv.FormatBool(t.Value.(bool)))
	case String:
		sb.WriteString(grammar.QuoteString(t.Value.(string)))
	case Struct:
		sb.WriteString("{")
		for i, m := range t.Members {
			if i > 0 {
				sb.WriteString(", ")
			}
			if m.IsEmbedded() {
				sb.WriteString("...")
			} else {
				sb.WriteString(m.Name)
				sb.WriteString(": ")
			}
			m.Type.format(sb)
		}
		sb.WriteString("}")
	case Choice:
		sb.WriteString("(")
		for i, a := range t.Arms {
			if i > 0 {
				sb.WriteString(" | ")
			}
			a.Type.format(sb)
		}
		sb.WriteString(")")
	case List:
		sb.WriteString("[")
		t.Elem.format(sb)
		sb.WriteString("]")
	case Boxed:
		sb.WriteString("&")
		sb.WriteString(t.Rule)
	case Object:
		sb.WriteString("<")
		sb.WriteString(t.Class)
		sb.WriteString(" ")
		if t.Data != nil {
			sb.WriteString(grammar.Format(t.Data))
		} else {
			t.Inner.format(sb)
		}
		sb.WriteString(">")
	case Code:
		sb.WriteString("{")
		sb.WriteString(strings.TrimSpace(t.Code))
		sb.WriteString("} ")
		t.Inner.format(sb)
	}
}

func structKey(members []Member) string {
	sb := &strings.Builder{}
	sb.WriteString("{")
	for _, m := range members {
		if m.IsEmbedded() {
			sb.WriteString("*")
		} else {
			sb.WriteString(m.Name)
			sb.WriteString(":")
		}
		sb.WriteString(m.Type.key)
		sb.WriteString(";")
	}
	sb.WriteString("}")
	return sb.String()
}

func choiceKey(arms []*Type) string {
	keys := make([]string, len(arms))
	for i, a := range arms {
		keys[i] = a.key
	}
	return "(" + strings.Join(keys, "|") + ")"
}
