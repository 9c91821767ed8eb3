package layout

import (
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/output"
)

// Read emits construction events for a value of type t stored in slots.
// A value-less result reads out as an empty record.
func Read(t *Type, slots []Slot, ev output.Events) {
	read(t, slots, true, ev)
}

func read(t *Type, slots []Slot, asRecord bool, ev output.Events) {
	switch t.Kind {
	case Nothing:
		if asRecord {
			ev.MergeLabels(0)
		} else {
			ev.PushNil()
		}

	case Range:
		ev.PushInputRange(slots[0].Begin, slots[0].End)

	case Boolean:
		ev.PushBoolean(t.Value.(bool))

	case String:
		ev.PushString(t.Value.(string))

	case Struct:
		if m, ok := t.AtMember(); ok {
			read(m.Type, slots[m.Offset:], false, ev)
			return
		}

		for _, m := range t.Members {
			read(m.Type, slots[m.Offset:], m.IsEmbedded(), ev)
			if !m.IsEmbedded() {
				ev.MakeLabel(m.Name)
			}
		}
		ev.MergeLabels(len(t.Members))

	case Choice:
		arm, armSlots := Unpack(t, slots)
		at := t.Arms[arm].Type
		if !t.record {
			read(at, armSlots, false, ev)
			return
		}

		read(at, armSlots, true, ev)
		missing := 0
		for _, name := range t.fields {
			if !hasField(at, name) {
				ev.PushNil()
				ev.MakeLabel(name)
				missing++
			}
		}
		if missing > 0 {
			ev.MergeLabels(missing + 1)
		}

	case List:
		ev.PushNil()
		for _, b := range Items(t, slots) {
			read(t.Elem, b.Slots, false, ev)
			ev.AppendToArray()
		}
		ev.MakeArray()

	case Boxed:
		if b := slots[0].Box; b != nil {
			read(t.Target, b.Slots, asRecord, ev)
		} else {
			ev.PushNil()
		}

	case Object:
		if t.Data != nil {
			readData(t.Data, t.Inner, slots, ev)
		} else {
			read(t.Inner, slots, true, ev)
		}
		ev.MakeObject(t.Class)

	case Code:
		read(t.Inner, slots, true, ev)
		ev.MakeValue(t.Code, t.Filename, t.Line)
	}
}

// readData emits an object data template, @name references read fields of the wrapped value.
func readData(e grammar.Expression, inner *Type, slots []Slot, ev output.Events) {
	switch n := e.(type) {
	case *grammar.StringLiteral:
		ev.PushString(n.Value)

	case *grammar.BooleanLiteral:
		ev.PushBoolean(n.Value)

	case *grammar.HashLiteral:
		for _, entry := range n.Entries {
			readData(entry.Value, inner, slots, ev)
			ev.MakeLabel(entry.Key)
		}
		ev.MergeLabels(len(n.Entries))

	case *grammar.ArrayLiteral:
		ev.PushNil()
		for _, entry := range n.Entries {
			readData(entry, inner, slots, ev)
			ev.AppendToArray()
		}
		ev.MakeArray()

	case *grammar.LabelDataRef:
		if ft, fslots, found := lookupField(inner, slots, n.Name); found {
			read(ft, fslots, false, ev)
		} else {
			ev.PushNil()
		}

	case *grammar.ObjectCreator:
		if n.Data != nil {
			readData(n.Data, inner, slots, ev)
		} else {
			ev.PushNil()
		}
		ev.MakeObject(n.ClassName)

	default:
		ev.PushNil()
	}
}

// lookupField finds a record field by name. A field of a choice alternative that was not taken is not found.
func lookupField(t *Type, slots []Slot, name string) (*Type, []Slot, bool) {
	switch t.Kind {
	case Struct:
		for _, m := range t.Members {
			if m.Name == name {
				return m.Type, slots[m.Offset:], true
			}
		}
		for _, m := range t.Members {
			if m.IsEmbedded() {
				if ft, fslots, found := lookupField(m.Type, slots[m.Offset:], name); found {
					return ft, fslots, true
				}
			}
		}

	case Choice:
		arm, armSlots := Unpack(t, slots)
		return lookupField(t.Arms[arm].Type, armSlots, name)

	case Boxed:
		if b := slots[0].Box; b != nil {
			return lookupField(t.Target, b.Slots, name)
		}
	}
	return nil, nil, false
}
