package layout

import (
	"github.com/ava12/jetpeg/grammar"
)

// finalize resolves boxed targets, computes sizes, offsets, and choice cells,
// then validates records built by sequences and object data references.
// Types are processed in creation order, so component types are always sized before their owners.
func (l *Layout) finalize() {
	for _, t := range l.order {
		switch t.Kind {
		case Range, List:
			t.Size = 1
		case Boxed:
			t.Size = 1
			t.Target = l.rules[t.Rule]
		case Struct:
			offset := 0
			for i := range t.Members {
				t.Members[i].Offset = offset
				offset += t.Members[i].Type.Size
			}
			t.Size = offset
		case Choice:
			packChoice(t)
		case Object, Code:
			t.Size = t.Inner.Size
		}
	}

	for _, t := range l.order {
		t.record = isRecord(t, make(map[string]bool))
		if t.record {
			t.fields = unique(fieldNames(t, make(map[string]bool)))
		}
	}

	for _, s := range l.sites {
		l.validateStruct(s)
	}
	for _, oc := range l.creators {
		l.validateData(oc)
	}
}

// packChoice assigns slot groups to alternative values. A group is shared by alternatives
// only when their values have the same type, one alternative never uses a group twice.
func packChoice(t *Type) {
	type group struct {
		key    string
		offset int
	}

	var groups []group
	size := 1
	for i := range t.Arms {
		arm := &t.Arms[i]
		used := make([]bool, len(groups))
		add := func(ct *Type, src int) {
			for g := range groups {
				if !used[g] && groups[g].key == ct.key {
					used[g] = true
					arm.Cells = append(arm.Cells, Cell{Type: ct, Src: src, Dst: groups[g].offset})
					return
				}
			}

			groups = append(groups, group{ct.key, size})
			used = append(used, true)
			arm.Cells = append(arm.Cells, Cell{Type: ct, Src: src, Dst: size})
			size += ct.Size
		}

		at := arm.Type
		if at.Kind == Struct {
			for _, m := range at.Members {
				if m.Type.Size > 0 {
					add(m.Type, m.Offset)
				}
			}
		} else if at.Size > 0 {
			add(at, 0)
		}
	}
	t.Size = size
}

func isRecord(t *Type, visiting map[string]bool) bool {
	switch t.Kind {
	case Nothing:
		return true
	case Struct:
		for _, m := range t.Members {
			if m.Name == grammar.AtName {
				return false
			}
		}
		return true
	case Choice:
		for _, a := range t.Arms {
			if !isRecord(a.Type, visiting) {
				return false
			}
		}
		return true
	case Boxed:
		if visiting[t.Rule] {
			return true
		}
		visiting[t.Rule] = true
		return isRecord(t.Target, visiting)
	}
	return false
}

// fieldNames lists record field names, a name is listed once per occurrence.
func fieldNames(t *Type, visiting map[string]bool) []string {
	var res []string
	switch t.Kind {
	case Struct:
		for _, m := range t.Members {
			if m.IsEmbedded() {
				res = append(res, fieldNames(m.Type, visiting)...)
			} else {
				res = append(res, m.Name)
			}
		}
	case Choice:
		for _, a := range t.Arms {
			res = append(res, unique(fieldNames(a.Type, visiting))...)
		}
		res = unique(res)
	case Boxed:
		if !visiting[t.Rule] {
			visiting[t.Rule] = true
			res = fieldNames(t.Target, visiting)
			delete(visiting, t.Rule)
		}
	}
	return res
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	res := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			res = append(res, name)
		}
	}
	return res
}

func (l *Layout) validateStruct(s structSite) {
	ats := 0
	for _, m := range s.t.Members {
		if m.Name == grammar.AtName {
			ats++
		}
	}
	if ats > 1 {
		l.fail(atLabelError(s.seq, true))
		return
	}
	if ats == 1 && len(s.t.Members) > 1 {
		l.fail(atLabelError(s.seq, false))
		return
	}

	for _, m := range s.t.Members {
		if m.IsEmbedded() && !m.Type.record {
			l.fail(embeddedValueError(s.seq, m.Type))
			return
		}
	}

	seen := make(map[string]bool)
	for _, name := range fieldNames(s.t, make(map[string]bool)) {
		if seen[name] {
			l.fail(duplicateFieldError(s.seq, name))
			return
		}
		seen[name] = true
	}
}

func (l *Layout) validateData(oc *grammar.ObjectCreator) {
	if oc.Data == nil {
		return
	}

	inner := l.exprs[oc].Inner
	grammar.Walk(oc.Data, func(e grammar.Expression) bool {
		if ref, ok := e.(*grammar.LabelDataRef); ok && !hasField(inner, ref.Name) {
			l.fail(dataRefError(ref))
		}
		return true
	})
}

func hasField(t *Type, name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}
