package layout

import (
	"github.com/ava12/jetpeg"
)

// Slot is a unit of value storage: an input range, a choice selector (Begin), or a box reference.
type Slot struct {
	Begin, End int
	Box        *Box
}

// Box is a reference counted storage of a boxed value or a list cell.
type Box struct {
	refs  int
	Slots []Slot
}

// Heap counts live boxes of a single match. It is not safe for concurrent use.
type Heap struct {
	live int
}

// Alloc creates a box with size slots and a single reference.
func (h *Heap) Alloc(size int) *Box {
	h.live++
	return &Box{refs: 1, Slots: make([]Slot, size)}
}

// Cons creates a list cell for an element of type elem preceded by the list head.
// The reference to head is moved into the cell, element slots are to be filled by the caller.
func (h *Heap) Cons(elem *Type, head *Box) *Box {
	b := h.Alloc(elem.Size + 1)
	b.Slots[elem.Size].Box = head
	return b
}

// Live returns the number of boxes allocated and not yet released.
func (h *Heap) Live() int {
	return h.live
}

func (h *Heap) drop(b *Box) bool {
	b.refs--
	if b.refs < 0 {
		jetpeg.Internalf("negative use counter of a box with %d slots", len(b.Slots))
	}
	if b.refs > 0 {
		return false
	}

	h.live--
	return true
}

// Release drops references held by value slots of type t.
func (h *Heap) Release(t *Type, slots []Slot) {
	switch t.Kind {
	case Struct:
		for _, m := range t.Members {
			if m.Type.Size > 0 {
				h.Release(m.Type, slots[m.Offset:m.Offset+m.Type.Size])
			}
		}

	case Choice:
		for _, c := range t.Arms[slots[0].Begin].Cells {
			h.Release(c.Type, slots[c.Dst:c.Dst+c.Type.Size])
		}

	case List:
		size := t.Elem.Size
		for b := slots[0].Box; b != nil && h.drop(b); b = b.Slots[size].Box {
			h.Release(t.Elem, b.Slots[:size])
		}

	case Boxed:
		if b := slots[0].Box; b != nil && h.drop(b) {
			h.Release(t.Target, b.Slots)
		}

	case Object, Code:
		h.Release(t.Inner, slots)
	}
}

// Retain adds a reference to every box referred by value slots of type t.
func (h *Heap) Retain(t *Type, slots []Slot) {
	switch t.Kind {
	case Struct:
		for _, m := range t.Members {
			if m.Type.Size > 0 {
				h.Retain(m.Type, slots[m.Offset:m.Offset+m.Type.Size])
			}
		}

	case Choice:
		for _, c := range t.Arms[slots[0].Begin].Cells {
			h.Retain(c.Type, slots[c.Dst:c.Dst+c.Type.Size])
		}

	case List, Boxed:
		if b := slots[0].Box; b != nil {
			b.refs++
		}

	case Object, Code:
		h.Retain(t.Inner, slots)
	}
}

// Pack moves the value of alternative arm of choice type t into choice slots and sets the selector.
func Pack(t *Type, arm int, armSlots, slots []Slot) {
	slots[0] = Slot{Begin: arm}
	for _, c := range t.Arms[arm].Cells {
		copy(slots[c.Dst:c.Dst+c.Type.Size], armSlots[c.Src:c.Src+c.Type.Size])
	}
}

// Unpack returns the selected alternative of choice type t and a copy of its value slots.
func Unpack(t *Type, slots []Slot) (int, []Slot) {
	arm := slots[0].Begin
	a := t.Arms[arm]
	res := make([]Slot, a.Type.Size)
	for _, c := range a.Cells {
		copy(res[c.Src:c.Src+c.Type.Size], slots[c.Dst:c.Dst+c.Type.Size])
	}
	return arm, res
}

// Items returns list cells of list type t in order of appending.
func Items(t *Type, slots []Slot) []*Box {
	var res []*Box
	for b := slots[0].Box; b != nil; b = b.Slots[t.Elem.Size].Box {
		res = append(res, b)
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}
