package parser

import (
	"github.com/hashicorp/go-hclog"

	"github.com/ava12/jetpeg/failure"
	"github.com/ava12/jetpeg/layout"
)

// Modes is a set of mode flags, one bit per mode name used in the grammar.
type Modes uint64

// matcher tries to match an expression at byte position pos.
// On success it returns the end position and stores the value in out.
// On failure out holds no references, all partial values are already released.
type matcher func(s *state, pos int, modes Modes, out []layout.Slot) (end int, ok bool)

type local struct {
	t     *layout.Type
	slots []layout.Slot
	end   int
}

// leftRec is the left recursion state of a left-recursive rule invocation.
type leftRec struct {
	proc     *procedure
	start    int
	modes    Modes
	occurred bool
	grown    bool
	seed     []layout.Slot
	seedEnd  int
}

// state is the mutable state of a single match pass.
type state struct {
	input  []byte
	heap   *layout.Heap
	locals []local
	frame  int
	lr     *leftRec

	// set in traced passes only
	tracker *failure.Tracker
	log     hclog.Logger
	depth   int
}

func newState(input []byte, tracker *failure.Tracker, log hclog.Logger) *state {
	return &state{
		input:   input,
		heap:    &layout.Heap{},
		tracker: tracker,
		log:     log,
	}
}

// popLocals drops local values above depth, releasing them.
func (s *state) popLocals(depth int) {
	for i := len(s.locals) - 1; i >= depth; i-- {
		l := s.locals[i]
		s.heap.Release(l.t, l.slots)
		s.locals[i] = local{}
	}
	s.locals = s.locals[:depth]
}

func (s *state) pushLocal(t *layout.Type, slots []layout.Slot, end int) {
	s.locals = append(s.locals, local{t, slots, end})
}

// local returns the local value at index slot of the current frame.
func (s *state) local(slot int) local {
	return s.locals[s.frame+slot]
}

func (s *state) expect(pos int, reason string) {
	s.tracker.Expect(pos, reason)
}

func (s *state) other(pos int, reason string) {
	s.tracker.Other(pos, reason)
}

// release drops value references of out, it is a no-op for slot-less types.
func (s *state) release(t *layout.Type, out []layout.Slot) {
	if t.Size > 0 {
		s.heap.Release(t, out)
	}
}
