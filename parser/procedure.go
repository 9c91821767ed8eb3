package parser

import (
	"github.com/ava12/jetpeg/grammar"
	"github.com/ava12/jetpeg/layout"
)

const (
	untraced = iota
	traced
)

// procedure is a compiled rule. Every rule has an untraced and a traced body.
type procedure struct {
	name          string
	rule          *grammar.Rule
	t             *layout.Type
	leftRecursive bool
	bodies        [2]matcher
}

func (p *procedure) invoke(s *state, variant int, pos int, modes Modes, out []layout.Slot) (int, bool) {
	body := p.bodies[variant]
	if variant == untraced {
		if p.leftRecursive {
			return p.grow(s, body, pos, modes, out)
		}
		return body(s, pos, modes, out)
	}

	s.depth++
	if s.log.IsTrace() {
		s.log.Trace("enter", "rule", p.name, "pos", pos, "depth", s.depth)
	}

	var (
		end int
		ok  bool
	)
	if p.leftRecursive {
		end, ok = p.grow(s, body, pos, modes, out)
	} else {
		end, ok = body(s, pos, modes, out)
	}

	if s.log.IsTrace() {
		s.log.Trace("leave", "rule", p.name, "pos", pos, "end", end, "ok", ok, "depth", s.depth)
	}
	s.depth--
	return end, ok
}

// grow runs a left-recursive rule body. The first run fails at left-recursive calls.
// If such a call occurred, the body is run again with the previous result as the value
// of left-recursive calls until the match stops advancing.
func (p *procedure) grow(s *state, body matcher, pos int, modes Modes, out []layout.Slot) (int, bool) {
	saved := s.lr
	lr := &leftRec{proc: p, start: pos, modes: modes}
	s.lr = lr

	end, ok := body(s, pos, modes, out)
	if ok && lr.occurred {
		next := make([]layout.Slot, len(out))
		for {
			lr.grown = true
			lr.seed = out
			lr.seedEnd = end
			nend, nok := body(s, pos, modes, next)
			if !nok {
				break
			}
			if nend <= end {
				s.release(p.t, next)
				break
			}

			s.release(p.t, out)
			copy(out, next)
			end = nend
		}
	}

	s.lr = saved
	return end, ok
}

// seeded reports whether a call of p at pos is a left-recursive call of the current invocation.
func (s *state) seeded(p *procedure, pos int, modes Modes) bool {
	return s.lr != nil && s.lr.proc == p && s.lr.start == pos && s.lr.modes == modes
}
