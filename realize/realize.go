// Package realize turns generic match values into host values.
//
// Objects are created by constructors registered in a Scope under their class names.
// Value code is JavaScript evaluated with goja, the fields of the tagged record are
// visible to the code as global variables. The code result is exported to a Go value.
package realize

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/hashicorp/go-hclog"

	"github.com/ava12/jetpeg"
	"github.com/ava12/jetpeg/output"
)

// Constructor creates an object from its realized data.
// A returned *jetpeg.Error is passed to the caller as is, other errors are wrapped.
type Constructor func(data any) (any, error)

// Scope maps class names to constructors.
type Scope map[string]Constructor

// Option configures a Realizer.
type Option func(r *Realizer)

// WithLogger sets the logger, code evaluation is logged at Trace level.
func WithLogger(log hclog.Logger) Option {
	return func(r *Realizer) {
		r.log = log
	}
}

// WithFallback sets the constructor used for classes missing from the scope.
// Without a fallback an unknown class is an error.
func WithFallback(f func(class string, data any) (any, error)) Option {
	return func(r *Realizer) {
		r.fallback = f
	}
}

// Realizer is safe for concurrent use. Compiled value code is cached.
type Realizer struct {
	scope    Scope
	fallback func(class string, data any) (any, error)
	log      hclog.Logger

	mu       sync.Mutex
	programs map[string]*goja.Program
}

func New(scope Scope, opts ...Option) *Realizer {
	r := &Realizer{
		scope:    scope,
		log:      hclog.NewNullLogger(),
		programs: make(map[string]*goja.Program),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Realize returns a copy of v with input ranges replaced by strings, objects created
// by scope constructors, and value code results in place of code values.
// Code evaluation is interrupted when ctx is done.
func (r *Realizer) Realize(ctx context.Context, v any) (any, error) {
	s := &session{r: r, ctx: ctx, done: make(chan struct{})}
	defer close(s.done)
	return s.realize(v)
}

func (r *Realizer) program(code, filename string, line int) (*goja.Program, error) {
	key := filename + ":" + strconv.Itoa(line) + ":" + code
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.programs[key]; p != nil {
		return p, nil
	}
	src := code
	if line > 1 {
		src = strings.Repeat("\n", line-1) + code
	}
	p, e := goja.Compile(filename, src, false)
	if e != nil {
		return nil, codeSyntaxError(filename, line, e)
	}
	r.programs[key] = p
	return p, nil
}

// session is a single Realize call, it owns a JavaScript runtime created on first use.
type session struct {
	r    *Realizer
	ctx  context.Context
	done chan struct{}
	vm   *goja.Runtime
}

func (s *session) runtime() *goja.Runtime {
	if s.vm != nil {
		return s.vm
	}

	s.vm = goja.New()
	s.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	if s.ctx.Done() != nil {
		vm := s.vm
		go func() {
			select {
			case <-s.ctx.Done():
				vm.Interrupt(s.ctx.Err())
			case <-s.done:
			}
		}()
	}
	return s.vm
}

func (s *session) realize(v any) (any, error) {
	switch x := v.(type) {
	case *output.InputRange:
		return x.String(), nil

	case output.Record:
		res := make(map[string]any, len(x))
		for k, field := range x {
			rf, e := s.realize(field)
			if e != nil {
				return nil, e
			}
			res[k] = rf
		}
		return res, nil

	case []any:
		res := make([]any, len(x))
		for i, item := range x {
			ri, e := s.realize(item)
			if e != nil {
				return nil, e
			}
			res[i] = ri
		}
		return res, nil

	case *output.Object:
		data, e := s.realize(x.Data)
		if e != nil {
			return nil, e
		}
		var res any
		if ctor := s.r.scope[x.Class]; ctor != nil {
			res, e = ctor(data)
		} else if s.r.fallback != nil {
			res, e = s.r.fallback(x.Class, data)
		} else {
			return nil, unknownClassError(x.Class)
		}
		if e != nil {
			var je *jetpeg.Error
			if errors.As(e, &je) {
				return nil, e
			}
			return nil, constructorError(x.Class, e)
		}
		return res, nil

	case *output.Value:
		data, e := s.realize(x.Data)
		if e != nil {
			return nil, e
		}
		return s.evaluate(x, data)
	}

	return v, nil
}

func (s *session) evaluate(v *output.Value, data any) (any, error) {
	fields, ok := data.(map[string]any)
	if !ok {
		return nil, codeDataError(v.Filename, v.Line, data)
	}

	p, e := s.r.program(v.Code, v.Filename, v.Line)
	if e != nil {
		return nil, e
	}

	if s.r.log.IsTrace() {
		s.r.log.Trace("evaluate", "code", v.Code, "file", v.Filename, "line", v.Line)
	}

	vm := s.runtime()
	global := vm.GlobalObject()
	for name, field := range fields {
		if e := vm.Set(name, field); e != nil {
			return nil, evaluationError(v.Filename, v.Line, e)
		}
	}
	res, e := vm.RunProgram(p)
	for name := range fields {
		global.Delete(name)
	}

	if e != nil {
		var ie *goja.InterruptedError
		if errors.As(e, &ie) && s.ctx.Err() != nil {
			return nil, s.ctx.Err()
		}
		return nil, evaluationError(v.Filename, v.Line, e)
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return nil, nil
	}
	return res.Export(), nil
}
