package output

import (
	"github.com/ava12/jetpeg"
)

type cons struct {
	value any
	prev  *cons
}

// Builder is Events implementation building values of types nil, bool, string, *InputRange,
// Record, []any, *Object, and *Value.
// Builder is not safe for concurrent use, create one per match.
type Builder struct {
	input []byte
	stack []any
}

func NewBuilder(input []byte) *Builder {
	return &Builder{input: input}
}

func (b *Builder) push(v any) {
	b.stack = append(b.stack, v)
}

func (b *Builder) pop() any {
	if len(b.stack) == 0 {
		jetpeg.Internalf("output stack underflow")
	}

	last := len(b.stack) - 1
	v := b.stack[last]
	b.stack[last] = nil
	b.stack = b.stack[:last]
	return v
}

func (b *Builder) PushNil() {
	b.push(nil)
}

func (b *Builder) PushInputRange(begin, end int) {
	b.push(&InputRange{Input: b.input, Begin: begin, End: end})
}

func (b *Builder) PushBoolean(value bool) {
	b.push(value)
}

func (b *Builder) PushString(value string) {
	b.push(value)
}

func (b *Builder) AppendToArray() {
	v := b.pop()
	head, _ := b.pop().(*cons)
	b.push(&cons{value: v, prev: head})
}

func (b *Builder) MakeArray() {
	head, _ := b.pop().(*cons)
	n := 0
	for c := head; c != nil; c = c.prev {
		n++
	}

	res := make([]any, n)
	for c := head; c != nil; c = c.prev {
		n--
		res[n] = c.value
	}
	b.push(res)
}

func (b *Builder) MakeLabel(name string) {
	b.push(Record{name: b.pop()})
}

func (b *Builder) MergeLabels(count int) {
	if count > len(b.stack) {
		jetpeg.Internalf("cannot merge %d records, stack has %d values", count, len(b.stack))
	}

	res := make(Record)
	for _, v := range b.stack[len(b.stack)-count:] {
		r, _ := v.(Record)
		for k, field := range r {
			res[k] = field
		}
	}

	for ; count > 0; count-- {
		b.pop()
	}
	b.push(res)
}

func (b *Builder) MakeObject(className string) {
	b.push(&Object{Class: className, Data: b.pop()})
}

func (b *Builder) MakeValue(code, filename string, line int) {
	b.push(&Value{Code: code, Filename: filename, Line: line, Data: b.pop()})
}

// Result returns the single built value. It panics if the event sequence was unbalanced.
func (b *Builder) Result() any {
	if len(b.stack) != 1 {
		jetpeg.Internalf("unbalanced output events: %d values left", len(b.stack))
	}

	return b.stack[0]
}

// Simplify returns a copy of v with input ranges replaced by strings.
func Simplify(v any) any {
	switch x := v.(type) {
	case *InputRange:
		return x.String()
	case Record:
		res := make(Record, len(x))
		for k, field := range x {
			res[k] = Simplify(field)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, item := range x {
			res[i] = Simplify(item)
		}
		return res
	case *Object:
		return &Object{Class: x.Class, Data: Simplify(x.Data)}
	case *Value:
		return &Value{Code: x.Code, Filename: x.Filename, Line: x.Line, Data: Simplify(x.Data)}
	}
	return v
}
