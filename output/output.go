// Package output defines construction events emitted for successful matches
// and the default builder turning them into plain Go values.
package output

// Events receives construction events in post-order: operands are pushed before the event consuming them.
type Events interface {
	PushNil()
	// PushInputRange pushes input bytes from begin (inclusive) to end (exclusive).
	PushInputRange(begin, end int)
	PushBoolean(value bool)
	PushString(value string)
	// AppendToArray pops a value and appends it to the array under it.
	// An array is started with PushNil.
	AppendToArray()
	// MakeArray pops an array under construction and pushes the finished array.
	MakeArray()
	// MakeLabel pops a value and pushes a record containing the single field name.
	MakeLabel(name string)
	// MergeLabels pops count records and pushes their union, later records take precedence.
	MergeLabels(count int)
	// MakeObject pops a value and pushes it tagged as data of a className instance.
	MakeObject(className string)
	// MakeValue pops a value and pushes it tagged for evaluation of code with the value fields in scope.
	MakeValue(code, filename string, line int)
}

// InputRange is a part of matched input.
type InputRange struct {
	Input      []byte
	Begin, End int
}

func (r *InputRange) String() string {
	return string(r.Input[r.Begin:r.End])
}

// Bytes returns matched bytes, the result shares memory with input.
func (r *InputRange) Bytes() []byte {
	return r.Input[r.Begin:r.End]
}

// Object is a value to be realized as an instance of Class.
type Object struct {
	Class string
	Data  any
}

// Value is a value to be realized by evaluating Code.
type Value struct {
	Code     string
	Filename string
	Line     int
	Data     any
}

// Record is the value built for labeled fields.
type Record = map[string]any
