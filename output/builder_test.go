package output

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/jetpeg/internal/test"
)

func TestBuilderRecord(t *testing.T) {
	b := NewBuilder([]byte("hello world"))
	b.PushInputRange(0, 5)
	b.MakeLabel("first")
	b.PushBoolean(true)
	b.MakeLabel("flag")
	b.PushNil()
	b.MakeLabel("first")
	b.PushInputRange(6, 11)
	b.MakeLabel("second")
	b.MergeLabels(2)
	b.MergeLabels(3)

	res := b.Result()
	expected := Record{"first": nil, "flag": true, "second": "world"}
	if diff := cmp.Diff(expected, Simplify(res)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestBuilderArray(t *testing.T) {
	b := NewBuilder([]byte("abc"))
	b.PushNil()
	for i := 0; i < 3; i++ {
		b.PushInputRange(i, i+1)
		b.AppendToArray()
	}
	b.MakeArray()
	b.MakeLabel("items")
	b.PushNil()
	b.MakeArray()
	b.MakeLabel("empty")
	b.MakeLabel("inner")
	b.MergeLabels(0)
	require.Len(t, b.stack, 3)
	b.MergeLabels(3)

	expected := Record{
		"items": []any{"a", "b", "c"},
		"inner": Record{"empty": []any{}},
	}
	assert.Equal(t, expected, Simplify(b.Result()))
}

func TestBuilderObjects(t *testing.T) {
	b := NewBuilder([]byte("x"))
	b.PushString("s")
	b.MakeObject("Foo")
	b.PushInputRange(0, 1)
	b.MakeValue("x + 1", "test.jpeg", 3)
	b.PushNil()
	b.MakeObject("Empty")
	b.MergeLabels(0)
	b.MakeLabel("all")
	b.MergeLabels(1)

	res := b.stack
	require.Len(t, res, 4)
	assert.Equal(t, &Object{Class: "Foo", Data: "s"}, res[0])
	assert.Equal(t, &Value{Code: "x + 1", Filename: "test.jpeg", Line: 3, Data: "x"}, Simplify(res[1]))
	assert.Equal(t, &Object{Class: "Empty"}, res[2])
	assert.Equal(t, Record{"all": Record{}}, res[3])
}

func TestBuilderInvariants(t *testing.T) {
	test.ExpectPanic(t, func() {
		NewBuilder(nil).MakeLabel("x")
	})
	test.ExpectPanic(t, func() {
		NewBuilder(nil).Result()
	})
	test.ExpectPanic(t, func() {
		b := NewBuilder(nil)
		b.PushNil()
		b.MergeLabels(2)
	})
}

func TestInputRange(t *testing.T) {
	r := &InputRange{Input: []byte("abcdef"), Begin: 2, End: 4}
	assert.Equal(t, "cd", r.String())
	assert.Equal(t, []byte("cd"), r.Bytes())
}
