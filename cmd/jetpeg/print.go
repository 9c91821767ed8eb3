package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ava12/jetpeg/output"
)

// plain converts a match value to maps, slices, and scalars.
// An object becomes {"<Class>": data}, a code value becomes {"{code}": data}.
func plain(v any) any {
	switch x := output.Simplify(v).(type) {
	case output.Record:
		res := make(map[string]any, len(x))
		for k, field := range x {
			res[k] = plain(field)
		}
		return res
	case []any:
		res := make([]any, len(x))
		for i, item := range x {
			res[i] = plain(item)
		}
		return res
	case *output.Object:
		return objectMap(x.Class, plain(x.Data))
	case *output.Value:
		return map[string]any{"{" + x.Code + "}": plain(x.Data)}
	default:
		return x
	}
}

func objectMap(class string, data any) map[string]any {
	return map[string]any{"<" + class + ">": data}
}

func printValue(w io.Writer, format string, v any) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if e := enc.Encode(v); e != nil {
		return e
	}
	return enc.Close()
}
